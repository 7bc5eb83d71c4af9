package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
	domainerrors "github.com/nutritrackapp/nutritrack-server/internal/errors"
	"github.com/nutritrackapp/nutritrack-server/internal/id"
	"github.com/nutritrackapp/nutritrack-server/internal/openfoodfacts"
	"github.com/nutritrackapp/nutritrack-server/internal/store"
)

// DayService manages a user's daily food log. It is stateless; every call
// is keyed by (userID, date).
type DayService struct {
	store  store.Store
	logger *slog.Logger
}

// NewDayService creates a new daily log service.
func NewDayService(st store.Store, logger *slog.Logger) *DayService {
	return &DayService{
		store:  st,
		logger: logger,
	}
}

// Day is a user's log for one date with its items and computed totals.
type Day struct {
	Entry    *domain.Entry       `json:"entry"`
	Items    []*domain.EntryItem `json:"items"`
	Totals   domain.Totals       `json:"totals"`
	PrevDate string              `json:"prev_date"`
	NextDate string              `json:"next_date"`
}

// GetDay returns the user's log for a date, creating the entry lazily on
// first access. Items come back newest first.
func (s *DayService) GetDay(ctx context.Context, userID, date string) (*Day, error) {
	date, err := domain.ParseDate(date)
	if err != nil {
		return nil, domainerrors.Validation("date must be YYYY-MM-DD")
	}

	entry, err := s.getOrCreateEntry(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListEntryItems(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("list entry items: %w", err)
	}

	prev, _ := domain.PreviousDay(date)
	next, _ := domain.NextDay(date)

	return &Day{
		Entry:    entry,
		Items:    items,
		Totals:   domain.SumItems(items),
		PrevDate: prev,
		NextDate: next,
	}, nil
}

// AddItem logs a product serving to the user's day. Product identity
// (code, name, brand, image) is denormalized into the item at insertion
// time; later cache refreshes never touch logged history. Nutrients are
// computed for the serving from the product's per-100g values, with sodium
// converted to milligrams.
func (s *DayService) AddItem(ctx context.Context, userID, date string, product *domain.Product, servingGrams, quantity float64, mealType string) (*domain.EntryItem, error) {
	date, err := domain.ParseDate(date)
	if err != nil {
		return nil, domainerrors.Validation("date must be YYYY-MM-DD")
	}
	if product == nil || product.Code == "" {
		return nil, domainerrors.Validation("product is required")
	}
	if servingGrams <= 0 {
		return nil, domainerrors.Validation("serving_grams must be positive")
	}
	if quantity <= 0 {
		quantity = 1
	}

	entry, err := s.getOrCreateEntry(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	nutrients := openfoodfacts.CalculateNutrients(product, servingGrams)

	itemID, err := id.Generate("item")
	if err != nil {
		return nil, fmt.Errorf("generate item ID: %w", err)
	}

	item := &domain.EntryItem{
		ID:           itemID,
		EntryID:      entry.ID,
		ProductCode:  product.Code,
		Label:        product.Name,
		Brand:        product.Brand,
		ImageURL:     product.ImageURL,
		ServingGrams: servingGrams,
		Quantity:     quantity,
		Kcal:         nutrients.EnergyKcal,
		ProteinG:     nutrients.Proteins,
		CarbG:        nutrients.Carbohydrates,
		FatG:         nutrients.Fat,
		FiberG:       nutrients.Fiber,
		SugarG:       nutrients.Sugars,
		// Sodium converts to mg from the raw per-100g grams value, not the
		// already-rounded serving value, to avoid compounding rounding.
		SodiumMg:  round2(product.Nutriments.Sodium * servingGrams / 100 * 1000),
		MealType:  mealType,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateEntryItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create entry item: %w", err)
	}

	s.logger.Info("logged food item",
		"user_id", userID,
		"date", date,
		"product_code", product.Code,
		"serving_grams", servingGrams,
	)

	return item, nil
}

// UpdateItemServing replaces an item's serving size, rescaling every
// nutrient proportionally.
func (s *DayService) UpdateItemServing(ctx context.Context, userID, itemID string, newGrams float64) (*domain.EntryItem, error) {
	if newGrams <= 0 {
		return nil, domainerrors.Validation("serving_grams must be positive")
	}

	item, err := s.getOwnedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	item.RescaleServing(newGrams)

	if err := s.store.UpdateEntryItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update entry item: %w", err)
	}
	return item, nil
}

// DeleteItem removes a logged item from the user's day.
func (s *DayService) DeleteItem(ctx context.Context, userID, itemID string) error {
	if _, err := s.getOwnedItem(ctx, userID, itemID); err != nil {
		return err
	}

	if err := s.store.DeleteEntryItem(ctx, itemID); err != nil {
		if isNotFound(err) {
			return domainerrors.NotFound("item not found")
		}
		return fmt.Errorf("delete entry item: %w", err)
	}
	return nil
}

// getOrCreateEntry fetches the entry for a date, creating it on first
// access. A concurrent create racing on (user_id, date) is resolved by
// re-reading.
func (s *DayService) getOrCreateEntry(ctx context.Context, userID, date string) (*domain.Entry, error) {
	entry, err := s.store.GetEntryByDate(ctx, userID, date)
	if err == nil {
		return entry, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	entryID, err := id.Generate("entry")
	if err != nil {
		return nil, fmt.Errorf("generate entry ID: %w", err)
	}

	entry = &domain.Entry{
		ID:        entryID,
		UserID:    userID,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
	err = s.store.CreateEntry(ctx, entry)
	if err == nil {
		return entry, nil
	}
	if isAlreadyExists(err) {
		return s.store.GetEntryByDate(ctx, userID, date)
	}
	return nil, fmt.Errorf("create entry: %w", err)
}

// getOwnedItem loads an item and verifies it belongs to the user, walking
// item -> entry -> user. Unknown and foreign items are indistinguishable to
// the caller.
func (s *DayService) getOwnedItem(ctx context.Context, userID, itemID string) (*domain.EntryItem, error) {
	item, err := s.store.GetEntryItem(ctx, itemID)
	if err != nil {
		if isNotFound(err) {
			return nil, domainerrors.NotFound("item not found")
		}
		return nil, fmt.Errorf("get entry item: %w", err)
	}

	entry, err := s.store.GetEntry(ctx, item.EntryID)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	if entry.UserID != userID {
		return nil, domainerrors.NotFound("item not found")
	}

	return item, nil
}

func isAlreadyExists(err error) bool {
	return errors.Is(err, store.ErrAlreadyExists)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
