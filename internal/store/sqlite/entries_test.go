package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
	"github.com/nutritrackapp/nutritrack-server/internal/store"
)

// seedUser inserts a user so entry foreign keys resolve.
func seedUser(t *testing.T, s *Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	err := s.CreateUser(context.Background(), &domain.User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

// seedEntry inserts an entry for the given user and date.
func seedEntry(t *testing.T, s *Store, id, userID, date string) {
	t.Helper()
	err := s.CreateEntry(context.Background(), &domain.Entry{
		ID:        id,
		UserID:    userID,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed entry: %v", err)
	}
}

func makeTestItem(id, entryID string) *domain.EntryItem {
	return &domain.EntryItem{
		ID:           id,
		EntryID:      entryID,
		ProductCode:  "3017620422003",
		Label:        "Nutella",
		Brand:        "Ferrero",
		ServingGrams: 15,
		Quantity:     1,
		Kcal:         80.85,
		ProteinG:     0.95,
		CarbG:        8.63,
		FatG:         4.64,
		SugarG:       8.44,
		SodiumMg:     6.42,
		MealType:     "breakfast",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestCreateAndGetEntryByDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-1")
	seedEntry(t, s, "entry-1", "user-1", "2026-08-30")

	got, err := s.GetEntryByDate(ctx, "user-1", "2026-08-30")
	if err != nil {
		t.Fatalf("GetEntryByDate: %v", err)
	}
	if got.ID != "entry-1" {
		t.Errorf("ID: got %q, want %q", got.ID, "entry-1")
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID: got %q, want %q", got.UserID, "user-1")
	}
	if got.Date != "2026-08-30" {
		t.Errorf("Date: got %q, want %q", got.Date, "2026-08-30")
	}
}

func TestGetEntry(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "user-1")
	seedEntry(t, s, "entry-1", "user-1", "2026-08-30")

	got, err := s.GetEntry(context.Background(), "entry-1")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID: got %q, want %q", got.UserID, "user-1")
	}

	if _, err := s.GetEntry(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetEntryByDate_NotFound(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "user-1")

	_, err := s.GetEntryByDate(context.Background(), "user-1", "2026-08-30")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateEntry_DuplicateDate(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "user-1")
	seedEntry(t, s, "entry-1", "user-1", "2026-08-30")

	err := s.CreateEntry(context.Background(), &domain.Entry{
		ID:        "entry-2",
		UserID:    "user-1",
		Date:      "2026-08-30",
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestEntryItems_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-1")
	seedEntry(t, s, "entry-1", "user-1", "2026-08-30")

	item := makeTestItem("item-1", "entry-1")
	if err := s.CreateEntryItem(ctx, item); err != nil {
		t.Fatalf("CreateEntryItem: %v", err)
	}

	got, err := s.GetEntryItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetEntryItem: %v", err)
	}
	if got.Label != "Nutella" {
		t.Errorf("Label: got %q, want %q", got.Label, "Nutella")
	}
	if got.Kcal != 80.85 {
		t.Errorf("Kcal: got %v, want 80.85", got.Kcal)
	}
	if got.SodiumMg != 6.42 {
		t.Errorf("SodiumMg: got %v, want 6.42", got.SodiumMg)
	}
	if got.MealType != "breakfast" {
		t.Errorf("MealType: got %q, want %q", got.MealType, "breakfast")
	}

	// Update serving and nutrients.
	got.ServingGrams = 30
	got.Kcal = 161.7
	got.MealType = "snack"
	if err := s.UpdateEntryItem(ctx, got); err != nil {
		t.Fatalf("UpdateEntryItem: %v", err)
	}

	updated, err := s.GetEntryItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetEntryItem after update: %v", err)
	}
	if updated.ServingGrams != 30 {
		t.Errorf("ServingGrams: got %v, want 30", updated.ServingGrams)
	}
	if updated.Kcal != 161.7 {
		t.Errorf("Kcal: got %v, want 161.7", updated.Kcal)
	}
	if updated.MealType != "snack" {
		t.Errorf("MealType: got %q, want %q", updated.MealType, "snack")
	}

	// Delete.
	if err := s.DeleteEntryItem(ctx, "item-1"); err != nil {
		t.Fatalf("DeleteEntryItem: %v", err)
	}
	if _, err := s.GetEntryItem(ctx, "item-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListEntryItems_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-1")
	seedEntry(t, s, "entry-1", "user-1", "2026-08-30")

	base := time.Now().UTC()
	for i, id := range []string{"item-a", "item-b", "item-c"} {
		item := makeTestItem(id, "entry-1")
		item.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := s.CreateEntryItem(ctx, item); err != nil {
			t.Fatalf("CreateEntryItem %s: %v", id, err)
		}
	}

	items, err := s.ListEntryItems(ctx, "entry-1")
	if err != nil {
		t.Fatalf("ListEntryItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i, want := range []string{"item-c", "item-b", "item-a"} {
		if items[i].ID != want {
			t.Errorf("items[%d].ID = %q, want %q", i, items[i].ID, want)
		}
	}
}

func TestListEntryItems_Empty(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "user-1")
	seedEntry(t, s, "entry-1", "user-1", "2026-08-30")

	items, err := s.ListEntryItems(context.Background(), "entry-1")
	if err != nil {
		t.Fatalf("ListEntryItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestUpdateEntryItem_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateEntryItem(context.Background(), makeTestItem("missing", "entry-x"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteEntryItem_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteEntryItem(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
