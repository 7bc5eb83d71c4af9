package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
	domainerrors "github.com/nutritrackapp/nutritrack-server/internal/errors"
	"github.com/nutritrackapp/nutritrack-server/internal/service"
)

func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDay",
		Method:      http.MethodGet,
		Path:        "/api/v1/log/{date}",
		Summary:     "Get a day's log",
		Description: "Returns the user's food log for a date with computed totals",
		Tags:        []string{"Log"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetDay)

	huma.Register(s.api, huma.Operation{
		OperationID: "addLogItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/log/{date}/items",
		Summary:     "Log a food item",
		Description: "Looks up the product by barcode and logs a serving of it",
		Tags:        []string{"Log"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddLogItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateLogItem",
		Method:      http.MethodPatch,
		Path:        "/api/v1/log/items/{id}",
		Summary:     "Update a logged item's serving",
		Description: "Replaces the serving size, rescaling every nutrient proportionally",
		Tags:        []string{"Log"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateLogItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteLogItem",
		Method:      http.MethodDelete,
		Path:        "/api/v1/log/items/{id}",
		Summary:     "Delete a logged item",
		Tags:        []string{"Log"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteLogItem)
}

// === DTOs ===

// DateInput holds a date path parameter.
type DateInput struct {
	Date string `path:"date" doc:"Log date (YYYY-MM-DD)"`
}

// DayOutput wraps a day response for Huma.
type DayOutput struct {
	Body service.Day
}

// AddLogItemInput holds the item to log.
type AddLogItemInput struct {
	Date string `path:"date" doc:"Log date (YYYY-MM-DD)"`
	Body struct {
		Barcode      string  `json:"barcode" doc:"Product barcode"`
		ServingGrams float64 `json:"serving_grams" doc:"Serving size in grams"`
		Quantity     float64 `json:"quantity,omitempty" doc:"Number of servings (default 1)"`
		MealType     string  `json:"meal_type,omitempty" doc:"Meal type (breakfast, lunch, dinner, snack)"`
	}
}

// ItemOutput wraps a logged item for Huma.
type ItemOutput struct {
	Body domain.EntryItem
}

// UpdateLogItemInput holds the new serving size for an item.
type UpdateLogItemInput struct {
	ID   string `path:"id" doc:"Item ID"`
	Body struct {
		ServingGrams float64 `json:"serving_grams" doc:"New serving size in grams"`
	}
}

// DeleteLogItemInput holds the item ID to delete.
type DeleteLogItemInput struct {
	ID string `path:"id" doc:"Item ID"`
}

// === Handlers ===

func (s *Server) handleGetDay(ctx context.Context, input *DateInput) (*DayOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	day, err := s.services.Day.GetDay(ctx, userID, input.Date)
	if err != nil {
		return nil, err
	}

	return &DayOutput{Body: *day}, nil
}

func (s *Server) handleAddLogItem(ctx context.Context, input *AddLogItemInput) (*ItemOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	product, err := s.services.Food.GetProduct(ctx, input.Body.Barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domainerrors.NotFound("product not found")
	}

	item, err := s.services.Day.AddItem(ctx, userID, input.Date, product, input.Body.ServingGrams, input.Body.Quantity, input.Body.MealType)
	if err != nil {
		return nil, err
	}

	return &ItemOutput{Body: *item}, nil
}

func (s *Server) handleUpdateLogItem(ctx context.Context, input *UpdateLogItemInput) (*ItemOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	item, err := s.services.Day.UpdateItemServing(ctx, userID, input.ID, input.Body.ServingGrams)
	if err != nil {
		return nil, err
	}

	return &ItemOutput{Body: *item}, nil
}

func (s *Server) handleDeleteLogItem(ctx context.Context, input *DeleteLogItemInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Day.DeleteItem(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "item deleted"}}, nil
}
