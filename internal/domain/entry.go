package domain

import (
	"math"
	"time"
)

// Entry is a user's food log for a single calendar date. Entries are created
// lazily on first access to a date and own zero or more EntryItems.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
}

// EntryItem is one logged food item. Product fields are denormalized
// snapshots taken at insertion time and are intentionally never re-synced
// with later changes to the cached product. Nutrient values are absolute for
// the logged serving, not per 100g. Sodium is stored in milligrams.
type EntryItem struct {
	ID           string    `json:"id"`
	EntryID      string    `json:"entry_id"`
	ProductCode  string    `json:"product_code"`
	Label        string    `json:"label"`
	Brand        string    `json:"brand,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	ServingGrams float64   `json:"serving_grams"`
	Quantity     float64   `json:"quantity"`
	Kcal         float64   `json:"kcal"`
	ProteinG     float64   `json:"protein_g"`
	CarbG        float64   `json:"carb_g"`
	FatG         float64   `json:"fat_g"`
	FiberG       float64   `json:"fiber_g"`
	SugarG       float64   `json:"sugar_g"`
	SodiumMg     float64   `json:"sodium_mg"`
	MealType     string    `json:"meal_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RescaleServing replaces the item's serving size and rescales every nutrient
// field proportionally, rounding each to 2 decimals.
func (i *EntryItem) RescaleServing(newGrams float64) {
	if i.ServingGrams <= 0 {
		i.ServingGrams = newGrams
		return
	}
	multiplier := newGrams / i.ServingGrams
	i.ServingGrams = newGrams
	i.Kcal = round2(i.Kcal * multiplier)
	i.ProteinG = round2(i.ProteinG * multiplier)
	i.CarbG = round2(i.CarbG * multiplier)
	i.FatG = round2(i.FatG * multiplier)
	i.FiberG = round2(i.FiberG * multiplier)
	i.SugarG = round2(i.SugarG * multiplier)
	i.SodiumMg = round2(i.SodiumMg * multiplier)
}

// Totals holds summed nutrient values for a day, each rounded to 1 decimal.
type Totals struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbG    float64 `json:"carb_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMg float64 `json:"sodium_mg"`
}

// SumItems computes daily totals across the given items.
func SumItems(items []*EntryItem) Totals {
	var t Totals
	for _, item := range items {
		t.Kcal += item.Kcal
		t.ProteinG += item.ProteinG
		t.CarbG += item.CarbG
		t.FatG += item.FatG
		t.FiberG += item.FiberG
		t.SugarG += item.SugarG
		t.SodiumMg += item.SodiumMg
	}
	t.Kcal = round1(t.Kcal)
	t.ProteinG = round1(t.ProteinG)
	t.CarbG = round1(t.CarbG)
	t.FatG = round1(t.FatG)
	t.FiberG = round1(t.FiberG)
	t.SugarG = round1(t.SugarG)
	t.SodiumMg = round1(t.SodiumMg)
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
