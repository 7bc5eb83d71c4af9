package openfoodfacts

import (
	"strconv"
	"time"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
)

// nutrimentField maps a canonical nutriment to its ordered list of source
// key candidates, evaluated first-match-wins. OFF payloads carry per-100g
// values under "<key>_100g" with a bare "<key>" fallback.
type nutrimentField struct {
	candidates []string
	assign     func(n *domain.Nutriments, v float64)
}

var nutrimentFields = []nutrimentField{
	{[]string{"energy-kcal_100g", "energy-kcal"}, func(n *domain.Nutriments, v float64) { n.EnergyKcal = v }},
	{[]string{"proteins_100g", "proteins"}, func(n *domain.Nutriments, v float64) { n.Proteins = v }},
	{[]string{"carbohydrates_100g", "carbohydrates"}, func(n *domain.Nutriments, v float64) { n.Carbohydrates = v }},
	{[]string{"fat_100g", "fat"}, func(n *domain.Nutriments, v float64) { n.Fat = v }},
	{[]string{"fiber_100g", "fiber"}, func(n *domain.Nutriments, v float64) { n.Fiber = v }},
	{[]string{"sugars_100g", "sugars"}, func(n *domain.Nutriments, v float64) { n.Sugars = v }},
	{[]string{"sodium_100g", "sodium"}, func(n *domain.Nutriments, v float64) { n.Sodium = v }},
	{[]string{"salt_100g", "salt"}, func(n *domain.Nutriments, v float64) { n.Salt = v }},
}

// normalizeProduct converts a raw OFF payload into the canonical Product.
// Returns nil when the payload lacks a product code; that is the sole
// validity gate, missing names or nutriments only trigger defaulting.
func normalizeProduct(raw *rawProduct) *domain.Product {
	if raw == nil || raw.Code == "" {
		return nil
	}

	name := raw.ProductName
	if name == "" {
		name = raw.ProductNameEn
	}
	if name == "" {
		name = domain.UnknownProductName
	}

	imageURL := raw.ImageURL
	if imageURL == "" {
		imageURL = raw.ImageFrontURL
	}

	var nutriments domain.Nutriments
	for _, field := range nutrimentFields {
		field.assign(&nutriments, pickNutriment(raw.Nutriments, field.candidates))
	}

	return &domain.Product{
		Code:            raw.Code,
		Name:            name,
		Brand:           raw.Brands,
		ImageURL:        imageURL,
		Nutriments:      nutriments,
		ServingSize:     raw.ServingSize,
		ServingQuantity: coerceFloat(raw.ServingQuantity),
		Categories:      raw.Categories,
		Labels:          raw.Labels,
		NutriscoreGrade: raw.NutriscoreGrade,
		NovaGroup:       int(coerceFloat(raw.NovaGroup)),
		FetchedAt:       time.Now().UTC(),
	}
}

// pickNutriment returns the first candidate key present in the raw
// nutriments map with a usable numeric value, or 0. Negative source values
// clamp to 0 so nutriment mappings stay non-negative.
func pickNutriment(raw map[string]any, candidates []string) float64 {
	for _, key := range candidates {
		v, ok := raw[key]
		if !ok {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		if f < 0 {
			return 0
		}
		return f
	}
	return 0
}

// coerceFloat converts a duck-typed payload value to float64, returning 0
// when absent or unparseable.
func coerceFloat(v any) float64 {
	f, _ := toFloat(v)
	return f
}

// toFloat converts JSON-decoded values to float64. OFF serves numbers both
// as JSON numbers and as numeric strings.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
