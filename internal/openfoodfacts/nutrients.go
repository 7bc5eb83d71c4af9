package openfoodfacts

import (
	"math"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
)

// CalculateNutrients scales a product's per-100g nutriment values to the
// given serving size in grams. Pure function: no network or side effects.
// For a nil product or grams <= 0 it returns the all-zero mapping with all
// eight fields present. Scaled values round to 2 decimals, half away from
// zero (math.Round semantics), not banker's rounding.
func CalculateNutrients(p *domain.Product, grams float64) domain.Nutriments {
	if p == nil || grams <= 0 {
		return domain.Nutriments{}
	}

	multiplier := grams / 100

	return domain.Nutriments{
		EnergyKcal:    roundServing(p.Nutriments.EnergyKcal * multiplier),
		Proteins:      roundServing(p.Nutriments.Proteins * multiplier),
		Carbohydrates: roundServing(p.Nutriments.Carbohydrates * multiplier),
		Fat:           roundServing(p.Nutriments.Fat * multiplier),
		Fiber:         roundServing(p.Nutriments.Fiber * multiplier),
		Sugars:        roundServing(p.Nutriments.Sugars * multiplier),
		Sodium:        roundServing(p.Nutriments.Sodium * multiplier),
		Salt:          roundServing(p.Nutriments.Salt * multiplier),
	}
}

func roundServing(v float64) float64 {
	return math.Round(v*100) / 100
}
