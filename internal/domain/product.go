package domain

import "time"

// UnknownProductName is the display name used when the source payload
// carries no product name at all.
const UnknownProductName = "Unknown Product"

// DefaultFreshnessWindow is how long a cached product stays fresh before a
// lookup goes back to the remote API.
const DefaultFreshnessWindow = 7 * 24 * time.Hour

// Nutriments holds nutrient values for a product. When attached to a Product
// the values are per 100 grams; when returned by a serving calculation they
// are absolute for that serving. All eight fields are always present and
// zero-filled regardless of how sparse the source data was.
type Nutriments struct {
	EnergyKcal    float64 `json:"energy_kcal"`
	Proteins      float64 `json:"proteins"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	Sugars        float64 `json:"sugars"`
	Sodium        float64 `json:"sodium"`
	Salt          float64 `json:"salt"`
}

// Product is the canonical, post-normalization food product record.
type Product struct {
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	Brand           string     `json:"brand,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	Nutriments      Nutriments `json:"nutriments"`
	ServingSize     string     `json:"serving_size,omitempty"`
	ServingQuantity float64    `json:"serving_quantity,omitempty"`
	Categories      string     `json:"categories,omitempty"`
	Labels          string     `json:"labels,omitempty"`
	NutriscoreGrade string     `json:"nutriscore_grade,omitempty"`
	NovaGroup       int        `json:"nova_group,omitempty"`

	// FetchedAt is set at normalization time and drives cache freshness.
	FetchedAt time.Time `json:"fetched_at"`
}

// IsFresh reports whether the product's cached data is still within the
// freshness window at the given instant. A zero FetchedAt is always stale,
// and the exact window boundary counts as stale.
func (p *Product) IsFresh(now time.Time, window time.Duration) bool {
	if p == nil || p.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(p.FetchedAt) < window
}
