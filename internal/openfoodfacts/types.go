package openfoodfacts

import "github.com/nutritrackapp/nutritrack-server/internal/domain"

// SearchResult is a normalized page of search results. Count is the
// server-reported total across all pages and is authoritative for
// pagination; it may exceed len(Products) for any single page.
type SearchResult struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// searchResponse is the raw search payload from /cgi/search.pl.
type searchResponse struct {
	Count    int          `json:"count"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Products []rawProduct `json:"products"`
}

// productResponse is the raw payload from /api/v2/product/{barcode}.
// status == 0 or a missing product both denote not-found.
type productResponse struct {
	Status  int         `json:"status"`
	Product *rawProduct `json:"product"`
}

// rawProduct mirrors the subset of the OFF product payload we consume.
// Several fields are duck-typed upstream (numbers arrive as numbers or
// strings, nutriment keys vary), so those are decoded loosely and coerced
// during normalization.
type rawProduct struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	ProductNameEn   string         `json:"product_name_en"`
	Brands          string         `json:"brands"`
	ImageURL        string         `json:"image_url"`
	ImageFrontURL   string         `json:"image_front_url"`
	Nutriments      map[string]any `json:"nutriments"`
	ServingSize     string         `json:"serving_size"`
	ServingQuantity any            `json:"serving_quantity"`
	Categories      string         `json:"categories"`
	Labels          string         `json:"labels"`
	NutriscoreGrade string         `json:"nutriscore_grade"`
	NovaGroup       any            `json:"nova_group"`
}

// searchFields is the field list requested from the search endpoint, kept
// to exactly what normalization consumes.
const searchFields = "code,product_name,product_name_en,brands,image_url,image_front_url," +
	"nutriments,serving_size,serving_quantity,categories,labels,nutriscore_grade,nova_group"
