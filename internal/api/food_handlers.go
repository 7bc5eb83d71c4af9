package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
	domainerrors "github.com/nutritrackapp/nutritrack-server/internal/errors"
	"github.com/nutritrackapp/nutritrack-server/internal/openfoodfacts"
	"github.com/nutritrackapp/nutritrack-server/internal/service"
)

func (s *Server) registerFoodRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchFoods",
		Method:      http.MethodGet,
		Path:        "/api/v1/foods/search",
		Summary:     "Search foods",
		Description: "Runs a live product search and returns the accumulated search session",
		Tags:        []string{"Foods"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchFoods)

	huma.Register(s.api, huma.Operation{
		OperationID: "loadMoreFoods",
		Method:      http.MethodPost,
		Path:        "/api/v1/foods/search/more",
		Summary:     "Load more results",
		Description: "Fetches the next page of the current search and appends it",
		Tags:        []string{"Foods"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLoadMoreFoods)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFood",
		Method:      http.MethodGet,
		Path:        "/api/v1/foods/{barcode}",
		Summary:     "Look up a product by barcode",
		Description: "Returns the product, served from the local cache when fresh",
		Tags:        []string{"Foods"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFood)

	huma.Register(s.api, huma.Operation{
		OperationID: "foodNutrients",
		Method:      http.MethodPost,
		Path:        "/api/v1/foods/{barcode}/nutrients",
		Summary:     "Scale nutrients to a serving",
		Description: "Returns the product's nutrients scaled to the given serving size",
		Tags:        []string{"Foods"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFoodNutrients)

	huma.Register(s.api, huma.Operation{
		OperationID: "cacheStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/foods/cache/stats",
		Summary:     "Product cache statistics",
		Tags:        []string{"Foods"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCacheStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCache",
		Method:      http.MethodGet,
		Path:        "/api/v1/foods/cache/search",
		Summary:     "Search cached products",
		Description: "Searches the local product cache by name or brand, for offline use",
		Tags:        []string{"Foods"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchCache)
}

// === DTOs ===

// SearchFoodsInput holds query parameters for a food search.
type SearchFoodsInput struct {
	Q        string `query:"q" doc:"Search text"`
	Page     int    `query:"page" doc:"Page number (1-based)"`
	PageSize int    `query:"pageSize" doc:"Results per page"`
	Append   bool   `query:"append" doc:"Append this page to the current result set"`
}

// SearchSessionOutput wraps the search session for Huma.
type SearchSessionOutput struct {
	Body service.SearchSession
}

// BarcodeInput holds a barcode path parameter.
type BarcodeInput struct {
	Barcode string `path:"barcode" doc:"Product barcode"`
}

// ProductOutput wraps a product for Huma.
type ProductOutput struct {
	Body domain.Product
}

// NutrientsInput holds the serving size to scale to.
type NutrientsInput struct {
	Barcode string `path:"barcode" doc:"Product barcode"`
	Body    struct {
		Grams float64 `json:"grams" doc:"Serving size in grams"`
	}
}

// NutrientsResponse contains serving-scaled nutrient values.
type NutrientsResponse struct {
	Barcode   string            `json:"barcode" doc:"Product barcode"`
	Grams     float64           `json:"grams" doc:"Serving size in grams"`
	Nutrients domain.Nutriments `json:"nutrients" doc:"Nutrients for this serving"`
}

// NutrientsOutput wraps the nutrients response for Huma.
type NutrientsOutput struct {
	Body NutrientsResponse
}

// CacheStatsResponse contains cache statistics.
type CacheStatsResponse struct {
	Hits     uint64 `json:"hits" doc:"Lookups served from cache"`
	Misses   uint64 `json:"misses" doc:"Lookups that went upstream"`
	Total    uint64 `json:"total" doc:"Total lookups"`
	HitRate  string `json:"hit_rate" doc:"Hit rate as a percentage"`
	Products int    `json:"products" doc:"Products currently cached"`
}

// CacheStatsOutput wraps the cache stats response for Huma.
type CacheStatsOutput struct {
	Body CacheStatsResponse
}

// SearchCacheInput holds query parameters for a cache search.
type SearchCacheInput struct {
	Q     string `query:"q" doc:"Substring to match against name or brand"`
	Limit int    `query:"limit" doc:"Maximum results (default 50)"`
}

// ProductListOutput wraps a product list for Huma.
type ProductListOutput struct {
	Body []*domain.Product
}

// === Handlers ===

func (s *Server) handleSearchFoods(ctx context.Context, input *SearchFoodsInput) (*SearchSessionOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	sess, err := s.services.Food.Search(ctx, input.Q, input.Page, input.PageSize, input.Append)
	if err != nil {
		return nil, err
	}

	return &SearchSessionOutput{Body: *sess}, nil
}

func (s *Server) handleLoadMoreFoods(ctx context.Context, _ *struct{}) (*SearchSessionOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	sess, err := s.services.Food.LoadMore(ctx)
	if err != nil {
		return nil, err
	}

	return &SearchSessionOutput{Body: *sess}, nil
}

func (s *Server) handleGetFood(ctx context.Context, input *BarcodeInput) (*ProductOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	product, err := s.services.Food.GetProduct(ctx, input.Barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domainerrors.NotFound("product not found")
	}

	return &ProductOutput{Body: *product}, nil
}

func (s *Server) handleFoodNutrients(ctx context.Context, input *NutrientsInput) (*NutrientsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	if input.Body.Grams <= 0 {
		return nil, domainerrors.Validation("grams must be positive")
	}

	product, err := s.services.Food.GetProduct(ctx, input.Barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domainerrors.NotFound("product not found")
	}

	return &NutrientsOutput{
		Body: NutrientsResponse{
			Barcode:   product.Code,
			Grams:     input.Body.Grams,
			Nutrients: openfoodfacts.CalculateNutrients(product, input.Body.Grams),
		},
	}, nil
}

func (s *Server) handleCacheStats(ctx context.Context, _ *struct{}) (*CacheStatsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	stats := s.services.Food.Stats()
	count, err := s.store.CountCachedProducts(ctx)
	if err != nil {
		return nil, err
	}

	return &CacheStatsOutput{
		Body: CacheStatsResponse{
			Hits:     stats.Hits,
			Misses:   stats.Misses,
			Total:    stats.Total,
			HitRate:  stats.HitRate,
			Products: count,
		},
	}, nil
}

func (s *Server) handleSearchCache(ctx context.Context, input *SearchCacheInput) (*ProductListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	products, err := s.services.Food.SearchCache(ctx, input.Q, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ProductListOutput{Body: products}, nil
}
