// Package service implements the application services of the NutriTrack
// server: search and cache orchestration, daily log aggregation, and
// authentication.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
	domainerrors "github.com/nutritrackapp/nutritrack-server/internal/errors"
	"github.com/nutritrackapp/nutritrack-server/internal/openfoodfacts"
	"github.com/nutritrackapp/nutritrack-server/internal/store"
)

// ProductClient is the remote food API surface the orchestrator consumes.
// *openfoodfacts.Client satisfies it.
type ProductClient interface {
	Search(ctx context.Context, query string, page, pageSize int) (*openfoodfacts.SearchResult, error)
	GetProduct(ctx context.Context, barcode string) (*domain.Product, error)
}

// SearchSession is a snapshot of the orchestrator's search state, safe for
// handlers to read after the mutex is released.
type SearchSession struct {
	Query       string           `json:"query"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
	TotalCount  int              `json:"total_count"`
	Results     []domain.Product `json:"results"`
	HasMore     bool             `json:"has_more"`
	Searching   bool             `json:"searching"`
	LoadingMore bool             `json:"loading_more"`
	SearchErr   string           `json:"search_error,omitempty"`
	Product     *domain.Product  `json:"product,omitempty"`
	ProductErr  string           `json:"product_error,omitempty"`
}

// CacheStats reports cache effectiveness for barcode lookups.
type CacheStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Total   uint64 `json:"total"`
	HitRate string `json:"hit_rate"`
}

// FoodService orchestrates product search and barcode lookup between the
// remote API and the local cache. Search always goes to the network; barcode
// lookups are served from the cache while the entry is fresh.
//
// All mutable session state lives behind a single mutex. Network calls run
// with the mutex released; each foreground request takes a sequence token
// and a completion that is no longer the latest is discarded without
// touching state, so a slow earlier response can never clobber a newer one.
type FoodService struct {
	client ProductClient
	store  store.Store
	logger *slog.Logger
	window time.Duration

	now func() time.Time

	mu          sync.Mutex
	query       string
	page        int
	pageSize    int
	totalCount  int
	results     []domain.Product
	hasMore     bool
	searching   bool
	loadingMore bool
	searchErr   string
	product     *domain.Product
	productErr  string
	searchSeq   uint64
	productSeq  uint64
	hits        uint64
	misses      uint64
}

// NewFoodService creates the search and cache orchestrator. A freshness
// window <= 0 falls back to domain.DefaultFreshnessWindow.
func NewFoodService(client ProductClient, st store.Store, window time.Duration, logger *slog.Logger) *FoodService {
	if window <= 0 {
		window = domain.DefaultFreshnessWindow
	}
	return &FoodService{
		client: client,
		store:  st,
		logger: logger,
		window: window,
		now:    time.Now,
	}
}

// Search runs a text search against the remote API and updates the session.
// An empty or whitespace-only query resets the search state and returns the
// idle session. With append true, new results accumulate after the existing
// ones; otherwise they replace them.
func (s *FoodService) Search(ctx context.Context, query string, page, pageSize int, appendPage bool) (*SearchSession, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.mu.Lock()
		s.searchSeq++
		s.resetSearchLocked()
		snap := s.sessionLocked()
		s.mu.Unlock()
		return snap, nil
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 24
	}

	s.mu.Lock()
	s.searchSeq++
	token := s.searchSeq
	s.query = query
	s.searchErr = ""
	if appendPage {
		s.loadingMore = true
	} else {
		s.searching = true
		s.results = nil
		s.page = page
		s.hasMore = false
	}
	s.mu.Unlock()

	result, err := s.client.Search(ctx, query, page, pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.searchSeq {
		// A newer request started while this one was in flight; its result
		// wins and this completion must not touch shared state.
		if err != nil {
			return s.sessionLocked(), domainerrors.Wrap(err, domainerrors.CodeUpstream, "search products")
		}
		return s.sessionLocked(), nil
	}

	s.searching = false
	s.loadingMore = false

	if err != nil {
		s.searchErr = "search failed"
		if !appendPage {
			s.results = nil
			s.totalCount = 0
			s.hasMore = false
		}
		return s.sessionLocked(), domainerrors.Wrap(err, domainerrors.CodeUpstream, "search products")
	}

	if appendPage {
		s.results = append(s.results, result.Products...)
	} else {
		s.results = result.Products
	}
	s.page = result.Page
	s.pageSize = result.PageSize
	s.totalCount = result.Count
	s.hasMore = s.totalCount > 0 && len(s.results) < s.totalCount

	s.cacheAsync(ctx, result.Products)

	return s.sessionLocked(), nil
}

// LoadMore fetches the next page of the current search and appends it.
// It is a no-op while idle, while another page load is in flight, or when
// the server total says everything is already loaded.
func (s *FoodService) LoadMore(ctx context.Context) (*SearchSession, error) {
	s.mu.Lock()
	if s.query == "" || s.loadingMore || !s.hasMore {
		snap := s.sessionLocked()
		s.mu.Unlock()
		return snap, nil
	}
	query := s.query
	page := s.page + 1
	pageSize := s.pageSize
	s.mu.Unlock()

	return s.Search(ctx, query, page, pageSize, true)
}

// GetProduct looks up a product by barcode, cache first. A fresh cached
// entry is returned without touching the network. Not-found is a nil
// product with a nil error. Store read failures degrade to a cache miss.
func (s *FoodService) GetProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, domainerrors.Validation("barcode is required")
	}

	s.mu.Lock()
	s.productSeq++
	token := s.productSeq
	s.productErr = ""
	s.mu.Unlock()

	cached, err := s.store.GetCachedProduct(ctx, barcode)
	if err != nil && !isNotFound(err) {
		s.logger.Warn("product cache read failed", "barcode", barcode, "error", err)
		cached = nil
	}

	if cached != nil && cached.IsFresh(s.now(), s.window) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.hits++
		if token == s.productSeq {
			s.product = cached
		}
		return cached, nil
	}

	s.mu.Lock()
	s.misses++
	s.mu.Unlock()

	product, err := s.client.GetProduct(ctx, barcode)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.productSeq {
		// Superseded by a newer lookup; report this request's own outcome
		// without touching shared state.
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeUpstream, "get product")
		}
		return product, nil
	}

	if err != nil {
		s.productErr = "product lookup failed"
		return nil, domainerrors.Wrap(err, domainerrors.CodeUpstream, "get product")
	}

	if product == nil {
		// Not found upstream. A stale cached row is left in place so the
		// next lookup can still try the network again.
		s.product = nil
		s.productErr = "product not found"
		return nil, nil
	}

	s.product = product
	s.cacheAsync(ctx, []domain.Product{*product})

	return product, nil
}

// SearchCache searches the local cache only, for degraded or offline listing.
func (s *FoodService) SearchCache(ctx context.Context, query string, limit int) ([]*domain.Product, error) {
	return s.store.SearchCachedProducts(ctx, query, limit)
}

// Stats returns lookup cache counters. The hit rate carries one decimal,
// "0%" before the first lookup.
func (s *FoodService) Stats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.hits + s.misses
	rate := "0%"
	if total > 0 {
		rate = fmt.Sprintf("%.1f%%", float64(s.hits)/float64(total)*100)
	}
	return CacheStats{
		Hits:    s.hits,
		Misses:  s.misses,
		Total:   total,
		HitRate: rate,
	}
}

// ClearSearch resets the search portion of the session.
func (s *FoodService) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchSeq++
	s.resetSearchLocked()
}

// ClearProduct resets the current product portion of the session.
func (s *FoodService) ClearProduct() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productSeq++
	s.product = nil
	s.productErr = ""
}

// Session returns a snapshot of the current search session.
func (s *FoodService) Session() *SearchSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked()
}

func (s *FoodService) resetSearchLocked() {
	s.query = ""
	s.page = 0
	s.pageSize = 0
	s.totalCount = 0
	s.results = nil
	s.hasMore = false
	s.searching = false
	s.loadingMore = false
	s.searchErr = ""
}

// sessionLocked builds a snapshot. Callers must hold s.mu.
func (s *FoodService) sessionLocked() *SearchSession {
	results := make([]domain.Product, len(s.results))
	copy(results, s.results)

	return &SearchSession{
		Query:       s.query,
		Page:        s.page,
		PageSize:    s.pageSize,
		TotalCount:  s.totalCount,
		Results:     results,
		HasMore:     s.hasMore,
		Searching:   s.searching,
		LoadingMore: s.loadingMore,
		SearchErr:   s.searchErr,
		Product:     s.product,
		ProductErr:  s.productErr,
	}
}

// cacheAsync persists products in the background. The write must not block
// or fail the foreground request, so it runs detached from the request
// context and failures are only logged.
func (s *FoodService) cacheAsync(ctx context.Context, products []domain.Product) {
	if len(products) == 0 {
		return
	}

	batch := make([]*domain.Product, 0, len(products))
	for i := range products {
		p := products[i]
		batch = append(batch, &p)
	}

	bgCtx := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bgCtx, 10*time.Second)
		defer cancel()
		if err := s.store.UpsertProducts(ctx, batch); err != nil {
			s.logger.Warn("background cache write failed",
				"products", len(batch),
				"error", err,
			)
		}
	}()
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
