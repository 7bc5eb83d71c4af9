package openfoodfacts

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const searchPath = "/cgi/search.pl"

// Search searches products by text query against the OFF search endpoint.
// The query is trimmed; an empty or whitespace-only query fails with
// ErrEmptyQuery. Records without a product code are dropped during
// normalization, so the returned page may be shorter than the raw payload.
func (c *Client) Search(ctx context.Context, query string, page, pageSize int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, wrapError("search", "", ErrEmptyQuery)
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	body, err := c.RawSearch(ctx, query, page, pageSize)
	if err != nil {
		return nil, wrapError("search", "", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", "", fmt.Errorf("parse response: %w", err))
	}

	result := &SearchResult{
		Count:    resp.Count,
		Page:     resp.Page,
		PageSize: resp.PageSize,
	}
	if result.Page == 0 {
		result.Page = page
	}
	if result.PageSize == 0 {
		result.PageSize = pageSize
	}

	for i := range resp.Products {
		if p := normalizeProduct(&resp.Products[i]); p != nil {
			result.Products = append(result.Products, *p)
		}
	}

	c.logger.Debug("openfoodfacts search results",
		"query", query,
		"page", result.Page,
		"count", result.Count,
		"returned", len(result.Products),
	)

	return result, nil
}

// RawSearch performs a search request and returns the upstream JSON body
// untouched. Used by the proxy endpoint, which forwards OFF responses
// verbatim.
func (c *Client) RawSearch(ctx context.Context, query string, page, pageSize int) ([]byte, error) {
	params := url.Values{}
	params.Set("search_terms", strings.TrimSpace(query))
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("json", "1")
	params.Set("fields", searchFields)

	return c.doRequest(ctx, searchPath, params)
}
