package openfoodfacts

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
)

const productPath = "/api/v2/product/"

// GetProduct looks up a product by barcode. Not-found is reported as a nil
// product with a nil error, whether the upstream signals it via HTTP 404 or
// via status=0 / absent product in the payload; callers must check for nil
// explicitly. An empty barcode fails with ErrEmptyBarcode.
func (c *Client) GetProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, wrapError("getProduct", "", ErrEmptyBarcode)
	}

	body, err := c.doRequest(ctx, productPath+barcode, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, wrapError("getProduct", barcode, err)
	}

	var resp productResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("getProduct", barcode, fmt.Errorf("parse response: %w", err))
	}

	if resp.Status == 0 || resp.Product == nil {
		return nil, nil
	}

	product := normalizeProduct(resp.Product)
	if product == nil {
		// Upstream served a record with no code; treat as absent.
		return nil, nil
	}

	return product, nil
}

// RawProduct performs a barcode lookup and returns the upstream JSON body
// untouched, for verbatim proxying. An upstream 404 is mapped to the same
// {"status":0,"product":null} shape the API uses for in-payload not-found,
// so proxy consumers see a single not-found signal.
func (c *Client) RawProduct(ctx context.Context, barcode string) ([]byte, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, wrapError("getProduct", "", ErrEmptyBarcode)
	}

	body, err := c.doRequest(ctx, productPath+barcode, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []byte(`{"status":0,"product":null}`), nil
		}
		return nil, wrapError("getProduct", barcode, err)
	}

	return body, nil
}
