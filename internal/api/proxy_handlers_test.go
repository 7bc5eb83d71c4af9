package api

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The proxy endpoints are public and return upstream bytes verbatim, so
// they are exercised straight through the router.
func doProxy(ts *testServer, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func TestSearchProductsProxy(t *testing.T) {
	ts := newTestServer(t)

	rec := doProxy(ts, "/search-products?query=nutella")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testSearchBody, rec.Body.String(), "upstream bytes must pass through untouched")
}

func TestSearchProductsProxy_MissingQuery(t *testing.T) {
	ts := newTestServer(t)

	rec := doProxy(ts, "/search-products")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestGetProductProxy(t *testing.T) {
	ts := newTestServer(t)

	rec := doProxy(ts, "/get-product?barcode=3017620422003")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testProductBody, rec.Body.String())
}

func TestGetProductProxy_NotFoundShape(t *testing.T) {
	ts := newTestServer(t)

	// An upstream 404 still yields a 200 with the original edge shape.
	rec := doProxy(ts, "/get-product?barcode=0000000000000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":0,"product":null}`, rec.Body.String())
}

func TestGetProductProxy_MissingBarcode(t *testing.T) {
	ts := newTestServer(t)

	rec := doProxy(ts, "/get-product")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
