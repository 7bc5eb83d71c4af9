package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
	"github.com/nutritrackapp/nutritrack-server/internal/service"
)

func TestSearchFoods(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")
	authz := "Authorization: Bearer " + user.AccessToken

	resp := ts.api.Get("/api/v1/foods/search?q=nutella", authz)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	sess := decodeBody[service.SearchSession](t, resp)
	assert.Equal(t, "nutella", sess.Query)
	require.Len(t, sess.Results, 2)
	assert.Equal(t, "3017620422003", sess.Results[0].Code)
	assert.Equal(t, 2, sess.TotalCount)
	assert.False(t, sess.HasMore)
}

func TestSearchFoods_EmptyQueryResets(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")
	authz := "Authorization: Bearer " + user.AccessToken

	resp := ts.api.Get("/api/v1/foods/search?q=nutella", authz)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/foods/search", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	sess := decodeBody[service.SearchSession](t, resp)
	assert.Empty(t, sess.Results)
	assert.Empty(t, sess.Query)
}

func TestGetFood(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")
	authz := "Authorization: Bearer " + user.AccessToken

	resp := ts.api.Get("/api/v1/foods/3017620422003", authz)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	product := decodeBody[domain.Product](t, resp)
	assert.Equal(t, "3017620422003", product.Code)
	assert.Equal(t, "Nutella", product.Name)
	assert.Equal(t, "Ferrero", product.Brand)
	assert.InDelta(t, 539, product.Nutriments.EnergyKcal, 1e-9)
}

func TestGetFood_NotFound(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")

	resp := ts.api.Get("/api/v1/foods/0000000000000", "Authorization: Bearer "+user.AccessToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFoodNutrients(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")
	authz := "Authorization: Bearer " + user.AccessToken

	resp := ts.api.Post("/api/v1/foods/3017620422003/nutrients", authz, map[string]any{
		"grams": 15,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decodeBody[NutrientsResponse](t, resp)
	assert.Equal(t, "3017620422003", body.Barcode)
	assert.InDelta(t, 15, body.Grams, 1e-9)
	assert.InDelta(t, 80.85, body.Nutrients.EnergyKcal, 1e-9)
	assert.InDelta(t, 0.95, body.Nutrients.Proteins, 1e-9)
}

func TestFoodNutrients_BadGrams(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")

	resp := ts.api.Post("/api/v1/foods/3017620422003/nutrients",
		"Authorization: Bearer "+user.AccessToken,
		map[string]any{"grams": 0},
	)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCacheStats(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")
	authz := "Authorization: Bearer " + user.AccessToken

	resp := ts.api.Get("/api/v1/foods/cache/stats", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	stats := decodeBody[CacheStatsResponse](t, resp)
	assert.Zero(t, stats.Total)
	assert.Equal(t, "0%", stats.HitRate)

	// A lookup goes upstream and registers a miss.
	resp = ts.api.Get("/api/v1/foods/3017620422003", authz)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/foods/cache/stats", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	stats = decodeBody[CacheStatsResponse](t, resp)
	assert.Equal(t, uint64(1), stats.Misses)
}
