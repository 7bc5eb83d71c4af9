package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
	"github.com/nutritrackapp/nutritrack-server/internal/service"
)

func TestGetDay_Empty(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")

	resp := ts.api.Get("/api/v1/log/2026-08-30", "Authorization: Bearer "+user.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	day := decodeBody[service.Day](t, resp)
	require.NotNil(t, day.Entry)
	assert.Equal(t, "2026-08-30", day.Entry.Date)
	assert.Empty(t, day.Items)
	assert.Zero(t, day.Totals.Kcal)
	assert.Equal(t, "2026-08-29", day.PrevDate)
	assert.Equal(t, "2026-08-31", day.NextDate)
}

func TestGetDay_BadDate(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")

	resp := ts.api.Get("/api/v1/log/not-a-date", "Authorization: Bearer "+user.AccessToken)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAddLogItem(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")
	authz := "Authorization: Bearer " + user.AccessToken

	resp := ts.api.Post("/api/v1/log/2026-08-30/items", authz, map[string]any{
		"barcode":       "3017620422003",
		"serving_grams": 15,
		"meal_type":     "breakfast",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	item := decodeBody[domain.EntryItem](t, resp)
	assert.Equal(t, "3017620422003", item.ProductCode)
	assert.Equal(t, "Nutella", item.Label)
	assert.InDelta(t, 80.85, item.Kcal, 1e-9)
	assert.InDelta(t, 6.42, item.SodiumMg, 1e-9)
	assert.Equal(t, float64(1), item.Quantity)

	resp = ts.api.Get("/api/v1/log/2026-08-30", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	day := decodeBody[service.Day](t, resp)
	require.Len(t, day.Items, 1)
	assert.InDelta(t, 80.9, day.Totals.Kcal, 1e-9)
}

func TestAddLogItem_UnknownBarcode(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")

	resp := ts.api.Post("/api/v1/log/2026-08-30/items",
		"Authorization: Bearer "+user.AccessToken,
		map[string]any{"barcode": "0000000000000", "serving_grams": 100},
	)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateLogItem(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")
	authz := "Authorization: Bearer " + user.AccessToken

	resp := ts.api.Post("/api/v1/log/2026-08-30/items", authz, map[string]any{
		"barcode":       "3017620422003",
		"serving_grams": 15,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	item := decodeBody[domain.EntryItem](t, resp)

	resp = ts.api.Patch("/api/v1/log/items/"+item.ID, authz, map[string]any{
		"serving_grams": 30,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	updated := decodeBody[domain.EntryItem](t, resp)
	assert.InDelta(t, 30, updated.ServingGrams, 1e-9)
	assert.InDelta(t, 161.7, updated.Kcal, 1e-9)
}

func TestDeleteLogItem(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createTestUser(t, "anna@example.com")
	authz := "Authorization: Bearer " + user.AccessToken

	resp := ts.api.Post("/api/v1/log/2026-08-30/items", authz, map[string]any{
		"barcode":       "3017620422003",
		"serving_grams": 15,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	item := decodeBody[domain.EntryItem](t, resp)

	resp = ts.api.Delete("/api/v1/log/items/"+item.ID, authz)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/log/items/"+item.ID, authz)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestLogItemOwnership(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.createTestUser(t, "anna@example.com")
	other := ts.createTestUser(t, "ben@example.com")

	resp := ts.api.Post("/api/v1/log/2026-08-30/items",
		"Authorization: Bearer "+owner.AccessToken,
		map[string]any{"barcode": "3017620422003", "serving_grams": 15},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	item := decodeBody[domain.EntryItem](t, resp)

	// Another user's item looks like it does not exist.
	resp = ts.api.Patch("/api/v1/log/items/"+item.ID,
		"Authorization: Bearer "+other.AccessToken,
		map[string]any{"serving_grams": 30},
	)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/log/items/"+item.ID, "Authorization: Bearer "+other.AccessToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
