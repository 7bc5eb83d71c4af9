package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// registerProxyRoutes mounts the verbatim Open Food Facts proxy. These
// routes return upstream JSON untouched so browser clients see exactly what
// OFF returns, and their error shape is the bare {"error": ...} object
// rather than the API envelope.
func (s *Server) registerProxyRoutes() {
	s.router.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.proxyRateLimiter, s.logger))
		r.Get("/search-products", s.handleSearchProductsProxy)
		r.Get("/get-product", s.handleGetProductProxy)
	})
}

func (s *Server) handleSearchProductsProxy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeProxyError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	page := parseIntParam(r, "page", 1)
	pageSize := parseIntParam(r, "pageSize", 24)

	body, err := s.off.RawSearch(r.Context(), query, page, pageSize)
	if err != nil {
		s.logger.Error("search proxy upstream failure", "query", query, "error", err)
		writeProxyError(w, http.StatusBadGateway, "upstream search failed")
		return
	}

	writeProxyJSON(w, body)
}

func (s *Server) handleGetProductProxy(w http.ResponseWriter, r *http.Request) {
	barcode := r.URL.Query().Get("barcode")
	if barcode == "" {
		writeProxyError(w, http.StatusBadRequest, "barcode parameter is required")
		return
	}

	// RawProduct maps an upstream 404 to {"status":0,"product":null}, so a
	// missing barcode is still a 200 here.
	body, err := s.off.RawProduct(r.Context(), barcode)
	if err != nil {
		s.logger.Error("product proxy upstream failure", "barcode", barcode, "error", err)
		writeProxyError(w, http.StatusBadGateway, "upstream lookup failed")
		return
	}

	writeProxyJSON(w, body)
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func writeProxyJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeProxyError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.MarshalWrite(w, map[string]string{"error": message})
}
