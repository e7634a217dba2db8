// Package handler provides HTTP handlers for the read API. Handlers query
// the local store directly; the players listing is cached with ETag support.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gridline/fantasy-data/internal/api/respond"
	"github.com/gridline/fantasy-data/internal/cache"
	"github.com/gridline/fantasy-data/internal/config"
	"github.com/gridline/fantasy-data/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store *store.Store
	cache *cache.Cache
	cfg   *config.Config
}

// New creates a Handler with shared dependencies.
func New(st *store.Store, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{
		store: st,
		cache: c,
		cfg:   cfg,
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Fantasy Data API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": []string{
			"/api/v1/players?season=<year>",
			"/api/v1/players/{playerID}?season=<year>",
			"/api/v1/seasons",
			"/api/v1/export/csv?season=<year>",
		},
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies the database file is reachable.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// seasonParam parses the required season query parameter. Writes a 400 and
// returns ok=false when missing or malformed; season is never inferred.
func seasonParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("season")
	if raw == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_SEASON", "season query parameter is required")
		return 0, false
	}
	season, err := strconv.Atoi(raw)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_SEASON", "season must be a year", raw)
		return 0, false
	}
	return season, true
}
