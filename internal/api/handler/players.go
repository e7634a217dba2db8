package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gridline/fantasy-data/internal/api/respond"
	"github.com/gridline/fantasy-data/internal/cache"
	"github.com/gridline/fantasy-data/internal/store"
)

// GetPlayers lists every assembled player record for a season.
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("players:%d", season)
	if data, etag, hit := h.cache.Get(cacheKey); hit {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLPlayers, true)
		return
	}

	players, err := h.store.GetPlayers(season)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "STORE_ERROR", "failed to read players", err.Error())
		return
	}
	if players == nil {
		players = []store.PlayerRecord{}
	}

	data, err := json.Marshal(map[string]interface{}{
		"season":  season,
		"count":   len(players),
		"players": players,
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_ERROR", "failed to encode players")
		return
	}

	etag := h.cache.Set(cacheKey, data, cache.TTLPlayers)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, cache.TTLPlayers, false)
}

// GetPlayer returns one assembled player record.
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}
	playerID := chi.URLParam(r, "playerID")

	player, err := h.store.GetPlayer(playerID, season)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "PLAYER_NOT_FOUND",
				fmt.Sprintf("no player %s stored for season %d", playerID, season))
			return
		}
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "STORE_ERROR", "failed to read player", err.Error())
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, player)
}

// GetSeasons lists seasons with stored data, newest first.
func (h *Handler) GetSeasons(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "seasons"
	if data, etag, hit := h.cache.Get(cacheKey); hit {
		respond.WriteJSON(w, data, etag, cache.TTLSeasons, true)
		return
	}

	seasons, err := h.store.Seasons()
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "STORE_ERROR", "failed to read seasons", err.Error())
		return
	}
	if seasons == nil {
		seasons = []int{}
	}

	data, err := json.Marshal(map[string]interface{}{"seasons": seasons})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_ERROR", "failed to encode seasons")
		return
	}

	etag := h.cache.Set(cacheKey, data, cache.TTLSeasons)
	respond.WriteJSON(w, data, etag, cache.TTLSeasons, false)
}
