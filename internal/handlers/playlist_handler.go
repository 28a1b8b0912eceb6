package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"signage/internal/playlist"
)

type PlaylistHandler struct {
	resolver *playlist.Resolver
}

func NewPlaylistHandler(resolver *playlist.Resolver) *PlaylistHandler {
	return &PlaylistHandler{resolver: resolver}
}

// GetPlaylist handles GET /api/v1/screens/{id}/playlist: the device-facing
// resolution endpoint. An empty item list is a normal response, not an
// error; devices poll this to pick up newly approved content.
// @Tags Screens
// @Summary Resolve the current playlist for a screen
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Playlist
// @Router /api/v1/screens/{id}/playlist [get]
func (h *PlaylistHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Screen ID is required")
		return
	}

	pl, err := h.resolver.Resolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Screen not found")
			return
		}
		log.Println("Playlist resolution failed for screen", id, ":", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "resolve_failed", "Failed to resolve playlist")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(pl)
}
