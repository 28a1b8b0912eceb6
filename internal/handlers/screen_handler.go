package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"signage/internal/heartbeat"
	"signage/internal/interfaces"
	"signage/internal/middleware"
	"signage/internal/models"
)

type ScreenHandler struct {
	repo              interfaces.ScreenRepository
	validator         *validator.Validate
	heartbeatInterval time.Duration
}

func NewScreenHandler(repo interfaces.ScreenRepository, heartbeatInterval time.Duration) *ScreenHandler {
	if heartbeatInterval <= 0 {
		heartbeatInterval = heartbeat.DefaultInterval
	}
	return &ScreenHandler{
		repo:              repo,
		validator:         validator.New(),
		heartbeatInterval: heartbeatInterval,
	}
}

// CreateScreen handles POST /api/v1/screens
// @Tags Screens
// @Summary Register a screen
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} models.Screen
// @Router /api/v1/screens [post]
func (h *ScreenHandler) CreateScreen(w http.ResponseWriter, r *http.Request) {
	var req models.CreateScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	screen := &models.Screen{
		Name:                req.Name,
		OwnerID:             middleware.UserID(r.Context()),
		ScreenType:          req.ScreenType,
		City:                req.City,
		Country:             req.Country,
		ResolutionWidth:     req.ResolutionWidth,
		ResolutionHeight:    req.ResolutionHeight,
		OperatingHoursStart: req.OperatingHoursStart,
		OperatingHoursEnd:   req.OperatingHoursEnd,
		Status:              models.ScreenStatusActive,
	}

	if err := h.repo.Create(r.Context(), screen); err != nil {
		log.Println("Failed to create screen:", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "create_screen_failed", "Failed to create screen")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(screen)
}

// GetScreen handles GET /api/v1/screens/{id}
func (h *ScreenHandler) GetScreen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Screen ID is required")
		return
	}

	screen, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Screen not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "get_screen_failed", "Failed to fetch screen")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(screen)
}

// ListScreens handles GET /api/v1/screens, scoped to the caller's screens.
func (h *ScreenHandler) ListScreens(w http.ResponseWriter, r *http.Request) {
	filter := interfaces.ScreenFilter{
		OwnerID: middleware.UserID(r.Context()),
		Limit:   100,
	}

	screens, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_screens_failed", "Failed to list screens")
		return
	}

	if screens == nil {
		screens = []*models.Screen{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"screens": screens})
}

// UpdateScreen handles PUT /api/v1/screens/{id}
func (h *ScreenHandler) UpdateScreen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Screen ID is required")
		return
	}

	var req models.UpdateScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	screen, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Screen not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_screen_failed", "Failed to fetch screen")
		return
	}

	if screen.OwnerID != middleware.UserID(r.Context()) {
		writeJSONErrorResponse(w, http.StatusForbidden, "not_owner", "Only the screen owner may update it")
		return
	}

	if req.Name != nil {
		screen.Name = *req.Name
	}
	if req.ScreenType != nil {
		screen.ScreenType = *req.ScreenType
	}
	if req.City != nil {
		screen.City = *req.City
	}
	if req.Country != nil {
		screen.Country = *req.Country
	}
	if req.ResolutionWidth != nil {
		screen.ResolutionWidth = *req.ResolutionWidth
	}
	if req.ResolutionHeight != nil {
		screen.ResolutionHeight = *req.ResolutionHeight
	}
	if req.OperatingHoursStart != nil {
		screen.OperatingHoursStart = *req.OperatingHoursStart
	}
	if req.OperatingHoursEnd != nil {
		screen.OperatingHoursEnd = *req.OperatingHoursEnd
	}
	if req.Status != nil {
		screen.Status = models.ScreenStatus(*req.Status)
	}

	if err := h.repo.Update(r.Context(), id, screen); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_screen_failed", "Failed to update screen")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(screen)
}

// DeleteScreen handles DELETE /api/v1/screens/{id}
func (h *ScreenHandler) DeleteScreen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Screen ID is required")
		return
	}

	screen, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Screen not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_screen_failed", "Failed to fetch screen")
		return
	}
	if screen.OwnerID != middleware.UserID(r.Context()) {
		writeJSONErrorResponse(w, http.StatusForbidden, "not_owner", "Only the screen owner may delete it")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		var blocked *interfaces.DeletionBlockedError
		if errors.As(err, &blocked) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":      "deletion_blocked",
				"message":    "Screen is still referenced by approval records",
				"references": blocked.References,
			})
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_screen_failed", "Failed to delete screen")
		return
	}

	writeJSONMessage(w, http.StatusOK, "Screen deleted")
}

type heartbeatRequest struct {
	At *time.Time `json:"at,omitempty"`
}

// Heartbeat handles POST /api/v1/screens/{id}/heartbeat. It stamps the
// liveness columns and nothing else; the device may supply its own
// timestamp, otherwise the server clock is used.
// @Tags Screens
// @Summary Record a device liveness update
// @Security BearerAuth
// @Accept json
// @Success 204
// @Router /api/v1/screens/{id}/heartbeat [post]
func (h *ScreenHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Screen ID is required")
		return
	}

	var req heartbeatRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	at := time.Now().UTC()
	if req.At != nil {
		at = req.At.UTC()
	}

	if err := h.repo.RecordHeartbeat(r.Context(), id, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Screen not found")
			return
		}
		log.Println("Failed to record heartbeat for screen", id, ":", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "heartbeat_failed", "Failed to record heartbeat")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FleetHealth handles GET /api/v1/fleet/health. The online judgment is
// derived here, by the reader, from last_heartbeat staleness.
// @Tags Fleet
// @Summary Fleet-wide screen health
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/fleet/health [get]
func (h *ScreenHandler) FleetHealth(w http.ResponseWriter, r *http.Request) {
	screens, err := h.repo.List(r.Context(), interfaces.ScreenFilter{})
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fleet_health_failed", "Failed to list screens")
		return
	}

	now := time.Now().UTC()
	threshold := heartbeat.OfflineThreshold(h.heartbeatInterval)

	health := make([]models.ScreenHealth, 0, len(screens))
	for _, screen := range screens {
		health = append(health, models.ScreenHealth{
			Screen: *screen,
			Online: screen.OnlineAt(now, threshold),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"screens":           health,
		"offline_threshold": threshold.String(),
	})
}
