package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"signage/internal/interfaces"
	"signage/internal/middleware"
	"signage/internal/models"
)

type CampaignHandler struct {
	repo      interfaces.CampaignRepository
	validator *validator.Validate
}

func NewCampaignHandler(repo interfaces.CampaignRepository) *CampaignHandler {
	return &CampaignHandler{
		repo:      repo,
		validator: validator.New(),
	}
}

// CreateCampaign handles POST /api/v1/campaigns. New campaigns always start
// as drafts; going active is a separate, explicit status change.
// @Tags Campaigns
// @Summary Create a campaign
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} models.Campaign
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	campaign := &models.Campaign{
		Name:              req.Name,
		Status:            models.CampaignStatusDraft,
		AdvertiserID:      middleware.UserID(r.Context()),
		CreativeID:        req.CreativeID,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Budget:            req.Budget,
		TargetScreenTypes: req.TargetScreenTypes,
		TargetCities:      req.TargetCities,
		TimePreferences:   req.TimePreferences,
	}

	if err := h.repo.Create(r.Context(), campaign); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_creative_id", "Creative not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "create_campaign_failed", "Failed to create campaign")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(campaign)
}

// GetCampaign handles GET /api/v1/campaigns/{id}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Campaign ID is required")
		return
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "get_campaign_failed", "Failed to fetch campaign")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(campaign)
}

// ListCampaigns handles GET /api/v1/campaigns, scoped to the caller.
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	filter := interfaces.CampaignFilter{
		AdvertiserID: middleware.UserID(r.Context()),
		Limit:        100,
	}

	campaigns, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_campaigns_failed", "Failed to list campaigns")
		return
	}

	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"campaigns": campaigns})
}

// UpdateCampaign handles PUT /api/v1/campaigns/{id}
func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Campaign ID is required")
		return
	}

	var req models.UpdateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_campaign_failed", "Failed to fetch campaign")
		return
	}

	if campaign.AdvertiserID != middleware.UserID(r.Context()) {
		writeJSONErrorResponse(w, http.StatusForbidden, "not_owner", "Only the campaign's advertiser may update it")
		return
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.Status != nil {
		campaign.Status = models.CampaignStatus(*req.Status)
	}
	if req.StartDate != nil {
		campaign.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		campaign.EndDate = *req.EndDate
	}
	if req.Budget != nil {
		campaign.Budget = *req.Budget
	}
	if req.TargetScreenTypes != nil {
		campaign.TargetScreenTypes = *req.TargetScreenTypes
	}
	if req.TargetCities != nil {
		campaign.TargetCities = *req.TargetCities
	}
	if req.TimePreferences != nil {
		campaign.TimePreferences = *req.TimePreferences
	}

	if campaign.EndDate.Before(campaign.StartDate) {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "end_date must be after start_date")
		return
	}

	if err := h.repo.Update(r.Context(), id, campaign); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_campaign_failed", "Failed to update campaign")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(campaign)
}

// DeleteCampaign handles DELETE /api/v1/campaigns/{id}
func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Campaign ID is required")
		return
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_campaign_failed", "Failed to fetch campaign")
		return
	}
	if campaign.AdvertiserID != middleware.UserID(r.Context()) {
		writeJSONErrorResponse(w, http.StatusForbidden, "not_owner", "Only the campaign's advertiser may delete it")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_campaign_failed", "Failed to delete campaign")
		return
	}

	writeJSONMessage(w, http.StatusOK, "Campaign deleted")
}
