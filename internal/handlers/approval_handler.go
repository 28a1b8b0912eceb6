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
	"github.com/lib/pq"
	"signage/internal/interfaces"
	"signage/internal/middleware"
	"signage/internal/models"
)

type ApprovalHandler struct {
	approvals interfaces.ApprovalRepository
	screens   interfaces.ScreenRepository
	creatives interfaces.CreativeRepository
	validator *validator.Validate
}

func NewApprovalHandler(approvals interfaces.ApprovalRepository, screens interfaces.ScreenRepository, creatives interfaces.CreativeRepository) *ApprovalHandler {
	return &ApprovalHandler{
		approvals: approvals,
		screens:   screens,
		creatives: creatives,
		validator: validator.New(),
	}
}

// ProposeApproval handles POST /api/v1/approvals: an advertiser offers a
// creative to a screen, creating the pending gate the screen owner decides.
// Re-proposing an existing pair returns the existing record untouched.
// @Tags Approvals
// @Summary Propose a creative to a screen
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} models.Approval
// @Router /api/v1/approvals [post]
func (h *ApprovalHandler) ProposeApproval(w http.ResponseWriter, r *http.Request) {
	var req models.ProposeApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	approval, err := h.approvals.Propose(r.Context(), req.ScreenID, req.CreativeID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_reference", "Screen or creative not found")
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_reference", "Screen or creative not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "propose_failed", "Failed to propose approval")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(approval)
}

// ListApprovals handles GET /api/v1/approvals: every approval on the
// caller's screens, newest first.
func (h *ApprovalHandler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	approvals, err := h.approvals.ListByOwner(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_approvals_failed", "Failed to list approvals")
		return
	}

	if approvals == nil {
		approvals = []*models.ApprovalWithContext{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"approvals": approvals})
}

// Approve handles POST /api/v1/approvals/{id}/approve
// @Tags Approvals
// @Summary Approve a pending creative for a screen
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Approval
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/approvals/{id}/approve [post]
func (h *ApprovalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.ApprovalStatusApproved)
}

// Reject handles POST /api/v1/approvals/{id}/reject
// @Tags Approvals
// @Summary Reject a pending creative for a screen
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Approval
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/approvals/{id}/reject [post]
func (h *ApprovalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.ApprovalStatusRejected)
}

type decideRequest struct {
	Reason string `json:"reason,omitempty"`
}

// decide is the single transition of the approval workflow: pending to
// approved or rejected, once, by the owner of the targeted screen. The
// decision is mirrored onto the creative's review status.
func (h *ApprovalHandler) decide(w http.ResponseWriter, r *http.Request, status models.ApprovalStatus) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Approval ID is required")
		return
	}

	approval, err := h.approvals.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Approval not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "decide_failed", "Failed to fetch approval")
		return
	}

	screen, err := h.screens.GetByID(r.Context(), approval.ScreenID)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "decide_failed", "Failed to fetch screen")
		return
	}
	if screen.OwnerID != middleware.UserID(r.Context()) {
		writeJSONErrorResponse(w, http.StatusForbidden, "not_owner", "Only the screen owner may decide this approval")
		return
	}

	var req decideRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
	}

	decided, err := h.approvals.Decide(r.Context(), id, status, time.Now().UTC())
	if err != nil {
		if errors.Is(err, interfaces.ErrApprovalDecided) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":   "already_decided",
				"message": "Approval was already decided",
				"status":  approval.Status,
			})
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Approval not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "decide_failed", "Failed to decide approval")
		return
	}

	update := &models.UpdateCreativeRequest{Status: creativeStatusFor(status)}
	if status == models.ApprovalStatusRejected && req.Reason != "" {
		update.RejectionReason = &req.Reason
	}
	if err := h.creatives.Update(r.Context(), decided.CreativeID, update); err != nil {
		log.Println("Failed to mirror decision onto creative", decided.CreativeID, ":", err)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(decided)
}

func creativeStatusFor(status models.ApprovalStatus) *models.CreativeStatus {
	var cs models.CreativeStatus
	switch status {
	case models.ApprovalStatusApproved:
		cs = models.CreativeStatusApproved
	default:
		cs = models.CreativeStatusRejected
	}
	return &cs
}
