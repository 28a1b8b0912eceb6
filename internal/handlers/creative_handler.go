package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"signage/internal/config"
	"signage/internal/interfaces"
	"signage/internal/middleware"
	"signage/internal/models"
)

const maxUploadBytes = 200 << 20 // 200 MiB

type CreativeHandler struct {
	repo          interfaces.CreativeRepository
	s3Client      *s3.Client
	bucket        string
	publicBaseURL string
	validator     *validator.Validate
}

func NewCreativeHandler(repo interfaces.CreativeRepository, s3Config *config.S3Config) *CreativeHandler {
	h := &CreativeHandler{
		repo:      repo,
		validator: validator.New(),
	}
	if s3Config != nil {
		h.s3Client = s3Config.Client
		h.bucket = s3Config.Bucket
		h.publicBaseURL = strings.TrimRight(s3Config.PublicBaseURL, "/")
	}
	return h
}

// CreateCreative handles POST /api/v1/creatives: metadata first, media via
// the upload endpoint. New creatives start pending review.
// @Tags Creatives
// @Summary Register a creative
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} models.Creative
// @Router /api/v1/creatives [post]
func (h *CreativeHandler) CreateCreative(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCreativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if req.Type == models.CreativeTypeVideo && req.DurationSeconds <= 0 {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "duration_seconds is required for video creatives")
		return
	}

	creative := &models.Creative{
		Name:            req.Name,
		AdvertiserID:    middleware.UserID(r.Context()),
		Type:            req.Type,
		Width:           req.Width,
		Height:          req.Height,
		DurationSeconds: req.DurationSeconds,
		Status:          models.CreativeStatusPending,
	}

	if err := h.repo.Create(r.Context(), creative); err != nil {
		log.Println("Failed to create creative:", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "create_creative_failed", "Failed to create creative")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(creative)
}

// UploadMedia handles POST /api/v1/creatives/{id}/media. The file lands in
// object storage and the creative's url/size are filled in from the upload.
// @Tags Creatives
// @Summary Upload the media file for a creative
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Success 200 {object} models.Creative
// @Router /api/v1/creatives/{id}/media [post]
func (h *CreativeHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Creative ID is required")
		return
	}
	if h.s3Client == nil || h.bucket == "" {
		writeJSONErrorResponse(w, http.StatusServiceUnavailable, "storage_unavailable", "Media storage is not configured")
		return
	}

	creative, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Creative not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "upload_failed", "Failed to fetch creative")
		return
	}
	if creative.AdvertiserID != middleware.UserID(r.Context()) {
		writeJSONErrorResponse(w, http.StatusForbidden, "not_owner", "Only the creative's advertiser may upload media")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Missing file field")
		return
	}
	defer file.Close()

	key := "creatives/" + uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")

	uploader := manager.NewUploader(h.s3Client)
	_, err = uploader.Upload(r.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Println("S3 upload failed for creative", id, ":", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "upload_failed", "Failed to store media")
		return
	}

	url := h.publicBaseURL + "/" + key
	size := header.Size
	update := &models.UpdateCreativeRequest{
		URL:  &url,
		Size: &size,
	}
	if err := h.repo.Update(r.Context(), id, update); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "upload_failed", "Failed to record media location")
		return
	}

	creative.URL = url
	creative.Size = size
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(creative)
}

// GetCreative handles GET /api/v1/creatives/{id}
func (h *CreativeHandler) GetCreative(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Creative ID is required")
		return
	}

	creative, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Creative not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "get_creative_failed", "Failed to fetch creative")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(creative)
}

// ListCreatives handles GET /api/v1/creatives, scoped to the caller.
func (h *CreativeHandler) ListCreatives(w http.ResponseWriter, r *http.Request) {
	creatives, err := h.repo.ListByAdvertiser(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_creatives_failed", "Failed to list creatives")
		return
	}

	if creatives == nil {
		creatives = []*models.Creative{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"creatives": creatives})
}

// DeleteCreative handles DELETE /api/v1/creatives/{id}
func (h *CreativeHandler) DeleteCreative(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Creative ID is required")
		return
	}

	creative, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Creative not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_creative_failed", "Failed to fetch creative")
		return
	}
	if creative.AdvertiserID != middleware.UserID(r.Context()) {
		writeJSONErrorResponse(w, http.StatusForbidden, "not_owner", "Only the creative's advertiser may delete it")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_creative_failed", "Failed to delete creative")
		return
	}

	writeJSONMessage(w, http.StatusOK, "Creative deleted")
}
