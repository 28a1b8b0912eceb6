package models

import "time"

type CreativeType string

const (
	CreativeTypeImage CreativeType = "image"
	CreativeTypeVideo CreativeType = "video"
)

type CreativeStatus string

const (
	CreativeStatusPending  CreativeStatus = "pending"
	CreativeStatusApproved CreativeStatus = "approved"
	CreativeStatusRejected CreativeStatus = "rejected"
)

type Creative struct {
	ID              string         `json:"id"`
	Name            string         `json:"name" validate:"required"`
	AdvertiserID    string         `json:"advertiser_id"`
	Type            CreativeType   `json:"type" validate:"required,oneof=image video"`
	URL             string         `json:"url"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	Size            int64          `json:"size"`
	DurationSeconds float64        `json:"duration_seconds,omitempty"` // videos only
	Status          CreativeStatus `json:"status"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	UploadedAt      time.Time      `json:"uploaded_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type CreateCreativeRequest struct {
	Name            string       `json:"name" validate:"required"`
	Type            CreativeType `json:"type" validate:"required,oneof=image video"`
	Width           int          `json:"width" validate:"omitempty,gt=0"`
	Height          int          `json:"height" validate:"omitempty,gt=0"`
	DurationSeconds float64      `json:"duration_seconds" validate:"omitempty,gt=0"`
}

type UpdateCreativeRequest struct {
	Name            *string       `json:"name,omitempty" validate:"omitempty,min=1"`
	Type            *CreativeType `json:"type,omitempty" validate:"omitempty,oneof=image video"`
	URL             *string       `json:"url,omitempty"`
	Width           *int          `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height          *int          `json:"height,omitempty" validate:"omitempty,gt=0"`
	Size            *int64        `json:"size,omitempty"`
	DurationSeconds *float64      `json:"duration_seconds,omitempty" validate:"omitempty,gt=0"`
	// Status and RejectionReason are set by the approval workflow, never
	// directly by the advertiser.
	Status          *CreativeStatus `json:"-"`
	RejectionReason *string         `json:"-"`
}
