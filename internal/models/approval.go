package models

import "time"

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Approval is the per-(screen, creative) gate a screen owner must set before
// the creative may appear in that screen's playlist. At most one record exists
// per pair; a decided record never returns to pending.
type Approval struct {
	ID         string         `json:"id"`
	ScreenID   string         `json:"screen_id" validate:"required,uuid4"`
	CreativeID string         `json:"creative_id" validate:"required,uuid4"`
	Status     ApprovalStatus `json:"status"`
	DecidedAt  *time.Time     `json:"decided_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type ProposeApprovalRequest struct {
	ScreenID   string `json:"screen_id" validate:"required,uuid4"`
	CreativeID string `json:"creative_id" validate:"required,uuid4"`
}

// ApprovalWithContext joins the names a screen owner needs to decide a
// pending record without extra lookups.
type ApprovalWithContext struct {
	Approval
	ScreenName   string       `json:"screen_name"`
	CreativeName string       `json:"creative_name"`
	CreativeURL  string       `json:"creative_url"`
	CreativeType CreativeType `json:"creative_type"`
}
