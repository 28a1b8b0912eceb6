package models

import "time"

type ScreenStatus string

const (
	ScreenStatusActive      ScreenStatus = "active"
	ScreenStatusInactive    ScreenStatus = "inactive"
	ScreenStatusMaintenance ScreenStatus = "maintenance"
)

type ScreenType string

const (
	ScreenTypeMall    ScreenType = "mall"
	ScreenTypeGym     ScreenType = "gym"
	ScreenTypeTaxi    ScreenType = "taxi"
	ScreenTypeHighway ScreenType = "highway"
	ScreenTypeOther   ScreenType = "other"
)

type Screen struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name" validate:"required"`
	OwnerID             string       `json:"owner_id"`
	ScreenType          ScreenType   `json:"screen_type" validate:"required,oneof=mall gym taxi highway other"`
	City                string       `json:"city" validate:"required"`
	Country             string       `json:"country" validate:"required"`
	ResolutionWidth     int          `json:"resolution_width" validate:"required,gt=0"`
	ResolutionHeight    int          `json:"resolution_height" validate:"required,gt=0"`
	OperatingHoursStart string       `json:"operating_hours_start,omitempty"`
	OperatingHoursEnd   string       `json:"operating_hours_end,omitempty"`
	Status              ScreenStatus `json:"status"`
	IsOnline            bool         `json:"is_online"`
	LastHeartbeat       *time.Time   `json:"last_heartbeat,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// OnlineAt reports whether the screen should be considered online at the
// given instant: the stored heartbeat must be newer than the threshold.
// Offline detection is a judgment made by readers of the stored state,
// never written back by the device itself.
func (s *Screen) OnlineAt(now time.Time, threshold time.Duration) bool {
	if s.LastHeartbeat == nil {
		return false
	}
	return now.Sub(*s.LastHeartbeat) <= threshold
}

type CreateScreenRequest struct {
	Name                string     `json:"name" validate:"required"`
	ScreenType          ScreenType `json:"screen_type" validate:"required,oneof=mall gym taxi highway other"`
	City                string     `json:"city" validate:"required"`
	Country             string     `json:"country" validate:"required"`
	ResolutionWidth     int        `json:"resolution_width" validate:"required,gt=0"`
	ResolutionHeight    int        `json:"resolution_height" validate:"required,gt=0"`
	OperatingHoursStart string     `json:"operating_hours_start,omitempty"`
	OperatingHoursEnd   string     `json:"operating_hours_end,omitempty"`
}

type UpdateScreenRequest struct {
	Name                *string     `json:"name,omitempty" validate:"omitempty,min=1"`
	ScreenType          *ScreenType `json:"screen_type,omitempty" validate:"omitempty,oneof=mall gym taxi highway other"`
	City                *string     `json:"city,omitempty" validate:"omitempty,min=1"`
	Country             *string     `json:"country,omitempty" validate:"omitempty,min=1"`
	ResolutionWidth     *int        `json:"resolution_width,omitempty" validate:"omitempty,gt=0"`
	ResolutionHeight    *int        `json:"resolution_height,omitempty" validate:"omitempty,gt=0"`
	OperatingHoursStart *string     `json:"operating_hours_start,omitempty"`
	OperatingHoursEnd   *string     `json:"operating_hours_end,omitempty"`
	Status              *string     `json:"status,omitempty" validate:"omitempty,oneof=active inactive maintenance"`
}

// ScreenHealth is the fleet-health read model: the stored screen plus the
// online judgment derived from its last heartbeat.
type ScreenHealth struct {
	Screen
	Online bool `json:"online"`
}
