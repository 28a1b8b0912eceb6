package models

import "time"

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

type Campaign struct {
	ID                string         `json:"id"`
	Name              string         `json:"name" validate:"required"`
	Status            CampaignStatus `json:"status"`
	AdvertiserID      string         `json:"advertiser_id"`
	CreativeID        string         `json:"creative_id" validate:"required,uuid4"`
	StartDate         time.Time      `json:"start_date" validate:"required"`
	EndDate           time.Time      `json:"end_date" validate:"required,gtfield=StartDate"`
	Budget            float64        `json:"budget"`
	TargetScreenTypes []string       `json:"target_screen_types"`
	TargetCities      []string       `json:"target_cities"`
	TimePreferences   []string       `json:"time_preferences"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// RunsAt reports whether the campaign's date range covers the given instant.
func (c *Campaign) RunsAt(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// Targets reports whether the campaign's targeting rules match the screen.
// An empty targeting set is a wildcard and matches every screen.
func (c *Campaign) Targets(screen *Screen) bool {
	if len(c.TargetScreenTypes) > 0 && !containsString(c.TargetScreenTypes, string(screen.ScreenType)) {
		return false
	}
	if len(c.TargetCities) > 0 && !containsString(c.TargetCities, screen.City) {
		return false
	}
	return true
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

type CreateCampaignRequest struct {
	Name              string    `json:"name" validate:"required"`
	CreativeID        string    `json:"creative_id" validate:"required,uuid4"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	EndDate           time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	Budget            float64   `json:"budget" validate:"omitempty,gt=0"`
	TargetScreenTypes []string  `json:"target_screen_types"`
	TargetCities      []string  `json:"target_cities"`
	TimePreferences   []string  `json:"time_preferences"`
}

type UpdateCampaignRequest struct {
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=1"`
	Status            *string    `json:"status,omitempty" validate:"omitempty,oneof=draft active paused completed"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	Budget            *float64   `json:"budget,omitempty" validate:"omitempty,gt=0"`
	TargetScreenTypes *[]string  `json:"target_screen_types,omitempty"`
	TargetCities      *[]string  `json:"target_cities,omitempty"`
	TimePreferences   *[]string  `json:"time_preferences,omitempty"`
}
