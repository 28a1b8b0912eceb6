package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"signage/internal/interfaces"
	"signage/internal/models"
)

type campaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) interfaces.CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	screenTypes := campaign.TargetScreenTypes
	if screenTypes == nil {
		screenTypes = []string{}
	}
	cities := campaign.TargetCities
	if cities == nil {
		cities = []string{}
	}
	timePrefs := campaign.TimePreferences
	if timePrefs == nil {
		timePrefs = []string{}
	}

	query := `
		INSERT INTO campaigns (
			name, status, advertiser_id, creative_id, start_date, end_date,
			budget, target_screen_types, target_cities, time_preferences
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		campaign.Name,
		campaign.Status,
		campaign.AdvertiserID,
		campaign.CreativeID,
		campaign.StartDate,
		campaign.EndDate,
		campaign.Budget,
		pq.Array(screenTypes),
		pq.Array(cities),
		pq.Array(timePrefs),
	).Scan(&campaign.ID, &campaign.CreatedAt, &campaign.UpdatedAt)
}

func (r *campaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := `
		SELECT
			id, name, status, advertiser_id, creative_id, start_date, end_date,
			budget, target_screen_types, target_cities, time_preferences,
			created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`

	var campaign models.Campaign
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Status,
		&campaign.AdvertiserID,
		&campaign.CreativeID,
		&campaign.StartDate,
		&campaign.EndDate,
		&campaign.Budget,
		pq.Array(&campaign.TargetScreenTypes),
		pq.Array(&campaign.TargetCities),
		pq.Array(&campaign.TimePreferences),
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}

	return &campaign, nil
}

// List retrieves a list of campaigns based on the provided filter. Results
// are ordered oldest-first by creation time with campaign id as tiebreaker,
// which is the stable order playlist resolution depends on.
func (r *campaignRepository) List(ctx context.Context, filter interfaces.CampaignFilter) ([]*models.Campaign, error) {
	query := `
		SELECT
			id, name, status, advertiser_id, creative_id, start_date, end_date,
			budget, target_screen_types, target_cities, time_preferences,
			created_at, updated_at
		FROM campaigns
		WHERE 1=1
	`

	var args []interface{}
	var whereClauses []string
	argPos := 1

	if filter.AdvertiserID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("advertiser_id = $%d", argPos))
		args = append(args, filter.AdvertiserID)
		argPos++
	}

	if filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	if filter.CreativeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("creative_id = $%d", argPos))
		args = append(args, filter.CreativeID)
		argPos++
	}

	if !filter.RunningAt.IsZero() {
		whereClauses = append(whereClauses, fmt.Sprintf("start_date <= $%d AND end_date >= $%d", argPos, argPos))
		args = append(args, filter.RunningAt)
		argPos++
	}

	if len(whereClauses) > 0 {
		query += " AND " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY created_at ASC, id ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		var campaign models.Campaign
		err := rows.Scan(
			&campaign.ID,
			&campaign.Name,
			&campaign.Status,
			&campaign.AdvertiserID,
			&campaign.CreativeID,
			&campaign.StartDate,
			&campaign.EndDate,
			&campaign.Budget,
			pq.Array(&campaign.TargetScreenTypes),
			pq.Array(&campaign.TargetCities),
			pq.Array(&campaign.TimePreferences),
			&campaign.CreatedAt,
			&campaign.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, &campaign)
	}

	return campaigns, rows.Err()
}

// Update updates a campaign with the given ID
func (r *campaignRepository) Update(ctx context.Context, id string, campaign *models.Campaign) error {
	screenTypes := campaign.TargetScreenTypes
	if screenTypes == nil {
		screenTypes = []string{}
	}
	cities := campaign.TargetCities
	if cities == nil {
		cities = []string{}
	}
	timePrefs := campaign.TimePreferences
	if timePrefs == nil {
		timePrefs = []string{}
	}

	query := `
		UPDATE campaigns
		SET name = $1,
			status = $2,
			start_date = $3,
			end_date = $4,
			budget = $5,
			target_screen_types = $6,
			target_cities = $7,
			time_preferences = $8,
			updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $9
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		campaign.Name,
		campaign.Status,
		campaign.StartDate,
		campaign.EndDate,
		campaign.Budget,
		pq.Array(screenTypes),
		pq.Array(cities),
		pq.Array(timePrefs),
		id,
	).Scan(&campaign.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("failed to update campaign: %w", err)
	}

	return nil
}

// Delete removes a campaign by ID
func (r *campaignRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM campaigns WHERE id = $1", id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
