package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"signage/internal/interfaces"
	"signage/internal/models"
)

type creativeRepository struct {
	db *sql.DB
}

func NewCreativeRepository(db *sql.DB) interfaces.CreativeRepository {
	return &creativeRepository{db: db}
}

func (r *creativeRepository) Create(ctx context.Context, creative *models.Creative) error {
	query := `
		INSERT INTO creatives (
			name, advertiser_id, type, url, width, height, size,
			duration_seconds, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, uploaded_at, updated_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		creative.Name,
		creative.AdvertiserID,
		creative.Type,
		creative.URL,
		creative.Width,
		creative.Height,
		creative.Size,
		creative.DurationSeconds,
		creative.Status,
	).Scan(&creative.ID, &creative.UploadedAt, &creative.UpdatedAt)
}

func (r *creativeRepository) GetByID(ctx context.Context, id string) (*models.Creative, error) {
	query := `
		SELECT id, name, advertiser_id, type, url, width, height, size,
			duration_seconds, status, rejection_reason, uploaded_at, updated_at
		FROM creatives
		WHERE id = $1
	`

	var c models.Creative
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.AdvertiserID,
		&c.Type,
		&c.URL,
		&c.Width,
		&c.Height,
		&c.Size,
		&c.DurationSeconds,
		&c.Status,
		&c.RejectionReason,
		&c.UploadedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &c, nil
}

func (r *creativeRepository) ListByAdvertiser(ctx context.Context, advertiserID string) ([]*models.Creative, error) {
	query := `
		SELECT id, name, advertiser_id, type, url, width, height, size,
			duration_seconds, status, rejection_reason, uploaded_at, updated_at
		FROM creatives
		WHERE advertiser_id = $1
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, advertiserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creatives []*models.Creative
	for rows.Next() {
		var c models.Creative
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.AdvertiserID,
			&c.Type,
			&c.URL,
			&c.Width,
			&c.Height,
			&c.Size,
			&c.DurationSeconds,
			&c.Status,
			&c.RejectionReason,
			&c.UploadedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		creatives = append(creatives, &c)
	}

	return creatives, rows.Err()
}

// Update applies the non-nil fields of the request to a creative.
func (r *creativeRepository) Update(ctx context.Context, id string, req *models.UpdateCreativeRequest) error {
	var setClauses []string
	var args []interface{}
	argPos := 1

	addSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Type != nil {
		addSet("type", *req.Type)
	}
	if req.URL != nil {
		addSet("url", *req.URL)
	}
	if req.Width != nil {
		addSet("width", *req.Width)
	}
	if req.Height != nil {
		addSet("height", *req.Height)
	}
	if req.Size != nil {
		addSet("size", *req.Size)
	}
	if req.DurationSeconds != nil {
		addSet("duration_seconds", *req.DurationSeconds)
	}
	if req.Status != nil {
		addSet("status", *req.Status)
	}
	if req.RejectionReason != nil {
		addSet("rejection_reason", *req.RejectionReason)
	}

	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, "updated_at = NOW() AT TIME ZONE 'UTC'")
	query := fmt.Sprintf(
		"UPDATE creatives SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "),
		argPos,
	)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
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

func (r *creativeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM creatives WHERE id = $1", id)
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
