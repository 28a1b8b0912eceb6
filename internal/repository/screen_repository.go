package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"signage/internal/interfaces"
	"signage/internal/models"
)

type screenRepository struct {
	db *sql.DB
}

func NewScreenRepository(db *sql.DB) interfaces.ScreenRepository {
	return &screenRepository{db: db}
}

const screenColumns = `
	id, name, owner_id, screen_type, city, country,
	resolution_width, resolution_height,
	operating_hours_start, operating_hours_end,
	status, is_online, last_heartbeat, created_at, updated_at
`

func scanScreen(row interface{ Scan(...any) error }) (*models.Screen, error) {
	var s models.Screen
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.OwnerID,
		&s.ScreenType,
		&s.City,
		&s.Country,
		&s.ResolutionWidth,
		&s.ResolutionHeight,
		&s.OperatingHoursStart,
		&s.OperatingHoursEnd,
		&s.Status,
		&s.IsOnline,
		&s.LastHeartbeat,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *screenRepository) Create(ctx context.Context, screen *models.Screen) error {
	query := `
		INSERT INTO screens (
			name, owner_id, screen_type, city, country,
			resolution_width, resolution_height,
			operating_hours_start, operating_hours_end, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		screen.Name,
		screen.OwnerID,
		screen.ScreenType,
		screen.City,
		screen.Country,
		screen.ResolutionWidth,
		screen.ResolutionHeight,
		screen.OperatingHoursStart,
		screen.OperatingHoursEnd,
		screen.Status,
	).Scan(&screen.ID, &screen.CreatedAt, &screen.UpdatedAt)
}

func (r *screenRepository) GetByID(ctx context.Context, id string) (*models.Screen, error) {
	query := `SELECT ` + screenColumns + ` FROM screens WHERE id = $1`

	screen, err := scanScreen(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return screen, nil
}

// List retrieves screens matching the provided filter
func (r *screenRepository) List(ctx context.Context, filter interfaces.ScreenFilter) ([]*models.Screen, error) {
	query := `SELECT ` + screenColumns + ` FROM screens WHERE 1=1`

	var args []interface{}
	var whereClauses []string
	argPos := 1

	if filter.OwnerID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("owner_id = $%d", argPos))
		args = append(args, filter.OwnerID)
		argPos++
	}

	if filter.City != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("city = $%d", argPos))
		args = append(args, filter.City)
		argPos++
	}

	if filter.ScreenType != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("screen_type = $%d", argPos))
		args = append(args, filter.ScreenType)
		argPos++
	}

	if filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	if len(whereClauses) > 0 {
		query += " AND " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY created_at DESC"

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

	var screens []*models.Screen
	for rows.Next() {
		screen, err := scanScreen(rows)
		if err != nil {
			return nil, err
		}
		screens = append(screens, screen)
	}

	return screens, rows.Err()
}

// Update rewrites the owner-editable columns of a screen. Heartbeat columns
// are deliberately excluded; RecordHeartbeat owns those.
func (r *screenRepository) Update(ctx context.Context, id string, screen *models.Screen) error {
	query := `
		UPDATE screens
		SET name = $1,
			screen_type = $2,
			city = $3,
			country = $4,
			resolution_width = $5,
			resolution_height = $6,
			operating_hours_start = $7,
			operating_hours_end = $8,
			status = $9,
			updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $10
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		screen.Name,
		screen.ScreenType,
		screen.City,
		screen.Country,
		screen.ResolutionWidth,
		screen.ResolutionHeight,
		screen.OperatingHoursStart,
		screen.OperatingHoursEnd,
		screen.Status,
		id,
	).Scan(&screen.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("failed to update screen: %w", err)
	}

	return nil
}

// Delete removes a screen by ID. A screen still referenced by approval
// records is protected by an FK RESTRICT constraint; that case surfaces as
// an interfaces.DeletionBlockedError.
func (r *screenRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM screens WHERE id = $1", id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			var count int64
			_ = r.db.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM approvals WHERE screen_id = $1", id,
			).Scan(&count)
			return &interfaces.DeletionBlockedError{
				Resource:   "screen",
				References: map[string]int64{"approvals": count},
			}
		}
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

// RecordHeartbeat stamps the liveness columns in a single statement so the
// write is atomic per record and touches nothing an owner can edit.
func (r *screenRepository) RecordHeartbeat(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE screens
		SET is_online = TRUE,
			last_heartbeat = $2
		WHERE id = $1
	`, id, at)
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
