package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"signage/internal/interfaces"
	"signage/internal/models"
)

type approvalRepository struct {
	db *sql.DB
}

func NewApprovalRepository(db *sql.DB) interfaces.ApprovalRepository {
	return &approvalRepository{db: db}
}

// Propose inserts a pending approval for the (screen, creative) pair, or
// returns the existing record when the pair was proposed before. Uniqueness
// is held by the DB constraint, so concurrent proposals cannot duplicate.
func (r *approvalRepository) Propose(ctx context.Context, screenID, creativeID string) (*models.Approval, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO approvals (screen_id, creative_id, status)
		VALUES ($1, $2, 'pending')
		ON CONFLICT (screen_id, creative_id) DO NOTHING
	`, screenID, creativeID)
	if err != nil {
		return nil, err
	}

	return r.GetForPair(ctx, screenID, creativeID)
}

func (r *approvalRepository) GetByID(ctx context.Context, id string) (*models.Approval, error) {
	query := `
		SELECT id, screen_id, creative_id, status, decided_at, created_at
		FROM approvals
		WHERE id = $1
	`
	return r.scanApproval(r.db.QueryRowContext(ctx, query, id))
}

func (r *approvalRepository) GetForPair(ctx context.Context, screenID, creativeID string) (*models.Approval, error) {
	query := `
		SELECT id, screen_id, creative_id, status, decided_at, created_at
		FROM approvals
		WHERE screen_id = $1 AND creative_id = $2
	`
	return r.scanApproval(r.db.QueryRowContext(ctx, query, screenID, creativeID))
}

func (r *approvalRepository) scanApproval(row *sql.Row) (*models.Approval, error) {
	var a models.Approval
	err := row.Scan(&a.ID, &a.ScreenID, &a.CreativeID, &a.Status, &a.DecidedAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &a, nil
}

// ListByOwner returns the approvals for every screen the owner holds, with
// the screen and creative names joined in for display.
func (r *approvalRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.ApprovalWithContext, error) {
	query := `
		SELECT a.id, a.screen_id, a.creative_id, a.status, a.decided_at, a.created_at,
			s.name, c.name, c.url, c.type
		FROM approvals a
		JOIN screens s ON s.id = a.screen_id
		JOIN creatives c ON c.id = a.creative_id
		WHERE s.owner_id = $1
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []*models.ApprovalWithContext
	for rows.Next() {
		var a models.ApprovalWithContext
		err := rows.Scan(
			&a.ID,
			&a.ScreenID,
			&a.CreativeID,
			&a.Status,
			&a.DecidedAt,
			&a.CreatedAt,
			&a.ScreenName,
			&a.CreativeName,
			&a.CreativeURL,
			&a.CreativeType,
		)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, &a)
	}

	return approvals, rows.Err()
}

// Decide moves a pending record to approved or rejected and stamps the
// decision time. The status guard in the WHERE clause makes the transition
// single-shot: deciding a non-pending record updates nothing and returns
// interfaces.ErrApprovalDecided.
func (r *approvalRepository) Decide(ctx context.Context, id string, status models.ApprovalStatus, decidedAt time.Time) (*models.Approval, error) {
	query := `
		UPDATE approvals
		SET status = $2, decided_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING id, screen_id, creative_id, status, decided_at, created_at
	`

	approval, err := r.scanApproval(r.db.QueryRowContext(ctx, query, id, status, decidedAt))
	if err == nil {
		return approval, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Nothing updated: either the record is missing or it was already
	// decided. Look it up to tell the two apart.
	if _, lookupErr := r.GetByID(ctx, id); lookupErr != nil {
		return nil, lookupErr
	}
	return nil, interfaces.ErrApprovalDecided
}
