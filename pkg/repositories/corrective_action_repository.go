package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prepline/prepline-engine/pkg/apperrors"
	"github.com/prepline/prepline-engine/pkg/database"
	"github.com/prepline/prepline-engine/pkg/models"
)

// CorrectiveActionRepository provides data access for corrective action
// records. Actions are never deleted; the only mutation is pending -> completed.
type CorrectiveActionRepository interface {
	Create(ctx context.Context, action *models.CorrectiveAction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CorrectiveAction, error)
	ListByCheck(ctx context.Context, checkID uuid.UUID) ([]*models.CorrectiveAction, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

type correctiveActionRepository struct {
	db *database.DB
}

// NewCorrectiveActionRepository creates a new CorrectiveActionRepository.
func NewCorrectiveActionRepository(db *database.DB) CorrectiveActionRepository {
	return &correctiveActionRepository{db: db}
}

var _ CorrectiveActionRepository = (*correctiveActionRepository)(nil)

const actionColumns = `id, ccp_check_id, ccp_id, ccp_name, action_type, action_description,
       initiated_by_id, initiated_by_name, initiated_at, photo_url, notes, status, requires_recheck`

func (r *correctiveActionRepository) Create(ctx context.Context, action *models.CorrectiveAction) error {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	if action.InitiatedAt.IsZero() {
		action.InitiatedAt = time.Now()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO corrective_actions (
			id, ccp_check_id, ccp_id, ccp_name, action_type, action_description,
			initiated_by_id, initiated_by_name, initiated_at, photo_url, notes,
			status, requires_recheck
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		action.ID,
		action.CCPCheckID,
		action.CCPID,
		action.CCPName,
		action.ActionType,
		action.Description,
		action.InitiatedByID,
		action.InitiatedBy,
		action.InitiatedAt,
		action.PhotoURL,
		action.Notes,
		action.Status,
		action.RequiresRecheck,
	)
	if err != nil {
		return fmt.Errorf("failed to create corrective action: %w", err)
	}

	return nil
}

func (r *correctiveActionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CorrectiveAction, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+actionColumns+`
		FROM corrective_actions
		WHERE id = $1`, id)

	action, err := scanCorrectiveAction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return action, nil
}

func (r *correctiveActionRepository) ListByCheck(ctx context.Context, checkID uuid.UUID) ([]*models.CorrectiveAction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+actionColumns+`
		FROM corrective_actions
		WHERE ccp_check_id = $1
		ORDER BY initiated_at`, checkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrective actions: %w", err)
	}
	defer rows.Close()

	var actions []*models.CorrectiveAction
	for rows.Next() {
		action, err := scanCorrectiveAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corrective actions: %w", err)
	}

	return actions, nil
}

func (r *correctiveActionRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE corrective_actions
		SET status = $2
		WHERE id = $1`, id, models.ActionStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to complete corrective action: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanCorrectiveAction(row pgx.Row) (*models.CorrectiveAction, error) {
	var action models.CorrectiveAction

	err := row.Scan(
		&action.ID,
		&action.CCPCheckID,
		&action.CCPID,
		&action.CCPName,
		&action.ActionType,
		&action.Description,
		&action.InitiatedByID,
		&action.InitiatedBy,
		&action.InitiatedAt,
		&action.PhotoURL,
		&action.Notes,
		&action.Status,
		&action.RequiresRecheck,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan corrective action: %w", err)
	}

	return &action, nil
}
