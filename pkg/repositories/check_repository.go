package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prepline/prepline-engine/pkg/apperrors"
	"github.com/prepline/prepline-engine/pkg/database"
	"github.com/prepline/prepline-engine/pkg/models"
)

// CheckRepository provides data access for CCP check records. Check records
// are the root of the audit chain: there is no update or delete.
type CheckRepository interface {
	// Create inserts a new check record. The write is idempotent on the
	// client-generated submission token: a retried submission returns the
	// already-persisted record instead of creating a duplicate.
	Create(ctx context.Context, check *models.CCPCheckRecord) (*models.CCPCheckRecord, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.CCPCheckRecord, error)

	// ListByCCP returns the most recent checks for a CCP, newest first.
	ListByCCP(ctx context.Context, ccpID uuid.UUID, limit int) ([]*models.CCPCheckRecord, error)

	// ListFailedWithoutIncident finds failed checks that have no incident
	// record, for the external reconciliation sweep.
	ListFailedWithoutIncident(ctx context.Context) ([]*models.CCPCheckRecord, error)
}

type checkRepository struct {
	db *database.DB
}

// NewCheckRepository creates a new CheckRepository.
func NewCheckRepository(db *database.DB) CheckRepository {
	return &checkRepository{db: db}
}

var _ CheckRepository = (*checkRepository)(nil)

const checkColumns = `id, submission_token, ccp_id, ccp_name, check_date, check_time,
       recorded_value, unit, critical_limit, status, staff_id, staff_name, staff_email,
       notes, corrective_actions_triggered, blocked_menu_items, created_at`

func (r *checkRepository) Create(ctx context.Context, check *models.CCPCheckRecord) (*models.CCPCheckRecord, error) {
	if check.ID == uuid.Nil {
		check.ID = uuid.New()
	}
	if check.SubmissionToken == uuid.Nil {
		check.SubmissionToken = uuid.New()
	}
	check.CreatedAt = time.Now()

	var actionsJSON, blockedJSON []byte
	var err error
	if len(check.CorrectiveActionsTriggered) > 0 {
		actionsJSON, err = json.Marshal(check.CorrectiveActionsTriggered)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal corrective_actions_triggered: %w", err)
		}
	}
	if len(check.BlockedMenuItems) > 0 {
		blockedJSON, err = json.Marshal(check.BlockedMenuItems)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal blocked_menu_items: %w", err)
		}
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO ccp_checks (
			id, submission_token, ccp_id, ccp_name, check_date, check_time,
			recorded_value, unit, critical_limit, status, staff_id, staff_name,
			staff_email, notes, corrective_actions_triggered, blocked_menu_items, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (submission_token) DO NOTHING`,
		check.ID,
		check.SubmissionToken,
		check.CCPID,
		check.CCPName,
		check.CheckDate,
		check.CheckTime,
		check.RecordedValue,
		check.Unit,
		check.CriticalLimit,
		check.Status,
		check.StaffID,
		check.StaffName,
		check.StaffEmail,
		check.Notes,
		actionsJSON,
		blockedJSON,
		check.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create check record: %w", err)
	}

	// A retried submission hit the token conflict; hand back the original
	// record so the caller sees the same outcome as the first attempt.
	if tag.RowsAffected() == 0 {
		return r.getBySubmissionToken(ctx, check.SubmissionToken)
	}

	return check, nil
}

func (r *checkRepository) getBySubmissionToken(ctx context.Context, token uuid.UUID) (*models.CCPCheckRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+checkColumns+`
		FROM ccp_checks
		WHERE submission_token = $1`, token)
	return scanCheck(row)
}

func (r *checkRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CCPCheckRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+checkColumns+`
		FROM ccp_checks
		WHERE id = $1`, id)

	check, err := scanCheck(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return check, nil
}

func (r *checkRepository) ListByCCP(ctx context.Context, ccpID uuid.UUID, limit int) ([]*models.CCPCheckRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+checkColumns+`
		FROM ccp_checks
		WHERE ccp_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, ccpID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	return collectChecks(rows)
}

func (r *checkRepository) ListFailedWithoutIncident(ctx context.Context) ([]*models.CCPCheckRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+checkColumns+`
		FROM ccp_checks c
		WHERE c.status = 'fail'
		  AND NOT EXISTS (SELECT 1 FROM ccp_incidents i WHERE i.ccp_check_id = c.id)
		ORDER BY c.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned failed checks: %w", err)
	}
	defer rows.Close()

	return collectChecks(rows)
}

func collectChecks(rows pgx.Rows) ([]*models.CCPCheckRecord, error) {
	var checks []*models.CCPCheckRecord
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check records: %w", err)
	}
	return checks, nil
}

func scanCheck(row pgx.Row) (*models.CCPCheckRecord, error) {
	var check models.CCPCheckRecord
	var actionsJSON, blockedJSON []byte

	err := row.Scan(
		&check.ID,
		&check.SubmissionToken,
		&check.CCPID,
		&check.CCPName,
		&check.CheckDate,
		&check.CheckTime,
		&check.RecordedValue,
		&check.Unit,
		&check.CriticalLimit,
		&check.Status,
		&check.StaffID,
		&check.StaffName,
		&check.StaffEmail,
		&check.Notes,
		&actionsJSON,
		&blockedJSON,
		&check.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan check record: %w", err)
	}

	if len(actionsJSON) > 0 && string(actionsJSON) != "null" {
		if err := json.Unmarshal(actionsJSON, &check.CorrectiveActionsTriggered); err != nil {
			return nil, fmt.Errorf("failed to unmarshal corrective_actions_triggered: %w", err)
		}
	}
	if len(blockedJSON) > 0 && string(blockedJSON) != "null" {
		if err := json.Unmarshal(blockedJSON, &check.BlockedMenuItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal blocked_menu_items: %w", err)
		}
	}

	return &check, nil
}
