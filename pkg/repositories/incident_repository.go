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

// IncidentRepository provides data access for legal-hold incident records.
// There is deliberately no Delete: incidents are permanent audit evidence and
// the database enforces this with a trigger.
type IncidentRepository interface {
	// Create inserts a new incident for a failed check. The unique
	// constraint on ccp_check_id guarantees at most one incident per check.
	Create(ctx context.Context, incident *models.IncidentRecord) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.IncidentRecord, error)

	// GetOpenByCCP returns the most recent open incident for a CCP, or
	// ErrNotFound when the CCP has no open incident.
	GetOpenByCCP(ctx context.Context, ccpID uuid.UUID) (*models.IncidentRecord, error)

	// ListOpen returns all open incidents, newest first.
	ListOpen(ctx context.Context) ([]*models.IncidentRecord, error)

	// Resolve records the re-check outcome on the incident. This is one of
	// only two permitted post-creation mutations.
	Resolve(ctx context.Context, id uuid.UUID, result string, recheckPassed bool, resolvedBy uuid.UUID, resolvedAt time.Time) error

	// SetAction records the chosen corrective action type and description.
	SetAction(ctx context.Context, id uuid.UUID, actionType, description string) error

	// Annotate appends manager notes. The capability check happens in the
	// service layer; the repository only writes.
	Annotate(ctx context.Context, id uuid.UUID, notes string) error
}

type incidentRepository struct {
	db *database.DB
}

// NewIncidentRepository creates a new IncidentRepository.
func NewIncidentRepository(db *database.DB) IncidentRepository {
	return &incidentRepository{db: db}
}

var _ IncidentRepository = (*incidentRepository)(nil)

const incidentColumns = `id, ccp_check_id, ccp_id, ccp_name, failure_value, critical_limit, unit,
       incident_time, detected_by_id, detected_by_name, corrective_action_type,
       corrective_action_description, resolution_result, blocked_menu_items,
       incident_severity, needs_manual_review, is_legal_hold, recheck_passed,
       resolved_by_id, resolved_at, manager_notes, created_at, updated_at`

func (r *incidentRepository) Create(ctx context.Context, incident *models.IncidentRecord) error {
	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	now := time.Now()
	incident.CreatedAt = now
	incident.UpdatedAt = now
	incident.IsLegalHold = true

	blockedJSON, err := json.Marshal(incident.BlockedMenuItems)
	if err != nil {
		return fmt.Errorf("failed to marshal blocked_menu_items: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO ccp_incidents (
			id, ccp_check_id, ccp_id, ccp_name, failure_value, critical_limit, unit,
			incident_time, detected_by_id, detected_by_name, corrective_action_type,
			corrective_action_description, resolution_result, blocked_menu_items,
			incident_severity, needs_manual_review, is_legal_hold, manager_notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		incident.ID,
		incident.CCPCheckID,
		incident.CCPID,
		incident.CCPName,
		incident.FailureValue,
		incident.CriticalLimit,
		incident.Unit,
		incident.IncidentTime,
		incident.DetectedByID,
		incident.DetectedBy,
		incident.CorrectiveActionType,
		incident.CorrectiveActionDescription,
		incident.ResolutionResult,
		blockedJSON,
		incident.Severity,
		incident.NeedsManualReview,
		incident.IsLegalHold,
		incident.ManagerNotes,
		incident.CreatedAt,
		incident.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create incident record: %w", err)
	}

	return nil
}

func (r *incidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.IncidentRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+incidentColumns+`
		FROM ccp_incidents
		WHERE id = $1`, id)

	incident, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return incident, nil
}

func (r *incidentRepository) GetOpenByCCP(ctx context.Context, ccpID uuid.UUID) (*models.IncidentRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+incidentColumns+`
		FROM ccp_incidents
		WHERE ccp_id = $1 AND resolution_result = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`, ccpID)

	incident, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return incident, nil
}

func (r *incidentRepository) ListOpen(ctx context.Context) ([]*models.IncidentRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+incidentColumns+`
		FROM ccp_incidents
		WHERE resolution_result = 'pending'
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list open incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*models.IncidentRecord
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incidents: %w", err)
	}

	return incidents, nil
}

func (r *incidentRepository) Resolve(ctx context.Context, id uuid.UUID, result string, recheckPassed bool, resolvedBy uuid.UUID, resolvedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE ccp_incidents
		SET resolution_result = $2,
		    recheck_passed = $3,
		    resolved_by_id = $4,
		    resolved_at = $5,
		    updated_at = now()
		WHERE id = $1`, id, result, recheckPassed, resolvedBy, resolvedAt)
	if err != nil {
		return fmt.Errorf("failed to resolve incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *incidentRepository) SetAction(ctx context.Context, id uuid.UUID, actionType, description string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE ccp_incidents
		SET corrective_action_type = $2,
		    corrective_action_description = $3,
		    updated_at = now()
		WHERE id = $1`, id, actionType, description)
	if err != nil {
		return fmt.Errorf("failed to set incident action: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *incidentRepository) Annotate(ctx context.Context, id uuid.UUID, notes string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE ccp_incidents
		SET manager_notes = $2,
		    updated_at = now()
		WHERE id = $1`, id, notes)
	if err != nil {
		return fmt.Errorf("failed to annotate incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanIncident(row pgx.Row) (*models.IncidentRecord, error) {
	var incident models.IncidentRecord
	var blockedJSON []byte

	err := row.Scan(
		&incident.ID,
		&incident.CCPCheckID,
		&incident.CCPID,
		&incident.CCPName,
		&incident.FailureValue,
		&incident.CriticalLimit,
		&incident.Unit,
		&incident.IncidentTime,
		&incident.DetectedByID,
		&incident.DetectedBy,
		&incident.CorrectiveActionType,
		&incident.CorrectiveActionDescription,
		&incident.ResolutionResult,
		&blockedJSON,
		&incident.Severity,
		&incident.NeedsManualReview,
		&incident.IsLegalHold,
		&incident.RecheckPassed,
		&incident.ResolvedByID,
		&incident.ResolvedAt,
		&incident.ManagerNotes,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan incident record: %w", err)
	}

	if len(blockedJSON) > 0 && string(blockedJSON) != "null" {
		if err := json.Unmarshal(blockedJSON, &incident.BlockedMenuItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal blocked_menu_items: %w", err)
		}
	}

	return &incident, nil
}
