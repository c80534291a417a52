package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prepline/prepline-engine/pkg/apperrors"
	"github.com/prepline/prepline-engine/pkg/database"
	"github.com/prepline/prepline-engine/pkg/models"
)

// CCPRepository provides read access to critical control point definitions.
// Definitions are authored by the back-office CRUD layer; the compliance
// workflow only reads them.
type CCPRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.CCPDefinition, error)
	List(ctx context.Context) ([]*models.CCPDefinition, error)
}

type ccpRepository struct {
	db *database.DB
}

// NewCCPRepository creates a new CCPRepository.
func NewCCPRepository(db *database.DB) CCPRepository {
	return &ccpRepository{db: db}
}

var _ CCPRepository = (*ccpRepository)(nil)

const ccpColumns = `id, name, process_stage, critical_limit, unit, operator, tolerance_delta,
       monitoring_parameter, check_frequency, responsible_role,
       corrective_actions, blocked_menu_items, created_at, updated_at`

func (r *ccpRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CCPDefinition, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+ccpColumns+`
		FROM ccp_definitions
		WHERE id = $1`, id)

	ccp, err := scanCCP(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return ccp, nil
}

func (r *ccpRepository) List(ctx context.Context) ([]*models.CCPDefinition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ccpColumns+`
		FROM ccp_definitions
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list CCP definitions: %w", err)
	}
	defer rows.Close()

	var ccps []*models.CCPDefinition
	for rows.Next() {
		ccp, err := scanCCP(rows)
		if err != nil {
			return nil, err
		}
		ccps = append(ccps, ccp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating CCP definitions: %w", err)
	}

	return ccps, nil
}

func scanCCP(row pgx.Row) (*models.CCPDefinition, error) {
	var ccp models.CCPDefinition
	var actionsJSON, blockedJSON []byte

	err := row.Scan(
		&ccp.ID,
		&ccp.Name,
		&ccp.ProcessStage,
		&ccp.CriticalLimit,
		&ccp.Unit,
		&ccp.Operator,
		&ccp.ToleranceDelta,
		&ccp.MonitoringParameter,
		&ccp.CheckFrequency,
		&ccp.ResponsibleRole,
		&actionsJSON,
		&blockedJSON,
		&ccp.CreatedAt,
		&ccp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan CCP definition: %w", err)
	}

	if len(actionsJSON) > 0 {
		if err := json.Unmarshal(actionsJSON, &ccp.CorrectiveActions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal corrective_actions: %w", err)
		}
	}
	if len(blockedJSON) > 0 {
		if err := json.Unmarshal(blockedJSON, &ccp.BlockedMenuItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal blocked_menu_items: %w", err)
		}
	}

	return &ccp, nil
}
