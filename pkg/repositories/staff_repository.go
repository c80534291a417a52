package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prepline/prepline-engine/pkg/apperrors"
	"github.com/prepline/prepline-engine/pkg/database"
	"github.com/prepline/prepline-engine/pkg/models"
)

// StaffRepository provides read access to staff accounts. Notification
// recipients are resolved through this repository at dispatch time so role
// changes take effect immediately; the result is never cached.
type StaffRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error)
	ListActiveByRole(ctx context.Context, roles ...string) ([]*models.StaffUser, error)
}

type staffRepository struct {
	db *database.DB
}

// NewStaffRepository creates a new StaffRepository.
func NewStaffRepository(db *database.DB) StaffRepository {
	return &staffRepository{db: db}
}

var _ StaffRepository = (*staffRepository)(nil)

const staffColumns = `id, email, full_name, role, is_active, created_at, updated_at`

func (r *staffRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff_users
		WHERE id = $1`, id)

	staff, err := scanStaff(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return staff, nil
}

func (r *staffRepository) ListActiveByRole(ctx context.Context, roles ...string) ([]*models.StaffUser, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+staffColumns+`
		FROM staff_users
		WHERE is_active = TRUE AND role = ANY($1)
		ORDER BY full_name`, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff by role: %w", err)
	}
	defer rows.Close()

	var users []*models.StaffUser
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, staff)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}

	return users, nil
}

func scanStaff(row pgx.Row) (*models.StaffUser, error) {
	var staff models.StaffUser
	err := row.Scan(
		&staff.ID,
		&staff.Email,
		&staff.FullName,
		&staff.Role,
		&staff.IsActive,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan staff user: %w", err)
	}
	return &staff, nil
}
