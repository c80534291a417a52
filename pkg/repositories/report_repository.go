package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prepline/prepline-engine/pkg/database"
)

// OperationReportEntry is a denormalized per-check summary used by the
// reporting module. Derived data only; losing an entry never invalidates the
// underlying check record.
type OperationReportEntry struct {
	ID         uuid.UUID `json:"id"`
	ReportDate string    `json:"report_date"`
	Category   string    `json:"category"`
	CCPID      uuid.UUID `json:"ccp_id"`
	CCPName    string    `json:"ccp_name"`
	Status     string    `json:"status"`
	Summary    string    `json:"summary"`
	StaffName  string    `json:"staff_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReportRepository provides write access to operation report entries.
type ReportRepository interface {
	Create(ctx context.Context, entry *OperationReportEntry) error
}

type reportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db *database.DB) ReportRepository {
	return &reportRepository{db: db}
}

var _ ReportRepository = (*reportRepository)(nil)

func (r *reportRepository) Create(ctx context.Context, entry *OperationReportEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	if entry.Category == "" {
		entry.Category = "ccp_check"
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO operation_reports (
			id, report_date, category, ccp_id, ccp_name, status, summary, staff_name, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID,
		entry.ReportDate,
		entry.Category,
		entry.CCPID,
		entry.CCPName,
		entry.Status,
		entry.Summary,
		entry.StaffName,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create operation report entry: %w", err)
	}

	return nil
}
