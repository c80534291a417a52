package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/apperrors"
	"github.com/prepline/prepline-engine/pkg/models"
	"github.com/prepline/prepline-engine/pkg/repositories"
)

// IncidentService exposes the permitted operations on legal-hold incidents:
// listing, manual resolution and manager annotation. Nothing here deletes.
type IncidentService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.IncidentRecord, error)
	ListOpen(ctx context.Context) ([]*models.IncidentRecord, error)

	// Resolve records a resolution outcome on the incident. Used for manual
	// reconciliation; the usual path is the automatic re-check link.
	Resolve(ctx context.Context, id uuid.UUID, result string, recheckPassed bool) error

	// Annotate attaches manager notes. Only actors whose role grants
	// CanAnnotateIncident may call this.
	Annotate(ctx context.Context, id uuid.UUID, notes string) error
}

type incidentService struct {
	incidentRepo repositories.IncidentRepository
	logger       *zap.Logger
}

// NewIncidentService creates a new IncidentService.
func NewIncidentService(incidentRepo repositories.IncidentRepository, logger *zap.Logger) IncidentService {
	return &incidentService{
		incidentRepo: incidentRepo,
		logger:       logger.Named("incidents"),
	}
}

var _ IncidentService = (*incidentService)(nil)

func (s *incidentService) Get(ctx context.Context, id uuid.UUID) (*models.IncidentRecord, error) {
	return s.incidentRepo.GetByID(ctx, id)
}

func (s *incidentService) ListOpen(ctx context.Context) ([]*models.IncidentRecord, error) {
	return s.incidentRepo.ListOpen(ctx)
}

func (s *incidentService) Resolve(ctx context.Context, id uuid.UUID, result string, recheckPassed bool) error {
	actor, ok := models.GetActor(ctx)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	if result == "" || result == models.ResolutionPending {
		return fmt.Errorf("resolution result must be a non-pending value")
	}

	if err := s.incidentRepo.Resolve(ctx, id, result, recheckPassed, actor.ID, time.Now()); err != nil {
		return fmt.Errorf("resolve incident: %w", err)
	}

	s.logger.Info("Incident resolved",
		zap.String("incident_id", id.String()),
		zap.String("result", result),
		zap.Bool("recheck_passed", recheckPassed),
		zap.String("resolved_by", actor.ID.String()))
	return nil
}

func (s *incidentService) Annotate(ctx context.Context, id uuid.UUID, notes string) error {
	actor, ok := models.GetActor(ctx)
	if !ok || !actor.HasCapability(models.CanAnnotateIncident) {
		return apperrors.ErrUnauthorized
	}

	if err := s.incidentRepo.Annotate(ctx, id, notes); err != nil {
		return fmt.Errorf("annotate incident: %w", err)
	}
	return nil
}
