package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/apperrors"
	"github.com/prepline/prepline-engine/pkg/logging"
	"github.com/prepline/prepline-engine/pkg/models"
	"github.com/prepline/prepline-engine/pkg/repositories"
	"github.com/prepline/prepline-engine/pkg/uploads"
)

// RecordActionInput is one remediation decision for a failed check.
// Photo is optional evidence; when present it is uploaded before the action
// record is created.
type RecordActionInput struct {
	CheckID       uuid.UUID
	ActionType    string
	Description   string
	Notes         string
	PhotoFilename string
	Photo         io.Reader
}

// CorrectiveActionService restricts failure remediation to the approved
// action set and records the decision. It never closes the incident; closing
// happens only through a subsequent passing check.
type CorrectiveActionService interface {
	RecordAction(ctx context.Context, input RecordActionInput) (*models.CorrectiveAction, error)
	CompleteAction(ctx context.Context, id uuid.UUID) error
	ListActions(ctx context.Context, checkID uuid.UUID) ([]*models.CorrectiveAction, error)
}

type correctiveActionService struct {
	checkRepo     repositories.CheckRepository
	incidentRepo  repositories.IncidentRepository
	actionRepo    repositories.CorrectiveActionRepository
	uploader      uploads.Uploader
	notifications NotificationService
	logger        *zap.Logger
}

// NewCorrectiveActionService creates a new CorrectiveActionService.
func NewCorrectiveActionService(
	checkRepo repositories.CheckRepository,
	incidentRepo repositories.IncidentRepository,
	actionRepo repositories.CorrectiveActionRepository,
	uploader uploads.Uploader,
	notifications NotificationService,
	logger *zap.Logger,
) CorrectiveActionService {
	return &correctiveActionService{
		checkRepo:     checkRepo,
		incidentRepo:  incidentRepo,
		actionRepo:    actionRepo,
		uploader:      uploader,
		notifications: notifications,
		logger:        logger.Named("corrective-actions"),
	}
}

var _ CorrectiveActionService = (*correctiveActionService)(nil)

func (s *correctiveActionService) RecordAction(ctx context.Context, input RecordActionInput) (*models.CorrectiveAction, error) {
	actor, ok := models.GetActor(ctx)
	if !ok || !actor.HasCapability(models.CanRecordCorrectiveAction) {
		return nil, apperrors.ErrUnauthorized
	}

	if !models.IsValidActionType(input.ActionType) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidActionType, input.ActionType)
	}

	check, err := s.checkRepo.GetByID(ctx, input.CheckID)
	if err != nil {
		return nil, fmt.Errorf("load check: %w", err)
	}
	if !check.Failed() {
		return nil, fmt.Errorf("%w: corrective action requires a failed check", apperrors.ErrConflict)
	}

	// The workflow must be in incident_open: remediation with no open
	// incident is an illegal transition, not a silent no-op.
	incident, err := s.incidentRepo.GetOpenByCCP(ctx, check.CCPID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no open incident for CCP %s", apperrors.ErrConflict, check.CCPID)
		}
		return nil, fmt.Errorf("load open incident: %w", err)
	}
	if _, err := models.Transition(models.StateIncidentOpen, models.EventActionRecorded); err != nil {
		return nil, err
	}

	// Evidence is uploaded before the action record exists so the record
	// never references a URL that was not stored. No photo is fine.
	photoURL := ""
	if input.Photo != nil {
		photoURL, err = s.uploader.Upload(ctx, input.PhotoFilename, input.Photo)
		if err != nil {
			return nil, fmt.Errorf("upload evidence photo: %w", err)
		}
	}

	action := &models.CorrectiveAction{
		CCPCheckID:      check.ID,
		CCPID:           check.CCPID,
		CCPName:         check.CCPName,
		ActionType:      input.ActionType,
		Description:     input.Description,
		InitiatedByID:   actor.ID,
		InitiatedBy:     actor.FullName,
		PhotoURL:        photoURL,
		Notes:           input.Notes,
		Status:          models.ActionStatusPending,
		RequiresRecheck: true,
	}

	if err := s.actionRepo.Create(ctx, action); err != nil {
		return nil, fmt.Errorf("record corrective action: %w", err)
	}

	// Mirror the decision onto the incident. Secondary write: tolerated.
	if err := s.incidentRepo.SetAction(ctx, incident.ID, action.ActionType, action.Description); err != nil {
		s.logger.Warn("Failed to mirror corrective action onto incident",
			zap.String("incident_id", incident.ID.String()),
			zap.String("action_id", action.ID.String()),
			zap.String("error", logging.SanitizeError(err)))
	}

	// Stop-service alerts go out only once the action row is durable.
	if action.ActionType == models.ActionStopService {
		s.notifications.BroadcastServiceStop(ctx, action, incident.FailureValue, incident.CriticalLimit)
	}

	return action, nil
}

func (s *correctiveActionService) CompleteAction(ctx context.Context, id uuid.UUID) error {
	if _, ok := models.GetActor(ctx); !ok {
		return apperrors.ErrUnauthorized
	}
	return s.actionRepo.MarkCompleted(ctx, id)
}

func (s *correctiveActionService) ListActions(ctx context.Context, checkID uuid.UUID) ([]*models.CorrectiveAction, error) {
	return s.actionRepo.ListByCheck(ctx, checkID)
}
