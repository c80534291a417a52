package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/apperrors"
	"github.com/prepline/prepline-engine/pkg/logging"
	"github.com/prepline/prepline-engine/pkg/measure"
	"github.com/prepline/prepline-engine/pkg/models"
	"github.com/prepline/prepline-engine/pkg/repositories"
)

// SubmitCheckInput is one measurement submission from the monitoring form.
// SubmissionToken is generated by the client; a retried submission carries
// the same token and will not create duplicate records.
type SubmitCheckInput struct {
	CCPID           uuid.UUID
	SubmissionToken uuid.UUID
	CheckDate       string
	CheckTime       string
	RecordedValue   string
	Notes           string
}

// CheckSubmissionResult reports everything that happened for one submission.
// IncidentErr and ResolutionErr are degraded-success conditions: the check
// record itself is durable whenever a result is returned without error.
type CheckSubmissionResult struct {
	Check            *models.CCPCheckRecord
	Incident         *models.IncidentRecord
	ResolvedIncident *models.IncidentRecord
	State            models.CheckWorkflowState

	// IncidentErr is set when a failing check was recorded but the incident
	// write failed ("check recorded, incident logging failed").
	IncidentErr error
	// ResolutionErr is set when a passing re-check could not close the open
	// incident; the check stands and the incident stays open.
	ResolutionErr error
}

// CheckService records CCP measurements and maintains the audit chain.
type CheckService interface {
	// SubmitCheck evaluates a measurement against the CCP's critical limit
	// and persists the outcome. The check record is written first and is
	// never rolled back; dependent writes degrade rather than corrupt it.
	SubmitCheck(ctx context.Context, input SubmitCheckInput) (*CheckSubmissionResult, error)

	GetCheck(ctx context.Context, id uuid.UUID) (*models.CCPCheckRecord, error)
	ListChecks(ctx context.Context, ccpID uuid.UUID, limit int) ([]*models.CCPCheckRecord, error)

	// ListUnreconciledFailures returns failed checks whose incident write
	// degraded, so operators can backfill the missing incidents.
	ListUnreconciledFailures(ctx context.Context) ([]*models.CCPCheckRecord, error)
}

type checkService struct {
	ccpRepo       repositories.CCPRepository
	checkRepo     repositories.CheckRepository
	incidentRepo  repositories.IncidentRepository
	reportRepo    repositories.ReportRepository
	notifications NotificationService
	logger        *zap.Logger
}

// NewCheckService creates a new CheckService.
func NewCheckService(
	ccpRepo repositories.CCPRepository,
	checkRepo repositories.CheckRepository,
	incidentRepo repositories.IncidentRepository,
	reportRepo repositories.ReportRepository,
	notifications NotificationService,
	logger *zap.Logger,
) CheckService {
	return &checkService{
		ccpRepo:       ccpRepo,
		checkRepo:     checkRepo,
		incidentRepo:  incidentRepo,
		reportRepo:    reportRepo,
		notifications: notifications,
		logger:        logger.Named("ccp-checks"),
	}
}

var _ CheckService = (*checkService)(nil)

func (s *checkService) SubmitCheck(ctx context.Context, input SubmitCheckInput) (*CheckSubmissionResult, error) {
	actor, ok := models.GetActor(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: check submission requires an authenticated actor", apperrors.ErrUnauthorized)
	}

	ccp, err := s.ccpRepo.GetByID(ctx, input.CCPID)
	if err != nil {
		return nil, fmt.Errorf("load CCP definition: %w", err)
	}

	// Pure evaluation; a format error means no records are written at all.
	eval, err := measure.Evaluate(input.RecordedValue, ccp.CriticalLimit, ccp.Operator, ccp.ToleranceDelta)
	if err != nil {
		return nil, err
	}

	check := &models.CCPCheckRecord{
		SubmissionToken: input.SubmissionToken,
		CCPID:           ccp.ID,
		CCPName:         ccp.Name,
		CheckDate:       input.CheckDate,
		CheckTime:       input.CheckTime,
		RecordedValue:   input.RecordedValue,
		Unit:            ccp.Unit,
		CriticalLimit:   ccp.CriticalLimit,
		Status:          models.CheckStatusPass,
		StaffID:         actor.ID,
		StaffName:       actor.FullName,
		StaffEmail:      actor.Email,
		Notes:           input.Notes,
	}
	event := models.EventEvaluatedPass
	if !eval.Passed {
		check.Status = models.CheckStatusFail
		check.CorrectiveActionsTriggered = ccp.CorrectiveActions
		check.BlockedMenuItems = ccp.BlockedMenuItems
		event = models.EventEvaluatedFail
	}

	state, err := models.Transition(models.StatePending, event)
	if err != nil {
		return nil, err
	}

	// Primary audit write. Failure here is fatal and nothing else is
	// attempted.
	check, err = s.checkRepo.Create(ctx, check)
	if err != nil {
		return nil, fmt.Errorf("record check: %w", err)
	}

	result := &CheckSubmissionResult{Check: check, State: state}

	if check.Failed() {
		s.openIncident(ctx, result, actor, eval)
	}

	s.recordReportEntry(ctx, check)

	if !check.Failed() {
		s.linkResolution(ctx, result, actor)
	}

	return result, nil
}

// openIncident creates the legal-hold incident for a failed check and
// broadcasts the failure. An incident write failure degrades the submission
// but never rolls back the check record.
func (s *checkService) openIncident(ctx context.Context, result *CheckSubmissionResult, actor models.Actor, eval measure.Evaluation) {
	check := result.Check
	severity, needsReview := measure.ClassifySeverity(eval.Recorded, eval.Limit)

	incident := &models.IncidentRecord{
		CCPCheckID:           check.ID,
		CCPID:                check.CCPID,
		CCPName:              check.CCPName,
		FailureValue:         check.RecordedValue,
		CriticalLimit:        check.CriticalLimit,
		Unit:                 check.Unit,
		IncidentTime:         time.Now(),
		DetectedByID:         actor.ID,
		DetectedBy:           actor.FullName,
		CorrectiveActionType: models.ResolutionPending,
		ResolutionResult:     models.ResolutionPending,
		BlockedMenuItems:     check.BlockedMenuItems,
		Severity:             severity,
		NeedsManualReview:    needsReview,
		IsLegalHold:          true,
	}

	if err := s.incidentRepo.Create(ctx, incident); err != nil {
		s.logger.Error("Check recorded but incident logging failed",
			zap.String("check_id", check.ID.String()),
			zap.String("ccp_id", check.CCPID.String()),
			zap.String("error", logging.SanitizeError(err)))
		result.IncidentErr = fmt.Errorf("check recorded, incident logging failed: %w", err)
		return
	}

	result.Incident = incident

	// Fan-out only after the incident is durable; its outcome never affects
	// the submission.
	s.notifications.BroadcastCheckFailure(ctx, incident)
}

// recordReportEntry writes the denormalized reporting row. Derived data:
// failures are logged and swallowed.
func (s *checkService) recordReportEntry(ctx context.Context, check *models.CCPCheckRecord) {
	entry := &repositories.OperationReportEntry{
		ReportDate: check.CheckDate,
		CCPID:      check.CCPID,
		CCPName:    check.CCPName,
		Status:     check.Status,
		Summary: fmt.Sprintf("%s: recorded %s %s against limit %s (%s)",
			check.CCPName, check.RecordedValue, check.Unit, check.CriticalLimit, check.Status),
		StaffName: check.StaffName,
	}
	if err := s.reportRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to write operation report entry",
			zap.String("check_id", check.ID.String()),
			zap.String("error", logging.SanitizeError(err)))
	}
}

// linkResolution closes the most recent open incident for the CCP when a
// re-check passes. A passing check on a CCP with no open incident touches
// nothing.
func (s *checkService) linkResolution(ctx context.Context, result *CheckSubmissionResult, actor models.Actor) {
	check := result.Check

	incident, err := s.incidentRepo.GetOpenByCCP(ctx, check.CCPID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return
		}
		s.logger.Warn("Failed to look up open incident for resolution",
			zap.String("ccp_id", check.CCPID.String()),
			zap.String("error", logging.SanitizeError(err)))
		result.ResolutionErr = err
		return
	}

	now := time.Now()
	if err := s.incidentRepo.Resolve(ctx, incident.ID, "recheck_passed", true, actor.ID, now); err != nil {
		// The passing check stands; the incident stays open for manual
		// reconciliation.
		s.logger.Error("Passing re-check could not close incident",
			zap.String("incident_id", incident.ID.String()),
			zap.String("check_id", check.ID.String()),
			zap.String("error", logging.SanitizeError(err)))
		result.ResolutionErr = fmt.Errorf("re-check passed, incident update failed: %w", err)
		return
	}

	state, err := models.Transition(models.StateIncidentOpen, models.EventRecheckPassed)
	if err == nil {
		result.State = state
	}

	incident.ResolutionResult = "recheck_passed"
	passed := true
	incident.RecheckPassed = &passed
	incident.ResolvedByID = &actor.ID
	incident.ResolvedAt = &now
	result.ResolvedIncident = incident
}

func (s *checkService) GetCheck(ctx context.Context, id uuid.UUID) (*models.CCPCheckRecord, error) {
	return s.checkRepo.GetByID(ctx, id)
}

func (s *checkService) ListChecks(ctx context.Context, ccpID uuid.UUID, limit int) ([]*models.CCPCheckRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.checkRepo.ListByCCP(ctx, ccpID, limit)
}

func (s *checkService) ListUnreconciledFailures(ctx context.Context) ([]*models.CCPCheckRecord, error) {
	return s.checkRepo.ListFailedWithoutIncident(ctx)
}
