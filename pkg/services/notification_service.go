package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/logging"
	"github.com/prepline/prepline-engine/pkg/models"
	"github.com/prepline/prepline-engine/pkg/repositories"
)

// NotificationService broadcasts compliance alerts to responsible parties.
// Delivery is best effort by contract: a failure reaching one recipient never
// affects other recipients and never propagates to the caller. The audit
// chain must already be durable before any broadcast method is invoked.
type NotificationService interface {
	// BroadcastCheckFailure alerts every active manager that a CCP check
	// failed and an incident was opened.
	BroadcastCheckFailure(ctx context.Context, incident *models.IncidentRecord)

	// BroadcastServiceStop alerts managers and the operations mailbox that
	// service was stopped for a CCP failure. Highest priority.
	BroadcastServiceStop(ctx context.Context, action *models.CorrectiveAction, failureValue, criticalLimit string)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	staffRepo        repositories.StaffRepository
	opsMailbox       string
	dispatchTimeout  time.Duration
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	staffRepo repositories.StaffRepository,
	opsMailbox string,
	dispatchTimeout time.Duration,
	logger *zap.Logger,
) NotificationService {
	if dispatchTimeout <= 0 {
		dispatchTimeout = 10 * time.Second
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		staffRepo:        staffRepo,
		opsMailbox:       opsMailbox,
		dispatchTimeout:  dispatchTimeout,
		logger:           logger.Named("notifications"),
	}
}

var _ NotificationService = (*notificationService)(nil)

func (s *notificationService) BroadcastCheckFailure(ctx context.Context, incident *models.IncidentRecord) {
	recipients := s.managerEmails(ctx)
	if len(recipients) == 0 {
		s.logger.Warn("No active managers to notify about CCP failure",
			zap.String("incident_id", incident.ID.String()))
		return
	}

	n := models.Notification{
		Title: fmt.Sprintf("CCP failure: %s", incident.CCPName),
		Message: fmt.Sprintf("%s recorded %s %s against limit %s. Severity: %s. Detected by %s.",
			incident.CCPName, incident.FailureValue, incident.Unit,
			incident.CriticalLimit, incident.Severity, incident.DetectedBy),
		Type:          models.NotificationTypeCCPFailure,
		Priority:      failurePriority(incident.Severity),
		RelatedEntity: "incident:" + incident.ID.String(),
	}

	s.dispatch(ctx, n, recipients)
}

func (s *notificationService) BroadcastServiceStop(ctx context.Context, action *models.CorrectiveAction, failureValue, criticalLimit string) {
	recipients := append(s.managerEmails(ctx), s.opsMailbox)

	// Service stops always go out at the highest priority and must name the
	// CCP, the failed value, the limit and who initiated the stop.
	n := models.Notification{
		Title: fmt.Sprintf("SERVICE STOPPED: %s", action.CCPName),
		Message: fmt.Sprintf("Service stopped for %s. Recorded value %s exceeded critical limit %s. Initiated by %s.",
			action.CCPName, failureValue, criticalLimit, action.InitiatedBy),
		Type:          models.NotificationTypeServiceStop,
		Priority:      models.NotificationPriorityUrgent,
		RelatedEntity: "corrective_action:" + action.ID.String(),
	}

	s.dispatch(ctx, n, recipients)
}

// managerEmails resolves the current set of active manager identities. The
// query runs at dispatch time on purpose: a cached list could under-notify
// after a role change.
func (s *notificationService) managerEmails(ctx context.Context) []string {
	managers, err := s.staffRepo.ListActiveByRole(ctx, models.RoleManager, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		s.logger.Error("Failed to resolve notification recipients",
			zap.String("error", logging.SanitizeError(err)))
		return nil
	}

	emails := make([]string, 0, len(managers))
	for _, m := range managers {
		emails = append(emails, m.Email)
	}
	return emails
}

// dispatch delivers one notification to every recipient concurrently. Each
// delivery is an independent attempt; errors are logged and discarded. The
// dispatch context is detached from the caller's cancellation so an
// abandoned request cannot drop alerts that are already in flight.
func (s *notificationService) dispatch(ctx context.Context, template models.Notification, recipients []string) {
	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dispatchTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, recipient := range recipients {
		n := template
		n.RecipientEmail = recipient

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.notificationRepo.Create(dispatchCtx, &n); err != nil {
				s.logger.Warn("Notification delivery failed",
					zap.String("recipient", logging.MaskEmail(n.RecipientEmail)),
					zap.String("related_entity", n.RelatedEntity),
					zap.String("error", logging.SanitizeError(err)))
			}
		}()
	}
	wg.Wait()
}

func failurePriority(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return models.NotificationPriorityUrgent
	case models.SeverityMajor:
		return models.NotificationPriorityHigh
	default:
		return models.NotificationPriorityNormal
	}
}
