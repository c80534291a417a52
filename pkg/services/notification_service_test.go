package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/models"
)

func staffList(emails ...string) []*models.StaffUser {
	users := make([]*models.StaffUser, 0, len(emails))
	for _, email := range emails {
		users = append(users, &models.StaffUser{
			ID:       uuid.New(),
			Email:    email,
			Role:     models.RoleManager,
			IsActive: true,
		})
	}
	return users
}

func testIncident() *models.IncidentRecord {
	return &models.IncidentRecord{
		ID:            uuid.New(),
		CCPName:       "Chicken core temperature",
		FailureValue:  "70°C",
		CriticalLimit: "75°C core",
		Unit:          models.UnitCelsius,
		DetectedBy:    "Test Chef",
		Severity:      models.SeverityMajor,
	}
}

func TestBroadcastCheckFailureReachesAllManagers(t *testing.T) {
	notificationRepo := &mockNotificationRepo{}
	staffRepo := &mockStaffRepo{ListActiveByRoleFunc: func(ctx context.Context, roles ...string) ([]*models.StaffUser, error) {
		assert.ElementsMatch(t, []string{models.RoleManager, models.RoleOwner, models.RoleAdmin}, roles)
		return staffList("m1@example.com", "m2@example.com", "m3@example.com"), nil
	}}

	svc := NewNotificationService(notificationRepo, staffRepo, "ops@example.com", time.Second, zap.NewNop())
	svc.BroadcastCheckFailure(context.Background(), testIncident())

	created := notificationRepo.Created()
	require.Len(t, created, 3)

	recipients := make([]string, 0, 3)
	for _, n := range created {
		recipients = append(recipients, n.RecipientEmail)
		assert.Equal(t, models.NotificationTypeCCPFailure, n.Type)
		assert.Equal(t, models.NotificationPriorityHigh, n.Priority)
		assert.Contains(t, n.Message, "70°C")
		assert.Contains(t, n.Message, "75°C core")
	}
	assert.ElementsMatch(t, []string{"m1@example.com", "m2@example.com", "m3@example.com"}, recipients)
}

func TestBroadcastCheckFailureIsolatesRecipientFailures(t *testing.T) {
	notificationRepo := &mockNotificationRepo{CreateFunc: func(ctx context.Context, n *models.Notification) error {
		if n.RecipientEmail == "m2@example.com" {
			return errors.New("mailbox over quota")
		}
		return nil
	}}
	staffRepo := &mockStaffRepo{ListActiveByRoleFunc: func(ctx context.Context, roles ...string) ([]*models.StaffUser, error) {
		return staffList("m1@example.com", "m2@example.com", "m3@example.com"), nil
	}}

	svc := NewNotificationService(notificationRepo, staffRepo, "ops@example.com", time.Second, zap.NewNop())

	// Must not panic and must not skip the remaining recipients.
	svc.BroadcastCheckFailure(context.Background(), testIncident())

	created := notificationRepo.Created()
	require.Len(t, created, 2)
	recipients := []string{created[0].RecipientEmail, created[1].RecipientEmail}
	assert.ElementsMatch(t, []string{"m1@example.com", "m3@example.com"}, recipients)
}

func TestBroadcastCheckFailurePriorityTracksSeverity(t *testing.T) {
	tests := []struct {
		severity models.Severity
		want     string
	}{
		{severity: models.SeverityMinor, want: models.NotificationPriorityNormal},
		{severity: models.SeverityMajor, want: models.NotificationPriorityHigh},
		{severity: models.SeverityCritical, want: models.NotificationPriorityUrgent},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			notificationRepo := &mockNotificationRepo{}
			staffRepo := &mockStaffRepo{ListActiveByRoleFunc: func(ctx context.Context, roles ...string) ([]*models.StaffUser, error) {
				return staffList("m1@example.com"), nil
			}}
			svc := NewNotificationService(notificationRepo, staffRepo, "ops@example.com", time.Second, zap.NewNop())

			incident := testIncident()
			incident.Severity = tt.severity
			svc.BroadcastCheckFailure(context.Background(), incident)

			created := notificationRepo.Created()
			require.Len(t, created, 1)
			assert.Equal(t, tt.want, created[0].Priority)
		})
	}
}

func TestBroadcastCheckFailureRecipientsResolvedAtDispatchTime(t *testing.T) {
	// Recipient resolution runs per dispatch so role changes take effect
	// immediately.
	lists := [][]*models.StaffUser{
		staffList("before@example.com"),
		staffList("after-one@example.com", "after-two@example.com"),
	}
	call := 0
	staffRepo := &mockStaffRepo{ListActiveByRoleFunc: func(ctx context.Context, roles ...string) ([]*models.StaffUser, error) {
		list := lists[call]
		call++
		return list, nil
	}}
	notificationRepo := &mockNotificationRepo{}
	svc := NewNotificationService(notificationRepo, staffRepo, "ops@example.com", time.Second, zap.NewNop())

	svc.BroadcastCheckFailure(context.Background(), testIncident())
	svc.BroadcastCheckFailure(context.Background(), testIncident())

	assert.Equal(t, 2, call)
	assert.Len(t, notificationRepo.Created(), 3)
}

func TestBroadcastCheckFailureNoRecipients(t *testing.T) {
	staffRepo := &mockStaffRepo{ListActiveByRoleFunc: func(ctx context.Context, roles ...string) ([]*models.StaffUser, error) {
		return nil, nil
	}}
	notificationRepo := &mockNotificationRepo{}
	svc := NewNotificationService(notificationRepo, staffRepo, "ops@example.com", time.Second, zap.NewNop())

	svc.BroadcastCheckFailure(context.Background(), testIncident())
	assert.Empty(t, notificationRepo.Created())
}

func TestBroadcastServiceStop(t *testing.T) {
	notificationRepo := &mockNotificationRepo{}
	staffRepo := &mockStaffRepo{ListActiveByRoleFunc: func(ctx context.Context, roles ...string) ([]*models.StaffUser, error) {
		return staffList("m1@example.com"), nil
	}}
	svc := NewNotificationService(notificationRepo, staffRepo, "ops@example.com", time.Second, zap.NewNop())

	action := &models.CorrectiveAction{
		ID:          uuid.New(),
		CCPName:     "Chicken core temperature",
		ActionType:  models.ActionStopService,
		InitiatedBy: "Test Manager",
	}
	svc.BroadcastServiceStop(context.Background(), action, "70°C", "75°C core")

	created := notificationRepo.Created()
	require.Len(t, created, 2, "managers plus the operations mailbox")

	recipients := []string{created[0].RecipientEmail, created[1].RecipientEmail}
	assert.ElementsMatch(t, []string{"m1@example.com", "ops@example.com"}, recipients)

	for _, n := range created {
		assert.Equal(t, models.NotificationTypeServiceStop, n.Type)
		assert.Equal(t, models.NotificationPriorityUrgent, n.Priority)
		assert.Contains(t, n.Message, "70°C")
		assert.Contains(t, n.Message, "75°C core")
		assert.Contains(t, n.Message, "Test Manager")
		assert.Contains(t, n.Title, "Chicken core temperature")
	}
}

func TestBroadcastSurvivesStaffLookupFailure(t *testing.T) {
	staffRepo := &mockStaffRepo{ListActiveByRoleFunc: func(ctx context.Context, roles ...string) ([]*models.StaffUser, error) {
		return nil, errors.New("connection reset")
	}}
	notificationRepo := &mockNotificationRepo{}
	svc := NewNotificationService(notificationRepo, staffRepo, "ops@example.com", time.Second, zap.NewNop())

	// Never panics, never propagates.
	svc.BroadcastCheckFailure(context.Background(), testIncident())
	assert.Empty(t, notificationRepo.Created())
}

func TestDispatchSurvivesCancelledCaller(t *testing.T) {
	// The dispatch context is detached from the caller: an abandoned request
	// must not drop alerts already in flight.
	notificationRepo := &mockNotificationRepo{}
	staffRepo := &mockStaffRepo{ListActiveByRoleFunc: func(ctx context.Context, roles ...string) ([]*models.StaffUser, error) {
		return staffList("m1@example.com"), nil
	}}
	svc := NewNotificationService(notificationRepo, staffRepo, "ops@example.com", time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.BroadcastCheckFailure(ctx, testIncident())

	assert.Len(t, notificationRepo.Created(), 1)
}
