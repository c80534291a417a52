package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prepline/prepline-engine/pkg/models"
	"github.com/prepline/prepline-engine/pkg/repositories"
)

// Hand-written mocks with function fields. A nil field means "not expected";
// calling it panics, which surfaces the unexpected interaction as a test
// failure with a stack trace.

type mockCCPRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*models.CCPDefinition, error)
	ListFunc    func(ctx context.Context) ([]*models.CCPDefinition, error)
}

func (m *mockCCPRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CCPDefinition, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockCCPRepo) List(ctx context.Context) ([]*models.CCPDefinition, error) {
	return m.ListFunc(ctx)
}

type mockCheckRepo struct {
	CreateFunc                    func(ctx context.Context, check *models.CCPCheckRecord) (*models.CCPCheckRecord, error)
	GetByIDFunc                   func(ctx context.Context, id uuid.UUID) (*models.CCPCheckRecord, error)
	ListByCCPFunc                 func(ctx context.Context, ccpID uuid.UUID, limit int) ([]*models.CCPCheckRecord, error)
	ListFailedWithoutIncidentFunc func(ctx context.Context) ([]*models.CCPCheckRecord, error)
}

func (m *mockCheckRepo) Create(ctx context.Context, check *models.CCPCheckRecord) (*models.CCPCheckRecord, error) {
	return m.CreateFunc(ctx, check)
}

func (m *mockCheckRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CCPCheckRecord, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockCheckRepo) ListByCCP(ctx context.Context, ccpID uuid.UUID, limit int) ([]*models.CCPCheckRecord, error) {
	return m.ListByCCPFunc(ctx, ccpID, limit)
}

func (m *mockCheckRepo) ListFailedWithoutIncident(ctx context.Context) ([]*models.CCPCheckRecord, error) {
	return m.ListFailedWithoutIncidentFunc(ctx)
}

type mockIncidentRepo struct {
	CreateFunc       func(ctx context.Context, incident *models.IncidentRecord) error
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*models.IncidentRecord, error)
	GetOpenByCCPFunc func(ctx context.Context, ccpID uuid.UUID) (*models.IncidentRecord, error)
	ListOpenFunc     func(ctx context.Context) ([]*models.IncidentRecord, error)
	ResolveFunc      func(ctx context.Context, id uuid.UUID, result string, recheckPassed bool, resolvedBy uuid.UUID, resolvedAt time.Time) error
	SetActionFunc    func(ctx context.Context, id uuid.UUID, actionType, description string) error
	AnnotateFunc     func(ctx context.Context, id uuid.UUID, notes string) error
}

func (m *mockIncidentRepo) Create(ctx context.Context, incident *models.IncidentRecord) error {
	return m.CreateFunc(ctx, incident)
}

func (m *mockIncidentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.IncidentRecord, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockIncidentRepo) GetOpenByCCP(ctx context.Context, ccpID uuid.UUID) (*models.IncidentRecord, error) {
	return m.GetOpenByCCPFunc(ctx, ccpID)
}

func (m *mockIncidentRepo) ListOpen(ctx context.Context) ([]*models.IncidentRecord, error) {
	return m.ListOpenFunc(ctx)
}

func (m *mockIncidentRepo) Resolve(ctx context.Context, id uuid.UUID, result string, recheckPassed bool, resolvedBy uuid.UUID, resolvedAt time.Time) error {
	return m.ResolveFunc(ctx, id, result, recheckPassed, resolvedBy, resolvedAt)
}

func (m *mockIncidentRepo) SetAction(ctx context.Context, id uuid.UUID, actionType, description string) error {
	return m.SetActionFunc(ctx, id, actionType, description)
}

func (m *mockIncidentRepo) Annotate(ctx context.Context, id uuid.UUID, notes string) error {
	return m.AnnotateFunc(ctx, id, notes)
}

type mockActionRepo struct {
	CreateFunc        func(ctx context.Context, action *models.CorrectiveAction) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.CorrectiveAction, error)
	ListByCheckFunc   func(ctx context.Context, checkID uuid.UUID) ([]*models.CorrectiveAction, error)
	MarkCompletedFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockActionRepo) Create(ctx context.Context, action *models.CorrectiveAction) error {
	return m.CreateFunc(ctx, action)
}

func (m *mockActionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CorrectiveAction, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockActionRepo) ListByCheck(ctx context.Context, checkID uuid.UUID) ([]*models.CorrectiveAction, error) {
	return m.ListByCheckFunc(ctx, checkID)
}

func (m *mockActionRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return m.MarkCompletedFunc(ctx, id)
}

// mockNotificationRepo records deliveries. Create is called from concurrent
// dispatch goroutines, so it is guarded by a mutex.
type mockNotificationRepo struct {
	mu         sync.Mutex
	created    []models.Notification
	CreateFunc func(ctx context.Context, n *models.Notification) error

	ListByRecipientFunc func(ctx context.Context, recipientEmail string, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkReadFunc        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	var err error
	if m.CreateFunc != nil {
		err = m.CreateFunc(ctx, n)
	}
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.created = append(m.created, *n)
	m.mu.Unlock()
	return nil
}

func (m *mockNotificationRepo) Created() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notification, len(m.created))
	copy(out, m.created)
	return out
}

func (m *mockNotificationRepo) ListByRecipient(ctx context.Context, recipientEmail string, unreadOnly bool, limit int) ([]*models.Notification, error) {
	return m.ListByRecipientFunc(ctx, recipientEmail, unreadOnly, limit)
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	return m.MarkReadFunc(ctx, id)
}

type mockStaffRepo struct {
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*models.StaffUser, error)
	ListActiveByRoleFunc func(ctx context.Context, roles ...string) ([]*models.StaffUser, error)
}

func (m *mockStaffRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockStaffRepo) ListActiveByRole(ctx context.Context, roles ...string) ([]*models.StaffUser, error) {
	return m.ListActiveByRoleFunc(ctx, roles...)
}

type mockReportRepo struct {
	CreateFunc func(ctx context.Context, entry *repositories.OperationReportEntry) error
	entries    []repositories.OperationReportEntry
}

func (m *mockReportRepo) Create(ctx context.Context, entry *repositories.OperationReportEntry) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, entry); err != nil {
			return err
		}
	}
	m.entries = append(m.entries, *entry)
	return nil
}

// mockNotifier stands in for the NotificationService in check and
// corrective-action tests.
type mockNotifier struct {
	failures []models.IncidentRecord
	stops    []models.CorrectiveAction
}

func (m *mockNotifier) BroadcastCheckFailure(ctx context.Context, incident *models.IncidentRecord) {
	m.failures = append(m.failures, *incident)
}

func (m *mockNotifier) BroadcastServiceStop(ctx context.Context, action *models.CorrectiveAction, failureValue, criticalLimit string) {
	m.stops = append(m.stops, *action)
}

type mockUploader struct {
	UploadFunc func(ctx context.Context, filename string, content io.Reader) (string, error)
}

func (m *mockUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	return m.UploadFunc(ctx, filename, content)
}
