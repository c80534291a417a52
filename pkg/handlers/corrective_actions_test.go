package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/apperrors"
	"github.com/prepline/prepline-engine/pkg/models"
	"github.com/prepline/prepline-engine/pkg/services"
)

type mockActionService struct {
	RecordActionFunc   func(ctx context.Context, input services.RecordActionInput) (*models.CorrectiveAction, error)
	CompleteActionFunc func(ctx context.Context, id uuid.UUID) error
	ListActionsFunc    func(ctx context.Context, checkID uuid.UUID) ([]*models.CorrectiveAction, error)
}

func (m *mockActionService) RecordAction(ctx context.Context, input services.RecordActionInput) (*models.CorrectiveAction, error) {
	return m.RecordActionFunc(ctx, input)
}

func (m *mockActionService) CompleteAction(ctx context.Context, id uuid.UUID) error {
	return m.CompleteActionFunc(ctx, id)
}

func (m *mockActionService) ListActions(ctx context.Context, checkID uuid.UUID) ([]*models.CorrectiveAction, error) {
	return m.ListActionsFunc(ctx, checkID)
}

func newActionMux(svc services.CorrectiveActionService) *http.ServeMux {
	mux := http.NewServeMux()
	NewCorrectiveActionHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func multipartBody(t *testing.T, fields map[string]string, photoName, photoContent string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photoName != "" {
		part, err := w.CreateFormFile("photo", photoName)
		require.NoError(t, err)
		_, err = part.Write([]byte(photoContent))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestRecordActionHandler(t *testing.T) {
	checkID := uuid.New()
	var gotInput services.RecordActionInput
	svc := &mockActionService{RecordActionFunc: func(ctx context.Context, input services.RecordActionInput) (*models.CorrectiveAction, error) {
		gotInput = input
		return &models.CorrectiveAction{ID: uuid.New(), ActionType: input.ActionType, RequiresRecheck: true}, nil
	}}

	body, contentType := multipartBody(t, map[string]string{
		"action_type": models.ActionDiscardBatch,
		"description": "Batch discarded",
	}, "", "")

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/checks/%s/corrective-actions", checkID), body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newActionMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, checkID, gotInput.CheckID)
	assert.Equal(t, models.ActionDiscardBatch, gotInput.ActionType)
	assert.Nil(t, gotInput.Photo)
}

func TestRecordActionHandlerWithPhoto(t *testing.T) {
	svc := &mockActionService{RecordActionFunc: func(ctx context.Context, input services.RecordActionInput) (*models.CorrectiveAction, error) {
		require.NotNil(t, input.Photo)
		assert.Equal(t, "evidence.jpg", input.PhotoFilename)
		content, err := io.ReadAll(input.Photo)
		require.NoError(t, err)
		assert.Equal(t, "jpeg bytes", string(content))
		return &models.CorrectiveAction{ID: uuid.New()}, nil
	}}

	body, contentType := multipartBody(t, map[string]string{
		"action_type": models.ActionStopService,
	}, "evidence.jpg", "jpeg bytes")

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/checks/%s/corrective-actions", uuid.New()), body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newActionMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRecordActionHandlerInvalidTypeIs400(t *testing.T) {
	svc := &mockActionService{RecordActionFunc: func(ctx context.Context, input services.RecordActionInput) (*models.CorrectiveAction, error) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidActionType, input.ActionType)
	}}

	body, contentType := multipartBody(t, map[string]string{"action_type": "ignore"}, "", "")
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/checks/%s/corrective-actions", uuid.New()), body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newActionMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordActionHandlerConflictIs409(t *testing.T) {
	svc := &mockActionService{RecordActionFunc: func(ctx context.Context, input services.RecordActionInput) (*models.CorrectiveAction, error) {
		return nil, fmt.Errorf("%w: corrective action requires a failed check", apperrors.ErrConflict)
	}}

	body, contentType := multipartBody(t, map[string]string{"action_type": models.ActionDiscardBatch}, "", "")
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/checks/%s/corrective-actions", uuid.New()), body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newActionMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCompleteActionHandler(t *testing.T) {
	actionID := uuid.New()
	var got uuid.UUID
	svc := &mockActionService{CompleteActionFunc: func(ctx context.Context, id uuid.UUID) error {
		got = id
		return nil
	}}

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/corrective-actions/%s/complete", actionID), nil)
	rec := httptest.NewRecorder()
	newActionMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, actionID, got)
}
