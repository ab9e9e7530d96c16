package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

type mockRegistrationRepo struct {
	registrations map[string]models.Registration
	registerErr   error
	nextStatus    models.RegistrationStatus
	cancelResult  *models.CancellationResult
	cancelErr     error
	registered    []string
}

func (m *mockRegistrationRepo) Register(ctx context.Context, studentID, eventID string) (*models.Registration, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	status := m.nextStatus
	if status == "" {
		status = models.RegistrationStatusConfirmed
	}
	m.registered = append(m.registered, studentID+":"+eventID)
	return &models.Registration{
		ID:        "reg-new",
		StudentID: studentID,
		EventID:   eventID,
		Status:    status,
		CreatedAt: time.Now(),
	}, nil
}

func (m *mockRegistrationRepo) Cancel(ctx context.Context, id string) (*models.CancellationResult, error) {
	if m.cancelErr != nil {
		return nil, m.cancelErr
	}
	return m.cancelResult, nil
}

func (m *mockRegistrationRepo) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	if r, ok := m.registrations[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRegistrationRepo) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	var list []models.Registration
	for _, r := range m.registrations {
		list = append(list, r)
	}
	return list, len(list), nil
}

func TestRegistrationServiceRegister(t *testing.T) {
	repo := &mockRegistrationRepo{}
	svc := NewRegistrationService(repo, nil, nil, validator.New(), zap.NewNop())

	registration, err := svc.Register(context.Background(), RegisterRequest{StudentID: "s1", EventID: "e1"})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusConfirmed, registration.Status)
	assert.Contains(t, repo.registered, "s1:e1")
}

func TestRegistrationServiceRegisterWaitlisted(t *testing.T) {
	repo := &mockRegistrationRepo{nextStatus: models.RegistrationStatusWaitlisted}
	svc := NewRegistrationService(repo, nil, nil, validator.New(), zap.NewNop())

	registration, err := svc.Register(context.Background(), RegisterRequest{StudentID: "s1", EventID: "e1"})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusWaitlisted, registration.Status)
}

func TestRegistrationServiceRegisterValidatesPayload(t *testing.T) {
	svc := NewRegistrationService(&mockRegistrationRepo{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "s1"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRegistrationServiceRegisterPassesThroughDuplicate(t *testing.T) {
	repo := &mockRegistrationRepo{registerErr: appErrors.ErrDuplicateRegistration}
	svc := NewRegistrationService(repo, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "s1", EventID: "e1"})
	require.ErrorIs(t, err, appErrors.ErrDuplicateRegistration)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 409, appErr.Status)
}

func TestRegistrationServiceCancelReportsPromotion(t *testing.T) {
	promoted := &models.Registration{ID: "reg-2", Status: models.RegistrationStatusConfirmed}
	repo := &mockRegistrationRepo{cancelResult: &models.CancellationResult{
		Cancelled: models.Registration{ID: "reg-1", EventID: "e1", Status: models.RegistrationStatusCancelled},
		Promoted:  promoted,
	}}
	svc := NewRegistrationService(repo, nil, nil, validator.New(), zap.NewNop())

	result, err := svc.Cancel(context.Background(), "reg-1")
	require.NoError(t, err)
	require.NotNil(t, result.Promoted)
	assert.Equal(t, "reg-2", result.Promoted.ID)
}

func TestRegistrationServiceGetNotFound(t *testing.T) {
	svc := NewRegistrationService(&mockRegistrationRepo{}, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRegistrationServiceListDefaultsPagination(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[string]models.Registration{
		"reg-1": {ID: "reg-1", Status: models.RegistrationStatusConfirmed},
	}}
	svc := NewRegistrationService(repo, nil, nil, validator.New(), zap.NewNop())

	registrations, pagination, err := svc.List(context.Background(), models.RegistrationFilter{})
	require.NoError(t, err)
	assert.Len(t, registrations, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}
