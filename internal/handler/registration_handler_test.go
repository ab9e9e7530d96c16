package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	"github.com/campuslink/campus-events-api/internal/service"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

type stubRegistrationRepo struct {
	registerErr error
	status      models.RegistrationStatus
}

func (s *stubRegistrationRepo) Register(ctx context.Context, studentID, eventID string) (*models.Registration, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	status := s.status
	if status == "" {
		status = models.RegistrationStatusConfirmed
	}
	return &models.Registration{ID: "reg-1", StudentID: studentID, EventID: eventID, Status: status, CreatedAt: time.Now()}, nil
}

func (s *stubRegistrationRepo) Cancel(ctx context.Context, id string) (*models.CancellationResult, error) {
	return &models.CancellationResult{Cancelled: models.Registration{ID: id, Status: models.RegistrationStatusCancelled}}, nil
}

func (s *stubRegistrationRepo) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	return &models.Registration{ID: id, Status: models.RegistrationStatusConfirmed}, nil
}

func (s *stubRegistrationRepo) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	return nil, 0, nil
}

func buildRegistrationRouter(repo *stubRegistrationRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewRegistrationService(repo, nil, nil, validator.New(), zap.NewNop())
	h := NewRegistrationHandler(svc)

	r := gin.New()
	r.POST("/registrations", h.Create)
	r.DELETE("/registrations/:id", h.Cancel)
	return r
}

func TestRegistrationHandlerCreate(t *testing.T) {
	router := buildRegistrationRouter(&stubRegistrationRepo{})

	req, _ := http.NewRequest(http.MethodPost, "/registrations", strings.NewReader(`{"student_id":"s1","event_id":"e1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.Contains(t, resp.Body.String(), `"status":"CONFIRMED"`)
}

func TestRegistrationHandlerCreateWaitlisted(t *testing.T) {
	router := buildRegistrationRouter(&stubRegistrationRepo{status: models.RegistrationStatusWaitlisted})

	req, _ := http.NewRequest(http.MethodPost, "/registrations", strings.NewReader(`{"student_id":"s1","event_id":"e1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.Contains(t, resp.Body.String(), `"status":"WAITLISTED"`)
}

func TestRegistrationHandlerCreateDuplicate(t *testing.T) {
	router := buildRegistrationRouter(&stubRegistrationRepo{registerErr: appErrors.ErrDuplicateRegistration})

	req, _ := http.NewRequest(http.MethodPost, "/registrations", strings.NewReader(`{"student_id":"s1","event_id":"e1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusConflict, resp.Code)
	require.Contains(t, resp.Body.String(), "DUPLICATE_REGISTRATION")
}

func TestRegistrationHandlerCreateMissingFields(t *testing.T) {
	router := buildRegistrationRouter(&stubRegistrationRepo{})

	req, _ := http.NewRequest(http.MethodPost, "/registrations", strings.NewReader(`{"student_id":"s1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRegistrationHandlerCancel(t *testing.T) {
	router := buildRegistrationRouter(&stubRegistrationRepo{})

	req, _ := http.NewRequest(http.MethodDelete, "/registrations/reg-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"status":"CANCELLED"`)
}
