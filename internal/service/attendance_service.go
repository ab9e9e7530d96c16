package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

type attendanceRepository interface {
	Mark(ctx context.Context, registrationID string) (*models.Attendance, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error)
}

// MarkAttendanceRequest describes an attendance check-in request.
type MarkAttendanceRequest struct {
	RegistrationID string `json:"registration_id" validate:"required"`
}

// AttendanceService records attendance for confirmed registrations.
type AttendanceService struct {
	repo      attendanceRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(repo attendanceRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Mark records that a confirmed registrant was present. At most one record
// per registration; waitlisted and cancelled registrations are rejected.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	attendance, err := s.repo.Mark(ctx, req.RegistrationID)
	if err != nil {
		return nil, passthrough(err, "failed to mark attendance")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	s.logger.Info("attendance marked",
		zap.String("attendance_id", attendance.ID),
		zap.String("registration_id", attendance.RegistrationID))
	return attendance, nil
}

// ListByEvent returns attendance records for an event.
func (s *AttendanceService) ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error) {
	records, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}
