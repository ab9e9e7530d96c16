package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

// reportCachePattern covers every cached report payload. Mutations that move
// registration, attendance or feedback state invalidate it.
const reportCachePattern = "reports:*"

type registrationRepository interface {
	Register(ctx context.Context, studentID, eventID string) (*models.Registration, error)
	Cancel(ctx context.Context, id string) (*models.CancellationResult, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
}

// RegisterRequest describes a registration request.
type RegisterRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	EventID   string `json:"event_id" validate:"required"`
}

// RegistrationService orchestrates the registration state machine. Capacity
// and waitlist decisions happen in the repository transaction; the service
// validates input, translates errors and keeps observability concerns out of
// the data path.
type RegistrationService struct {
	repo      registrationRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(repo registrationRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Register creates a registration, confirmed while capacity allows and
// waitlisted otherwise. A full event is an expected condition resolved to
// waitlisting, not an error.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	registration, err := s.repo.Register(ctx, req.StudentID, req.EventID)
	if err != nil {
		return nil, passthrough(err, "failed to create registration")
	}
	s.metrics.RecordRegistration(registration.Status)
	s.cache.Invalidate(ctx, reportCachePattern)
	s.logger.Info("registration created",
		zap.String("registration_id", registration.ID),
		zap.String("event_id", registration.EventID),
		zap.String("status", string(registration.Status)))
	return registration, nil
}

// Cancel cancels a registration and reports the waitlist promotion the
// cancellation triggered, if any.
func (s *RegistrationService) Cancel(ctx context.Context, id string) (*models.CancellationResult, error) {
	result, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return nil, passthrough(err, "failed to cancel registration")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	fields := []zap.Field{
		zap.String("registration_id", result.Cancelled.ID),
		zap.String("event_id", result.Cancelled.EventID),
	}
	if result.Promoted != nil {
		fields = append(fields, zap.String("promoted_registration_id", result.Promoted.ID))
	}
	s.logger.Info("registration cancelled", fields...)
	return result, nil
}

// Get returns a registration by ID.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return registration, nil
}

// List returns registrations with pagination metadata.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown registration status filter")
	}
	registrations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return registrations, paginationFor(filter.Page, filter.PageSize, total), nil
}

// passthrough surfaces typed domain errors produced inside repository
// transactions and wraps everything else as internal.
func passthrough(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
