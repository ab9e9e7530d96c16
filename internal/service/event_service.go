package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

type eventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	ExistsByCode(ctx context.Context, collegeID, code string) (bool, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	Complete(ctx context.Context, id string) (*models.Event, error)
	CancelWithRegistrations(ctx context.Context, id string) (*models.Event, int, error)
}

// CreateEventRequest describes an event creation request.
type CreateEventRequest struct {
	CollegeID   string    `json:"college_id" validate:"required"`
	Code        string    `json:"code" validate:"required,min=2,max=30"`
	Title       string    `json:"title" validate:"required,min=2,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Capacity    int       `json:"capacity" validate:"required,gt=0"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
}

// EventCancellation reports the outcome of cancelling an event.
type EventCancellation struct {
	Event                  *models.Event `json:"event"`
	CancelledRegistrations int           `json:"cancelled_registrations"`
}

// EventService manages the event lifecycle.
type EventService struct {
	repo      eventRepository
	colleges  collegeRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs EventService.
func NewEventService(repo eventRepository, colleges collegeRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, colleges: colleges, cache: cache, validator: validate, logger: logger}
}

// Create schedules a new event. The code must be unique within the college
// and the time window must be ordered.
func (s *EventService) Create(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event must end after it starts")
	}
	if _, err := s.colleges.FindByID(ctx, req.CollegeID); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "college not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load college")
	}
	exists, err := s.repo.ExistsByCode(ctx, req.CollegeID, req.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check event code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "event code already in use for this college")
	}
	event := &models.Event{
		CollegeID:   req.CollegeID,
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Capacity:    req.Capacity,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Status:      models.EventStatusScheduled,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, passthrough(err, "failed to create event")
	}
	s.logger.Info("event created",
		zap.String("event_id", event.ID),
		zap.String("college_id", event.CollegeID),
		zap.Int("capacity", event.Capacity))
	return event, nil
}

// Get returns an event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// List returns events with pagination metadata.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown event status filter")
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Cancel cancels the event and every active registration in one transaction.
// Waitlisted registrations are cancelled too; nothing is promoted. Repeating
// the call is a no-op.
func (s *EventService) Cancel(ctx context.Context, id string) (*EventCancellation, error) {
	event, cancelled, err := s.repo.CancelWithRegistrations(ctx, id)
	if err != nil {
		return nil, passthrough(err, "failed to cancel event")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	s.logger.Info("event cancelled",
		zap.String("event_id", event.ID),
		zap.Int("cancelled_registrations", cancelled))
	return &EventCancellation{Event: event, CancelledRegistrations: cancelled}, nil
}

// Complete marks a scheduled event as completed. The legality check runs in
// the repository transaction with the event row locked. Completed events keep
// accepting attendance and feedback for their confirmed registrants.
func (s *EventService) Complete(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.Complete(ctx, id)
	if err != nil {
		return nil, passthrough(err, "failed to complete event")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	s.logger.Info("event completed", zap.String("event_id", event.ID))
	return event, nil
}
