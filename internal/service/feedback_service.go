package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

type feedbackRepository interface {
	Submit(ctx context.Context, attendanceID string, rating int, comment *string) (*models.Feedback, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.FeedbackRecord, error)
}

// SubmitFeedbackRequest describes a feedback submission.
type SubmitFeedbackRequest struct {
	AttendanceID string  `json:"attendance_id" validate:"required"`
	Rating       int     `json:"rating" validate:"required,min=1,max=5"`
	Comment      *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// FeedbackService collects post-event ratings. Feedback requires attendance,
// so only students who were present can rate.
type FeedbackService struct {
	repo      feedbackRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedbackService constructs FeedbackService.
func NewFeedbackService(repo feedbackRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Submit stores one rating per attendance record.
func (s *FeedbackService) Submit(ctx context.Context, req SubmitFeedbackRequest) (*models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be between 1 and 5")
	}
	feedback, err := s.repo.Submit(ctx, req.AttendanceID, req.Rating, req.Comment)
	if err != nil {
		return nil, passthrough(err, "failed to submit feedback")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	s.logger.Info("feedback submitted",
		zap.String("feedback_id", feedback.ID),
		zap.String("attendance_id", feedback.AttendanceID),
		zap.Int("rating", feedback.Rating))
	return feedback, nil
}

// ListByEvent returns feedback entries for an event.
func (s *FeedbackService) ListByEvent(ctx context.Context, eventID string) ([]models.FeedbackRecord, error) {
	records, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	return records, nil
}
