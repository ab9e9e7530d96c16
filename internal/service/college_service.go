package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

type collegeRepository interface {
	Create(ctx context.Context, college *models.College) error
	FindByID(ctx context.Context, id string) (*models.College, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]models.College, error)
}

// CreateCollegeRequest describes a college creation request.
type CreateCollegeRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=200"`
	Code     string  `json:"code" validate:"required,alphanum,min=2,max=20"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=200"`
}

// CollegeService manages colleges.
type CollegeService struct {
	repo      collegeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCollegeService constructs CollegeService.
func NewCollegeService(repo collegeRepository, validate *validator.Validate, logger *zap.Logger) *CollegeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollegeService{repo: repo, validator: validate, logger: logger}
}

// Create registers a new college. Codes are unique across the system.
func (s *CollegeService) Create(ctx context.Context, req CreateCollegeRequest) (*models.College, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid college payload")
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check college code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "college code already in use")
	}
	college := &models.College{Name: req.Name, Code: req.Code, Location: req.Location}
	if err := s.repo.Create(ctx, college); err != nil {
		return nil, passthrough(err, "failed to create college")
	}
	s.logger.Info("college created", zap.String("college_id", college.ID), zap.String("code", college.Code))
	return college, nil
}

// Get returns a college by ID.
func (s *CollegeService) Get(ctx context.Context, id string) (*models.College, error) {
	college, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "college not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load college")
	}
	return college, nil
}

// List returns all colleges.
func (s *CollegeService) List(ctx context.Context) ([]models.College, error) {
	colleges, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list colleges")
	}
	return colleges, nil
}
