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

type mockEventRepo struct {
	events      map[string]models.Event
	codes       map[string]bool
	created     *models.Event
	cancelCount int
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = "evt-new"
	}
	if m.events == nil {
		m.events = make(map[string]models.Event)
	}
	m.events[event.ID] = *event
	m.created = event
	return nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if e, ok := m.events[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEventRepo) ExistsByCode(ctx context.Context, collegeID, code string) (bool, error) {
	return m.codes[collegeID+":"+code], nil
}

func (m *mockEventRepo) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	var list []models.Event
	for _, e := range m.events {
		list = append(list, e)
	}
	return list, len(list), nil
}

func (m *mockEventRepo) Complete(ctx context.Context, id string) (*models.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	switch e.Status {
	case models.EventStatusCompleted:
		return &e, nil
	case models.EventStatusCancelled:
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "cancelled events cannot be completed")
	}
	e.Status = models.EventStatusCompleted
	m.events[id] = e
	return &e, nil
}

func (m *mockEventRepo) CancelWithRegistrations(ctx context.Context, id string) (*models.Event, int, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	if e.Status == models.EventStatusCancelled {
		return &e, 0, nil
	}
	e.Status = models.EventStatusCancelled
	m.events[id] = e
	return &e, m.cancelCount, nil
}

type mockCollegeRepo struct {
	colleges map[string]models.College
	codes    map[string]bool
	created  *models.College
}

func (m *mockCollegeRepo) Create(ctx context.Context, college *models.College) error {
	if college.ID == "" {
		college.ID = "col-new"
	}
	if m.colleges == nil {
		m.colleges = make(map[string]models.College)
	}
	m.colleges[college.ID] = *college
	m.created = college
	return nil
}

func (m *mockCollegeRepo) FindByID(ctx context.Context, id string) (*models.College, error) {
	if c, ok := m.colleges[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCollegeRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return m.codes[code], nil
}

func (m *mockCollegeRepo) List(ctx context.Context) ([]models.College, error) {
	var list []models.College
	for _, c := range m.colleges {
		list = append(list, c)
	}
	return list, nil
}

func validEventRequest() CreateEventRequest {
	starts := time.Now().Add(24 * time.Hour)
	return CreateEventRequest{
		CollegeID: "col-1",
		Code:      "HACK24",
		Title:     "Hackathon",
		Capacity:  100,
		StartsAt:  starts,
		EndsAt:    starts.Add(8 * time.Hour),
	}
}

func newEventService(repo *mockEventRepo, colleges *mockCollegeRepo) *EventService {
	return NewEventService(repo, colleges, nil, validator.New(), zap.NewNop())
}

func TestEventServiceCreate(t *testing.T) {
	repo := &mockEventRepo{}
	colleges := &mockCollegeRepo{colleges: map[string]models.College{"col-1": {ID: "col-1"}}}
	svc := newEventService(repo, colleges)

	event, err := svc.Create(context.Background(), validEventRequest())
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusScheduled, event.Status)
	assert.NotNil(t, repo.created)
}

func TestEventServiceCreateRejectsNonPositiveCapacity(t *testing.T) {
	svc := newEventService(&mockEventRepo{}, &mockCollegeRepo{})

	req := validEventRequest()
	req.Capacity = 0
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, appErrors.ErrValidation)

	req.Capacity = -5
	_, err = svc.Create(context.Background(), req)
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestEventServiceCreateRejectsInvertedWindow(t *testing.T) {
	svc := newEventService(&mockEventRepo{}, &mockCollegeRepo{})

	req := validEventRequest()
	req.EndsAt = req.StartsAt.Add(-time.Hour)
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, appErrors.ErrValidation)

	req.EndsAt = req.StartsAt
	_, err = svc.Create(context.Background(), req)
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestEventServiceCreateRejectsDuplicateCode(t *testing.T) {
	repo := &mockEventRepo{codes: map[string]bool{"col-1:HACK24": true}}
	colleges := &mockCollegeRepo{colleges: map[string]models.College{"col-1": {ID: "col-1"}}}
	svc := newEventService(repo, colleges)

	_, err := svc.Create(context.Background(), validEventRequest())
	require.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestEventServiceCreateRejectsUnknownCollege(t *testing.T) {
	svc := newEventService(&mockEventRepo{}, &mockCollegeRepo{})

	_, err := svc.Create(context.Background(), validEventRequest())
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEventServiceCancelCascades(t *testing.T) {
	repo := &mockEventRepo{
		events:      map[string]models.Event{"evt-1": {ID: "evt-1", Status: models.EventStatusScheduled}},
		cancelCount: 4,
	}
	svc := newEventService(repo, &mockCollegeRepo{})

	result, err := svc.Cancel(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCancelled, result.Event.Status)
	assert.Equal(t, 4, result.CancelledRegistrations)

	// repeat is a no-op
	result, err = svc.Cancel(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Zero(t, result.CancelledRegistrations)
}

func TestEventServiceComplete(t *testing.T) {
	repo := &mockEventRepo{events: map[string]models.Event{"evt-1": {ID: "evt-1", Status: models.EventStatusScheduled}}}
	svc := newEventService(repo, &mockCollegeRepo{})

	event, err := svc.Complete(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCompleted, event.Status)
	assert.Equal(t, models.EventStatusCompleted, repo.events["evt-1"].Status)
}

func TestEventServiceCompleteRejectsCancelled(t *testing.T) {
	repo := &mockEventRepo{events: map[string]models.Event{"evt-1": {ID: "evt-1", Status: models.EventStatusCancelled}}}
	svc := newEventService(repo, &mockCollegeRepo{})

	_, err := svc.Complete(context.Background(), "evt-1")
	require.ErrorIs(t, err, appErrors.ErrInvalidState)
}

func TestEventServiceListRejectsUnknownStatus(t *testing.T) {
	svc := newEventService(&mockEventRepo{}, &mockCollegeRepo{})

	_, _, err := svc.List(context.Background(), models.EventFilter{Status: "RUNNING"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}
