package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	"github.com/campuslink/campus-events-api/pkg/config"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

type mockReportRepo struct {
	eventTallies   map[string]models.EventTallies
	studentTallies map[string]models.StudentTallies
	allStudents    []models.StudentTallies
	colleges       []models.CollegeTallies
	popularity     []models.EventSummary
}

func (m *mockReportRepo) EventTallies(ctx context.Context, eventID string) (*models.EventTallies, error) {
	if t, ok := m.eventTallies[eventID]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportRepo) StudentTallies(ctx context.Context, studentID string) (*models.StudentTallies, error) {
	if t, ok := m.studentTallies[studentID]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportRepo) AllStudentTallies(ctx context.Context) ([]models.StudentTallies, error) {
	return m.allStudents, nil
}

func (m *mockReportRepo) CollegeTallies(ctx context.Context) ([]models.CollegeTallies, error) {
	return m.colleges, nil
}

func (m *mockReportRepo) EventPopularity(ctx context.Context) ([]models.EventSummary, error) {
	return m.popularity, nil
}

func newReportService(repo *mockReportRepo) *ReportService {
	cfg := config.ReportsConfig{AttendanceWeight: 1.0, FeedbackWeight: 0.5, TopStudentsLimit: 10}
	return NewReportService(repo, nil, nil, cfg, zap.NewNop())
}

func TestReportServiceEventReport(t *testing.T) {
	repo := &mockReportRepo{eventTallies: map[string]models.EventTallies{
		"evt-1": {
			EventID:    "evt-1",
			Title:      "Hackathon",
			Status:     models.EventStatusCompleted,
			Capacity:   10,
			Confirmed:  10,
			Waitlisted: 3,
			Cancelled:  2,
			Attended:   8,
			// ratings 5, 4, 3, 5, 4
			Feedback:    5,
			RatingTotal: 21,
		},
	}}
	svc := newReportService(repo)

	report, err := svc.EventReport(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 15, report.TotalRegistrations)
	assert.Equal(t, 10, report.ConfirmedCount)
	assert.Equal(t, 3, report.WaitlistedCount)
	assert.Equal(t, 8, report.AttendanceCount)
	assert.InDelta(t, 80.0, report.AttendancePercentage, 0.001)
	assert.InDelta(t, 4.2, report.AverageRating, 0.001)
	assert.Equal(t, 5, report.FeedbackCount)
}

func TestReportServiceEventReportZeroDenominators(t *testing.T) {
	repo := &mockReportRepo{eventTallies: map[string]models.EventTallies{
		"evt-1": {EventID: "evt-1", Title: "Empty", Status: models.EventStatusScheduled, Capacity: 50},
	}}
	svc := newReportService(repo)

	report, err := svc.EventReport(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Zero(t, report.AttendancePercentage)
	assert.Zero(t, report.AverageRating)
	assert.Zero(t, report.TotalRegistrations)
}

func TestReportServiceEventReportNotFound(t *testing.T) {
	svc := newReportService(&mockReportRepo{})

	_, err := svc.EventReport(context.Background(), "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReportServiceStudentParticipation(t *testing.T) {
	repo := &mockReportRepo{studentTallies: map[string]models.StudentTallies{
		"stu-1": {StudentID: "stu-1", FullName: "Ada", CollegeName: "Alpha", Attended: 4, Feedback: 2, RatingTotal: 9},
	}}
	svc := newReportService(repo)

	report, err := svc.StudentParticipation(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 4, report.EventsAttended)
	assert.Equal(t, 2, report.FeedbackCount)
	assert.InDelta(t, 4.5, report.AverageRatingGiven, 0.001)
	assert.InDelta(t, 5.0, report.ParticipationScore, 0.001)
}

func TestReportServiceParticipationScoreGrowsWithAttendance(t *testing.T) {
	svc := newReportService(&mockReportRepo{})

	low := svc.buildParticipation(&models.StudentTallies{StudentID: "a", Attended: 1, Feedback: 1})
	high := svc.buildParticipation(&models.StudentTallies{StudentID: "b", Attended: 5, Feedback: 1})
	assert.Greater(t, high.ParticipationScore, low.ParticipationScore)
}

func TestReportServiceTopStudentsRanking(t *testing.T) {
	repo := &mockReportRepo{allStudents: []models.StudentTallies{
		{StudentID: "stu-1", FullName: "Ada", Attended: 2, Feedback: 1},
		{StudentID: "stu-2", FullName: "Brin", Attended: 5, Feedback: 3},
		{StudentID: "stu-3", FullName: "Cady", Attended: 5, Feedback: 3},
		{StudentID: "stu-4", FullName: "Dee", Attended: 0, Feedback: 0},
	}}
	svc := newReportService(repo)

	reports, err := svc.TopStudents(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "Brin", reports[0].StudentName)
	assert.Equal(t, "Cady", reports[1].StudentName)
	assert.Equal(t, "Ada", reports[2].StudentName)
}

func TestReportServiceCollegeComparisonRanksByAttendance(t *testing.T) {
	repo := &mockReportRepo{colleges: []models.CollegeTallies{
		{CollegeID: "col-1", CollegeName: "Alpha", Students: 100, Events: 5, Registrations: 70, Confirmed: 50, Attended: 20},
		{CollegeID: "col-2", CollegeName: "Beta", Students: 80, Events: 3, Registrations: 45, Confirmed: 40, Attended: 30},
		{CollegeID: "col-3", CollegeName: "Gamma", Students: 10, Events: 1, Registrations: 0, Confirmed: 0, Attended: 0},
	}}
	svc := newReportService(repo)

	summaries, err := svc.CollegeComparison(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "Beta", summaries[0].CollegeName)
	assert.InDelta(t, 75.0, summaries[0].AttendancePercentage, 0.001)
	assert.Equal(t, "Alpha", summaries[1].CollegeName)
	assert.InDelta(t, 40.0, summaries[1].AttendancePercentage, 0.001)
	// the total spans waitlisted and cancelled rows, not just confirmed
	assert.Equal(t, 70, summaries[1].TotalRegistrations)
	assert.Equal(t, "Gamma", summaries[2].CollegeName)
	assert.Zero(t, summaries[2].AttendancePercentage)
}

func TestReportServiceEventPopularityPassesThrough(t *testing.T) {
	repo := &mockReportRepo{popularity: []models.EventSummary{
		{EventID: "evt-1", ConfirmedCount: 10},
		{EventID: "evt-2", ConfirmedCount: 4},
	}}
	svc := newReportService(repo)

	summaries, err := svc.EventPopularity(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "evt-1", summaries[0].EventID)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 66.67, round2(200.0/3.0), 0.001)
	assert.InDelta(t, 4.2, round2(21.0/5.0), 0.001)
	assert.InDelta(t, 0.0, round2(0), 0.001)
}
