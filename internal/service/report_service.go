package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	"github.com/campuslink/campus-events-api/pkg/config"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

type reportRepository interface {
	EventTallies(ctx context.Context, eventID string) (*models.EventTallies, error)
	StudentTallies(ctx context.Context, studentID string) (*models.StudentTallies, error)
	AllStudentTallies(ctx context.Context) ([]models.StudentTallies, error)
	CollegeTallies(ctx context.Context) ([]models.CollegeTallies, error)
	EventPopularity(ctx context.Context) ([]models.EventSummary, error)
}

// ReportService serves aggregate reports. Reads go through the cache when
// enabled; a cached report may lag mutations by up to the configured TTL.
type ReportService struct {
	repo    reportRepository
	cache   *CacheService
	metrics *MetricsService
	cfg     config.ReportsConfig
	logger  *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(repo reportRepository, cache *CacheService, metrics *MetricsService, cfg config.ReportsConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TopStudentsLimit <= 0 {
		cfg.TopStudentsLimit = 10
	}
	return &ReportService{repo: repo, cache: cache, metrics: metrics, cfg: cfg, logger: logger}
}

// observe times an aggregate query for the db_query_duration metric.
func (s *ReportService) observe(label string, start time.Time) {
	s.metrics.ObserveDBQuery(label, time.Since(start))
}

// EventReport aggregates registrations, attendance and feedback for one
// event. Percentages and averages report 0 when their denominator is 0.
func (s *ReportService) EventReport(ctx context.Context, eventID string) (*models.EventReport, error) {
	cacheKey := fmt.Sprintf("reports:event:%s", eventID)
	var cached models.EventReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	start := time.Now()
	tallies, err := s.repo.EventTallies(ctx, eventID)
	s.observe("event_tallies", start)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build event report")
	}

	report := buildEventReport(tallies)
	if err := s.cache.Set(ctx, cacheKey, report, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("event report cache write failed", zap.String("event_id", eventID), zap.Error(err))
	}
	return report, nil
}

func buildEventReport(t *models.EventTallies) *models.EventReport {
	return &models.EventReport{
		EventID:              t.EventID,
		EventTitle:           t.Title,
		EventStatus:          t.Status,
		Capacity:             t.Capacity,
		TotalRegistrations:   t.Confirmed + t.Waitlisted + t.Cancelled,
		ConfirmedCount:       t.Confirmed,
		WaitlistedCount:      t.Waitlisted,
		CancelledCount:       t.Cancelled,
		AttendanceCount:      t.Attended,
		AttendancePercentage: percentage(t.Attended, t.Confirmed),
		AverageRating:        average(t.RatingTotal, t.Feedback),
		FeedbackCount:        t.Feedback,
	}
}

// StudentParticipation summarises one student's engagement.
func (s *ReportService) StudentParticipation(ctx context.Context, studentID string) (*models.ParticipationReport, error) {
	cacheKey := fmt.Sprintf("reports:student:%s", studentID)
	var cached models.ParticipationReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	start := time.Now()
	tallies, err := s.repo.StudentTallies(ctx, studentID)
	s.observe("student_tallies", start)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build participation report")
	}

	report := s.buildParticipation(tallies)
	if err := s.cache.Set(ctx, cacheKey, report, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("participation cache write failed", zap.String("student_id", studentID), zap.Error(err))
	}
	return report, nil
}

func (s *ReportService) buildParticipation(t *models.StudentTallies) *models.ParticipationReport {
	score := s.cfg.AttendanceWeight*float64(t.Attended) + s.cfg.FeedbackWeight*float64(t.Feedback)
	return &models.ParticipationReport{
		StudentID:          t.StudentID,
		StudentName:        t.FullName,
		CollegeName:        t.CollegeName,
		EventsAttended:     t.Attended,
		FeedbackCount:      t.Feedback,
		AverageRatingGiven: average(t.RatingTotal, t.Feedback),
		ParticipationScore: round2(score),
	}
}

// TopStudents ranks students by participation score. Ties break by events
// attended, then by name for a stable ordering.
func (s *ReportService) TopStudents(ctx context.Context, limit int) ([]models.ParticipationReport, error) {
	if limit <= 0 {
		limit = s.cfg.TopStudentsLimit
	}
	cacheKey := fmt.Sprintf("reports:top-students:%d", limit)
	var cached []models.ParticipationReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	start := time.Now()
	tallies, err := s.repo.AllStudentTallies(ctx)
	s.observe("all_student_tallies", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank students")
	}

	reports := make([]models.ParticipationReport, 0, len(tallies))
	for i := range tallies {
		reports = append(reports, *s.buildParticipation(&tallies[i]))
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].ParticipationScore != reports[j].ParticipationScore {
			return reports[i].ParticipationScore > reports[j].ParticipationScore
		}
		if reports[i].EventsAttended != reports[j].EventsAttended {
			return reports[i].EventsAttended > reports[j].EventsAttended
		}
		return reports[i].StudentName < reports[j].StudentName
	})
	if len(reports) > limit {
		reports = reports[:limit]
	}

	if err := s.cache.Set(ctx, cacheKey, reports, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("top students cache write failed", zap.Error(err))
	}
	return reports, nil
}

// CollegeComparison ranks colleges by attendance percentage, ties broken by
// total registrations.
func (s *ReportService) CollegeComparison(ctx context.Context) ([]models.CollegeSummary, error) {
	const cacheKey = "reports:colleges"
	var cached []models.CollegeSummary
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	start := time.Now()
	tallies, err := s.repo.CollegeTallies(ctx)
	s.observe("college_tallies", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compare colleges")
	}

	summaries := make([]models.CollegeSummary, 0, len(tallies))
	for _, t := range tallies {
		summaries = append(summaries, models.CollegeSummary{
			CollegeID:            t.CollegeID,
			CollegeName:          t.CollegeName,
			TotalStudents:        t.Students,
			TotalEvents:          t.Events,
			TotalRegistrations:   t.Registrations,
			AttendancePercentage: percentage(t.Attended, t.Confirmed),
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].AttendancePercentage != summaries[j].AttendancePercentage {
			return summaries[i].AttendancePercentage > summaries[j].AttendancePercentage
		}
		return summaries[i].TotalRegistrations > summaries[j].TotalRegistrations
	})

	if err := s.cache.Set(ctx, cacheKey, summaries, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("college comparison cache write failed", zap.Error(err))
	}
	return summaries, nil
}

// EventPopularity ranks events by confirmed registrations.
func (s *ReportService) EventPopularity(ctx context.Context) ([]models.EventSummary, error) {
	const cacheKey = "reports:popularity"
	var cached []models.EventSummary
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	start := time.Now()
	summaries, err := s.repo.EventPopularity(ctx)
	s.observe("event_popularity", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank events")
	}

	if err := s.cache.Set(ctx, cacheKey, summaries, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("event popularity cache write failed", zap.Error(err))
	}
	return summaries, nil
}

// percentage returns numerator/denominator as a percent, 0 when the
// denominator is 0, rounded to two decimals.
func percentage(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return round2(float64(numerator) / float64(denominator) * 100)
}

// average returns total/count, 0 when count is 0, rounded to two decimals.
func average(total, count int) float64 {
	if count == 0 {
		return 0
	}
	return round2(float64(total) / float64(count))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
