package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
)

func exportFixtureRepo() *mockReportRepo {
	return &mockReportRepo{eventTallies: map[string]models.EventTallies{
		"evt-1": {
			EventID:     "evt-1",
			Title:       "Hackathon",
			Status:      models.EventStatusCompleted,
			Capacity:    10,
			Confirmed:   10,
			Attended:    8,
			Feedback:    5,
			RatingTotal: 21,
		},
	}}
}

func TestExportServiceEventReportCSV(t *testing.T) {
	svc := NewExportService(newReportService(exportFixtureRepo()), zap.NewNop())

	result, err := svc.EventReport(context.Background(), "evt-1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "event-report-evt-1.csv", result.Filename)

	body := string(result.Content)
	assert.True(t, strings.HasPrefix(body, "Metric,Value"))
	assert.Contains(t, body, "Attendance %,80.00")
	assert.Contains(t, body, "Average Rating,4.20")
}

func TestExportServiceEventReportPDF(t *testing.T) {
	svc := NewExportService(newReportService(exportFixtureRepo()), zap.NewNop())

	result, err := svc.EventReport(context.Background(), "evt-1", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(newReportService(exportFixtureRepo()), zap.NewNop())

	_, err := svc.EventReport(context.Background(), "evt-1", ExportFormat("xlsx"))
	require.ErrorIs(t, err, appErrors.ErrValidation)
}
