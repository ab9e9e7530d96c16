package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/campuslink/campus-events-api/internal/models"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
	"github.com/campuslink/campus-events-api/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes plus HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders event reports as downloadable documents.
type ExportService struct {
	reports *ReportService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(reports *ReportService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reports: reports,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// EventReport renders the event report in the requested format.
func (s *ExportService) EventReport(ctx context.Context, eventID string, format ExportFormat) (*ExportResult, error) {
	report, err := s.reports.EventReport(ctx, eventID)
	if err != nil {
		return nil, err
	}
	dataset := eventReportDataset(report)

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("event-report-%s.csv", report.EventID),
		}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("event-report-%s.pdf", report.EventID),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func eventReportDataset(report *models.EventReport) export.Dataset {
	return export.Dataset{
		Title:   fmt.Sprintf("Event Report: %s", report.EventTitle),
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Event", report.EventTitle},
			{"Status", string(report.EventStatus)},
			{"Capacity", strconv.Itoa(report.Capacity)},
			{"Total Registrations", strconv.Itoa(report.TotalRegistrations)},
			{"Confirmed", strconv.Itoa(report.ConfirmedCount)},
			{"Waitlisted", strconv.Itoa(report.WaitlistedCount)},
			{"Cancelled", strconv.Itoa(report.CancelledCount)},
			{"Attended", strconv.Itoa(report.AttendanceCount)},
			{"Attendance %", strconv.FormatFloat(report.AttendancePercentage, 'f', 2, 64)},
			{"Feedback Count", strconv.Itoa(report.FeedbackCount)},
			{"Average Rating", strconv.FormatFloat(report.AverageRating, 'f', 2, 64)},
		},
	}
}
