package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-events-api/internal/service"
	"github.com/campuslink/campus-events-api/pkg/response"
)

// ReportHandler exposes the aggregate report endpoints.
type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService, exports *service.ExportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// Event godoc
// @Summary Event report
// @Tags Reports
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /reports/events/{id} [get]
func (h *ReportHandler) Event(c *gin.Context) {
	report, err := h.reports.EventReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// EventExport godoc
// @Summary Export event report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Event ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /reports/events/{id}/export [get]
func (h *ReportHandler) EventExport(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	result, err := h.exports.EventReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// TopStudents godoc
// @Summary Rank students by participation
// @Tags Reports
// @Produce json
// @Param limit query int false "Number of students"
// @Success 200 {object} response.Envelope
// @Router /reports/top-students [get]
func (h *ReportHandler) TopStudents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	reports, err := h.reports.TopStudents(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Colleges godoc
// @Summary Compare colleges by engagement
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/colleges [get]
func (h *ReportHandler) Colleges(c *gin.Context) {
	summaries, err := h.reports.CollegeComparison(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// Popularity godoc
// @Summary Rank events by confirmed registrations
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/events [get]
func (h *ReportHandler) Popularity(c *gin.Context) {
	summaries, err := h.reports.EventPopularity(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}
