package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-events-api/internal/service"
	appErrors "github.com/campuslink/campus-events-api/pkg/errors"
	"github.com/campuslink/campus-events-api/pkg/response"
)

// CollegeHandler exposes college endpoints.
type CollegeHandler struct {
	colleges *service.CollegeService
}

// NewCollegeHandler constructs CollegeHandler.
func NewCollegeHandler(colleges *service.CollegeService) *CollegeHandler {
	return &CollegeHandler{colleges: colleges}
}

// Create godoc
// @Summary Create college
// @Tags Colleges
// @Accept json
// @Produce json
// @Param payload body service.CreateCollegeRequest true "College payload"
// @Success 201 {object} response.Envelope
// @Router /colleges [post]
func (h *CollegeHandler) Create(c *gin.Context) {
	var req service.CreateCollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	college, err := h.colleges.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, college)
}

// Get godoc
// @Summary Get college by ID
// @Tags Colleges
// @Produce json
// @Param id path string true "College ID"
// @Success 200 {object} response.Envelope
// @Router /colleges/{id} [get]
func (h *CollegeHandler) Get(c *gin.Context) {
	college, err := h.colleges.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, college, nil)
}

// List godoc
// @Summary List colleges
// @Tags Colleges
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /colleges [get]
func (h *CollegeHandler) List(c *gin.Context) {
	colleges, err := h.colleges.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, colleges, nil)
}
