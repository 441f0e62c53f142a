package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/accompaniment-planner-api/internal/dto"
	"github.com/noah-isme/accompaniment-planner-api/internal/middleware"
	"github.com/noah-isme/accompaniment-planner-api/internal/service"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
	"github.com/noah-isme/accompaniment-planner-api/pkg/response"
)

type planningService interface {
	LoadSession(ctx context.Context, specialistID string, refreshSchedule bool) (*dto.PlanningSessionResponse, error)
	DiscardSession(specialistID string)
	WeekPlan(ctx context.Context, specialistID, weekID string) (*dto.WeekPlanResponse, error)
	Select(ctx context.Context, specialistID, weekID, teacherID string, req dto.SelectSessionRequest) (*dto.WeekPlanResponse, error)
	Deselect(ctx context.Context, specialistID, weekID, teacherID string) (*dto.WeekPlanResponse, error)
	AutoAssign(ctx context.Context, specialistID, weekID string) (*dto.AutoAssignResponse, error)
	Confirm(ctx context.Context, specialistID, weekID string) (*dto.ConfirmationResponse, error)
	DiscardWeek(ctx context.Context, specialistID, weekID string) (*dto.WeekPlanResponse, error)
	Budget(ctx context.Context, specialistID, month string) (*dto.BudgetResponse, error)
}

type planExporter interface {
	Export(ctx context.Context, specialistID, weekID, format string) (*service.PlanExport, error)
}

// PlanningHandler exposes the weekly planning screen.
type PlanningHandler struct {
	service  planningService
	exporter planExporter
}

// NewPlanningHandler constructs the planning handler.
func NewPlanningHandler(service planningService, exporter planExporter) *PlanningHandler {
	return &PlanningHandler{service: service, exporter: exporter}
}

// LoadSession godoc
// @Summary Load or refresh the planning session
// @Tags Planner
// @Accept json
// @Produce json
// @Param refresh query bool false "Bypass the teacher schedule cache"
// @Param payload body dto.LoadPlanningSessionRequest false "Target specialist (admins)"
// @Success 200 {object} response.Envelope
// @Router /planner/session [post]
func (h *PlanningHandler) LoadSession(c *gin.Context) {
	var req dto.LoadPlanningSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
			return
		}
	}
	specialistID := specialistScope(c, req.SpecialistID)
	if specialistID == "" {
		return
	}
	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))

	result, err := h.service.LoadSession(c.Request.Context(), specialistID, refresh)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "schedule_cached", result.ScheduleCached)
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

// DiscardSession godoc
// @Summary Discard the planning session
// @Tags Planner
// @Success 204
// @Router /planner/session [delete]
func (h *PlanningHandler) DiscardSession(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	h.service.DiscardSession(specialistID)
	response.NoContent(c)
}

// Week godoc
// @Summary Get the planning view of an ISO week
// @Tags Planner
// @Produce json
// @Param weekId path string true "ISO week, e.g. 2026-W42"
// @Success 200 {object} response.Envelope
// @Router /planner/weeks/{weekId} [get]
func (h *PlanningHandler) Week(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	result, err := h.service.WeekPlan(c.Request.Context(), specialistID, c.Param("weekId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Select godoc
// @Summary Select a teacher's session for the week
// @Tags Planner
// @Accept json
// @Produce json
// @Param weekId path string true "ISO week"
// @Param teacherId path string true "Teacher ID"
// @Param payload body dto.SelectSessionRequest true "Candidate index"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /planner/weeks/{weekId}/selections/{teacherId} [put]
func (h *PlanningHandler) Select(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	var req dto.SelectSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}
	result, err := h.service.Select(c.Request.Context(), specialistID, c.Param("weekId"), c.Param("teacherId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Deselect godoc
// @Summary Remove a teacher's selection for the week
// @Tags Planner
// @Produce json
// @Param weekId path string true "ISO week"
// @Param teacherId path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /planner/weeks/{weekId}/selections/{teacherId} [delete]
func (h *PlanningHandler) Deselect(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	result, err := h.service.Deselect(c.Request.Context(), specialistID, c.Param("weekId"), c.Param("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// AutoAssign godoc
// @Summary Greedily assign one session per unplanned teacher
// @Tags Planner
// @Produce json
// @Param weekId path string true "ISO week"
// @Success 200 {object} response.Envelope
// @Router /planner/weeks/{weekId}/auto-assign [post]
func (h *PlanningHandler) AutoAssign(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	result, err := h.service.AutoAssign(c.Request.Context(), specialistID, c.Param("weekId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Confirm godoc
// @Summary Confirm the week's selection with the assignment service
// @Tags Planner
// @Produce json
// @Param weekId path string true "ISO week"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /planner/weeks/{weekId}/confirm [post]
func (h *PlanningHandler) Confirm(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	result, err := h.service.Confirm(c.Request.Context(), specialistID, c.Param("weekId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// DiscardWeek godoc
// @Summary Discard the week's local selection
// @Tags Planner
// @Produce json
// @Param weekId path string true "ISO week"
// @Success 200 {object} response.Envelope
// @Router /planner/weeks/{weekId} [delete]
func (h *PlanningHandler) DiscardWeek(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	result, err := h.service.DiscardWeek(c.Request.Context(), specialistID, c.Param("weekId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Download the week's plan
// @Tags Planner
// @Produce text/csv
// @Produce application/pdf
// @Param weekId path string true "ISO week"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /planner/weeks/{weekId}/export [get]
func (h *PlanningHandler) Export(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), specialistID, c.Param("weekId"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Budget godoc
// @Summary Monthly hour budget
// @Tags Planner
// @Produce json
// @Param month path string true "Month as YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /planner/budget/{month} [get]
func (h *PlanningHandler) Budget(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	result, err := h.service.Budget(c.Request.Context(), specialistID, c.Param("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
