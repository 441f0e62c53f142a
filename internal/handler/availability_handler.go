package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/accompaniment-planner-api/internal/dto"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
	"github.com/noah-isme/accompaniment-planner-api/pkg/response"
)

type availabilityService interface {
	List(ctx context.Context, specialistID string) ([]dto.AvailabilityBlockResponse, error)
	Create(ctx context.Context, specialistID string, req dto.AvailabilityBlockRequest) (*dto.AvailabilityMutationResponse, error)
	Update(ctx context.Context, specialistID, id string, req dto.AvailabilityBlockRequest) (*dto.AvailabilityMutationResponse, error)
	Delete(ctx context.Context, specialistID, id string) error
}

// AvailabilityHandler manages declared availability blocks.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the availability handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// List godoc
// @Summary List availability blocks
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	blocks, err := h.service.List(c.Request.Context(), specialistID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks)
}

// Create godoc
// @Summary Add an availability block, merging with neighbours
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.AvailabilityBlockRequest true "Block"
// @Success 201 {object} response.Envelope
// @Router /availability [post]
func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req dto.AvailabilityBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	specialistID := specialistScope(c, req.SpecialistID)
	if specialistID == "" {
		return
	}
	result, err := h.service.Create(c.Request.Context(), specialistID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Edit an availability block, merging with neighbours
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Block ID"
// @Param payload body dto.AvailabilityBlockRequest true "Block"
// @Success 200 {object} response.Envelope
// @Router /availability/{id} [put]
func (h *AvailabilityHandler) Update(c *gin.Context) {
	var req dto.AvailabilityBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	specialistID := specialistScope(c, req.SpecialistID)
	if specialistID == "" {
		return
	}
	result, err := h.service.Update(c.Request.Context(), specialistID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Delete godoc
// @Summary Delete an availability block
// @Tags Availability
// @Param id path string true "Block ID"
// @Success 204
// @Router /availability/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	specialistID := specialistScope(c, "")
	if specialistID == "" {
		return
	}
	if err := h.service.Delete(c.Request.Context(), specialistID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
