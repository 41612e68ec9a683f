package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventopia/eventopia-api/internal/models"
	"github.com/eventopia/eventopia-api/internal/service"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
	"github.com/eventopia/eventopia-api/pkg/response"
)

// CircularHandler wires HTTP endpoints to the circular service.
type CircularHandler struct {
	service *service.CircularService
}

// NewCircularHandler creates a new handler.
func NewCircularHandler(svc *service.CircularService) *CircularHandler {
	return &CircularHandler{service: svc}
}

// List godoc
// @Summary List circulars
// @Tags Circulars
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /circulars [get]
func (h *CircularHandler) List(c *gin.Context) {
	circulars, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, circulars, nil)
}

// Create godoc
// @Summary Publish a circular
// @Tags Circulars
// @Accept json
// @Produce json
// @Param payload body models.CreateCircularRequest true "Circular payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /circulars [post]
func (h *CircularHandler) Create(c *gin.Context) {
	var req models.CreateCircularRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid circular payload"))
		return
	}

	circular, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, circular)
}

// Update godoc
// @Summary Update a circular
// @Tags Circulars
// @Accept json
// @Produce json
// @Param id path string true "Circular id"
// @Param payload body models.UpdateCircularRequest true "Circular payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /circulars/{id} [put]
func (h *CircularHandler) Update(c *gin.Context) {
	var req models.UpdateCircularRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid circular payload"))
		return
	}

	circular, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, circular, nil)
}

// Delete godoc
// @Summary Delete a circular
// @Tags Circulars
// @Produce json
// @Param id path string true "Circular id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /circulars/{id} [delete]
func (h *CircularHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
