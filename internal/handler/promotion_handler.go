package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventopia/eventopia-api/internal/models"
	"github.com/eventopia/eventopia-api/internal/service"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
	"github.com/eventopia/eventopia-api/pkg/response"
)

// PromotionHandler wires HTTP endpoints to the promotion service.
type PromotionHandler struct {
	service *service.PromotionService
}

// NewPromotionHandler creates a new handler.
func NewPromotionHandler(svc *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{service: svc}
}

// Request godoc
// @Summary Request a role elevation
// @Tags Promotions
// @Accept json
// @Produce json
// @Param payload body models.CreatePromotionRequest true "Promotion payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /promotions [post]
func (h *PromotionHandler) Request(c *gin.Context) {
	var req models.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid promotion payload"))
		return
	}

	request, err := h.service.Request(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Pending godoc
// @Summary List pending promotion requests
// @Tags Promotions
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /promotions/pending [get]
func (h *PromotionHandler) Pending(c *gin.Context) {
	pending, err := h.service.Pending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending, nil)
}

// Approve godoc
// @Summary Approve a promotion request
// @Description Grants the requested role; a decided request returns 409
// @Tags Promotions
// @Produce json
// @Param id path string true "Request id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /promotions/{id}/approve [put]
func (h *PromotionHandler) Approve(c *gin.Context) {
	request, err := h.service.Approve(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Reject godoc
// @Summary Reject a promotion request
// @Tags Promotions
// @Produce json
// @Param id path string true "Request id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /promotions/{id}/reject [put]
func (h *PromotionHandler) Reject(c *gin.Context) {
	request, err := h.service.Reject(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
