package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventopia/eventopia-api/internal/models"
	"github.com/eventopia/eventopia-api/internal/service"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
	"github.com/eventopia/eventopia-api/pkg/response"
)

// ClubHandler wires HTTP endpoints to the club service.
type ClubHandler struct {
	service *service.ClubService
}

// NewClubHandler creates a new handler.
func NewClubHandler(svc *service.ClubService) *ClubHandler {
	return &ClubHandler{service: svc}
}

// List godoc
// @Summary List clubs
// @Tags Clubs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /clubs [get]
func (h *ClubHandler) List(c *gin.Context) {
	clubs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clubs, nil)
}

// Get godoc
// @Summary Get a club
// @Tags Clubs
// @Produce json
// @Param id path string true "Club id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clubs/{id} [get]
func (h *ClubHandler) Get(c *gin.Context) {
	club, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, club, nil)
}

// Create godoc
// @Summary Create a club
// @Tags Clubs
// @Accept json
// @Produce json
// @Param payload body models.CreateClubRequest true "Club payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /clubs [post]
func (h *ClubHandler) Create(c *gin.Context) {
	var req models.CreateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid club payload"))
		return
	}

	club, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, club)
}

// Update godoc
// @Summary Update a club
// @Description Admins may edit any club; a faculty coordinator only their own
// @Tags Clubs
// @Accept json
// @Produce json
// @Param id path string true "Club id"
// @Param payload body models.UpdateClubRequest true "Club payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /clubs/{id} [put]
func (h *ClubHandler) Update(c *gin.Context) {
	var req models.UpdateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid club payload"))
		return
	}

	club, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, club, nil)
}

// Delete godoc
// @Summary Delete a club
// @Tags Clubs
// @Produce json
// @Param id path string true "Club id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /clubs/{id} [delete]
func (h *ClubHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddMember godoc
// @Summary Add a club member
// @Tags Clubs
// @Accept json
// @Produce json
// @Param id path string true "Club id"
// @Param payload body models.AddClubMemberRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /clubs/{id}/members [post]
func (h *ClubHandler) AddMember(c *gin.Context) {
	var req models.AddClubMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid member payload"))
		return
	}

	member, err := h.service.AddMember(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Members godoc
// @Summary List the club roster
// @Tags Clubs
// @Produce json
// @Param id path string true "Club id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clubs/{id}/members [get]
func (h *ClubHandler) Members(c *gin.Context) {
	members, err := h.service.Members(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}
