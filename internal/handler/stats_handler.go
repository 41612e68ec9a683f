package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventopia/eventopia-api/internal/service"
	"github.com/eventopia/eventopia-api/pkg/response"
)

// StatsHandler wires HTTP endpoints to the stats service.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// System godoc
// @Summary Dashboard counters
// @Description Event, user and budget aggregates for the admin dashboard
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /stats [get]
func (h *StatsHandler) System(c *gin.Context) {
	stats, err := h.service.System(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// RecentDecisions godoc
// @Summary Latest approval decisions
// @Tags Stats
// @Produce json
// @Param limit query int false "Maximum entries (default 5)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /stats/recent-decisions [get]
func (h *StatsHandler) RecentDecisions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	decisions, err := h.service.RecentDecisions(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decisions, nil)
}
