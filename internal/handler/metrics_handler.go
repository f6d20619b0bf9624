package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstream-hq/hr-attend-api/internal/service"
	"github.com/workstream-hq/hr-attend-api/pkg/response"
)

// MetricsHandler exposes the admin metrics summary.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Summary godoc
// @Summary Aggregate engine metrics
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/metrics/summary [get]
func (h *MetricsHandler) Summary(c *gin.Context) {
	snapshot, err := h.metrics.Snapshot()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}
