package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workstream-hq/hr-attend-api/internal/service"
	appErrors "github.com/workstream-hq/hr-attend-api/pkg/errors"
	"github.com/workstream-hq/hr-attend-api/pkg/response"
)

// SchedulerHandler exposes the admin reconciliation trigger.
type SchedulerHandler struct {
	reconciliation *service.ReconciliationService
}

// NewSchedulerHandler constructs handler.
func NewSchedulerHandler(reconciliation *service.ReconciliationService) *SchedulerHandler {
	return &SchedulerHandler{reconciliation: reconciliation}
}

// Run godoc
// @Summary Trigger a reconciliation run for one day
// @Tags Admin
// @Produce json
// @Param date query string false "Day to reconcile (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/reconciliation/run [post]
func (h *SchedulerHandler) Run(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}
	summary, err := h.reconciliation.RunForDate(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
