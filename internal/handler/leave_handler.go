package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workstream-hq/hr-attend-api/internal/models"
	"github.com/workstream-hq/hr-attend-api/internal/service"
	appErrors "github.com/workstream-hq/hr-attend-api/pkg/errors"
	"github.com/workstream-hq/hr-attend-api/pkg/response"
)

// LeaveHandler exposes leave application and balance endpoints.
type LeaveHandler struct {
	leaves *service.LeaveService
}

// NewLeaveHandler constructs handler.
func NewLeaveHandler(leaves *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaves: leaves}
}

// Apply godoc
// @Summary Apply for leave
// @Tags Leave
// @Accept json
// @Produce json
// @Param payload body service.ApplyLeaveRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /leaves [post]
func (h *LeaveHandler) Apply(c *gin.Context) {
	var req service.ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	app, err := h.leaves.Apply(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Cancel godoc
// @Summary Cancel an own leave application
// @Tags Leave
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /leaves/{id}/cancel [post]
func (h *LeaveHandler) Cancel(c *gin.Context) {
	app, err := h.leaves.Cancel(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Review godoc
// @Summary Approve or reject a pending leave application
// @Tags Leave
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.ReviewLeaveRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /leaves/{id}/review [post]
func (h *LeaveHandler) Review(c *gin.Context) {
	var req service.ReviewLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	app, err := h.leaves.Review(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// List godoc
// @Summary List leave applications
// @Tags Leave
// @Produce json
// @Param employeeId query string false "Employee ID (privileged roles only)"
// @Param status query string false "Filter by status"
// @Param leaveType query string false "Filter by leave type"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leaves [get]
func (h *LeaveHandler) List(c *gin.Context) {
	filter, err := leaveFilterParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	apps, pagination, err := h.leaves.History(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, pagination)
}

// Pending godoc
// @Summary List pending applications reviewable by the caller
// @Tags Leave
// @Produce json
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leaves/pending [get]
func (h *LeaveHandler) Pending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	apps, pagination, err := h.leaves.Pending(c.Request.Context(), claimsFromContext(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, pagination)
}

// Balances godoc
// @Summary Yearly leave balances per category
// @Tags Leave
// @Produce json
// @Param employeeId query string false "Employee ID (privileged roles only)"
// @Param year query int false "Year, defaults to current"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leaves/balance [get]
func (h *LeaveHandler) Balances(c *gin.Context) {
	year := 0
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
			return
		}
		year = parsed
	}
	balances, err := h.leaves.Balances(c.Request.Context(), claimsFromContext(c), c.Query("employeeId"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, balances, nil)
}

// SetBalanceTotal godoc
// @Summary Adjust a yearly leave allotment
// @Tags Leave
// @Accept json
// @Produce json
// @Param payload body service.SetBalanceTotalRequest true "Allotment payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leaves/balance/total [put]
func (h *LeaveHandler) SetBalanceTotal(c *gin.Context) {
	var req service.SetBalanceTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	balances, err := h.leaves.SetBalanceTotal(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, balances, nil)
}

func leaveFilterParams(c *gin.Context) (models.LeaveFilter, error) {
	filter := models.LeaveFilter{EmployeeID: c.Query("employeeId")}

	if raw := c.Query("status"); raw != "" {
		status := models.LeaveStatus(raw)
		if !status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
		}
		filter.Status = &status
	}
	if raw := c.Query("leaveType"); raw != "" {
		leaveType := models.LeaveType(raw)
		if !leaveType.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid leave type filter")
		}
		filter.LeaveType = &leaveType
	}
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid from date")
		}
		filter.DateFrom = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid to date")
		}
		filter.DateTo = &parsed
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	return filter, nil
}
