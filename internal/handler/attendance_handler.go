package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workstream-hq/hr-attend-api/internal/middleware"
	"github.com/workstream-hq/hr-attend-api/internal/service"
	appErrors "github.com/workstream-hq/hr-attend-api/pkg/errors"
	"github.com/workstream-hq/hr-attend-api/pkg/response"
)

// AttendanceHandler exposes the attendance ledger endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// CheckIn godoc
// @Summary Record today's check-in for the calling employee
// @Tags Attendance
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	record, err := h.attendance.CheckIn(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// CheckOut godoc
// @Summary Record today's check-out for the calling employee
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	record, err := h.attendance.CheckOut(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Today godoc
// @Summary Today's attendance record for the calling employee
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	record, err := h.attendance.Today(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Monthly godoc
// @Summary Monthly attendance records with summary
// @Tags Attendance
// @Produce json
// @Param employeeId query string false "Employee ID (privileged roles only)"
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance [get]
func (h *AttendanceHandler) Monthly(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	monthly, cacheHit, err := h.attendance.Monthly(c.Request.Context(), claimsFromContext(c), c.Query("employeeId"), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, monthly, nil, meta)
}

// ManualCorrect godoc
// @Summary Manually correct an attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.ManualCorrectionRequest true "Correction payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/manual [put]
func (h *AttendanceHandler) ManualCorrect(c *gin.Context) {
	var req service.ManualCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	record, err := h.attendance.ManualCorrect(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Export godoc
// @Summary Export a month of attendance as CSV or PDF
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param employeeId query string true "Employee ID"
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Security BearerAuth
// @Router /attendance/report/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, contentType, filename, err := h.attendance.ExportMonthly(
		c.Request.Context(), claimsFromContext(c), c.Query("employeeId"), month, year, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}

func monthYearParams(c *gin.Context) (int, int, error) {
	now := time.Now()
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "month must be a number")
	}
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "year must be a number")
	}
	return month, year, nil
}
