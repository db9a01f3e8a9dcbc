package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/response"
	"github.com/stemsi/tuition-backend/internal/service"
	"github.com/stemsi/tuition-backend/internal/validator"
)

// AttendanceHandler handles attendance records.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

type attendanceQuery struct {
	StudentID *int          `form:"student_id" binding:"omitempty,min=1"`
	From      calendar.Date `form:"from"`
	To        calendar.Date `form:"to"`
}

// bindAttendanceQuery reads ?student_id=&from=&to=. Missing dates leave
// the range open on that side.
func bindAttendanceQuery(c *gin.Context) (service.AttendanceQuery, bool) {
	var q attendanceQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return service.AttendanceQuery{}, false
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPeriod)
		return service.AttendanceQuery{}, false
	}
	return service.AttendanceQuery{StudentID: q.StudentID, From: q.From, To: q.To}, true
}

// ListAttendance godoc
// GET /api/v1/admin/attendance?student_id=&from=&to=
// Lists records newest first.
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	q, ok := bindAttendanceQuery(c)
	if !ok {
		return
	}

	records, err := h.attendanceService.List(c.Request.Context(), q)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"records": records})
}

// GetSummary godoc
// GET /api/v1/admin/attendance/summary?student_id=&from=&to=
// Returns counts per status and the records grouped by day.
func (h *AttendanceHandler) GetSummary(c *gin.Context) {
	q, ok := bindAttendanceQuery(c)
	if !ok {
		return
	}

	report, err := h.attendanceService.Report(c.Request.Context(), q)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"summary":  report.Summary,
		"attended": report.Summary.Attended(),
		"days":     report.Days,
	})
}

// CreateAttendance godoc
// POST /api/v1/admin/attendance
func (h *AttendanceHandler) CreateAttendance(c *gin.Context) {
	var req model.AttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.attendanceService.Create(c.Request.Context(), req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"record": rec})
}

// UpdateAttendance godoc
// PUT /api/v1/admin/attendance/:id
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.AttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.attendanceService.Update(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

// DeleteAttendance godoc
// DELETE /api/v1/admin/attendance/:id
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.attendanceService.Delete(c.Request.Context(), id); err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "attendance deleted successfully"})
}

// BulkDelete godoc
// POST /api/v1/admin/attendance/bulk-delete
// Deletes every listed record and reports each outcome. Always 200; callers
// inspect the per-item results.
func (h *AttendanceHandler) BulkDelete(c *gin.Context) {
	var req model.BulkDeleteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	results := h.attendanceService.BulkDelete(c.Request.Context(), req.IDs)
	deleted := 0
	for _, r := range results {
		if r.Success {
			deleted++
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"results": results,
		"deleted": deleted,
		"failed":  len(results) - deleted,
	})
}
