package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/response"
	"github.com/stemsi/tuition-backend/internal/service"
	"github.com/stemsi/tuition-backend/internal/validator"
)

// StudentHandler handles admin-facing student management and lifecycle
// actions.
type StudentHandler struct {
	studentService *service.StudentService
	paymentService *service.PaymentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService, paymentService *service.PaymentService) *StudentHandler {
	return &StudentHandler{studentService: studentService, paymentService: paymentService}
}

type listStudentsQuery struct {
	Page          int                 `form:"page" binding:"omitempty,min=1"`
	PerPage       int                 `form:"per_page" binding:"omitempty,min=1,max=100"`
	ClassID       *int                `form:"class_id" binding:"omitempty,min=1"`
	Status        model.StudentStatus `form:"status" binding:"omitempty,oneof=active inactive suspended"`
	Search        string              `form:"search" binding:"max=100"`
	PaymentStatus bool                `form:"payment_status"`
}

// ListStudents godoc
// GET /api/v1/admin/students?page=&per_page=&class_id=&status=&search=&payment_status=
// Lists students with pagination. payment_status=true attaches each
// student's derived payment status.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var q listStudentsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	filter := model.StudentFilter{ClassID: q.ClassID, Search: q.Search}
	if q.Status != "" {
		filter.Status = &q.Status
	}

	ctx := c.Request.Context()
	students, pagination, err := h.studentService.ListStudents(ctx, filter, q.Page, q.PerPage)
	if err != nil {
		failWith(c, err)
		return
	}

	data := gin.H{"students": students}
	if q.PaymentStatus {
		statuses, err := h.paymentService.StatusesFor(ctx, students)
		if err != nil {
			failWith(c, err)
			return
		}
		data["payment_statuses"] = statuses
	}

	response.SuccessWithPagination(c, http.StatusOK, data, pagination)
}

// GetStudent godoc
// GET /api/v1/admin/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	cycle, _, err := h.studentService.EffectiveCycle(c.Request.Context(), student)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student, "effective_cycle_type": cycle})
}

// CreateStudent godoc
// POST /api/v1/admin/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// UpdateStudent godoc
// PUT /api/v1/admin/students/:id
// Updates a student's details. Lifecycle changes use the action routes.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// DeleteStudent godoc
// DELETE /api/v1/admin/students/:id
// Deletes a student together with their attendance and payments.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "student deleted successfully"})
}

// SuspendStudent godoc
// POST /api/v1/admin/students/:id/suspend
func (h *StudentHandler) SuspendStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.SuspendStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Suspend(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// RestartStudent godoc
// POST /api/v1/admin/students/:id/restart
// Ends a suspension, moving it into the student's history. The body is optional.
func (h *StudentHandler) RestartStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.RestartStudentRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	student, err := h.studentService.Restart(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// DeactivateStudent godoc
// POST /api/v1/admin/students/:id/deactivate
func (h *StudentHandler) DeactivateStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	student, err := h.studentService.Deactivate(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// GetPaymentStatus godoc
// GET /api/v1/admin/students/:id/payment-status
// Returns the strict and detail payment statuses with the amount due.
func (h *StudentHandler) GetPaymentStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	status, err := h.paymentService.StudentStatus(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment_status": status})
}
