package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/response"
	"github.com/stemsi/tuition-backend/internal/service"
	"github.com/stemsi/tuition-backend/internal/validator"
)

// ClassHandler handles admin-facing class management.
type ClassHandler struct {
	classService *service.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

type listClassesQuery struct {
	Status model.ClassStatus `form:"status" binding:"omitempty,oneof=active closed"`
}

// ListClasses godoc
// GET /api/v1/admin/classes?status=
// Lists classes ordered by name, optionally only active or closed ones.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	var q listClassesQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var status *model.ClassStatus
	if q.Status != "" {
		status = &q.Status
	}

	classes, err := h.classService.List(c.Request.Context(), status)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// GetClass godoc
// GET /api/v1/admin/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	class, err := h.classService.GetByID(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// TodayBoard godoc
// GET /api/v1/admin/classes/today
// Lists active classes with today's schedule and attendance flags, the ones
// still waiting for attendance first.
func (h *ClassHandler) TodayBoard(c *gin.Context) {
	today, views, err := h.classService.TodayBoard(c.Request.Context())
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"date": today, "classes": views})
}

// CreateClass godoc
// POST /api/v1/admin/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req model.ClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// UpdateClass godoc
// PUT /api/v1/admin/classes/:id
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.ClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Update(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// CloseClass godoc
// POST /api/v1/admin/classes/:id/close
// Stops fee accrual for the class from closed_date (default today).
func (h *ClassHandler) CloseClass(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.CloseClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Close(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// ReopenClass godoc
// POST /api/v1/admin/classes/:id/reopen
func (h *ClassHandler) ReopenClass(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	class, err := h.classService.Reopen(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// DeleteClass godoc
// DELETE /api/v1/admin/classes/:id
// Deletes a class by ID. Will fail if students are attached.
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.classService.Delete(c.Request.Context(), id); err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "class deleted successfully"})
}
