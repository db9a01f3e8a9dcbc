package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tuition-backend/internal/response"
	"github.com/stemsi/tuition-backend/internal/service"
	"github.com/stemsi/tuition-backend/internal/validator"
)

// PortalHandler serves the public parent portal.
type PortalHandler struct {
	portalService *service.PortalService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(portalService *service.PortalService) *PortalHandler {
	return &PortalHandler{portalService: portalService}
}

type portalQuery struct {
	Code  string `form:"code" binding:"required,max=30"`
	Phone string `form:"phone" binding:"required,max=20"`
}

// Lookup godoc
// GET /api/v1/public/portal?code=&phone=
// Shows a student's payment status and attendance to a parent who knows
// both the student code and the registered phone number.
func (h *PortalHandler) Lookup(c *gin.Context) {
	var q portalQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.portalService.Lookup(c.Request.Context(), q.Code, q.Phone)
	if err != nil {
		failWith(c, err)
		return
	}

	c.Header("Cache-Control", "private, no-store")
	response.Success(c, http.StatusOK, view)
}
