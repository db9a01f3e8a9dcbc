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

// PaymentHandler handles payment records, quotes and proration.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type listPaymentsQuery struct {
	StudentID *int `form:"student_id" binding:"omitempty,min=1"`
}

// ListPayments godoc
// GET /api/v1/admin/payments?student_id=
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var q listPaymentsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	payments, err := h.paymentService.List(c.Request.Context(), q.StudentID)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}

type quoteQuery struct {
	StudentID int           `form:"student_id" binding:"required,min=1"`
	From      calendar.Date `form:"from"`
}

// GetQuote godoc
// GET /api/v1/admin/payments/quote?student_id=&from=
// Returns the fee and coverage window of the student's next cycle.
func (h *PaymentHandler) GetQuote(c *gin.Context) {
	var q quoteQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var from *calendar.Date
	if !q.From.IsZero() {
		from = &q.From
	}

	quote, err := h.paymentService.Quote(c.Request.Context(), q.StudentID, from)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quote": quote})
}

// GetPayment godoc
// GET /api/v1/admin/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}

// CreatePayment godoc
// POST /api/v1/admin/payments
// Records a payment. Amount defaults to the cycle fee and valid_to to the
// end of the cycle starting at valid_from.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req model.CreatePaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"payment": payment})
}

// UpdatePayment godoc
// PUT /api/v1/admin/payments/:id
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.UpdatePaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	payment, err := h.paymentService.Update(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}

// DeletePayment godoc
// DELETE /api/v1/admin/payments/:id
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), id); err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "payment deleted successfully"})
}

// ProratePayment godoc
// POST /api/v1/admin/payments/:id/prorate
// Shrinks the payment to the sessions actually attended and optionally
// suspends or deactivates the student in the same transaction.
func (h *PaymentHandler) ProratePayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.ProrateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.paymentService.Prorate(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
