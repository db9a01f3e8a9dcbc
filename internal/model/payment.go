package model

import (
	"time"

	"github.com/stemsi/tuition-backend/internal/calendar"
)

// PaymentRecord covers one billing cycle of a student. Amount is the
// adjusted total after any proration, not necessarily the nominal fee.
type PaymentRecord struct {
	ID               int           `json:"id"`
	StudentID        int           `json:"student_id"`
	Amount           int64         `json:"amount"`
	PaymentDate      calendar.Date `json:"payment_date"`
	ValidFrom        calendar.Date `json:"valid_from"`
	ValidTo          calendar.Date `json:"valid_to"`
	Status           PaymentStatus `json:"status"`
	PlannedSessions  *int          `json:"planned_sessions,omitempty"`
	ActualSessions   *int          `json:"actual_sessions,omitempty"`
	AdjustmentReason *string       `json:"adjustment_reason,omitempty"`
	Notes            *string       `json:"notes,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CreatePaymentRequest confirms a payment. Amount and ValidTo default to the
// student's quote when omitted.
type CreatePaymentRequest struct {
	StudentID   int            `json:"student_id" binding:"required,min=1"`
	Amount      *int64         `json:"amount" binding:"omitempty,gte=0"`
	PaymentDate *calendar.Date `json:"payment_date"`
	ValidFrom   calendar.Date  `json:"valid_from" binding:"required,civil_date"`
	ValidTo     *calendar.Date `json:"valid_to"`
	Status      PaymentStatus  `json:"status" binding:"omitempty,payment_status"`
	Notes       *string        `json:"notes" binding:"omitempty,max=1000"`
}

// UpdatePaymentRequest replaces the editable fields of a payment.
type UpdatePaymentRequest struct {
	Amount      int64         `json:"amount" binding:"gte=0"`
	PaymentDate calendar.Date `json:"payment_date" binding:"required,civil_date"`
	ValidFrom   calendar.Date `json:"valid_from" binding:"required,civil_date"`
	ValidTo     calendar.Date `json:"valid_to" binding:"required,civil_date"`
	Status      PaymentStatus `json:"status" binding:"required,payment_status"`
	Notes       *string       `json:"notes" binding:"omitempty,max=1000"`
}

// ProrateRequest is the administrator action that shrinks a payment to the
// sessions actually attended, optionally changing the student's lifecycle.
// PlannedSessions defaults to the payment's recorded plan, else the cycle's
// session count. ActualSessions defaults to the sessions attended within the
// payment's coverage.
type ProrateRequest struct {
	PlannedSessions *int           `json:"planned_sessions" binding:"omitempty,gte=0"`
	ActualSessions  *int           `json:"actual_sessions" binding:"omitempty,gte=0"`
	Reason          string         `json:"reason" binding:"max=500"`
	StudentStatus   *StudentStatus `json:"student_status" binding:"omitempty,oneof=suspended inactive"`
}

// PaymentQuote is what a student owes for the next cycle.
type PaymentQuote struct {
	StudentID int           `json:"student_id"`
	ClassID   *int          `json:"class_id"`
	CycleType CycleType     `json:"cycle_type"`
	FeeMode   FeeMode       `json:"fee_mode"`
	BaseFee   int64         `json:"base_fee"`
	Amount    int64         `json:"amount"`
	ValidFrom calendar.Date `json:"valid_from"`
	ValidTo   calendar.Date `json:"valid_to"`
}

// PaymentStatusView is the derived payment state of a student.
type PaymentStatusView struct {
	StudentID    int            `json:"student_id"`
	CycleType    CycleType      `json:"cycle_type"`
	Status       PaymentStatus  `json:"status"`
	DetailStatus PaymentStatus  `json:"detail_status"`
	NextDueFrom  *calendar.Date `json:"next_due_from,omitempty"`
	NextDueTo    *calendar.Date `json:"next_due_to,omitempty"`
	AmountDue    int64          `json:"amount_due"`
	Latest       *PaymentRecord `json:"latest_payment,omitempty"`
}
