package model

import (
	"time"

	"github.com/stemsi/tuition-backend/internal/calendar"
)

// SuspendPeriod is a closed, past suspension of a student.
type SuspendPeriod struct {
	SuspendDate calendar.Date `json:"suspend_date"`
	RestartDate calendar.Date `json:"restart_date"`
	Reason      string        `json:"reason"`
}

// Student represents an enrolled learner.
type Student struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	UniqueCode       string          `json:"unique_code"`
	Phone            string          `json:"phone"`
	ClassID          *int            `json:"class_id"`
	RegistrationDate calendar.Date   `json:"registration_date"`
	PaymentCycleType *CycleType      `json:"payment_cycle_type,omitempty"`
	Status           StudentStatus   `json:"status"`
	SuspendDate      *calendar.Date  `json:"suspend_date,omitempty"`
	SuspendReason    *string         `json:"suspend_reason,omitempty"`
	RestartDate      *calendar.Date  `json:"restart_date,omitempty"`
	LastActiveDate   *calendar.Date  `json:"last_active_date,omitempty"`
	SuspendHistory   []SuspendPeriod `json:"suspend_history"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// EffectiveCycle returns the student's own cycle type, else the class default,
// else monthly.
func (s *Student) EffectiveCycle(class *ClassOffering) CycleType {
	if s.PaymentCycleType != nil && s.PaymentCycleType.Valid() {
		return *s.PaymentCycleType
	}
	if class != nil && class.PaymentCycleType.Valid() {
		return class.PaymentCycleType
	}
	return CycleMonthly
}

// ActiveSince is the day the current active stretch began: the last restart,
// or registration when the student was never suspended.
func (s *Student) ActiveSince() calendar.Date {
	if s.RestartDate != nil && s.RestartDate.After(s.RegistrationDate) {
		return *s.RestartDate
	}
	return s.RegistrationDate
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	ClassID *int
	Status  *StudentStatus
	Search  string
}

// CreateStudentRequest is the payload for registering a student.
type CreateStudentRequest struct {
	Name             string         `json:"name" binding:"required,min=2,max=100"`
	UniqueCode       string         `json:"unique_code" binding:"required,min=2,max=30,alphanum"`
	Phone            string         `json:"phone" binding:"omitempty,min=8,max=20,numeric"`
	ClassID          *int           `json:"class_id" binding:"omitempty,min=1"`
	RegistrationDate *calendar.Date `json:"registration_date"`
	PaymentCycleType *CycleType     `json:"payment_cycle_type" binding:"omitempty,cycle_type"`
}

// UpdateStudentRequest is the payload for updating a student's details.
// Lifecycle changes go through the suspend/restart/deactivate actions.
type UpdateStudentRequest struct {
	Name             string         `json:"name" binding:"required,min=2,max=100"`
	UniqueCode       string         `json:"unique_code" binding:"required,min=2,max=30,alphanum"`
	Phone            string         `json:"phone" binding:"omitempty,min=8,max=20,numeric"`
	ClassID          *int           `json:"class_id" binding:"omitempty,min=1"`
	RegistrationDate *calendar.Date `json:"registration_date"`
	PaymentCycleType *CycleType     `json:"payment_cycle_type" binding:"omitempty,cycle_type"`
}

// SuspendStudentRequest is the payload for suspending a student.
type SuspendStudentRequest struct {
	Reason      string         `json:"reason" binding:"required,min=1,max=500"`
	SuspendDate *calendar.Date `json:"suspend_date"`
}

// RestartStudentRequest is the payload for ending a suspension.
type RestartStudentRequest struct {
	RestartDate *calendar.Date `json:"restart_date"`
}
