package model

import (
	"time"

	"github.com/stemsi/tuition-backend/internal/calendar"
)

// ClassOffering is a tuition class students enroll in and pay for.
type ClassOffering struct {
	ID               int            `json:"id"`
	Name             string         `json:"name"`
	BaseFee          int64          `json:"base_fee"`
	ScheduleDays     []string       `json:"schedule_days"`
	Location         string         `json:"location"`
	PaymentCycleType CycleType      `json:"payment_cycle_type"`
	Status           ClassStatus    `json:"status"`
	ClosedDate       *calendar.Date `json:"closed_date,omitempty"`
	ClosedReason     *string        `json:"closed_reason,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ClassRequest is the payload for creating or updating a class.
type ClassRequest struct {
	Name             string    `json:"name" binding:"required,min=1,max=100"`
	BaseFee          int64     `json:"base_fee" binding:"required,gt=0"`
	ScheduleDays     []string  `json:"schedule_days" binding:"omitempty,dive,min=1,max=20"`
	Location         string    `json:"location" binding:"max=200"`
	PaymentCycleType CycleType `json:"payment_cycle_type" binding:"required,cycle_type"`
}

// CloseClassRequest stops fee accrual for a class while keeping its history.
type CloseClassRequest struct {
	Reason     string         `json:"reason" binding:"required,min=1,max=500"`
	ClosedDate *calendar.Date `json:"closed_date"`
}

// ClassDayView is a class as shown on the daily board.
type ClassDayView struct {
	Class          ClassOffering `json:"class"`
	ActiveStudents int           `json:"active_students"`
	ScheduledToday bool          `json:"scheduled_today"`
	AttendedToday  bool          `json:"attended_today"`
}
