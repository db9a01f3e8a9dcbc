package model

import (
	"time"

	"github.com/stemsi/tuition-backend/internal/calendar"
)

// AttendanceRecord is one student's attendance mark for a day.
// Several records may exist for the same student and day.
type AttendanceRecord struct {
	ID        int              `json:"id"`
	StudentID int              `json:"student_id"`
	Date      calendar.Date    `json:"date"`
	Status    AttendanceStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// AttendanceRequest is the payload for creating or updating an attendance record.
type AttendanceRequest struct {
	StudentID int              `json:"student_id" binding:"required,min=1"`
	Date      calendar.Date    `json:"date" binding:"required,civil_date"`
	Status    AttendanceStatus `json:"status" binding:"required,attendance_status"`
}

// BulkDeleteRequest lists record ids to delete in one call.
type BulkDeleteRequest struct {
	IDs []int `json:"ids" binding:"required,min=1,max=500,dive,min=1"`
}

// BulkResult reports the outcome of one item of a batch operation.
type BulkResult struct {
	ID      int    `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
