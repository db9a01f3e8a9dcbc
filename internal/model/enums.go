package model

import (
	"fmt"
	"strings"
)

// CycleType is the billing period of a class or student.
type CycleType string

const (
	CycleMonthly       CycleType = "1-thang"
	CycleEightSessions CycleType = "8-buoi"
	CycleTenSessions   CycleType = "10-buoi"
	CyclePerDay        CycleType = "theo-ngay"
)

var cycleAliases = map[string]CycleType{
	"1-thang":        CycleMonthly,
	"monthly":        CycleMonthly,
	"8-buoi":         CycleEightSessions,
	"eight-sessions": CycleEightSessions,
	"10-buoi":        CycleTenSessions,
	"ten-sessions":   CycleTenSessions,
	"theo-ngay":      CyclePerDay,
	"per-day":        CyclePerDay,
}

// ParseCycleType accepts the stored Vietnamese codes and their English aliases.
func ParseCycleType(s string) (CycleType, error) {
	if c, ok := cycleAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown payment cycle type %q", s)
}

// Valid reports whether c is one of the canonical cycle codes.
func (c CycleType) Valid() bool {
	switch c {
	case CycleMonthly, CycleEightSessions, CycleTenSessions, CyclePerDay:
		return true
	}
	return false
}

// ClassStatus is the lifecycle of a class offering.
type ClassStatus string

const (
	ClassActive ClassStatus = "active"
	ClassClosed ClassStatus = "closed"
)

// StudentStatus is the lifecycle of a student.
type StudentStatus string

const (
	StudentActive    StudentStatus = "active"
	StudentInactive  StudentStatus = "inactive"
	StudentSuspended StudentStatus = "suspended"
)

func (s StudentStatus) Valid() bool {
	switch s {
	case StudentActive, StudentInactive, StudentSuspended:
		return true
	}
	return false
}

// AttendanceStatus defines the possible status values for attendance.
type AttendanceStatus string

const (
	AttendancePresent       AttendanceStatus = "present"
	AttendanceAbsent        AttendanceStatus = "absent"
	AttendanceTeacherAbsent AttendanceStatus = "teacher_absent"
	AttendanceMakeup        AttendanceStatus = "makeup"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceTeacherAbsent, AttendanceMakeup:
		return true
	}
	return false
}

// PaymentStatus is the stored status of a payment record, and also the
// derived status reported for a student.
type PaymentStatus string

const (
	PaymentPaid          PaymentStatus = "paid"
	PaymentPending       PaymentStatus = "pending"
	PaymentOverdue       PaymentStatus = "overdue"
	PaymentPartialRefund PaymentStatus = "partial_refund"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentOverdue, PaymentPartialRefund:
		return true
	}
	return false
}

// FeeMode decides how a class's base fee turns into a cycle amount.
type FeeMode string

const (
	FeePerSession FeeMode = "PER_SESSION"
	FeePerCycle   FeeMode = "PER_CYCLE"
)

// DefaultFeeMode applies when the setting has never been written.
const DefaultFeeMode = FeePerSession

// ParseFeeMode is case-insensitive.
func ParseFeeMode(s string) (FeeMode, error) {
	switch FeeMode(strings.ToUpper(strings.TrimSpace(s))) {
	case FeePerSession:
		return FeePerSession, nil
	case FeePerCycle:
		return FeePerCycle, nil
	}
	return "", fmt.Errorf("unknown fee calculation mode %q", s)
}
