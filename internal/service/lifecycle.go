package service

import (
	"strings"

	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/model"
)

// suspend moves an active student to suspended from on.
func suspend(st *model.Student, on calendar.Date, reason string) error {
	if st.Status != model.StudentActive {
		return ErrStudentNotActive
	}
	reason = strings.TrimSpace(reason)
	st.Status = model.StudentSuspended
	last := on
	st.SuspendDate = &on
	st.SuspendReason = &reason
	st.LastActiveDate = &last
	return nil
}

// restart ends a suspension on the given day and records the closed period
// in the student's history.
func restart(st *model.Student, on calendar.Date) error {
	if st.Status != model.StudentSuspended {
		return ErrNotSuspended
	}
	period := model.SuspendPeriod{RestartDate: on}
	if st.SuspendDate != nil {
		if on.Before(*st.SuspendDate) {
			return ErrRestartBeforeSuspend
		}
		period.SuspendDate = *st.SuspendDate
	} else {
		period.SuspendDate = on
	}
	if st.SuspendReason != nil {
		period.Reason = *st.SuspendReason
	}

	st.SuspendHistory = append(st.SuspendHistory, period)
	st.Status = model.StudentActive
	st.SuspendDate = nil
	st.SuspendReason = nil
	st.RestartDate = &on
	return nil
}

// deactivate marks a student as departed. Any open suspension is dropped
// without entering the history, which only holds completed suspensions.
func deactivate(st *model.Student, on calendar.Date) error {
	if st.Status == model.StudentInactive {
		return ErrStudentInactive
	}
	if st.Status == model.StudentActive {
		st.LastActiveDate = &on
	}
	st.Status = model.StudentInactive
	st.SuspendDate = nil
	st.SuspendReason = nil
	return nil
}
