// Package billing holds the fee, cycle, proration and payment-status rules.
//
// Every function here is pure: callers resolve entities and settings first
// and pass them in. Degenerate input (unknown cycle type, zero planned
// sessions) falls back to documented defaults instead of failing.
package billing

import (
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/model"
)

// Assumed weekly cadence behind the session-count cycles.
const sessionsPerWeek = 2

// EndOfCycle returns the last day covered by a cycle starting on start.
//
// Session-count cycles are a heuristic: they assume exactly two sessions a
// week and do not look at the actual timetable, so holidays or a class that
// meets three times a week make the real last session differ.
// Unknown cycle types behave as monthly.
func EndOfCycle(start calendar.Date, cycle model.CycleType) calendar.Date {
	switch cycle {
	case model.CycleEightSessions:
		return start.AddDays(weeksFor(8)*7 - 1)
	case model.CycleTenSessions:
		return start.AddDays(weeksFor(10)*7 - 1)
	case model.CyclePerDay:
		return start.AddDays(6)
	default:
		return start.AddMonths(1).AddDays(-1)
	}
}

func weeksFor(sessions int) int {
	return sessions / sessionsPerWeek
}

// SessionsPerCycle is the planned session count of a cycle. Monthly is
// assumed to hold four sessions; unknown types count as monthly.
func SessionsPerCycle(cycle model.CycleType) int {
	switch cycle {
	case model.CycleEightSessions:
		return 8
	case model.CycleTenSessions:
		return 10
	case model.CyclePerDay:
		return 1
	default:
		return 4
	}
}

// NextCycle returns the window that starts the day after a previous cycle ended.
func NextCycle(previousEnd calendar.Date, cycle model.CycleType) (from, to calendar.Date) {
	from = previousEnd.AddDays(1)
	return from, EndOfCycle(from, cycle)
}
