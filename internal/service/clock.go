package service

import (
	"time"

	"github.com/stemsi/tuition-backend/internal/calendar"
)

// Clock reports the current civil date.
type Clock func() calendar.Date

// LocalClock reads today's date in loc.
func LocalClock(loc *time.Location) Clock {
	return func() calendar.Date { return calendar.Today(loc) }
}

// FixedClock always reports d.
func FixedClock(d calendar.Date) Clock {
	return func() calendar.Date { return d }
}
