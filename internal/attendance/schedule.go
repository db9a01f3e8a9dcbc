package attendance

import (
	"strings"
	"time"
)

var weekdayLabels = map[string]time.Weekday{
	"thứ 2": time.Monday, "thu 2": time.Monday, "t2": time.Monday, "mon": time.Monday, "monday": time.Monday,
	"thứ 3": time.Tuesday, "thu 3": time.Tuesday, "t3": time.Tuesday, "tue": time.Tuesday, "tuesday": time.Tuesday,
	"thứ 4": time.Wednesday, "thu 4": time.Wednesday, "t4": time.Wednesday, "wed": time.Wednesday, "wednesday": time.Wednesday,
	"thứ 5": time.Thursday, "thu 5": time.Thursday, "t5": time.Thursday, "thu": time.Thursday, "thursday": time.Thursday,
	"thứ 6": time.Friday, "thu 6": time.Friday, "t6": time.Friday, "fri": time.Friday, "friday": time.Friday,
	"thứ 7": time.Saturday, "thu 7": time.Saturday, "t7": time.Saturday, "sat": time.Saturday, "saturday": time.Saturday,
	"cn": time.Sunday, "chủ nhật": time.Sunday, "chu nhat": time.Sunday, "sun": time.Sunday, "sunday": time.Sunday,
}

// ParseWeekday maps a schedule label such as "Thứ 2" or "CN" to a weekday.
func ParseWeekday(label string) (time.Weekday, bool) {
	norm := strings.Join(strings.Fields(strings.ToLower(label)), " ")
	wd, ok := weekdayLabels[norm]
	return wd, ok
}

// ScheduledOn reports whether any schedule label falls on wd. Labels may
// themselves be comma-separated lists ("Thứ 2, Thứ 4").
func ScheduledOn(scheduleDays []string, wd time.Weekday) bool {
	for _, entry := range scheduleDays {
		for _, label := range strings.Split(entry, ",") {
			if got, ok := ParseWeekday(label); ok && got == wd {
				return true
			}
		}
	}
	return false
}
