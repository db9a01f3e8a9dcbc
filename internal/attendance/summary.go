// Package attendance aggregates attendance records for reports and the
// daily class board. Duplicate records for the same student and day are
// counted individually; nothing here deduplicates.
package attendance

import (
	"sort"

	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/model"
)

// Summary counts records by status.
type Summary struct {
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	TeacherAbsent int `json:"teacher_absent"`
	Makeup        int `json:"makeup"`
	Total         int `json:"total"`
}

// Add counts one record. Unknown statuses only count toward Total.
func (s *Summary) Add(status model.AttendanceStatus) {
	s.Total++
	switch status {
	case model.AttendancePresent:
		s.Present++
	case model.AttendanceAbsent:
		s.Absent++
	case model.AttendanceTeacherAbsent:
		s.TeacherAbsent++
	case model.AttendanceMakeup:
		s.Makeup++
	}
}

// Attended is the number of sessions the student actually sat: present
// plus makeup.
func (s Summary) Attended() int {
	return s.Present + s.Makeup
}

// Summarize counts records by status.
func Summarize(records []model.AttendanceRecord) Summary {
	var s Summary
	for _, r := range records {
		s.Add(r.Status)
	}
	return s
}

// DayGroup holds the records of one calendar day.
type DayGroup struct {
	Date    calendar.Date            `json:"date"`
	Summary Summary                  `json:"summary"`
	Records []model.AttendanceRecord `json:"records"`
}

// GroupByDate buckets records by day, newest day first. Records keep their
// input order inside a day.
func GroupByDate(records []model.AttendanceRecord) []DayGroup {
	index := make(map[calendar.Date]int)
	var groups []DayGroup
	for _, r := range records {
		i, ok := index[r.Date]
		if !ok {
			i = len(groups)
			index[r.Date] = i
			groups = append(groups, DayGroup{Date: r.Date})
		}
		groups[i].Records = append(groups[i].Records, r)
		groups[i].Summary.Add(r.Status)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Date.After(groups[b].Date)
	})
	return groups
}

// InRange keeps records dated within [from, to]. A zero bound is open.
func InRange(records []model.AttendanceRecord, from, to calendar.Date) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && r.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ClassAttendedOn reports whether every active student of a class has at
// least one record, of any status, on day. A class without active students
// counts as attended.
func ClassAttendedOn(activeStudentIDs []int, records []model.AttendanceRecord, day calendar.Date) bool {
	marked := make(map[int]bool, len(records))
	for _, r := range records {
		if r.Date.Equal(day) {
			marked[r.StudentID] = true
		}
	}
	for _, id := range activeStudentIDs {
		if !marked[id] {
			return false
		}
	}
	return true
}
