package attendance

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/stemsi/tuition-backend/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var numericSuffix = regexp.MustCompile(`(\d+)\s*$`)

// dayPriority ranks a class on the daily board: scheduled and still waiting
// for attendance first, then scheduled and done, then everything else.
func dayPriority(v model.ClassDayView) int {
	switch {
	case v.ScheduledToday && !v.AttendedToday:
		return 0
	case v.ScheduledToday:
		return 1
	default:
		return 2
	}
}

// suffixNumber is the number ending a class name, or 0 when there is none.
func suffixNumber(name string) int {
	m := numericSuffix.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// SortClassesForDay orders the daily board in place. Within a priority
// bucket classes go by the number at the end of their name ("Lớp 2" before
// "Lớp 10", names without one first), then by Vietnamese collation.
func SortClassesForDay(views []model.ClassDayView) {
	col := collate.New(language.Vietnamese)
	sort.SliceStable(views, func(i, j int) bool {
		pi, pj := dayPriority(views[i]), dayPriority(views[j])
		if pi != pj {
			return pi < pj
		}
		return lessClassName(col, views[i].Class.Name, views[j].Class.Name)
	})
}

// SortClassesByName orders classes by name with the same numeric-suffix rule.
func SortClassesByName(classes []model.ClassOffering) {
	col := collate.New(language.Vietnamese)
	sort.SliceStable(classes, func(i, j int) bool {
		return lessClassName(col, classes[i].Name, classes[j].Name)
	})
}

func lessClassName(col *collate.Collator, a, b string) bool {
	if na, nb := suffixNumber(a), suffixNumber(b); na != nb {
		return na < nb
	}
	return col.CompareString(a, b) < 0
}
