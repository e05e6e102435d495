package priority

import (
	"math"
	"strings"
	"time"
)

// MaxOverdueDays caps the overdue-day count so the logarithmic growth of
// urgency stays bounded for long-abandoned tasks.
const MaxOverdueDays = 30

// dueDateLayouts are the formats accepted for task due dates, tried in
// order. Date-only input is the common case (HTML date pickers emit it).
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseDueDate parses a due date string against the accepted layouts.
// The boolean reports whether any layout matched.
func ParseDueDate(due string) (time.Time, bool) {
	due = strings.TrimSpace(due)
	if due == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, due); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DueDatePoints converts a due date into urgency points relative to now.
//
// Both ends are normalized to midnight so urgency is date-granular. A
// future deadline yields (1/(days+hours/24))*10 — growing as the deadline
// approaches. A deadline today or in the past yields 10*(1+ln(overdue+1))
// with overdue days capped at MaxOverdueDays, so due-today tasks score a
// flat 10 and overdue tasks climb logarithmically from there.
//
// Missing or unparseable dates degrade to 0 — a task with a broken date
// still ranks, it just gets no urgency boost.
func DueDatePoints(due string, now time.Time) float64 {
	deadline, ok := ParseDueDate(due)
	if !ok {
		return 0
	}

	// Build the deadline's day in now's location: date-only strings parse
	// as UTC and would otherwise shift across the midnight boundary.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, now.Location())

	diff := dueDay.Sub(today)
	if diff > 0 {
		totalHours := diff.Hours()
		days := math.Floor(totalHours / 24)
		hours := math.Floor(math.Mod(totalHours, 24))
		return (1 / (days + hours/24)) * 10
	}

	overdueDays := int(today.Sub(dueDay).Hours() / 24)
	if overdueDays > MaxOverdueDays {
		overdueDays = MaxOverdueDays
	}
	return 10 * (1 + math.Log(float64(overdueDays)+1))
}
