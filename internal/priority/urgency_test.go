package priority

import (
	"fmt"
	"math"
	"testing"
	"time"
)

// baseTime is a fixed reference time for deterministic tests.
var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func dateString(daysFromNow int) string {
	return baseTime.AddDate(0, 0, daysFromNow).Format("2006-01-02")
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDueDatePoints_MissingOrInvalid(t *testing.T) {
	cases := []struct {
		name string
		due  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"garbage", "not a date"},
		{"partial", "2026-13-45"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DueDatePoints(tc.due, baseTime); got != 0 {
				t.Errorf("DueDatePoints(%q) = %v, want 0", tc.due, got)
			}
		})
	}
}

func TestDueDatePoints_AcceptedLayouts(t *testing.T) {
	// All encode tomorrow; every layout should yield the same points.
	tomorrow := baseTime.AddDate(0, 0, 1)
	layouts := []string{
		tomorrow.Format("2006-01-02"),
		tomorrow.Format(time.RFC3339),
		tomorrow.Format("2006-01-02 15:04:05"),
		tomorrow.Format("01/02/2006"),
	}
	for _, due := range layouts {
		if got := DueDatePoints(due, baseTime); !almostEqual(got, 10) {
			t.Errorf("DueDatePoints(%q) = %v, want 10", due, got)
		}
	}
}

func TestDueDatePoints_Future(t *testing.T) {
	cases := []struct {
		days int
		want float64
	}{
		{1, 10},  // tomorrow: 10/1
		{2, 5},   // 10/2
		{4, 2.5}, // 10/4
		{10, 1},  // 10/10
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("in_%d_days", tc.days), func(t *testing.T) {
			got := DueDatePoints(dateString(tc.days), baseTime)
			if !almostEqual(got, tc.want) {
				t.Errorf("DueDatePoints(+%dd) = %v, want %v", tc.days, got, tc.want)
			}
		})
	}
}

func TestDueDatePoints_DueTodayIsFlatTen(t *testing.T) {
	// Midnight normalization folds due-today into the overdue branch at
	// zero days: 10 * (1 + ln(1)) = 10.
	got := DueDatePoints(dateString(0), baseTime)
	if !almostEqual(got, 10) {
		t.Errorf("due-today points = %v, want 10", got)
	}
}

func TestDueDatePoints_OverdueMonotonic(t *testing.T) {
	prev := DueDatePoints(dateString(0), baseTime)
	for days := 1; days <= MaxOverdueDays; days++ {
		got := DueDatePoints(dateString(-days), baseTime)
		if got <= prev {
			t.Fatalf("urgency not monotonic: %d days overdue = %v, %d days = %v", days, got, days-1, prev)
		}
		want := 10 * (1 + math.Log(float64(days)+1))
		if !almostEqual(got, want) {
			t.Errorf("%d days overdue = %v, want %v", days, got, want)
		}
		prev = got
	}
}

func TestDueDatePoints_OverdueCap(t *testing.T) {
	at31 := DueDatePoints(dateString(-31), baseTime)
	at60 := DueDatePoints(dateString(-60), baseTime)
	atCap := 10 * (1 + math.Log(float64(MaxOverdueDays)+1))

	if !almostEqual(at31, at60) {
		t.Errorf("capped urgency differs: 31d=%v 60d=%v", at31, at60)
	}
	if !almostEqual(at31, atCap) {
		t.Errorf("capped urgency = %v, want %v", at31, atCap)
	}
}

func TestDueDatePoints_AlwaysAtLeastTenWhenOverdue(t *testing.T) {
	for days := 0; days <= 90; days += 5 {
		if got := DueDatePoints(dateString(-days), baseTime); got < 10 {
			t.Errorf("%d days overdue = %v, want >= 10", days, got)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	if _, ok := ParseDueDate("2026-03-15"); !ok {
		t.Error("expected 2026-03-15 to parse")
	}
	if _, ok := ParseDueDate("next tuesday"); ok {
		t.Error("expected free-text date to fail")
	}
}
