package domain

import (
	"fmt"
	"time"
)

// Period is a reset-day-aligned monthly interval: [Start, End).
// Label is the YYYY-MM of the month containing Start.
type Period struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

const monthLayout = "2006-01"

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// day 0 of the next month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// periodStart returns the start instant of the period anchored in the given
// month: the reset day at midnight UTC, clamped to the month's last day.
func periodStart(year int, month time.Month, resetDay int) time.Time {
	day := resetDay
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ResolvePeriods computes the n trailing periods (oldest first) containing the
// reference instant, for the given reset day. Periods are contiguous and
// non-overlapping: each period ends exactly where the next one starts.
// The result depends only on the arguments, never on wall-clock time.
func ResolvePeriods(ref time.Time, resetDay, n int) ([]Period, error) {
	if resetDay < 1 || resetDay > 31 {
		return nil, &ErrValidation{Field: "reset_day", Message: "must be between 1 and 31"}
	}
	if n < 1 {
		return nil, &ErrValidation{Field: "periods", Message: "must be at least 1"}
	}

	ref = ref.UTC()
	year, month := ref.Year(), ref.Month()
	if ref.Before(periodStart(year, month, resetDay)) {
		// before this month's reset day: the current period started last month
		year, month = prevMonth(year, month)
	}

	periods := make([]Period, 0, n)
	for i := n - 1; i >= 0; i-- {
		// time.Date normalizes out-of-range months
		anchor := time.Date(year, month-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		start := periodStart(anchor.Year(), anchor.Month(), resetDay)
		next := anchor.AddDate(0, 1, 0)
		end := periodStart(next.Year(), next.Month(), resetDay)
		periods = append(periods, Period{
			Label: start.Format(monthLayout),
			Start: start,
			End:   end,
		})
	}
	return periods, nil
}

// PeriodForMonth returns the single period anchored in the given YYYY-MM month.
func PeriodForMonth(month string, resetDay int) (Period, error) {
	if resetDay < 1 || resetDay > 31 {
		return Period{}, &ErrValidation{Field: "reset_day", Message: "must be between 1 and 31"}
	}
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return Period{}, &ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}
	start := periodStart(t.Year(), t.Month(), resetDay)
	next := t.AddDate(0, 1, 0)
	end := periodStart(next.Year(), next.Month(), resetDay)
	return Period{Label: month, Start: start, End: end}, nil
}

// PreviousMonth returns the YYYY-MM label of the month before the given one.
func PreviousMonth(month string) (string, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return "", &ErrValidation{Field: "month", Message: "must be formatted YYYY-MM"}
	}
	return t.AddDate(0, -1, 0).Format(monthLayout), nil
}

// ValidMonth reports whether s is a well-formed YYYY-MM label.
func ValidMonth(s string) bool {
	_, err := time.Parse(monthLayout, s)
	return err == nil
}

// MonthOf returns the YYYY-MM label of the instant.
func MonthOf(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

func prevMonth(year int, month time.Month) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return t.Year(), t.Month()
}

// String implements fmt.Stringer for log output.
func (p Period) String() string {
	return fmt.Sprintf("%s [%s, %s)", p.Label, p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}
