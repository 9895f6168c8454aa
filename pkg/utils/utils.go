package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateOnly strips the clock part of t, keeping its location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month, loc *time.Location) int {
	// Day 0 of the next month normalises to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// WithDay moves t to the given day of its own month. Days past the end of the
// month are clamped to the last day instead of rolling into the next month.
func WithDay(t time.Time, day int) time.Time {
	y, m, _ := t.Date()
	if day < 1 {
		day = 1
	}
	if last := DaysInMonth(y, m, t.Location()); day > last {
		day = last
	}
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

// AddMonthsClamped adds months to t, clamping the day of month so that
// Jan 31 + 1 month is Feb 28/29 rather than early March.
func AddMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	return WithDay(first, d)
}

// DaysBetween returns the signed number of calendar days from one date to another
func DaysBetween(from, to time.Time) int {
	f := DateOnly(from)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, f.Location())
	// Round instead of truncating so DST shifts don't lose a day.
	return int(t.Sub(f).Round(24*time.Hour) / (24 * time.Hour))
}

// MonthsBetween returns the number of whole months between two dates
func MonthsBetween(from, to time.Time) int {
	sign := 1
	if to.Before(from) {
		from, to = to, from
		sign = -1
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if months > 0 && AddMonthsClamped(from, months).After(DateOnly(to)) {
		months--
	}
	return sign * months
}

// IsDateOverdue checks if a due date lies strictly before the day of now.
// Calendar dates are compared, so the two values may carry different locations.
func IsDateOverdue(dueDate time.Time, now time.Time) bool {
	return DaysBetween(dueDate, now) > 0
}

// HumanFileSize renders a byte count with two decimals, e.g. "1.5 MB"
func HumanFileSize(bytes int64) string {
	if bytes <= 0 {
		return "Unknown"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := decimal.NewFromInt(bytes)
	kilo := decimal.NewFromInt(1024)
	i := 0
	for size.GreaterThan(kilo) && i < len(units)-1 {
		size = size.Div(kilo)
		i++
	}
	return fmt.Sprintf("%s %s", size.Round(2).String(), units[i])
}
