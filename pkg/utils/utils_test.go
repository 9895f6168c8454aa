package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWithDay(t *testing.T) {
	tests := []struct {
		name     string
		base     time.Time
		day      int
		expected time.Time
	}{
		{
			name:     "day inside month",
			base:     date(2024, time.March, 17),
			day:      5,
			expected: date(2024, time.March, 5),
		},
		{
			name:     "day 30 in leap february clamps to 29th",
			base:     date(2024, time.February, 10),
			day:      30,
			expected: date(2024, time.February, 29),
		},
		{
			name:     "day 31 in april clamps to 30th",
			base:     date(2023, time.April, 1),
			day:      31,
			expected: date(2023, time.April, 30),
		},
		{
			name:     "day below 1 becomes first",
			base:     date(2023, time.April, 9),
			day:      0,
			expected: date(2023, time.April, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WithDay(tt.base, tt.day))
		})
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "plain month step",
			start:    date(2024, time.January, 1),
			months:   1,
			expected: date(2024, time.February, 1),
		},
		{
			name:     "end of month does not overflow",
			start:    date(2023, time.January, 31),
			months:   1,
			expected: date(2023, time.February, 28),
		},
		{
			name:     "crosses year boundary",
			start:    date(2023, time.November, 15),
			months:   3,
			expected: date(2024, time.February, 15),
		},
		{
			name:     "twelve months from leap day",
			start:    date(2024, time.February, 29),
			months:   12,
			expected: date(2025, time.February, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddMonthsClamped(tt.start, tt.months))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2024, time.May, 1), date(2024, time.May, 1)))
	assert.Equal(t, 31, DaysBetween(date(2024, time.May, 1), date(2024, time.June, 1)))
	assert.Equal(t, -1, DaysBetween(date(2024, time.May, 2), date(2024, time.May, 1)))

	// time of day is ignored
	from := time.Date(2024, time.May, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(from, date(2024, time.May, 2)))
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 12, MonthsBetween(date(2024, time.January, 1), date(2025, time.January, 1)))
	assert.Equal(t, 0, MonthsBetween(date(2024, time.January, 15), date(2024, time.February, 14)))
	assert.Equal(t, 1, MonthsBetween(date(2024, time.January, 15), date(2024, time.February, 15)))
	assert.Equal(t, -2, MonthsBetween(date(2024, time.March, 1), date(2024, time.January, 1)))
}

func TestIsDateOverdue(t *testing.T) {
	now := time.Date(2024, time.May, 10, 9, 30, 0, 0, time.UTC)

	assert.True(t, IsDateOverdue(date(2024, time.May, 9), now))
	assert.False(t, IsDateOverdue(date(2024, time.May, 10), now), "due today is not overdue yet")
	assert.False(t, IsDateOverdue(date(2024, time.May, 11), now))

	// a UTC due date read back from the database against a clock west of UTC
	newYork := time.FixedZone("EST", -5*60*60)
	assert.False(t, IsDateOverdue(date(2024, time.May, 10), time.Date(2024, time.May, 10, 1, 0, 0, 0, newYork)))
	assert.True(t, IsDateOverdue(date(2024, time.May, 10), time.Date(2024, time.May, 11, 0, 0, 0, 0, newYork)))
}

func TestHumanFileSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "Unknown"},
		{512, "512 B"},
		{1024, "1024 B"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5 MB"},
		{3 * 1024 * 1024 * 1024, "3 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, HumanFileSize(tt.bytes))
		})
	}
}
