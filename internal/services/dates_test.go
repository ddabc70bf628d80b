package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestDaysUntilNextOccurrence(t *testing.T) {
	tests := []struct {
		name  string
		month int
		day   int
		today time.Time
		want  int
	}{
		{"a week away", 3, 15, date(2025, time.March, 8), 7},
		{"same day", 3, 8, date(2025, time.March, 8), 0},
		{"tomorrow", 3, 9, date(2025, time.March, 8), 1},
		{"already passed this year", 1, 1, date(2025, time.March, 8), 299},
		{"december to january wrap", 1, 5, date(2025, time.December, 30), 6},
		{"feb 29 in a non-leap year observed feb 28", 2, 29, date(2025, time.February, 21), 7},
		{"feb 29 in a leap year", 2, 29, date(2024, time.February, 22), 7},
		{"feb 29 on observed day", 2, 29, date(2025, time.February, 28), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DaysUntilNextOccurrence(tc.month, tc.day, tc.today)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDaysUntilNextOccurrenceNeverNegative(t *testing.T) {
	today := date(2025, time.June, 15)
	for month := 1; month <= 12; month++ {
		for day := 1; day <= 28; day++ {
			got := DaysUntilNextOccurrence(month, day, today)
			assert.GreaterOrEqual(t, got, 0, "month=%d day=%d", month, day)
			assert.Less(t, got, 366, "month=%d day=%d", month, day)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2025, time.March, 8), date(2025, time.March, 8)))
	assert.Equal(t, 7, DaysBetween(date(2025, time.March, 8), date(2025, time.March, 15)))
	assert.Equal(t, 1, DaysBetween(date(2025, time.December, 31), date(2026, time.January, 1)))
}

func TestBeginningOfDay(t *testing.T) {
	ts := time.Date(2025, time.March, 8, 17, 45, 12, 999, time.UTC)
	got := BeginningOfDay(ts)
	assert.Equal(t, date(2025, time.March, 8), got)
}
