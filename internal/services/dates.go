package services

import "time"

// BeginningOfDay normalizes a time to midnight in its own location
func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from start to end.
// The half-day rounding keeps the count stable across DST transitions.
func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int((end.Sub(start) + 12*time.Hour) / (24 * time.Hour))
}

// DaysUntilNextOccurrence computes the number of calendar days from today to
// the next occurrence of a recurring month/day date, ignoring year. A
// same-day match returns exactly 0.
//
// Feb 29 birthdays are observed on Feb 28 in non-leap years.
func DaysUntilNextOccurrence(month, day int, today time.Time) int {
	today = BeginningOfDay(today)

	occurrence := occurrenceInYear(month, day, today.Year(), today.Location())
	if occurrence.Before(today) {
		occurrence = occurrenceInYear(month, day, today.Year()+1, today.Location())
	}

	return DaysBetween(today, occurrence)
}

func occurrenceInYear(month, day, year int, loc *time.Location) time.Time {
	if month == 2 && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
