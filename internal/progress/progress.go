// Package progress computes how far through its calendar year a date is.
package progress

import (
	"math"
	"time"

	"progress-pulse/internal/types"
)

// Calculate builds the progress record for the calendar date of today.
// Only the year, month and day of today are used.
func Calculate(today time.Time, includeToday bool) types.ProgressRecord {
	day := dateOf(today)
	yearStart := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)

	totalDays := daysBetween(yearStart, yearEnd) + 1
	daysPassed := daysBetween(yearStart, day)
	if includeToday {
		daysPassed++
	}
	// Derived so that passed + remaining always equals total.
	daysRemaining := totalDays - daysPassed

	return types.ProgressRecord{
		Year:            day.Year(),
		Today:           day,
		IncludeToday:    includeToday,
		DaysPassed:      daysPassed,
		DaysRemaining:   daysRemaining,
		TotalDays:       totalDays,
		PercentComplete: Percent(daysPassed, totalDays),
		WeeksRemaining:  daysRemaining / 7,
		MonthsRemaining: monthsRemaining(day, yearEnd),
	}
}

// Percent returns part/total*100 rounded to one decimal place, halves away from zero.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// IsLeap reports whether year has 366 days.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func monthsRemaining(today, yearEnd time.Time) int {
	months := 12*(yearEnd.Year()-today.Year()) + int(yearEnd.Month()-today.Month())
	if yearEnd.Day() < today.Day() {
		months--
	}
	return max(0, months)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days between two UTC midnights.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
