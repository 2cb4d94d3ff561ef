package birthdays

import (
	"time"

	"github.com/codegangsta/chartbot/internal/dates"
)

// Occurrence returns the day a birthday is celebrated in year.
// Feb 29 birthdays fall on Mar 1 outside leap years.
func Occurrence(born dates.Date, year int) dates.Date {
	return dates.FromTime(time.Date(year, born.Month, born.Day, 0, 0, 0, 0, time.UTC))
}

// Age returns how many birthdays have passed between born and on
func Age(born, on dates.Date) int {
	age := on.Year - born.Year
	if on.Before(Occurrence(born, on.Year)) {
		age--
	}
	return age
}

// IsLeap reports whether year has a Feb 29
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
