// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

import (
	"fmt"
	"time"
)

// Weekday is a day of the week, 0 (Sunday) through 6 (Saturday).
type Weekday int

// Weekday values
const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var monthNames = [13]string{
	"",
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ordinalLabels maps a week-of-month value to its label; -1 is the last week.
var ordinalLabels = map[int]string{
	1:  "first",
	2:  "second",
	3:  "third",
	4:  "fourth",
	-1: "last",
}

// Valid reports whether d is in the range Sunday..Saturday.
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// Code returns the two-letter rule code (SU, MO, ...) or an empty string.
func (d Weekday) Code() string {
	if !d.Valid() {
		return ""
	}
	return weekdayCodes[d]
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// WeekdayOf returns the weekday of t.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

// WeekdayFromCode maps a two-letter rule code to its weekday.
func WeekdayFromCode(code string) (Weekday, bool) {
	for i, c := range weekdayCodes {
		if c == code {
			return Weekday(i), true
		}
	}
	return 0, false
}

// MonthName returns the English name of month m (1-12), or an empty string.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m]
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WeekOrdinal returns the week-of-month ordinal of t: -1 when t falls in the
// last seven days of its month, otherwise ceil(day/7).
func WeekOrdinal(t time.Time) int {
	if t.Day()+7 > DaysIn(t.Year(), t.Month()) {
		return -1
	}
	return (t.Day() + 6) / 7
}
