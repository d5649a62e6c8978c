// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package recurrence encodes, expands and describes recurring booking rules.
package recurrence

import "time"

// Frequency is the unit a rule repeats in.
type Frequency string

// Frequency values
const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyNone, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// MonthlyType selects how a monthly rule anchors within the month.
type MonthlyType string

// MonthlyType values
const (
	MonthlyByDayOfMonth MonthlyType = "dayOfMonth"
	MonthlyByWeekday    MonthlyType = "weekday"
)

// EndType selects how a series terminates.
type EndType string

// EndType values
const (
	EndNever EndType = "never"
	EndOn    EndType = "on"
	EndAfter EndType = "after"
)

// Config is the user-facing recurrence configuration. Fields other than
// Frequency, Interval and the end fields are only meaningful for some
// frequencies; Rule projects a Config onto the variant it describes.
type Config struct {
	Frequency         Frequency   `json:"frequency"`
	Interval          int         `json:"interval"`
	DaysOfWeek        []Weekday   `json:"daysOfWeek,omitempty"`
	DayOfMonth        *int        `json:"dayOfMonth,omitempty"`
	MonthOfYear       *int        `json:"monthOfYear,omitempty"`
	MonthlyType       MonthlyType `json:"monthlyType,omitempty"`
	WeekOfMonth       *int        `json:"weekOfMonth,omitempty"`
	DayOfWeekForMonth *Weekday    `json:"dayOfWeekForMonth,omitempty"`
	EndType           EndType     `json:"endType"`
	EndDate           *Date       `json:"endDate,omitempty"`
	Occurrences       *int        `json:"occurrences,omitempty"`
}

// None returns a configuration that does not repeat.
func None() Config {
	return Config{Frequency: FrequencyNone, Interval: 1, EndType: EndNever}
}

// IsRecurring reports whether c describes a repeating series.
func (c Config) IsRecurring() bool {
	return c.Frequency != "" && c.Frequency != FrequencyNone
}

// every returns the interval, treating anything below 1 as 1.
func (c Config) every() int {
	if c.Interval < 1 {
		return 1
	}
	return c.Interval
}

// DefaultConfig returns the configuration a booking form starts from when
// frequency is selected for an event beginning at start.
func DefaultConfig(start time.Time, frequency Frequency) Config {
	cfg := None()
	if frequency == FrequencyNone || !frequency.Valid() {
		return cfg
	}
	cfg.Frequency = frequency

	day := start.Day()
	weekday := WeekdayOf(start)
	switch frequency {
	case FrequencyWeekly:
		cfg.DaysOfWeek = []Weekday{weekday}
	case FrequencyMonthly:
		week := WeekOrdinal(start)
		cfg.MonthlyType = MonthlyByDayOfMonth
		cfg.DayOfMonth = &day
		cfg.WeekOfMonth = &week
		cfg.DayOfWeekForMonth = &weekday
	case FrequencyYearly:
		month := int(start.Month())
		cfg.MonthOfYear = &month
		cfg.DayOfMonth = &day
	}
	return cfg
}

// Rule is one of NoRecurrence, DailyRule, WeeklyRule, MonthlyDayRule,
// MonthlyWeekdayRule or YearlyRule.
type Rule interface {
	isRule()
}

// NoRecurrence is a single, non-repeating event.
type NoRecurrence struct{}

// DailyRule repeats every Every days.
type DailyRule struct {
	Every int
}

// WeeklyRule repeats on Days of every Every-th week.
type WeeklyRule struct {
	Every int
	Days  []Weekday
}

// MonthlyDayRule repeats on a fixed day of every Every-th month, clamped to
// the length of the month.
type MonthlyDayRule struct {
	Every int
	Day   int
}

// MonthlyWeekdayRule repeats on the Week-th Weekday of every Every-th month.
// Week -1 is the last such weekday.
type MonthlyWeekdayRule struct {
	Every   int
	Week    int
	Weekday Weekday
}

// YearlyRule repeats on Month/Day every Every years, clamped to the length
// of the month.
type YearlyRule struct {
	Every int
	Month time.Month
	Day   int
}

func (NoRecurrence) isRule()       {}
func (DailyRule) isRule()          {}
func (WeeklyRule) isRule()         {}
func (MonthlyDayRule) isRule()     {}
func (MonthlyWeekdayRule) isRule() {}
func (YearlyRule) isRule()         {}

// Rule projects c onto its variant. Missing day or month fields fall back to
// the anchor date.
func (c Config) Rule(anchor time.Time) Rule {
	every := c.every()
	switch c.Frequency {
	case FrequencyDaily:
		return DailyRule{Every: every}
	case FrequencyWeekly:
		days := make([]Weekday, 0, len(c.DaysOfWeek))
		for _, d := range c.DaysOfWeek {
			if d.Valid() {
				days = append(days, d)
			}
		}
		return WeeklyRule{Every: every, Days: days}
	case FrequencyMonthly:
		if c.MonthlyType == MonthlyByWeekday && c.WeekOfMonth != nil && c.DayOfWeekForMonth != nil {
			return MonthlyWeekdayRule{Every: every, Week: *c.WeekOfMonth, Weekday: *c.DayOfWeekForMonth}
		}
		return MonthlyDayRule{Every: every, Day: dayOrDefault(c.DayOfMonth, anchor.Day())}
	case FrequencyYearly:
		month := anchor.Month()
		if c.MonthOfYear != nil && *c.MonthOfYear >= 1 && *c.MonthOfYear <= 12 {
			month = time.Month(*c.MonthOfYear)
		}
		return YearlyRule{Every: every, Month: month, Day: dayOrDefault(c.DayOfMonth, anchor.Day())}
	}
	return NoRecurrence{}
}

func dayOrDefault(day *int, fallback int) int {
	if day == nil || *day < 1 || *day > 31 {
		return fallback
	}
	return *day
}
