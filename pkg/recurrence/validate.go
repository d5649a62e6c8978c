// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

import (
	"errors"
	"slices"
	"time"
)

// FieldError reports an invalid configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks that cfg describes a series that can be created for an
// anchor starting at start. All problems found are joined into one error.
func Validate(cfg Config, start time.Time) error {
	if !cfg.IsRecurring() {
		return nil
	}

	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &FieldError{Field: field, Message: msg})
	}

	if !cfg.Frequency.Valid() {
		add("frequency", "unknown frequency")
	}
	if cfg.Interval < 1 {
		add("interval", "must be at least 1")
	}

	switch cfg.Frequency {
	case FrequencyWeekly:
		if len(cfg.DaysOfWeek) == 0 {
			add("daysOfWeek", "select at least one day for weekly recurrence")
		}
		if slices.ContainsFunc(cfg.DaysOfWeek, func(d Weekday) bool { return !d.Valid() }) {
			add("daysOfWeek", "days must be between 0 (Sunday) and 6 (Saturday)")
		}
	case FrequencyMonthly:
		if cfg.MonthlyType == MonthlyByWeekday {
			if cfg.WeekOfMonth == nil || !validWeekOfMonth(*cfg.WeekOfMonth) {
				add("weekOfMonth", "must be 1, 2, 3, 4 or -1")
			}
			if cfg.DayOfWeekForMonth == nil || !cfg.DayOfWeekForMonth.Valid() {
				add("dayOfWeekForMonth", "days must be between 0 (Sunday) and 6 (Saturday)")
			}
		} else if cfg.DayOfMonth != nil && (*cfg.DayOfMonth < 1 || *cfg.DayOfMonth > 31) {
			add("dayOfMonth", "must be between 1 and 31")
		}
	case FrequencyYearly:
		if cfg.DayOfMonth != nil && (*cfg.DayOfMonth < 1 || *cfg.DayOfMonth > 31) {
			add("dayOfMonth", "must be between 1 and 31")
		}
		if cfg.MonthOfYear != nil && (*cfg.MonthOfYear < 1 || *cfg.MonthOfYear > 12) {
			add("monthOfYear", "must be between 1 and 12")
		}
	}

	switch cfg.EndType {
	case EndNever, "":
	case EndOn:
		if cfg.EndDate == nil || cfg.EndDate.IsZero() {
			add("endDate", "required when the series ends on a date")
		} else if cfg.EndDate.Before(DateOf(start)) {
			add("endDate", "must not be before the start date")
		}
	case EndAfter:
		if cfg.Occurrences == nil || *cfg.Occurrences < 1 {
			add("occurrences", "must be at least 1")
		}
	default:
		add("endType", "unknown end type")
	}

	return errors.Join(errs...)
}

func validWeekOfMonth(week int) bool {
	return week == -1 || (week >= 1 && week <= 4)
}
