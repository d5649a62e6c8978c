// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Rule string keys
const (
	keyFreq       = "FREQ"
	keyInterval   = "INTERVAL"
	keyByDay      = "BYDAY"
	keyByMonthDay = "BYMONTHDAY"
	keyByMonth    = "BYMONTH"
	keyUntil      = "UNTIL"
	keyCount      = "COUNT"

	untilLayout = "20060102T150405Z"
)

var ordinalWeekdayPattern = regexp.MustCompile(`^(-?\d+)(SU|MO|TU|WE|TH|FR|SA)$`)

// Encode renders cfg as a canonical rule string. A configuration that does
// not repeat encodes to the empty string.
func Encode(cfg Config) string {
	if !cfg.IsRecurring() || !cfg.Frequency.Valid() {
		return ""
	}

	parts := []string{keyFreq + "=" + strings.ToUpper(string(cfg.Frequency))}
	if cfg.Interval > 1 {
		parts = append(parts, fmt.Sprintf("%s=%d", keyInterval, cfg.Interval))
	}

	switch cfg.Frequency {
	case FrequencyWeekly:
		codes := make([]string, 0, len(cfg.DaysOfWeek))
		for _, d := range cfg.DaysOfWeek {
			if code := d.Code(); code != "" {
				codes = append(codes, code)
			}
		}
		if len(codes) > 0 {
			parts = append(parts, keyByDay+"="+strings.Join(codes, ","))
		}
	case FrequencyMonthly:
		if cfg.MonthlyType == MonthlyByWeekday && cfg.WeekOfMonth != nil && cfg.DayOfWeekForMonth != nil {
			parts = append(parts, fmt.Sprintf("%s=%d%s", keyByDay, *cfg.WeekOfMonth, cfg.DayOfWeekForMonth.Code()))
		} else if cfg.DayOfMonth != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", keyByMonthDay, *cfg.DayOfMonth))
		}
	case FrequencyYearly:
		if cfg.DayOfMonth != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", keyByMonthDay, *cfg.DayOfMonth))
		}
		if cfg.MonthOfYear != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", keyByMonth, *cfg.MonthOfYear))
		}
	}

	switch cfg.EndType {
	case EndOn:
		if cfg.EndDate != nil {
			parts = append(parts, keyUntil+"="+cfg.EndDate.EndOfDay(time.UTC).Format(untilLayout))
		}
	case EndAfter:
		if cfg.Occurrences != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", keyCount, *cfg.Occurrences))
		}
	}

	return strings.Join(parts, ";")
}

// Decode parses a rule string into a configuration. It never fails: unknown
// tokens and unparsable values are skipped and an empty rule decodes to a
// non-repeating configuration.
func Decode(rule string) Config {
	cfg := None()
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return cfg
	}

	for _, token := range strings.Split(rule, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(token), "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case keyFreq:
			if f := Frequency(strings.ToLower(value)); f.Valid() {
				cfg.Frequency = f
			}
		case keyInterval:
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				cfg.Interval = n
			}
		case keyByDay:
			decodeByDay(&cfg, value)
		case keyByMonthDay:
			if n, err := strconv.Atoi(value); err == nil {
				cfg.DayOfMonth = &n
				cfg.MonthlyType = MonthlyByDayOfMonth
			}
		case keyByMonth:
			if n, err := strconv.Atoi(value); err == nil && n >= 1 && n <= 12 {
				cfg.MonthOfYear = &n
			}
		case keyUntil:
			if len(value) < 8 {
				continue
			}
			if t, err := time.Parse("20060102", value[:8]); err == nil {
				d := DateOf(t)
				cfg.EndType = EndOn
				cfg.EndDate = &d
			}
		case keyCount:
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				cfg.EndType = EndAfter
				cfg.Occurrences = &n
			}
		}
	}

	return cfg
}

func decodeByDay(cfg *Config, value string) {
	if m := ordinalWeekdayPattern.FindStringSubmatch(value); m != nil {
		week, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		day, _ := WeekdayFromCode(m[2])
		cfg.MonthlyType = MonthlyByWeekday
		cfg.WeekOfMonth = &week
		cfg.DayOfWeekForMonth = &day
		return
	}

	var days []Weekday
	for _, code := range strings.Split(value, ",") {
		if d, ok := WeekdayFromCode(strings.TrimSpace(code)); ok {
			days = append(days, d)
		}
	}
	cfg.DaysOfWeek = days
}
