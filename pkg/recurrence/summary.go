// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

import (
	"fmt"
	"strings"
)

var frequencyUnits = map[Frequency]string{
	FrequencyDaily:   "day",
	FrequencyWeekly:  "week",
	FrequencyMonthly: "month",
	FrequencyYearly:  "year",
}

// Summary renders cfg as an English sentence, e.g.
// "Repeats every 2 weeks on Monday, Friday, for 6 occurrences".
func Summary(cfg Config) string {
	unit, ok := frequencyUnits[cfg.Frequency]
	if !ok {
		return "Does not repeat"
	}

	var b strings.Builder
	b.WriteString("Repeats every ")
	if n := cfg.every(); n > 1 {
		fmt.Fprintf(&b, "%d %ss", n, unit)
	} else {
		b.WriteString(unit)
	}

	switch cfg.Frequency {
	case FrequencyWeekly:
		names := make([]string, 0, len(cfg.DaysOfWeek))
		for _, d := range cfg.DaysOfWeek {
			if d.Valid() {
				names = append(names, weekdayNames[d])
			}
		}
		if len(names) > 0 {
			b.WriteString(" on " + strings.Join(names, ", "))
		}
	case FrequencyMonthly:
		if cfg.MonthlyType == MonthlyByWeekday && cfg.WeekOfMonth != nil && cfg.DayOfWeekForMonth != nil {
			day := ""
			if cfg.DayOfWeekForMonth.Valid() {
				day = weekdayNames[*cfg.DayOfWeekForMonth]
			}
			fmt.Fprintf(&b, " on the %s %s", ordinalLabels[*cfg.WeekOfMonth], day)
		} else if cfg.DayOfMonth != nil && *cfg.DayOfMonth > 0 {
			fmt.Fprintf(&b, " on the %d%s", *cfg.DayOfMonth, DaySuffix(*cfg.DayOfMonth))
		}
	case FrequencyYearly:
		if cfg.MonthOfYear != nil && cfg.DayOfMonth != nil && *cfg.MonthOfYear > 0 && *cfg.DayOfMonth > 0 {
			fmt.Fprintf(&b, " on %s %d%s", MonthName(*cfg.MonthOfYear), *cfg.DayOfMonth, DaySuffix(*cfg.DayOfMonth))
		}
	}

	switch {
	case cfg.EndType == EndOn && cfg.EndDate != nil:
		fmt.Fprintf(&b, ", until %s %d, %d", MonthName(int(cfg.EndDate.Month)), cfg.EndDate.Day, cfg.EndDate.Year)
	case cfg.EndType == EndAfter && cfg.Occurrences != nil && *cfg.Occurrences > 0:
		fmt.Fprintf(&b, ", for %d occurrence", *cfg.Occurrences)
		if *cfg.Occurrences > 1 {
			b.WriteString("s")
		}
	}

	return b.String()
}

// DaySuffix returns the English ordinal suffix for a day of the month.
func DaySuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
