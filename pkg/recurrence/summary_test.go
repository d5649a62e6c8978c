// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{
			name:     "none",
			cfg:      None(),
			expected: "Does not repeat",
		},
		{
			name:     "daily",
			cfg:      Config{Frequency: FrequencyDaily, Interval: 1, EndType: EndNever},
			expected: "Repeats every day",
		},
		{
			name:     "every three days",
			cfg:      Config{Frequency: FrequencyDaily, Interval: 3, EndType: EndNever},
			expected: "Repeats every 3 days",
		},
		{
			name:     "unset interval reads as one",
			cfg:      Config{Frequency: FrequencyWeekly, EndType: EndNever},
			expected: "Repeats every week",
		},
		{
			name:     "negative interval reads as one",
			cfg:      Config{Frequency: FrequencyMonthly, Interval: -2, EndType: EndNever},
			expected: "Repeats every month",
		},
		{
			name: "weekly on days",
			cfg: Config{
				Frequency:  FrequencyWeekly,
				Interval:   1,
				DaysOfWeek: []Weekday{Monday, Wednesday},
				EndType:    EndNever,
			},
			expected: "Repeats every week on Monday, Wednesday",
		},
		{
			name: "fortnightly with count",
			cfg: Config{
				Frequency:   FrequencyWeekly,
				Interval:    2,
				DaysOfWeek:  []Weekday{Friday},
				EndType:     EndAfter,
				Occurrences: intPtr(6),
			},
			expected: "Repeats every 2 weeks on Friday, for 6 occurrences",
		},
		{
			name: "single occurrence",
			cfg: Config{
				Frequency:   FrequencyDaily,
				Interval:    1,
				EndType:     EndAfter,
				Occurrences: intPtr(1),
			},
			expected: "Repeats every day, for 1 occurrence",
		},
		{
			name: "monthly last weekday",
			cfg: Config{
				Frequency:         FrequencyMonthly,
				Interval:          1,
				MonthlyType:       MonthlyByWeekday,
				WeekOfMonth:       intPtr(-1),
				DayOfWeekForMonth: weekdayPtr(Friday),
				EndType:           EndNever,
			},
			expected: "Repeats every month on the last Friday",
		},
		{
			name: "monthly second weekday",
			cfg: Config{
				Frequency:         FrequencyMonthly,
				Interval:          3,
				MonthlyType:       MonthlyByWeekday,
				WeekOfMonth:       intPtr(2),
				DayOfWeekForMonth: weekdayPtr(Sunday),
				EndType:           EndNever,
			},
			expected: "Repeats every 3 months on the second Sunday",
		},
		{
			name: "monthly day with until",
			cfg: Config{
				Frequency:   FrequencyMonthly,
				Interval:    1,
				MonthlyType: MonthlyByDayOfMonth,
				DayOfMonth:  intPtr(31),
				EndType:     EndOn,
				EndDate:     datePtr(NewDate(2024, 1, 2)),
			},
			expected: "Repeats every month on the 31st, until January 2, 2024",
		},
		{
			name: "yearly with month and day",
			cfg: Config{
				Frequency:   FrequencyYearly,
				Interval:    1,
				MonthOfYear: intPtr(12),
				DayOfMonth:  intPtr(25),
				EndType:     EndNever,
			},
			expected: "Repeats every year on December 25th",
		},
		{
			name: "yearly without day",
			cfg: Config{
				Frequency:   FrequencyYearly,
				Interval:    2,
				MonthOfYear: intPtr(3),
				EndType:     EndNever,
			},
			expected: "Repeats every 2 years",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Summary(tt.cfg))
		})
	}
}

func TestDaySuffix(t *testing.T) {
	expected := map[int]string{
		1: "st", 2: "nd", 3: "rd", 4: "th", 10: "th",
		11: "th", 12: "th", 13: "th",
		21: "st", 22: "nd", 23: "rd", 24: "th",
		30: "th", 31: "st",
	}
	for d, suffix := range expected {
		assert.Equal(t, suffix, DaySuffix(d), "day %d", d)
	}
}
