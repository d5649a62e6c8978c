// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLimit = 100

func day(year int, month time.Month, d, hour, minute int) time.Time {
	return time.Date(year, month, d, hour, minute, 0, 0, time.UTC)
}

func startDates(instances []Instance) []time.Time {
	out := make([]time.Time, 0, len(instances))
	for _, inst := range instances {
		out = append(out, inst.StartsAt)
	}
	return out
}

func TestGenerate_Weekly(t *testing.T) {
	start := day(2024, 1, 1, 10, 0) // Monday
	end := day(2024, 1, 1, 11, 30)
	cfg := Config{
		Frequency:   FrequencyWeekly,
		Interval:    1,
		DaysOfWeek:  []Weekday{Monday, Wednesday, Friday},
		EndType:     EndAfter,
		Occurrences: intPtr(5),
	}

	instances := Generate(start, end, cfg, testLimit)

	require.Len(t, instances, 4)
	assert.Equal(t, []time.Time{
		day(2024, 1, 3, 10, 0),
		day(2024, 1, 5, 10, 0),
		day(2024, 1, 8, 10, 0),
		day(2024, 1, 10, 10, 0),
	}, startDates(instances))
	for _, inst := range instances {
		assert.Equal(t, 90*time.Minute, inst.EndsAt.Sub(inst.StartsAt))
	}
}

func TestGenerate_WeeklyInterval(t *testing.T) {
	start := day(2024, 1, 1, 18, 0)
	cfg := Config{
		Frequency:   FrequencyWeekly,
		Interval:    2,
		DaysOfWeek:  []Weekday{Monday, Wednesday},
		EndType:     EndAfter,
		Occurrences: intPtr(5),
	}

	instances := Generate(start, start.Add(time.Hour), cfg, testLimit)

	assert.Equal(t, []time.Time{
		day(2024, 1, 3, 18, 0),
		day(2024, 1, 15, 18, 0),
		day(2024, 1, 17, 18, 0),
		day(2024, 1, 29, 18, 0),
	}, startDates(instances))
}

func TestGenerate_WeeklyWithoutDays(t *testing.T) {
	start := day(2024, 1, 1, 9, 0)
	cfg := Config{Frequency: FrequencyWeekly, Interval: 1, EndType: EndNever}

	assert.Empty(t, Generate(start, start.Add(time.Hour), cfg, testLimit))
}

func TestGenerate_MonthlyDayOfMonthClamps(t *testing.T) {
	start := day(2024, 1, 31, 9, 0)
	cfg := Config{
		Frequency:   FrequencyMonthly,
		Interval:    1,
		MonthlyType: MonthlyByDayOfMonth,
		DayOfMonth:  intPtr(31),
		EndType:     EndAfter,
		Occurrences: intPtr(4),
	}

	instances := Generate(start, start.Add(time.Hour), cfg, testLimit)

	assert.Equal(t, []time.Time{
		day(2024, 2, 29, 9, 0),
		day(2024, 3, 31, 9, 0),
		day(2024, 4, 30, 9, 0),
	}, startDates(instances))
}

func TestGenerate_MonthlyLastWeekday(t *testing.T) {
	start := day(2024, 1, 1, 14, 0) // first Monday of January
	cfg := Config{
		Frequency:         FrequencyMonthly,
		Interval:          1,
		MonthlyType:       MonthlyByWeekday,
		WeekOfMonth:       intPtr(-1),
		DayOfWeekForMonth: weekdayPtr(Monday),
		EndType:           EndAfter,
		Occurrences:       intPtr(7),
	}

	instances := Generate(start, start.Add(time.Hour), cfg, testLimit)

	require.Len(t, instances, 6)
	for _, inst := range instances {
		assert.Equal(t, time.Monday, inst.StartsAt.Weekday())
		next := inst.StartsAt.AddDate(0, 0, 7)
		assert.NotEqual(t, inst.StartsAt.Month(), next.Month(), "%s is not the last Monday", inst.StartsAt)
	}
	assert.Equal(t, day(2024, 2, 26, 14, 0), instances[0].StartsAt)
	assert.Equal(t, day(2024, 3, 25, 14, 0), instances[1].StartsAt)
}

func TestGenerate_MonthlyNthWeekday(t *testing.T) {
	start := day(2024, 1, 9, 19, 30) // second Tuesday
	cfg := Config{
		Frequency:         FrequencyMonthly,
		Interval:          2,
		MonthlyType:       MonthlyByWeekday,
		WeekOfMonth:       intPtr(2),
		DayOfWeekForMonth: weekdayPtr(Tuesday),
		EndType:           EndAfter,
		Occurrences:       intPtr(3),
	}

	instances := Generate(start, start.Add(time.Hour), cfg, testLimit)

	assert.Equal(t, []time.Time{
		day(2024, 3, 12, 19, 30),
		day(2024, 5, 14, 19, 30),
	}, startDates(instances))
}

func TestGenerate_ImpossibleWeekdayTerminates(t *testing.T) {
	start := day(2024, 1, 1, 9, 0)
	cfg := Config{
		Frequency:         FrequencyMonthly,
		Interval:          1,
		MonthlyType:       MonthlyByWeekday,
		WeekOfMonth:       intPtr(6),
		DayOfWeekForMonth: weekdayPtr(Monday),
		EndType:           EndAfter,
		Occurrences:       intPtr(10),
	}

	assert.Empty(t, Generate(start, start.Add(time.Hour), cfg, testLimit))
}

func TestGenerate_FifthWeekdaySkipsShortMonths(t *testing.T) {
	start := day(2024, 1, 29, 9, 0) // fifth Monday of January
	cfg := Config{
		Frequency:         FrequencyMonthly,
		Interval:          1,
		MonthlyType:       MonthlyByWeekday,
		WeekOfMonth:       intPtr(5),
		DayOfWeekForMonth: weekdayPtr(Monday),
		EndType:           EndAfter,
		Occurrences:       intPtr(3),
	}

	instances := Generate(start, start.Add(time.Hour), cfg, testLimit)

	// February 2024 has four Mondays.
	assert.Equal(t, []time.Time{
		day(2024, 4, 29, 9, 0),
		day(2024, 7, 29, 9, 0),
	}, startDates(instances))
}

func TestGenerate_YearlyLeapDayClamps(t *testing.T) {
	start := day(2024, 2, 29, 8, 0)
	cfg := Config{
		Frequency:   FrequencyYearly,
		Interval:    1,
		DayOfMonth:  intPtr(29),
		MonthOfYear: intPtr(2),
		EndType:     EndOn,
		EndDate:     datePtr(NewDate(2028, 3, 1)),
	}

	instances := Generate(start, start.Add(time.Hour), cfg, testLimit)

	assert.Equal(t, []time.Time{
		day(2025, 2, 28, 8, 0),
		day(2026, 2, 28, 8, 0),
		day(2027, 2, 28, 8, 0),
		day(2028, 2, 29, 8, 0),
	}, startDates(instances))
}

func TestGenerate_YearlyDefaultsToAnchor(t *testing.T) {
	start := day(2024, 6, 15, 12, 0)
	cfg := Config{
		Frequency: FrequencyYearly,
		Interval:  2,
		EndType:   EndOn,
		EndDate:   datePtr(NewDate(2026, 12, 31)),
	}

	instances := Generate(start, start.Add(time.Hour), cfg, testLimit)

	assert.Equal(t, []time.Time{day(2026, 6, 15, 12, 0)}, startDates(instances))
}

func TestGenerate_EndDateIsInclusive(t *testing.T) {
	start := day(2024, 1, 1, 20, 0)
	endDate := NewDate(2024, 1, 15)
	cfg := Config{
		Frequency: FrequencyDaily,
		Interval:  1,
		EndType:   EndOn,
		EndDate:   &endDate,
	}

	instances := Generate(start, start.Add(time.Hour), cfg, testLimit)

	require.Len(t, instances, 14)
	assert.Equal(t, day(2024, 1, 15, 20, 0), instances[len(instances)-1].StartsAt)
	for _, inst := range instances {
		assert.False(t, endDate.Before(DateOf(inst.StartsAt)), "%s is after the end date", inst.StartsAt)
	}
}

func TestGenerate_NeverIsBoundedByHorizon(t *testing.T) {
	start := day(2024, 1, 1, 0, 0)
	cfg := Config{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []Weekday{Monday}, EndType: EndNever}

	instances := Generate(start, start.Add(time.Hour), cfg, testLimit)

	require.Len(t, instances, 52)
	assert.Equal(t, day(2024, 12, 30, 0, 0), instances[51].StartsAt)
}

func TestGenerate_AfterIsBoundedByHorizon(t *testing.T) {
	start := day(2024, 1, 1, 9, 0)
	cfg := Config{
		Frequency:   FrequencyMonthly,
		Interval:    1,
		MonthlyType: MonthlyByDayOfMonth,
		DayOfMonth:  intPtr(1),
		EndType:     EndAfter,
		Occurrences: intPtr(30),
	}

	instances := Generate(start, start.Add(time.Hour), cfg, testLimit)

	// February to December; January 2025 is past the one-year ceiling.
	require.Len(t, instances, 11)
	assert.Equal(t, day(2024, 2, 1, 9, 0), instances[0].StartsAt)
	assert.Equal(t, day(2024, 12, 1, 9, 0), instances[10].StartsAt)
}

func TestGenerate_CapLimitsCount(t *testing.T) {
	start := day(2024, 1, 1, 7, 0)
	daily := Config{Frequency: FrequencyDaily, Interval: 1, EndType: EndNever}
	counted := Config{Frequency: FrequencyDaily, Interval: 1, EndType: EndAfter, Occurrences: intPtr(500)}

	assert.Len(t, Generate(start, start.Add(time.Hour), daily, testLimit), testLimit)
	assert.Len(t, Generate(start, start.Add(time.Hour), counted, 10), 10)
}

func TestGenerate_NoInstances(t *testing.T) {
	start := day(2024, 1, 1, 7, 0)

	tests := map[string]Config{
		"does not repeat":   None(),
		"single occurrence": {Frequency: FrequencyDaily, Interval: 1, EndType: EndAfter, Occurrences: intPtr(1)},
		"end date before first instance": {
			Frequency: FrequencyMonthly,
			Interval:  1,
			EndType:   EndOn,
			EndDate:   datePtr(NewDate(2024, 1, 20)),
		},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, Generate(start, start.Add(time.Hour), cfg, testLimit))
		})
	}
}

func TestGenerate_PreservesClockAndLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2024, 3, 10, 23, 15, 0, 0, loc)
	cfg := Config{Frequency: FrequencyDaily, Interval: 3, EndType: EndAfter, Occurrences: intPtr(4)}

	instances := Generate(start, start.Add(45*time.Minute), cfg, testLimit)

	require.Len(t, instances, 3)
	for i, inst := range instances {
		assert.Equal(t, loc, inst.StartsAt.Location())
		assert.Equal(t, 23, inst.StartsAt.Hour())
		assert.Equal(t, 15, inst.StartsAt.Minute())
		assert.Equal(t, 45*time.Minute, inst.EndsAt.Sub(inst.StartsAt))
		assert.Equal(t, 10+3*(i+1), inst.StartsAt.Day())
	}
}

func TestGenerate_StrictlyIncreasing(t *testing.T) {
	start := day(2024, 1, 31, 9, 0)
	configs := []Config{
		{Frequency: FrequencyDaily, Interval: 5, EndType: EndNever},
		{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []Weekday{Saturday, Sunday, Wednesday}, EndType: EndNever},
		{Frequency: FrequencyMonthly, Interval: 1, MonthlyType: MonthlyByDayOfMonth, DayOfMonth: intPtr(30), EndType: EndNever},
		{Frequency: FrequencyMonthly, Interval: 1, MonthlyType: MonthlyByWeekday, WeekOfMonth: intPtr(4), DayOfWeekForMonth: weekdayPtr(Friday), EndType: EndNever},
		{Frequency: FrequencyYearly, Interval: 1, EndType: EndOn, EndDate: datePtr(NewDate(2030, 12, 31))},
	}

	for _, cfg := range configs {
		t.Run(string(cfg.Frequency), func(t *testing.T) {
			instances := Generate(start, start.Add(time.Hour), cfg, testLimit)
			require.NotEmpty(t, instances)
			prev := start
			for _, inst := range instances {
				assert.True(t, inst.StartsAt.After(prev), "%s is not after %s", inst.StartsAt, prev)
				prev = inst.StartsAt
			}
		})
	}
}

func TestIterator_NextAfterExhaustion(t *testing.T) {
	start := day(2024, 1, 1, 7, 0)
	it := NewIterator(start, start.Add(time.Hour), Config{
		Frequency:   FrequencyDaily,
		Interval:    1,
		EndType:     EndAfter,
		Occurrences: intPtr(2),
	}, testLimit)

	inst, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, day(2024, 1, 2, 7, 0), inst.StartsAt)

	_, ok = it.Next()
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok)
}
