// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekOrdinal(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected int
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), 2},
		{time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), 4},
		{time.Date(2024, 1, 24, 0, 0, 0, 0, time.UTC), 4},
		{time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC), -1},
		{time.Date(2024, 2, 22, 0, 0, 0, 0, time.UTC), 4},
		{time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC), -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, WeekOrdinal(tt.date), tt.date.Format(time.DateOnly))
	}
}

func TestDefaultConfig(t *testing.T) {
	start := time.Date(2024, 3, 28, 10, 0, 0, 0, time.UTC) // last Thursday of March

	t.Run("none", func(t *testing.T) {
		assert.Equal(t, None(), DefaultConfig(start, FrequencyNone))
	})

	t.Run("weekly uses the start weekday", func(t *testing.T) {
		cfg := DefaultConfig(start, FrequencyWeekly)
		assert.Equal(t, []Weekday{Thursday}, cfg.DaysOfWeek)
		assert.Equal(t, 1, cfg.Interval)
		assert.Equal(t, EndNever, cfg.EndType)
	})

	t.Run("monthly fills both anchors", func(t *testing.T) {
		cfg := DefaultConfig(start, FrequencyMonthly)
		assert.Equal(t, MonthlyByDayOfMonth, cfg.MonthlyType)
		require.NotNil(t, cfg.DayOfMonth)
		assert.Equal(t, 28, *cfg.DayOfMonth)
		require.NotNil(t, cfg.WeekOfMonth)
		assert.Equal(t, -1, *cfg.WeekOfMonth)
		require.NotNil(t, cfg.DayOfWeekForMonth)
		assert.Equal(t, Thursday, *cfg.DayOfWeekForMonth)
	})

	t.Run("yearly uses month and day", func(t *testing.T) {
		cfg := DefaultConfig(start, FrequencyYearly)
		require.NotNil(t, cfg.MonthOfYear)
		assert.Equal(t, 3, *cfg.MonthOfYear)
		require.NotNil(t, cfg.DayOfMonth)
		assert.Equal(t, 28, *cfg.DayOfMonth)
	})
}

func TestConfig_Rule(t *testing.T) {
	anchor := time.Date(2024, 8, 17, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		cfg      Config
		expected Rule
	}{
		{"none", None(), NoRecurrence{}},
		{"daily", Config{Frequency: FrequencyDaily, Interval: 0}, DailyRule{Every: 1}},
		{
			"weekly drops invalid days",
			Config{Frequency: FrequencyWeekly, Interval: 2, DaysOfWeek: []Weekday{Monday, 9}},
			WeeklyRule{Every: 2, Days: []Weekday{Monday}},
		},
		{
			"monthly weekday",
			Config{Frequency: FrequencyMonthly, Interval: 1, MonthlyType: MonthlyByWeekday, WeekOfMonth: intPtr(3), DayOfWeekForMonth: weekdayPtr(Saturday)},
			MonthlyWeekdayRule{Every: 1, Week: 3, Weekday: Saturday},
		},
		{
			"monthly weekday without ordinal falls back to day",
			Config{Frequency: FrequencyMonthly, Interval: 1, MonthlyType: MonthlyByWeekday},
			MonthlyDayRule{Every: 1, Day: 17},
		},
		{
			"yearly falls back to anchor",
			Config{Frequency: FrequencyYearly, Interval: 1},
			YearlyRule{Every: 1, Month: time.August, Day: 17},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.Rule(anchor))
		})
	}
}

func TestConfig_JSON(t *testing.T) {
	payload := `{"frequency":"weekly","interval":2,"daysOfWeek":[1,4],"endType":"on","endDate":"2024-09-30"}`

	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(payload), &cfg))

	assert.Equal(t, FrequencyWeekly, cfg.Frequency)
	assert.Equal(t, []Weekday{Monday, Thursday}, cfg.DaysOfWeek)
	require.NotNil(t, cfg.EndDate)
	assert.Equal(t, NewDate(2024, 9, 30), *cfg.EndDate)
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,TH;UNTIL=20240930T235959Z", Encode(cfg))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 2, 29), d)

	_, err = ParseDate("not a date")
	assert.Error(t, err)
}
