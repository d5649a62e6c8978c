// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

import (
	"slices"
	"time"
)

// Horizon is the ceiling applied to every series without an end date,
// whether it never ends or ends after a number of occurrences: its instances
// never start more than a year after the anchor.
const Horizon = 365 * 24 * time.Hour

// Instance is one generated occurrence of a series.
type Instance struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Iterator yields the instances of a series after its anchor, in order.
// Each call to Next derives the next candidate from the anchor and a step
// counter; no date value is mutated between calls.
type Iterator struct {
	anchor   time.Time
	duration time.Duration
	rule     Rule
	bound    time.Time // inclusive

	remaining int
	budget    int
	step      int
	done      bool
}

// NewIterator returns an iterator over the instances that follow the anchor
// window [start, end). limit caps the number of instances regardless of the
// configured occurrence count.
func NewIterator(start, end time.Time, cfg Config, limit int) *Iterator {
	it := &Iterator{
		anchor:    start,
		duration:  end.Sub(start),
		rule:      cfg.Rule(start),
		bound:     start.Add(Horizon),
		remaining: limit,
	}

	switch {
	case cfg.EndType == EndOn && cfg.EndDate != nil:
		it.bound = cfg.EndDate.EndOfDay(start.Location())
	case cfg.EndType == EndAfter && cfg.Occurrences != nil:
		if *cfg.Occurrences-1 < it.remaining {
			it.remaining = *cfg.Occurrences - 1
		}
	}
	// Every cursor step either yields, skips a month that lacks the
	// requested weekday, or ends the series; the budget bounds the skips.
	it.budget = max(it.remaining, 0)*12 + 48

	if _, ok := it.rule.(NoRecurrence); ok || it.remaining <= 0 {
		it.done = true
	}
	return it
}

// Next returns the next instance, or false once the series is exhausted.
func (it *Iterator) Next() (Instance, bool) {
	for !it.done {
		if it.budget <= 0 {
			it.done = true
			break
		}
		it.budget--

		start, ok, more := it.candidate()
		if !more {
			it.done = true
			break
		}
		if !ok {
			continue
		}
		if start.After(it.bound) {
			it.done = true
			break
		}

		it.remaining--
		if it.remaining <= 0 {
			it.done = true
		}
		return Instance{StartsAt: start, EndsAt: start.Add(it.duration)}, true
	}
	return Instance{}, false
}

// candidate advances the cursor one step. ok is false when the step has no
// valid date; more is false when the rule can produce nothing further.
func (it *Iterator) candidate() (start time.Time, ok bool, more bool) {
	switch r := it.rule.(type) {
	case DailyRule:
		it.step++
		return it.anchor.AddDate(0, 0, it.step*r.Every), true, true

	case WeeklyRule:
		if len(r.Days) == 0 {
			return time.Time{}, false, false
		}
		for i := 0; i < 7*r.Every; i++ {
			it.step++
			day := it.anchor.AddDate(0, 0, it.step)
			if slices.Contains(r.Days, WeekdayOf(day)) && (it.step/7)%r.Every == 0 {
				return day, true, true
			}
		}
		return time.Time{}, false, false

	case MonthlyDayRule:
		it.step++
		year, month := it.monthCursor(it.step * r.Every)
		return it.at(year, month, min(r.Day, DaysIn(year, month))), true, true

	case MonthlyWeekdayRule:
		it.step++
		year, month := it.monthCursor(it.step * r.Every)
		day, found := nthWeekday(year, month, r.Weekday, r.Week)
		if !found {
			return time.Time{}, false, true
		}
		return it.at(year, month, day), true, true

	case YearlyRule:
		it.step++
		year := it.anchor.Year() + it.step*r.Every
		return it.at(year, r.Month, min(r.Day, DaysIn(year, r.Month))), true, true
	}
	return time.Time{}, false, false
}

// monthCursor returns the year and month that lie months after the anchor's.
func (it *Iterator) monthCursor(months int) (int, time.Month) {
	first := time.Date(it.anchor.Year(), it.anchor.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	return first.Year(), first.Month()
}

// at places the anchor's time of day on the given date.
func (it *Iterator) at(year int, month time.Month, day int) time.Time {
	h, m, s := it.anchor.Clock()
	return time.Date(year, month, day, h, m, s, it.anchor.Nanosecond(), it.anchor.Location())
}

// nthWeekday resolves the week-th weekday of a month; week -1 is the last one.
func nthWeekday(year int, month time.Month, weekday Weekday, week int) (int, bool) {
	if !weekday.Valid() {
		return 0, false
	}
	daysInMonth := DaysIn(year, month)
	if week == -1 {
		last := WeekdayOf(time.Date(year, month, daysInMonth, 0, 0, 0, 0, time.UTC))
		return daysInMonth - (int(last)-int(weekday)+7)%7, true
	}
	if week < 1 {
		return 0, false
	}

	first := WeekdayOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	day := 1 + (int(weekday)-int(first)+7)%7 + (week-1)*7
	if day > daysInMonth {
		return 0, false
	}
	return day, true
}

// Generate returns every instance after the anchor window [start, end),
// at most limit of them.
func Generate(start, end time.Time, cfg Config, limit int) []Instance {
	var instances []Instance
	it := NewIterator(start, end, cfg, limit)
	for {
		inst, ok := it.Next()
		if !ok {
			return instances
		}
		instances = append(instances, inst)
	}
}
