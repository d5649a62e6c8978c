// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// ToRRule builds the RFC 5545 rule equivalent to cfg for a series anchored at
// dtstart, for calendar interop. The canonical string from Encode remains the
// stored form.
//
// Month-day clamping is expressed with BYMONTHDAY candidates and BYSETPOS=-1,
// and WKST is set to the anchor's weekday so that INTERVAL counts weeks from
// the anchor the same way the generator does.
func ToRRule(cfg Config, dtstart time.Time) (*rrule.RRule, error) {
	opt := rrule.ROption{
		Dtstart:  dtstart,
		Interval: cfg.every(),
		Wkst:     rruleWeekdays[WeekdayOf(dtstart)],
	}

	switch r := cfg.Rule(dtstart).(type) {
	case DailyRule:
		opt.Freq = rrule.DAILY
	case WeeklyRule:
		opt.Freq = rrule.WEEKLY
		for _, d := range r.Days {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
		}
	case MonthlyDayRule:
		opt.Freq = rrule.MONTHLY
		setClampedMonthDay(&opt, r.Day)
	case MonthlyWeekdayRule:
		if !r.Weekday.Valid() {
			return nil, fmt.Errorf("invalid weekday %d", r.Weekday)
		}
		opt.Freq = rrule.MONTHLY
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[r.Weekday].Nth(r.Week)}
	case YearlyRule:
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{int(r.Month)}
		setClampedMonthDay(&opt, r.Day)
	default:
		return nil, fmt.Errorf("configuration does not repeat")
	}

	if cfg.EndType == EndOn && cfg.EndDate != nil {
		opt.Until = cfg.EndDate.EndOfDay(dtstart.Location())
		return rrule.NewRRule(opt)
	}

	opt.Until = dtstart.Add(Horizon)
	if cfg.EndType != EndAfter || cfg.Occurrences == nil {
		return rrule.NewRRule(opt)
	}

	// COUNT and UNTIL must not appear together. Keep COUNT when the series
	// finishes inside the horizon, otherwise the horizon's UNTIL.
	opt.Count = *cfg.Occurrences
	bounded, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, err
	}
	if len(bounded.All()) < opt.Count {
		opt.Count = 0
	} else {
		opt.Until = time.Time{}
	}
	return rrule.NewRRule(opt)
}

// setClampedMonthDay selects day, or the last day of shorter months.
func setClampedMonthDay(opt *rrule.ROption, day int) {
	if day <= 28 {
		opt.Bymonthday = []int{day}
		return
	}
	for d := 28; d <= day; d++ {
		opt.Bymonthday = append(opt.Bymonthday, d)
	}
	opt.Bysetpos = []int{-1}
}
