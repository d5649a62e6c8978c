// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

func intPtr(n int) *int { return &n }

func weekdayPtr(d Weekday) *Weekday { return &d }

func datePtr(d Date) *Date { return &d }
