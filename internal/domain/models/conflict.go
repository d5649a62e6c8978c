// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// DefaultOwnerName is reported when a conflicting booking's owner has no
// profile name.
const DefaultOwnerName = "Another user"

// Conflict describes an existing booking that overlaps a candidate window.
type Conflict struct {
	EventID   string      `json:"event_id"`
	Title     string      `json:"title"`
	Status    EventStatus `json:"status"`
	StartsAt  time.Time   `json:"starts_at"`
	EndsAt    time.Time   `json:"ends_at"`
	OwnerID   string      `json:"owner_id"`
	OwnerName string      `json:"owner_name"`
}

// TimeWindow is a half-open [StartsAt, EndsAt) interval.
type TimeWindow struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// WindowConflict pairs a candidate window with the booking it collides with.
type WindowConflict struct {
	Window   TimeWindow `json:"window"`
	Conflict Conflict   `json:"conflict"`
}

// OverlapQuery selects the bookings of a room that intersect a window.
type OverlapQuery struct {
	RoomID   string
	StartsAt time.Time
	EndsAt   time.Time
	// Statuses restricts the result; empty means any status.
	Statuses []EventStatus
}
