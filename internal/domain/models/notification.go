// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// Fallback values used when a notification lacks profile or room data.
const (
	DefaultRequesterName = "User"
	DefaultRoomName      = "Unknown Room"
)

// EventNotification tells a requester about a change in their booking's
// status.
type EventNotification struct {
	To                string      `json:"to"`
	RequesterName     string      `json:"requester_name"`
	EventID           string      `json:"event_id"`
	EventReference    string      `json:"event_reference"`
	EventTitle        string      `json:"event_title"`
	Description       string      `json:"description,omitempty"`
	StartsAt          time.Time   `json:"starts_at"`
	EndsAt            time.Time   `json:"ends_at"`
	RoomName          string      `json:"room_name"`
	Status            EventStatus `json:"status"`
	ReviewerNotes     string      `json:"reviewer_notes,omitempty"`
	RecurrenceRule    string      `json:"recurrence_rule,omitempty"`
	RecurrenceSummary string      `json:"recurrence_summary,omitempty"`
	EventURL          string      `json:"event_url,omitempty"`
}

// NotificationStatus maps the status an event moved into to the status
// reported to the requester: published and rejected are reported as such,
// every other transition as approved.
func NotificationStatus(s EventStatus) EventStatus {
	switch s {
	case StatusPublished, StatusRejected:
		return s
	}
	return StatusApproved
}
