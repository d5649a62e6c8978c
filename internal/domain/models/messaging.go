// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects published by the service.
const (
	EventCreatedSubject       = "lfx.room-booking.event.created"
	EventUpdatedSubject       = "lfx.room-booking.event.updated"
	EventDeletedSubject       = "lfx.room-booking.event.deleted"
	EventStatusChangedSubject = "lfx.room-booking.event.status_changed"
)

// NATS subjects the service answers requests on.
const (
	RoomConflictCheckSubject  = "lfx.room-booking.room.conflict_check"
	RecurrenceSummarySubject  = "lfx.room-booking.recurrence.summary"
	BookingServiceQueueGroup  = "lfx.room-booking.queue"
	BookingServiceSubjectRoot = "lfx.room-booking.>"
)

// MessageAction is the kind of change a lifecycle message reports.
type MessageAction string

// Message actions
const (
	ActionCreated       MessageAction = "created"
	ActionUpdated       MessageAction = "updated"
	ActionDeleted       MessageAction = "deleted"
	ActionStatusChanged MessageAction = "status_changed"
)

// EventMessage is the body of a lifecycle message.
type EventMessage struct {
	Action         MessageAction     `json:"action"`
	EventID        string            `json:"event_id"`
	AnchorID       string            `json:"anchor_id,omitempty"`
	PreviousStatus EventStatus       `json:"previous_status,omitempty"`
	ActorID        string            `json:"actor_id,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	Data           any               `json:"data,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// ConflictCheckRequest is the payload of a room conflict check request.
type ConflictCheckRequest struct {
	RoomID         string    `json:"room_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	ExcludeEventID string    `json:"exclude_event_id,omitempty"`
}

// ConflictCheckResponse is the reply to a room conflict check request.
type ConflictCheckResponse struct {
	Conflict *Conflict `json:"conflict"`
}
