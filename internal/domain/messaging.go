// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// EventPublisher announces booking lifecycle changes.
type EventPublisher interface {
	PublishEventCreated(ctx context.Context, event *models.Event) error
	PublishEventUpdated(ctx context.Context, event *models.Event) error
	PublishEventDeleted(ctx context.Context, eventID string) error
	PublishStatusChanged(ctx context.Context, event *models.Event, previous models.EventStatus) error
}

// MessageBuilder is the main interface that composes all messaging capabilities.
type MessageBuilder interface {
	EventPublisher
	Ready() bool
}
