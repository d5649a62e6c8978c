// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package messaging publishes booking lifecycle messages on NATS.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
)

// INatsConn is the part of a NATS connection the publisher needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds lifecycle messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
	now      func() time.Time
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
		now:      time.Now,
	}
}

// Ready reports whether messages can be published.
func (m *MessageBuilder) Ready() bool {
	return m.NatsConn != nil && m.NatsConn.IsConnected()
}

func (m *MessageBuilder) publish(ctx context.Context, subject string, data []byte) error {
	if err := m.NatsConn.Publish(subject, data); err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// headers carries the request id and caller token so consumers can trace
// and authorize follow-up calls.
func headers(ctx context.Context) map[string]string {
	h := make(map[string]string)
	if requestID, ok := ctx.Value(constants.RequestIDContextID).(string); ok && requestID != "" {
		h[constants.RequestIDHeader] = requestID
	}
	if authorization, ok := ctx.Value(constants.AuthorizationContextID).(string); ok && authorization != "" {
		h[constants.AuthorizationHeader] = authorization
	}
	return h
}

func actorID(ctx context.Context) string {
	if actor, ok := ctx.Value(constants.ActorContextID).(models.Actor); ok {
		return actor.UserID
	}
	return ""
}

// snapshot turns event into the generic map consumers decode, keyed by the
// JSON field names.
func snapshot(ctx context.Context, event *models.Event) (map[string]any, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling event into JSON", logging.ErrKey, err)
		return nil, err
	}
	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling event JSON", logging.ErrKey, err)
		return nil, err
	}

	var payload map[string]any
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &payload,
	})
	if err != nil {
		slog.ErrorContext(ctx, "error creating decoder", logging.ErrKey, err)
		return nil, err
	}
	if err := decoder.Decode(jsonData); err != nil {
		slog.ErrorContext(ctx, "error decoding event payload", logging.ErrKey, err)
		return nil, err
	}
	return payload, nil
}

func (m *MessageBuilder) send(ctx context.Context, subject string, msg models.EventMessage) error {
	msg.Headers = headers(ctx)
	msg.ActorID = actorID(ctx)
	msg.Timestamp = m.now().UTC()

	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "constructed event message",
		"subject", subject,
		"action", msg.Action,
		"event_id", msg.EventID,
	)
	return m.publish(ctx, subject, data)
}

func (m *MessageBuilder) sendEvent(ctx context.Context, subject string, action models.MessageAction, event *models.Event, previous models.EventStatus) error {
	payload, err := snapshot(ctx, event)
	if err != nil {
		return err
	}
	return m.send(ctx, subject, models.EventMessage{
		Action:         action,
		EventID:        event.ID,
		AnchorID:       event.AnchorID(),
		PreviousStatus: previous,
		Data:           payload,
	})
}

// PublishEventCreated announces a new booking.
func (m *MessageBuilder) PublishEventCreated(ctx context.Context, event *models.Event) error {
	return m.sendEvent(ctx, models.EventCreatedSubject, models.ActionCreated, event, "")
}

// PublishEventUpdated announces an edited booking.
func (m *MessageBuilder) PublishEventUpdated(ctx context.Context, event *models.Event) error {
	return m.sendEvent(ctx, models.EventUpdatedSubject, models.ActionUpdated, event, "")
}

// PublishEventDeleted announces a removed booking. Only the id is sent.
func (m *MessageBuilder) PublishEventDeleted(ctx context.Context, eventID string) error {
	return m.send(ctx, models.EventDeletedSubject, models.EventMessage{
		Action:  models.ActionDeleted,
		EventID: eventID,
	})
}

// PublishStatusChanged announces an approval state change.
func (m *MessageBuilder) PublishStatusChanged(ctx context.Context, event *models.Event, previous models.EventStatus) error {
	return m.sendEvent(ctx, models.EventStatusChangedSubject, models.ActionStatusChanged, event, previous)
}

var _ domain.MessageBuilder = (*MessageBuilder)(nil)
