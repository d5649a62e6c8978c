// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
)

// MockNATSConn is a mock INatsConn.
type MockNATSConn struct {
	mock.Mock
}

func (m *MockNATSConn) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockNATSConn) Publish(subj string, data []byte) error {
	return m.Called(subj, data).Error(0)
}

var fixedNow = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

func newTestBuilder(conn INatsConn) *MessageBuilder {
	b := NewMessageBuilder(conn)
	b.now = func() time.Time { return fixedNow }
	return b
}

func testEvent() *models.Event {
	parent := "anchor-1"
	return &models.Event{
		ID:            "ev-1",
		Title:         "Design review",
		RoomID:        "room-1",
		StartsAt:      fixedNow.Add(time.Hour),
		EndsAt:        fixedNow.Add(2 * time.Hour),
		Status:        models.StatusApproved,
		IsRecurring:   true,
		ParentEventID: &parent,
		CreatedBy:     "user-1",
	}
}

// captured decodes the single message published on subject.
func captured(t *testing.T, conn *MockNATSConn, subject string) models.EventMessage {
	t.Helper()
	var msg models.EventMessage
	for _, call := range conn.Calls {
		if call.Method == "Publish" && call.Arguments.String(0) == subject {
			require.NoError(t, json.Unmarshal(call.Arguments.Get(1).([]byte), &msg))
			return msg
		}
	}
	t.Fatalf("nothing published on %s", subject)
	return msg
}

func TestMessageBuilder_Ready(t *testing.T) {
	connected := new(MockNATSConn)
	connected.On("IsConnected").Return(true)
	disconnected := new(MockNATSConn)
	disconnected.On("IsConnected").Return(false)

	assert.True(t, NewMessageBuilder(connected).Ready())
	assert.False(t, NewMessageBuilder(disconnected).Ready())
	assert.False(t, NewMessageBuilder(nil).Ready())
}

func TestMessageBuilder_PublishEvent(t *testing.T) {
	tests := []struct {
		name     string
		publish  func(b *MessageBuilder, ctx context.Context, e *models.Event) error
		subject  string
		action   models.MessageAction
		previous models.EventStatus
	}{
		{
			name: "created",
			publish: func(b *MessageBuilder, ctx context.Context, e *models.Event) error {
				return b.PublishEventCreated(ctx, e)
			},
			subject: models.EventCreatedSubject,
			action:  models.ActionCreated,
		},
		{
			name: "updated",
			publish: func(b *MessageBuilder, ctx context.Context, e *models.Event) error {
				return b.PublishEventUpdated(ctx, e)
			},
			subject: models.EventUpdatedSubject,
			action:  models.ActionUpdated,
		},
		{
			name: "status changed",
			publish: func(b *MessageBuilder, ctx context.Context, e *models.Event) error {
				return b.PublishStatusChanged(ctx, e, models.StatusPendingReview)
			},
			subject:  models.EventStatusChangedSubject,
			action:   models.ActionStatusChanged,
			previous: models.StatusPendingReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := new(MockNATSConn)
			conn.On("Publish", tt.subject, mock.Anything).Return(nil)

			ctx := context.WithValue(context.Background(), constants.RequestIDContextID, "req-1")
			ctx = context.WithValue(ctx, constants.AuthorizationContextID, "Bearer token")
			ctx = context.WithValue(ctx, constants.ActorContextID, models.Actor{UserID: "reviewer-9"})

			require.NoError(t, tt.publish(newTestBuilder(conn), ctx, testEvent()))

			msg := captured(t, conn, tt.subject)
			assert.Equal(t, tt.action, msg.Action)
			assert.Equal(t, "ev-1", msg.EventID)
			assert.Equal(t, "anchor-1", msg.AnchorID)
			assert.Equal(t, tt.previous, msg.PreviousStatus)
			assert.Equal(t, "reviewer-9", msg.ActorID)
			assert.Equal(t, "req-1", msg.Headers[constants.RequestIDHeader])
			assert.Equal(t, "Bearer token", msg.Headers[constants.AuthorizationHeader])
			assert.True(t, fixedNow.Equal(msg.Timestamp))

			data, ok := msg.Data.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "Design review", data["title"])
			assert.Equal(t, "approved", data["status"])
			conn.AssertExpectations(t)
		})
	}
}

func TestMessageBuilder_PublishEventDeleted(t *testing.T) {
	conn := new(MockNATSConn)
	conn.On("Publish", models.EventDeletedSubject, mock.Anything).Return(nil)

	require.NoError(t, newTestBuilder(conn).PublishEventDeleted(context.Background(), "ev-9"))

	msg := captured(t, conn, models.EventDeletedSubject)
	assert.Equal(t, models.ActionDeleted, msg.Action)
	assert.Equal(t, "ev-9", msg.EventID)
	assert.Nil(t, msg.Data)
	assert.Empty(t, msg.Headers)
}

func TestMessageBuilder_PublishError(t *testing.T) {
	conn := new(MockNATSConn)
	conn.On("Publish", models.EventCreatedSubject, mock.Anything).Return(errors.New("nats: connection closed"))

	err := newTestBuilder(conn).PublishEventCreated(context.Background(), testEvent())

	assert.EqualError(t, err, "nats: connection closed")
}
