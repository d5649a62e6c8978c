// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

func TestSMTPNotifier_SendStatusNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("approved booking carries an invite", func(t *testing.T) {
		server := NewMockSMTPServer(t, false)
		notifier, err := NewSMTPNotifier(server.Config(t))
		require.NoError(t, err)

		require.NoError(t, notifier.SendStatusNotification(ctx, testNotification()))

		messages := server.Messages()
		require.Len(t, messages, 1)
		assert.Contains(t, messages[0], "To: requester@example.com")
		assert.Contains(t, messages[0], "Subject: [REF42] Booking Approved: Design review")
		assert.Contains(t, messages[0], `filename="booking.ics"`)
	})

	t.Run("rejected booking has no invite", func(t *testing.T) {
		server := NewMockSMTPServer(t, false)
		notifier, err := NewSMTPNotifier(server.Config(t))
		require.NoError(t, err)

		n := testNotification()
		n.Status = models.StatusRejected
		n.ReviewerNotes = "Room is closed that week."
		require.NoError(t, notifier.SendStatusNotification(ctx, n))

		messages := server.Messages()
		require.Len(t, messages, 1)
		assert.Contains(t, messages[0], "Booking Rejected")
		assert.Contains(t, messages[0], "Room is closed that week.")
		assert.NotContains(t, messages[0], "booking.ics")
	})

	t.Run("server rejects the sender", func(t *testing.T) {
		server := NewMockSMTPServer(t, true)
		notifier, err := NewSMTPNotifier(server.Config(t))
		require.NoError(t, err)

		err = notifier.SendStatusNotification(ctx, testNotification())

		assert.ErrorContains(t, err, "failed to send email")
		assert.Empty(t, server.Messages())
	})

	t.Run("missing recipient", func(t *testing.T) {
		notifier, err := NewSMTPNotifier(SMTPConfig{Host: "localhost", Port: 1})
		require.NoError(t, err)

		n := testNotification()
		n.To = ""
		err = notifier.SendStatusNotification(ctx, n)

		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})
}

func TestNoOpNotifier(t *testing.T) {
	assert.NoError(t, NewNoOpNotifier().SendStatusNotification(context.Background(), testNotification()))
}
