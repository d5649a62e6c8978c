// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// NoOpNotifier logs notifications instead of sending them. It is used when
// no SMTP host is configured.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new no-op notifier
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// SendStatusNotification logs the notification but doesn't send an email
func (s *NoOpNotifier) SendStatusNotification(ctx context.Context, notification models.EventNotification) error {
	ctx = logging.AppendCtxAttrs(ctx,
		slog.String("recipient_email", notification.To),
		slog.String("event_id", notification.EventID),
	)

	slog.DebugContext(ctx, "email notifications disabled, skipping status email", "status", notification.Status)
	return nil
}

var _ domain.Notifier = (*NoOpNotifier)(nil)
