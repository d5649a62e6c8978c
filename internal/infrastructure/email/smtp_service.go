// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package email sends booking status notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

// SMTPConfig holds the SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string // Optional for authenticated SMTP
	Password string // Optional for authenticated SMTP
}

// SMTPNotifier implements domain.Notifier over SMTP.
type SMTPNotifier struct {
	config    SMTPConfig
	templates *statusTemplates
	ics       *ICSGenerator
}

// NewSMTPNotifier loads the embedded templates and returns a notifier.
func NewSMTPNotifier(config SMTPConfig) (*SMTPNotifier, error) {
	templates, err := loadStatusTemplates()
	if err != nil {
		return nil, err
	}
	return &SMTPNotifier{
		config:    config,
		templates: templates,
		ics:       NewICSGenerator(),
	}, nil
}

// SendStatusNotification emails the requester about the new status of their
// booking. Approved and published bookings carry an ICS attachment.
func (s *SMTPNotifier) SendStatusNotification(ctx context.Context, notification models.EventNotification) error {
	ctx = logging.AppendCtxAttrs(ctx,
		slog.String("recipient_email", notification.To),
		slog.String("event_id", notification.EventID),
	)

	if notification.To == "" {
		return domain.NewValidationError("notification recipient is required")
	}

	rendered, err := s.templates.Render(notification)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render status email", logging.ErrKey, err)
		return fmt.Errorf("failed to render status email: %w", err)
	}

	var attachments []domain.EmailAttachment
	if HasCalendarEntry(notification.Status) {
		content, err := s.ics.Generate(notification)
		if err != nil {
			// The email is still useful without the calendar entry.
			slog.WarnContext(ctx, "failed to generate ICS attachment", logging.ErrKey, err)
		} else {
			attachments = append(attachments, newAttachment(ICSFilename, ICSContentType, content))
		}
	}

	message := buildEmailMessage(notification.To, rendered, s.config, attachments...)
	if err := sendEmailMessage(notification.To, message, s.config); err != nil {
		slog.ErrorContext(ctx, "failed to send status email", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "status email sent", "status", notification.Status)
	return nil
}

var _ domain.Notifier = (*SMTPNotifier)(nil)
