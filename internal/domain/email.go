// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
)

// Notifier tells requesters about changes to their bookings.
type Notifier interface {
	SendStatusNotification(ctx context.Context, notification models.EventNotification) error
}

// EmailAttachment represents a file attachment for an email
type EmailAttachment struct {
	Filename    string // Name of the attachment file
	ContentType string // MIME type of the attachment
	Content     string // Base64 encoded content
}
