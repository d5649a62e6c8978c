// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
)

const (
	mixedBoundary       = "==============room-booking-mixed=="
	alternativeBoundary = "==============room-booking-alt=="
	base64LineLength    = 76
)

// newAttachment base64 encodes content for use as an attachment.
func newAttachment(filename, contentType, content string) domain.EmailAttachment {
	return domain.EmailAttachment{
		Filename:    filename,
		ContentType: contentType,
		Content:     base64.StdEncoding.EncodeToString([]byte(content)),
	}
}

// buildEmailMessage builds the complete email message. The text and HTML
// bodies form a multipart/alternative part; attachments, when present,
// wrap it in multipart/mixed.
func buildEmailMessage(recipient string, rendered *RenderedEmail, config SMTPConfig, attachments ...domain.EmailAttachment) string {
	var message strings.Builder

	message.WriteString(fmt.Sprintf("From: %s\r\n", config.From))
	message.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", rendered.Subject))
	message.WriteString("MIME-Version: 1.0\r\n")

	if len(attachments) == 0 {
		writeAlternative(&message, rendered)
		return message.String()
	}

	message.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", mixedBoundary))
	message.WriteString("\r\n")
	message.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
	writeAlternative(&message, rendered)

	for _, a := range attachments {
		message.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
		message.WriteString(fmt.Sprintf("Content-Type: %s\r\n", a.ContentType))
		message.WriteString("Content-Transfer-Encoding: base64\r\n")
		message.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", a.Filename))
		message.WriteString("\r\n")
		for _, line := range wrap(a.Content, base64LineLength) {
			message.WriteString(line)
			message.WriteString("\r\n")
		}
	}
	message.WriteString(fmt.Sprintf("--%s--\r\n", mixedBoundary))

	return message.String()
}

func writeAlternative(message *strings.Builder, rendered *RenderedEmail) {
	message.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", alternativeBoundary))
	message.WriteString("\r\n")

	message.WriteString(fmt.Sprintf("--%s\r\n", alternativeBoundary))
	message.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	message.WriteString("\r\n")
	message.WriteString(rendered.Text)
	message.WriteString("\r\n")

	message.WriteString(fmt.Sprintf("--%s\r\n", alternativeBoundary))
	message.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	message.WriteString("\r\n")
	message.WriteString(rendered.HTML)
	message.WriteString("\r\n")

	message.WriteString(fmt.Sprintf("--%s--\r\n", alternativeBoundary))
}

func wrap(s string, width int) []string {
	var lines []string
	for len(s) > width {
		lines = append(lines, s[:width])
		s = s[width:]
	}
	if s != "" {
		lines = append(lines, s)
	}
	return lines
}

// sendEmailMessage sends a pre-built email message via SMTP
func sendEmailMessage(recipient, message string, config SMTPConfig) error {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	if err := smtp.SendMail(addr, auth, config.From, []string{recipient}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
