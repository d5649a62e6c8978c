// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/recurrence"
)

//go:embed templates/*
var templateFS embed.FS

// RenderedEmail holds both HTML and text versions of a rendered email
type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

// statusTemplates holds the HTML and text versions of the status email.
type statusTemplates struct {
	HTML *template.Template
	Text *texttemplate.Template
}

// statusEmailData is what the status templates render.
type statusEmailData struct {
	models.EventNotification
	Headline string
	Intro    string
}

var funcMap = map[string]any{
	"formatTime":         formatTime,
	"formatTimeRange":    formatTimeRange,
	"capitalize":         capitalize,
	"newLineToBreakLine": newLineToBreakLine,
}

func loadStatusTemplates() (*statusTemplates, error) {
	html, err := template.New("event_status.html").Funcs(funcMap).ParseFS(templateFS, "templates/event_status.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse event_status.html template: %w", err)
	}
	text, err := texttemplate.New("event_status.txt").Funcs(funcMap).ParseFS(templateFS, "templates/event_status.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse event_status.txt template: %w", err)
	}
	return &statusTemplates{HTML: html, Text: text}, nil
}

// Render fills both templates for n. Missing requester and room names fall
// back to their defaults.
func (t *statusTemplates) Render(n models.EventNotification) (*RenderedEmail, error) {
	if n.RequesterName == "" {
		n.RequesterName = models.DefaultRequesterName
	}
	if n.RoomName == "" {
		n.RoomName = models.DefaultRoomName
	}
	if n.RecurrenceSummary == "" && n.RecurrenceRule != "" {
		if cfg := recurrence.Decode(n.RecurrenceRule); cfg.IsRecurring() {
			n.RecurrenceSummary = recurrence.Summary(cfg)
		}
	}

	data := statusEmailData{
		EventNotification: n,
		Headline:          headline(n.Status),
		Intro:             intro(n.Status),
	}

	var html, text bytes.Buffer
	if err := t.HTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render status HTML: %w", err)
	}
	if err := t.Text.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render status text: %w", err)
	}

	return &RenderedEmail{
		Subject: subject(n),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func subject(n models.EventNotification) string {
	s := fmt.Sprintf("%s: %s", headline(n.Status), n.EventTitle)
	if n.EventReference != "" {
		s = fmt.Sprintf("[%s] %s", n.EventReference, s)
	}
	return s
}

func headline(status models.EventStatus) string {
	switch status {
	case models.StatusPublished:
		return "Booking Published"
	case models.StatusRejected:
		return "Booking Rejected"
	default:
		return "Booking Approved"
	}
}

func intro(status models.EventStatus) string {
	switch status {
	case models.StatusPublished:
		return "Your booking has been approved and published to the shared calendar."
	case models.StatusRejected:
		return "Unfortunately your booking request was not approved."
	default:
		return "Your booking request has been approved."
	}
}

// formatTime formats a time for display in emails, e.g.
// "Wednesday, September 15th 2021, 10:30 UTC".
func formatTime(t time.Time) string {
	return fmt.Sprintf("%s, %s %d%s %d, %s %s",
		t.Format("Monday"),
		t.Format("January"),
		t.Day(),
		recurrence.DaySuffix(t.Day()),
		t.Year(),
		t.Format("15:04"),
		t.Format("MST"))
}

// formatTimeRange keeps the end short when it falls on the start's day.
func formatTimeRange(start, end time.Time) string {
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return fmt.Sprintf("%s - %s", formatTime(start), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", formatTime(start), formatTime(end))
}

// capitalize capitalizes the first letter of a string
func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// newLineToBreakLine converts newlines to HTML break tags
func newLineToBreakLine(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
