// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/recurrence"
)

// ICS constants shared by every generated calendar.
const (
	ICSProdID      = "-//Linux Foundation//LFX Room Booking Service//EN"
	ICSContentType = "text/calendar; charset=\"UTF-8\"; method=PUBLISH"
	ICSFilename    = "booking.ics"
)

// ICSGenerator builds calendar entries for confirmed bookings.
type ICSGenerator struct {
	now func() time.Time
}

// NewICSGenerator creates a new ICS generator
func NewICSGenerator() *ICSGenerator {
	return &ICSGenerator{now: time.Now}
}

// HasCalendarEntry reports whether the recipient should get an ICS file for
// the status. Rejected bookings never reach a calendar.
func HasCalendarEntry(status models.EventStatus) bool {
	return status == models.StatusApproved || status == models.StatusPublished
}

// Generate renders n as a single VEVENT. A recurring booking carries the
// RRULE equivalent of its stored rule so the whole series lands in the
// recipient's calendar.
func (g *ICSGenerator) Generate(n models.EventNotification) (string, error) {
	if n.EventID == "" {
		return "", fmt.Errorf("event id is required")
	}
	if !n.EndsAt.After(n.StartsAt) {
		return "", fmt.Errorf("event must end after it starts")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ICSProdID)

	event := cal.AddEvent(n.EventID)
	event.SetDtStampTime(g.now().UTC())
	event.SetStartAt(n.StartsAt)
	event.SetEndAt(n.EndsAt)
	event.SetSummary(n.EventTitle)
	event.SetLocation(n.RoomName)
	event.SetStatus(ics.ObjectStatusConfirmed)
	if desc := calendarDescription(n); desc != "" {
		event.SetDescription(desc)
	}
	if n.To != "" {
		event.AddAttendee("mailto:"+n.To, ics.WithCN(n.RequesterName))
	}

	if n.RecurrenceRule != "" {
		cfg := recurrence.Decode(n.RecurrenceRule)
		if cfg.IsRecurring() {
			rule, err := recurrence.ToRRule(cfg, n.StartsAt)
			if err != nil {
				return "", fmt.Errorf("failed to build RRULE: %w", err)
			}
			event.AddProperty(ics.ComponentPropertyRrule, rule.OrigOptions.RRuleString())
		}
	}

	return cal.Serialize(), nil
}

func calendarDescription(n models.EventNotification) string {
	desc := n.Description
	if n.EventReference != "" {
		if desc != "" {
			desc += "\n\n"
		}
		desc += "Booking reference: " + n.EventReference
	}
	return desc
}
