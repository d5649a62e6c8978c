// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/recurrence"
)

func fieldNames(err error) []string {
	var names []string
	var walk func(error)
	walk = func(err error) {
		var fe *recurrence.FieldError
		if errors.As(err, &fe) && fe == err {
			names = append(names, fe.Field)
			return
		}
		if j, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range j.Unwrap() {
				walk(e)
			}
			return
		}
		if inner := errors.Unwrap(err); inner != nil {
			walk(inner)
		}
	}
	walk(err)
	return names
}

func TestValidateEventFields(t *testing.T) {
	valid := models.EventFields{Title: "Planning", RoomID: "room-1", StartsAt: at(10, 0), EndsAt: at(11, 0)}

	tests := []struct {
		name   string
		modify func(f *models.EventFields)
		fields []string
	}{
		{"valid", func(*models.EventFields) {}, nil},
		{"blank title", func(f *models.EventFields) { f.Title = "   " }, []string{"title"}},
		{"title too long", func(f *models.EventFields) { f.Title = strings.Repeat("a", 201) }, []string{"title"}},
		{"title at limit", func(f *models.EventFields) { f.Title = strings.Repeat("é", 200) }, nil},
		{"description too long", func(f *models.EventFields) { f.Description = strings.Repeat("d", 1001) }, []string{"description"}},
		{"room missing", func(f *models.EventFields) { f.RoomID = "" }, []string{"room_id"}},
		{"end equals start", func(f *models.EventFields) { f.EndsAt = f.StartsAt }, []string{"ends_at"}},
		{"end before start", func(f *models.EventFields) { f.EndsAt = at(9, 0) }, []string{"ends_at"}},
		{"several problems", func(f *models.EventFields) { f.Title = ""; f.RoomID = "" }, []string{"title", "room_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.modify(&f)
			err := ValidateEventFields(f)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
			assert.ElementsMatch(t, tt.fields, fieldNames(err))
		})
	}
}

func TestValidateEventRequest(t *testing.T) {
	req := createRequest()
	assert.NoError(t, ValidateEventRequest(req))

	req.Recurrence = recurrence.Config{Frequency: recurrence.FrequencyWeekly, Interval: 1, EndType: recurrence.EndNever}
	err := ValidateEventRequest(req)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	assert.Contains(t, fieldNames(err), "daysOfWeek")

	req = createRequest()
	req.Status = models.EventStatus("archived")
	assert.Contains(t, fieldNames(ValidateEventRequest(req)), "status")

	assert.Error(t, ValidateEventRequest(nil))
}
