// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextIDConstantsAreDistinctKeys(t *testing.T) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDContextID, "req")
	ctx = context.WithValue(ctx, AuthorizationContextID, "auth")
	ctx = context.WithValue(ctx, ActorContextID, "actor")

	assert.Equal(t, "req", ctx.Value(RequestIDContextID))
	assert.Equal(t, "auth", ctx.Value(AuthorizationContextID))
	assert.Equal(t, "actor", ctx.Value(ActorContextID))

	// Plain strings never collide with the typed keys.
	assert.Nil(t, ctx.Value("X-REQUEST-ID"))
}

func TestGetLFXAppDomain(t *testing.T) {
	assert.Equal(t, LFXDomainDev, GetLFXAppDomain("dev"))
	assert.Equal(t, LFXDomainStaging, GetLFXAppDomain("staging"))
	assert.Equal(t, LFXDomainProd, GetLFXAppDomain("prod"))
	assert.Equal(t, LFXDomainProd, GetLFXAppDomain("unknown"))
}

func TestGenerateEventURL(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		origin   string
		expected string
	}{
		{"prod", "prod", "", "https://app.lfx.dev/room-booking/events/e1"},
		{"dev", "dev", "", "https://app.dev.lfx.dev/room-booking/events/e1"},
		{"custom origin", "prod", "http://localhost:4200", "http://localhost:4200/room-booking/events/e1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewLfxURLGenerator(tt.env, tt.origin).GenerateEventURL("e1"))
		})
	}
}
