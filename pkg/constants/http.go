// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import (
	"fmt"
	"net/url"
)

// Constants for the HTTP request headers
const (
	// AuthorizationHeader is the header name for the authorization
	AuthorizationHeader string = "authorization"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// EtagHeader is the header name for the ETag
	EtagHeader string = "ETag"

	// IfMatchHeader carries the revision a client expects to overwrite.
	IfMatchHeader string = "If-Match"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// contextAuthorization is the type for the authorization context key
type contextAuthorization string

// AuthorizationContextID is the context ID for the authorization
const AuthorizationContextID contextAuthorization = "authorization"

// contextActor is the type for the actor context key
type contextActor string

// ActorContextID is the context ID for the authenticated actor
const ActorContextID contextActor = "actor"

// LFX app domain constants
const (
	LFXDomainDev     = "app.dev.lfx.dev"
	LFXDomainStaging = "app.staging.lfx.dev"
	LFXDomainProd    = "app.lfx.dev"
)

// GetLFXAppDomain returns the LFX app domain for "dev", "staging" or "prod".
// Unknown environments get the production domain.
func GetLFXAppDomain(environment string) string {
	switch environment {
	case "dev":
		return LFXDomainDev
	case "staging":
		return LFXDomainStaging
	default:
		return LFXDomainProd
	}
}

// LfxURLGenerator builds links to bookings in the LFX app.
type LfxURLGenerator struct {
	environment     string
	customAppOrigin string
}

// NewLfxURLGenerator creates a new LfxURLGenerator with the given environment and optional custom app origin
func NewLfxURLGenerator(environment, customAppOrigin string) *LfxURLGenerator {
	return &LfxURLGenerator{
		environment:     environment,
		customAppOrigin: customAppOrigin,
	}
}

// GenerateEventURL returns the link to a booking's detail page.
func (g *LfxURLGenerator) GenerateEventURL(eventID string) string {
	origin := g.customAppOrigin
	if origin == "" {
		origin = "https://" + GetLFXAppDomain(g.environment)
	}
	return fmt.Sprintf("%s/room-booking/events/%s", origin, url.PathEscape(eventID))
}
