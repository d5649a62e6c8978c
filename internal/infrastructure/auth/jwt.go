// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package auth resolves the calling actor from a bearer token.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

const (
	// RoleSystemAdmin and RoleAssetManager may review bookings.
	RoleSystemAdmin  = "system_admin"
	RoleAssetManager = "asset_manager"

	bearerPrefix = "bearer "
	leeway       = 5 * time.Second
)

var privilegedRoles = []string{RoleSystemAdmin, RoleAssetManager}

// Claims are the token claims the service reads.
type Claims struct {
	UserID string   `json:"uid"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Validate is run by the parser after the registered claims check out.
func (c *Claims) Validate() error {
	if c.actorID() == "" {
		return errors.New("uid or sub must be provided")
	}
	return nil
}

func (c *Claims) actorID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// Privileged reports whether any of the roles may review bookings.
func (c *Claims) Privileged() bool {
	for _, role := range c.Roles {
		if slices.Contains(privilegedRoles, strings.ToLower(role)) {
			return true
		}
	}
	return false
}

// JWTAuthConfig configures JWTAuth.
type JWTAuthConfig struct {
	// Secret is the HMAC key tokens are signed with.
	Secret string
	// Audience, when set, must appear in the token's aud claim.
	Audience string
	// MockLocalPrincipal disables token checks and resolves every request
	// to this privileged user. Local development only.
	MockLocalPrincipal string
}

// JWTAuth parses HS256 bearer tokens into actors.
type JWTAuth struct {
	config JWTAuthConfig
	parser *jwt.Parser
}

// NewJWTAuth creates a JWTAuth. A secret is required unless a mock principal
// is configured.
func NewJWTAuth(config JWTAuthConfig) (*JWTAuth, error) {
	if config.MockLocalPrincipal != "" {
		slog.Warn("JWT validation is disabled, using mock local principal", "principal", config.MockLocalPrincipal)
		return &JWTAuth{config: config}, nil
	}
	if config.Secret == "" {
		return nil, errors.New("JWT secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}
	return &JWTAuth{config: config, parser: jwt.NewParser(opts...)}, nil
}

// ParseActor validates token, with or without its "Bearer " prefix, and
// returns the actor it identifies. Failures are unauthorized domain errors.
func (a *JWTAuth) ParseActor(ctx context.Context, token string) (models.Actor, error) {
	if a.config.MockLocalPrincipal != "" {
		return models.Actor{UserID: a.config.MockLocalPrincipal, Privileged: true}, nil
	}
	if a.parser == nil {
		return models.Actor{}, domain.NewUnauthorizedError("JWT parser is not set up")
	}

	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = token[len(bearerPrefix):]
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Actor{}, domain.NewUnauthorizedError("missing bearer token")
	}

	claims := &Claims{}
	parsed, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(a.config.Secret), nil
	})
	if err != nil || !parsed.Valid {
		slog.DebugContext(ctx, "rejected bearer token", logging.ErrKey, err)
		return models.Actor{}, domain.NewUnauthorizedError("invalid bearer token", err)
	}

	return models.Actor{UserID: claims.actorID(), Privileged: claims.Privileged()}, nil
}

// Issue signs claims with the configured secret. It is used by tests and
// local tooling.
func (a *JWTAuth) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.Subject == "" {
		claims.Subject = claims.UserID
	}
	if a.config.Audience != "" && len(claims.Audience) == 0 {
		claims.Audience = jwt.ClaimStrings{a.config.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.config.Secret))
}
