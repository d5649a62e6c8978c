// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
)

// ActorParser resolves the actor behind an Authorization header value.
type ActorParser interface {
	ParseActor(ctx context.Context, token string) (models.Actor, error)
}

// AuthorizationMiddleware stores the Authorization header in the context so
// it can be forwarded on published messages. When parser is set every
// request other than the health checks must carry a valid token, and the
// resolved actor is stored under constants.ActorContextID.
func AuthorizationMiddleware(parser ActorParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authorization := r.Header.Get(constants.AuthorizationHeader)
			if authorization != "" {
				ctx = context.WithValue(ctx, constants.AuthorizationContextID, authorization)
			}

			if parser != nil && !isHealthCheck(r) {
				actor, err := parser.ParseActor(ctx, authorization)
				if err != nil {
					slog.WarnContext(ctx, "rejected request credentials", logging.ErrKey, err)
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("WWW-Authenticate", "Bearer")
					w.WriteHeader(http.StatusUnauthorized)
					_ = json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
					return
				}
				ctx = context.WithValue(ctx, constants.ActorContextID, actor)
				ctx = logging.AppendCtx(ctx, slog.String("actor_id", actor.UserID))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the actor stored by AuthorizationMiddleware.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(constants.ActorContextID).(models.Actor)
	return actor, ok
}
