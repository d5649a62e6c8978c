// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package logging configures the service's structured logger. Records are
// JSON, carry any attributes stored on the context by AppendCtx, and pick up
// trace_id and span_id from the active span.
package logging

import (
	"context"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"

	slogotel "github.com/remychantenay/slog-otel"
)

type ctxKey string

// ErrKey is the attribute key errors are logged under.
const ErrKey = "error"

const (
	slogFields      ctxKey = "slog_fields"
	logLevelDefault        = slog.LevelDebug

	// Errors that need an operator, such as a failed series batch or an
	// unreachable store.
	priorityCritical = "critical"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

type contextHandler struct {
	slog.Handler
}

// Handle adds contextual attributes to the Record before calling the underlying handler
func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

// AppendCtx adds an slog attribute to the provided context so that it will be
// included in any Record created with such context
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	return AppendCtxAttrs(parent, attr)
}

// AppendCtxAttrs is AppendCtx for several attributes at once. The parent's
// attribute list is never modified.
func AppendCtxAttrs(parent context.Context, attrs ...slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	if len(attrs) == 0 {
		return parent
	}

	existing, _ := parent.Value(slogFields).([]slog.Attr)
	merged := append(slices.Clip(existing), attrs...)
	return context.WithValue(parent, slogFields, merged)
}

// parseLevel maps LOG_LEVEL to a slog level, falling back to debug.
func parseLevel(s string) slog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return logLevelDefault
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "t", "1":
		return true
	}
	return false
}

// InitStructureLogConfig sets the structured log behavior from LOG_LEVEL and
// LOG_ADD_SOURCE and installs the result as the default logger.
func InitStructureLogConfig() slog.Handler {
	logOptions := &slog.HandlerOptions{
		Level:     parseLevel(os.Getenv("LOG_LEVEL")),
		AddSource: parseBool(os.Getenv("LOG_ADD_SOURCE")),
	}

	h := slog.NewJSONHandler(os.Stdout, logOptions)
	log.SetFlags(log.Llongfile)
	slog.SetDefault(slog.New(contextHandler{slogotel.OtelHandler{Next: h}}))

	slog.Info("log config",
		"logLevel", logOptions.Level,
		"addSource", logOptions.AddSource,
	)

	return h
}

// Priority creates a slog.Attr for error priority classification
func Priority(level string) slog.Attr {
	return slog.String("priority", level)
}

// PriorityCritical marks errors that should be escalated to the team.
func PriorityCritical() slog.Attr {
	return Priority(priorityCritical)
}
