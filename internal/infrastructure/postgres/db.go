// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package postgres implements the booking repositories on PostgreSQL.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
)

const tracerName = "github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/postgres"

//go:embed migrations/*.sql
var migrations embed.FS

// ConnectConfig controls how Connect retries.
type ConnectConfig struct {
	URL           string
	Attempts      int
	RetryInterval time.Duration
}

// Connect opens a PostgreSQL pool, retrying while the server comes up.
func Connect(ctx context.Context, cfg ConnectConfig) (*sqlx.DB, error) {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 10
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var db *sqlx.DB
		db, err = sqlx.ConnectContext(ctx, "postgres", cfg.URL)
		if err == nil {
			slog.InfoContext(ctx, "connected to database")
			return db, nil
		}

		slog.WarnContext(ctx, "failed to connect to database, retrying",
			logging.ErrKey, err, "attempt", attempt, "retry_in", interval.String())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}

	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempts, err)
}

// RunMigrations executes the embedded *.up.sql files in name order.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	files, err := fs.Glob(migrations, "migrations/*.up.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		stmt, err := migrations.ReadFile(file)
		if err != nil {
			return fmt.Errorf("could not read migration %q: %w", file, err)
		}
		if len(stmt) == 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("error executing migration %q: %w", path.Base(file), err)
		}
		slog.DebugContext(ctx, "applied migration", "file", path.Base(file))
	}
	return nil
}

func startSpan(ctx context.Context, op, table string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "postgres."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", op),
			attribute.String("db.sql.table", table),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
