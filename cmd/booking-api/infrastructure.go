// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/auth"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/cache"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/email"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/postgres"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
)

// gracefulShutdownSeconds should be higher than NATS client
// request timeout, and lower than the pod or liveness probe's
// terminationGracePeriodSeconds.
const gracefulShutdownSeconds = 25

// repositories groups the storage the services are built on.
type repositories struct {
	Event   domain.EventRepository
	Room    domain.RoomRepository
	Profile domain.ProfileRepository

	closers []func() error
}

func (r *repositories) close() {
	for _, c := range r.closers {
		if err := c(); err != nil {
			slog.With(logging.ErrKey, err).Error("error closing repository resource")
		}
	}
}

// setupJWTAuth configures JWT authentication for the service
func setupJWTAuth(env environment) (*auth.JWTAuth, error) {
	return auth.NewJWTAuth(auth.JWTAuthConfig{
		Secret:             env.JWTSecret,
		Audience:           env.JWTAudience,
		MockLocalPrincipal: env.MockLocalPrincipal,
	})
}

// setupNotifier returns the SMTP notifier, or a no-op notifier when no SMTP
// host is configured.
func setupNotifier(env environment) (domain.Notifier, error) {
	if env.SMTP.Host == "" {
		slog.Warn("SMTP_HOST not set, email notifications are disabled")
		return email.NewNoOpNotifier(), nil
	}
	return email.NewSMTPNotifier(email.SMTPConfig{
		Host:     env.SMTP.Host,
		Port:     env.SMTP.Port,
		From:     env.SMTP.From,
		Username: env.SMTP.Username,
		Password: env.SMTP.Password,
	})
}

// setupNATS connects to NATS and signals done when the connection is
// closed for good.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	slog.With("nats_url", env.NatsURL).Info("attempting to connect to NATS")

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(gracefulShutdownSeconds*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.With("nats_url", env.NatsURL).Info("NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if ctx.Err() != nil {
				// If our parent background context has already been canceled, this is
				// a graceful shutdown. Decrement the wait group but do not exit, to
				// allow other graceful shutdown steps to complete.
				gracefulCloseWG.Done()
				return
			}
			// Otherwise, this handler means that max reconnect attempts have been
			// exhausted.
			slog.Error("NATS max-reconnects exhausted; connection closed")
			// Send a synthetic interrupt and give any graceful-shutdown tasks 5
			// seconds to clean up.
			done <- os.Interrupt
			time.Sleep(5 * time.Second)
			// Exit with an error instead of decrementing the wait group.
			os.Exit(1)
		}),
		nats.Timeout(env.NatsTimeout),
		nats.MaxReconnects(env.NatsMaxReconnect),
		nats.ReconnectWait(env.NatsReconnectWait),
	)
	if err != nil {
		return nil, fmt.Errorf("creating NATS client: %w", err)
	}
	gracefulCloseWG.Add(1)

	return natsConn, nil
}

// setupRepositories builds the repositories for the configured backend and
// fronts the room repository with the Redis cache when REDIS_ADDR is set.
func setupRepositories(ctx context.Context, env environment, natsConn *nats.Conn) (*repositories, error) {
	var (
		repos *repositories
		err   error
	)
	switch env.StoreBackend {
	case storeBackendPostgres:
		repos, err = getPostgresStores(ctx, env)
	default:
		repos, err = getKeyValueStores(ctx, env, natsConn)
	}
	if err != nil {
		return nil, err
	}

	if env.RedisAddr != "" {
		client := cache.NewRedisClient(env.RedisAddr, env.RedisPassword)
		if err := client.Ping(ctx).Err(); err != nil {
			// The cache is optional; bookings still work against the store.
			slog.With(logging.ErrKey, err, "redis_addr", env.RedisAddr).Warn("redis unreachable, room cache disabled")
			_ = client.Close()
			return repos, nil
		}
		repos.Room = cache.NewRoomCache(repos.Room, client, env.RoomCacheTTL)
		repos.closers = append(repos.closers, func() error { return closeRedis(client) })
		slog.With("redis_addr", env.RedisAddr).Info("room cache enabled")
	}

	return repos, nil
}

func closeRedis(client *redis.Client) error {
	return client.Close()
}

// getKeyValueStores opens the JetStream KV buckets the repositories use.
func getKeyValueStores(ctx context.Context, env environment, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, fmt.Errorf("creating JetStream client: %w", err)
	}

	buckets := map[string]jetstream.KeyValue{}
	for _, name := range []string{
		constants.KVBucketNameEvents,
		constants.KVBucketNameRooms,
		constants.KVBucketNameProfiles,
	} {
		kv, err := js.KeyValue(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("getting %s key-value store: %w", name, err)
		}
		buckets[name] = kv
	}

	return &repositories{
		Event:   store.NewNatsEventRepository(buckets[constants.KVBucketNameEvents], env.SeriesWorkers),
		Room:    store.NewNatsRoomRepository(buckets[constants.KVBucketNameRooms]),
		Profile: store.NewNatsProfileRepository(buckets[constants.KVBucketNameProfiles]),
	}, nil
}

// getPostgresStores connects to PostgreSQL and applies the migrations.
func getPostgresStores(ctx context.Context, env environment) (*repositories, error) {
	db, err := postgres.Connect(ctx, postgres.ConnectConfig{URL: env.DatabaseURL})
	if err != nil {
		return nil, err
	}
	if env.DatabaseMigrations {
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &repositories{
		Event:   postgres.NewEventRepository(db),
		Room:    postgres.NewRoomRepository(db),
		Profile: postgres.NewProfileRepository(db),
		closers: []func() error{func() error { return closeDB(db) }},
	}, nil
}

func closeDB(db *sqlx.DB) error {
	return db.Close()
}

// createNatsSubscriptions subscribes the handler to the request subjects in
// the service queue group.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	slog.InfoContext(ctx, "subscribing to NATS subjects", "nats_url", natsConn.ConnectedUrl(), "queue", models.BookingServiceQueueGroup)

	subjects := []string{
		models.RoomConflictCheckSubject,
		models.RecurrenceSummarySubject,
	}
	for _, subject := range subjects {
		_, err := natsConn.QueueSubscribe(subject, models.BookingServiceQueueGroup, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNatsMessage(msg))
		})
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", subject, err)
		}
	}

	return nil
}

// gracefulShutdown stops the HTTP server, drains NATS and waits for both.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("graceful shutdown via SIGINT or SIGTERM")

	// Cancel the background context.
	cancel()

	go func() {
		// Run the HTTP shutdown in a goroutine so the NATS draining can also start.
		ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
		defer cancel()

		slog.Info("shutting down http server")
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.With(logging.ErrKey, err).Error("http shutdown error")
		}
		// Decrement the wait group.
		gracefulCloseWG.Done()
	}()

	// Drain the NATS connection, which will drain all subscriptions, then close the
	// connection when complete.
	if !natsConn.IsClosed() && !natsConn.IsDraining() {
		slog.Info("draining NATS connections")
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			// Skip waiting for the NATS close handler, it will not be called.
			gracefulCloseWG.Done()
		}
	}

	// Wait for the HTTP graceful shutdown and for the NATS connection to be closed.
	gracefulCloseWG.Wait()

	slog.Info("graceful shutdown complete")
}
