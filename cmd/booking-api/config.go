// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
)

// Storage backends selected with STORE_BACKEND.
const (
	storeBackendNATS     = "nats"
	storeBackendPostgres = "postgres"
)

// flags are the command line flags for the booking service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the booking service.
type environment struct {
	Port               string
	NatsURL            string
	NatsTimeout        time.Duration
	NatsMaxReconnect   int
	NatsReconnectWait  time.Duration
	StoreBackend       string
	DatabaseURL        string
	DatabaseMigrations bool
	RedisAddr          string
	RedisPassword      string
	RoomCacheTTL       time.Duration
	SMTP               smtpConfig
	JWTSecret          string
	JWTAudience        string
	MockLocalPrincipal string
	SkipEtagValidation bool
	SeriesWorkers      int
	LFXEnvironment     string
	LFXAppOrigin       string
}

// smtpConfig holds the SMTP settings. An empty host disables email.
type smtpConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// parseFlags parses command line flags for the booking service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the booking service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	backend := os.Getenv("STORE_BACKEND")
	switch backend {
	case "", storeBackendNATS:
		backend = storeBackendNATS
	case storeBackendPostgres, "postgresql", "pg":
		backend = storeBackendPostgres
	default:
		slog.Error("unsupported STORE_BACKEND, expected nats or postgres", "backend", backend)
		os.Exit(1)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if backend == storeBackendPostgres && databaseURL == "" {
		slog.Error("DATABASE_URL environment variable is required when STORE_BACKEND=postgres")
		os.Exit(1)
	}

	return environment{
		Port:               port,
		NatsURL:            natsURL,
		NatsTimeout:        durationEnv("NATS_TIMEOUT", 10*time.Second),
		NatsMaxReconnect:   intEnv("NATS_MAX_RECONNECT", 3),
		NatsReconnectWait:  durationEnv("NATS_RECONNECT_WAIT", 2*time.Second),
		StoreBackend:       backend,
		DatabaseURL:        databaseURL,
		DatabaseMigrations: os.Getenv("DATABASE_MIGRATIONS") != "false",
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RoomCacheTTL:       durationEnv("ROOM_CACHE_TTL", 0),
		SMTP: smtpConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     intEnv("SMTP_PORT", 25),
			From:     envOr("SMTP_FROM", "no-reply@lfx.linuxfoundation.org"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTAudience:        os.Getenv("JWT_AUDIENCE"),
		MockLocalPrincipal: os.Getenv("JWT_AUTH_DISABLED_MOCK_LOCAL_PRINCIPAL"),
		SkipEtagValidation: os.Getenv("SKIP_ETAG_VALIDATION") == "true",
		SeriesWorkers:      intEnv("SERIES_WORKERS", constants.DefaultSeriesWorkers),
		LFXEnvironment:     envOr("LFX_ENVIRONMENT", "prod"),
		LFXAppOrigin:       os.Getenv("LFX_APP_ORIGIN"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// intEnv reads a positive integer, falling back on a missing or bad value.
func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		slog.With(logging.ErrKey, err, "key", key, "value", raw).Warn("invalid integer environment variable, using default")
		return fallback
	}
	return v
}

// durationEnv reads a Go duration such as "30s", falling back on a missing
// or bad value.
func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		slog.With(logging.ErrKey, err, "key", key, "value", raw).Warn("invalid duration environment variable, using default")
		return fallback
	}
	return v
}
