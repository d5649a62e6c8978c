// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the room booking API that provides a RESTful API for
// booking rooms and handles NATS requests for the booking service.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/utils"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	otelShutdown, err := utils.SetupOTelSDK(context.Background())
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry")
		os.Exit(1)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry")
		}
	}()

	// Set up the JWT parser used by the authorization middleware.
	jwtAuth, err := setupJWTAuth(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up JWT authentication")
		os.Exit(1)
	}

	// Initialize email notifier (independent of NATS)
	notifier, err := setupNotifier(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up email notifier")
		return
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	repos, err := setupRepositories(ctx, env, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up repositories")
		return
	}
	defer repos.close()

	// Initialize services
	serviceConfig := service.ServiceConfig{
		SkipEtagValidation: env.SkipEtagValidation,
		SeriesWorkers:      env.SeriesWorkers,
		EventURLs:          constants.NewLfxURLGenerator(env.LFXEnvironment, env.LFXAppOrigin),
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	eventService := service.NewEventService(
		repos.Event,
		repos.Room,
		repos.Profile,
		messageBuilder,
		notifier,
		serviceConfig,
	)
	directoryService := service.NewDirectoryService(repos.Room, repos.Profile)

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(eventService.Conflicts)

	api := NewBookingAPI(eventService, directoryService)
	httpServer := setupHTTPServer(flags, newRouter(api, jwtAuth), &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, bookingHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
