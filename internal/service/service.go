// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import "github.com/linuxfoundation/lfx-v2-room-booking-service/pkg/constants"

// Service is implemented by every service that needs its dependencies
// checked before use.
type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// SkipEtagValidation is a flag to skip the Etag validation - only meant for local development.
	SkipEtagValidation bool
	// SeriesWorkers bounds the concurrency of series batches and conflict checks.
	SeriesWorkers int
	// MaxSeriesInstances caps the instances generated for one series.
	MaxSeriesInstances int
	// EventURLs builds the booking links placed in notifications. Links are
	// omitted when nil.
	EventURLs *constants.LfxURLGenerator
}
