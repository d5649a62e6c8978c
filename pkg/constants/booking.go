// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Booking limits
const (
	// MaxSeriesInstances caps the instances generated for one series,
	// not counting the anchor.
	MaxSeriesInstances = 100

	// DefaultSeriesWorkers is the default concurrency of series batches.
	DefaultSeriesWorkers = 8

	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// NATS KV buckets
const (
	KVBucketNameEvents   = "room-booking-events"
	KVBucketNameRooms    = "room-booking-rooms"
	KVBucketNameProfiles = "room-booking-profiles"
)
