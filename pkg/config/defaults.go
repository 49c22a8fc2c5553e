package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "telecare"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 20
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotLockTTL = 10 * time.Second

	// Consulting period bounds, in whole hours. Product convention:
	// morning [8,12), evening [12,18), night [18,22).
	DefaultMorningStartHour = 8
	DefaultMorningEndHour   = 12
	DefaultEveningStartHour = 12
	DefaultEveningEndHour   = 18
	DefaultNightStartHour   = 18
	DefaultNightEndHour     = 22

	DefaultKafkaTopic = "telecare.appointments"

	DefaultPaginationLimit = 100
)
