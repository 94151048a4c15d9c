package testevents

import (
	"sync/atomic"
	"time"
)

// Config holds configuration for a smoke run against a live API.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumEvents    int           // Number of events to create
	NumProfiles  int           // Number of profiles to create
	JoinsPerUser int           // Join attempts per profile
	TopK         int           // Expected recommendation list size
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	Seed         uint64        // Generator seed
	Verbose      bool          // Log every failed request
}

// Stats holds run counters. Counters are updated concurrently by workers.
type Stats struct {
	ProfilesCreated atomic.Int64
	ProfilesFailed  atomic.Int64
	EventsCreated   atomic.Int64
	EventsFailed    atomic.Int64
	Joins           atomic.Int64
	JoinsRejected   atomic.Int64
	JoinsFailed     atomic.Int64

	RecommendationsChecked int
	SearchesRun            int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
