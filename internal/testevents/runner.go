// Package testevents generates plausible events and profiles, seeds them
// into a store, and drives a running API with them as a smoke test.
package testevents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/internal/domain/ranking"
	"github.com/okian/hangout/pkg/logger"
)

// ErrVerification is returned when the API answered inconsistently.
var ErrVerification = errors.New("verification failed")

var sampleQueries = []string{
	"something outdoorsy this weekend",
	"live music at night",
	"a calm evening with board games",
}

// Run executes the complete smoke test against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if cfg.TopK <= 0 {
		cfg.TopK = ranking.DefaultTopK
	}
	log := logger.Get()

	log.Info(ctx, "starting hangout smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("events", cfg.NumEvents),
		logger.Int("profiles", cfg.NumProfiles),
		logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create profiles and events
	g := NewGenerator(cfg.Seed, nil)
	profiles := g.Profiles(cfg.NumProfiles)
	submitProfiles(ctx, cfg, client, profiles, stats)

	organizers := make([]string, len(profiles))
	for i, p := range profiles {
		organizers[i] = p.ID
	}
	eventIDs := submitEvents(ctx, cfg, client, g.Events(cfg.NumEvents, organizers), stats)

	// Step 3: Join random events
	if len(eventIDs) > 0 {
		attempts := make([]joinAttempt, 0, len(profiles)*cfg.JoinsPerUser)
		for _, p := range profiles {
			for range cfg.JoinsPerUser {
				attempts = append(attempts, joinAttempt{eventID: eventIDs[g.Intn(len(eventIDs))], userID: p.ID})
			}
		}
		submitJoins(ctx, cfg, client, attempts, stats)
	}

	// Step 4: Verify recommendations
	failures := verifyAll(ctx, cfg, client, profiles, stats)

	// Step 5: Exercise search
	for _, q := range sampleQueries {
		code, err := client.do(ctx, http.MethodPost, "/search", map[string]string{"query": q}, nil)
		if err != nil {
			return stats, fmt.Errorf("search %q: %w", q, err)
		}
		// 503 means no classifier is configured.
		if code != http.StatusOK && code != http.StatusServiceUnavailable && code != http.StatusTooManyRequests {
			failures++
			log.Warn(ctx, "unexpected search status", logger.String("query", q), logger.Int("status", code))
		}
		stats.SearchesRun++
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if n := stats.ProfilesFailed.Load() + stats.EventsFailed.Load() + stats.JoinsFailed.Load(); n > 0 {
		return stats, fmt.Errorf("%d write requests failed", n)
	}
	if failures > 0 {
		return stats, fmt.Errorf("%w: %d inconsistent replies", ErrVerification, failures)
	}
	log.Info(ctx, "test completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, c *HTTPClient) error {
	code, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", code)
	}
	return nil
}

// verifyAll fetches both recommendation lists for every profile and
// returns the number of replies that broke an invariant.
func verifyAll(ctx context.Context, cfg *Config, c *HTTPClient, profiles []model.Profile, stats *Stats) int {
	failures := 0
	for _, p := range profiles {
		for _, friends := range []bool{false, true} {
			path := "/users/" + p.ID + "/recommendations/events"
			if friends {
				path = "/users/" + p.ID + "/recommendations/friends"
			}
			var payload recommendationPayload
			code, err := c.do(ctx, http.MethodGet, path, nil, &payload)
			if err == nil && code != http.StatusOK {
				err = fmt.Errorf("status %d", code)
			}
			if err == nil {
				err = verifyRecommendations(p.ID, payload, cfg.TopK, friends)
			}
			stats.RecommendationsChecked++
			if err != nil {
				failures++
				logger.Get().Warn(ctx, "recommendation check failed", logger.String("path", path), logger.Error(err))
			}
		}
	}
	return failures
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("profilesCreated", int(stats.ProfilesCreated.Load())),
		logger.Int("eventsCreated", int(stats.EventsCreated.Load())),
		logger.Int("joins", int(stats.Joins.Load())),
		logger.Int("joinsRejected", int(stats.JoinsRejected.Load())),
		logger.Int("recommendationsChecked", stats.RecommendationsChecked),
		logger.Int("searchesRun", stats.SearchesRun),
		logger.Duration("duration", stats.Duration))
}
