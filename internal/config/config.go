// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and HANGOUT_ environment variables on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/okian/hangout/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json records.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file. Empty selects the in-memory store.
	DBPath string `koanf:"db_path"`

	// RecommendTopK caps event recommendations.
	RecommendTopK int `koanf:"recommend_top_k"`

	// FriendCandidateLimit caps how many other profiles are scored for friends.
	FriendCandidateLimit int `koanf:"friend_candidate_limit"`

	// MaxEventsLimit caps GET /events?limit.
	MaxEventsLimit int `koanf:"max_events_limit"`

	// ClassifierBaseURL is the OpenAI-compatible API root.
	ClassifierBaseURL string `koanf:"classifier_base_url"`
	// ClassifierAPIKey disables the classifier when empty.
	ClassifierAPIKey string `koanf:"classifier_api_key"`
	ClassifierModel  string `koanf:"classifier_model"`
	// ClassifierTimeoutMS bounds a single classifier call.
	ClassifierTimeoutMS int `koanf:"classifier_timeout_ms"`

	// SearchRateLimit is the number of /search calls allowed per client per minute.
	SearchRateLimit int `koanf:"search_rate_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8080",
		DBPath:               "",
		RecommendTopK:        3,
		FriendCandidateLimit: 20,
		MaxEventsLimit:       100,
		ClassifierBaseURL:    "https://api.openai.com/v1",
		ClassifierModel:      "gpt-4o-mini",
		ClassifierTimeoutMS:  15_000,
		SearchRateLimit:      30,
	}
}

// ClassifierTimeout returns ClassifierTimeoutMS as a duration.
func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.ClassifierTimeoutMS) * time.Millisecond
}

// ClassifierEnabled reports whether an API key is configured.
func (c *Config) ClassifierEnabled() bool {
	return c.ClassifierAPIKey != ""
}

// Validate checks that values are usable.
func (c *Config) Validate(_ context.Context) error {
	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RecommendTopK <= 0:
		return fmt.Errorf("%w: recommend_top_k must be positive, got %d", ErrInvalidConfig, c.RecommendTopK)
	case c.FriendCandidateLimit <= 0:
		return fmt.Errorf("%w: friend_candidate_limit must be positive, got %d", ErrInvalidConfig, c.FriendCandidateLimit)
	case c.MaxEventsLimit <= 0:
		return fmt.Errorf("%w: max_events_limit must be positive, got %d", ErrInvalidConfig, c.MaxEventsLimit)
	case c.ClassifierTimeoutMS <= 0:
		return fmt.Errorf("%w: classifier_timeout_ms must be positive, got %d", ErrInvalidConfig, c.ClassifierTimeoutMS)
	case c.SearchRateLimit <= 0:
		return fmt.Errorf("%w: search_rate_limit must be positive, got %d", ErrInvalidConfig, c.SearchRateLimit)
	}
	if c.ClassifierEnabled() {
		u, err := url.Parse(c.ClassifierBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %w: classifier_base_url %q", ErrInvalidConfig, ErrInvalidClassifier, c.ClassifierBaseURL)
		}
		if c.ClassifierModel == "" {
			return fmt.Errorf("%w: %w: classifier_model must not be empty", ErrInvalidConfig, ErrInvalidClassifier)
		}
	}
	return nil
}
