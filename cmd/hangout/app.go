package main

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/hangout/internal/adapters/classifier"
	"github.com/okian/hangout/internal/adapters/repository"
	service "github.com/okian/hangout/internal/app"
	"github.com/okian/hangout/internal/config"
	"github.com/okian/hangout/pkg/logger"
)

// components bundles what every subcommand shares.
type components struct {
	cfg   *config.Config
	store repository.Store
	svc   *service.Service
	log   logger.Logger
}

func (c *components) Close() error {
	return c.store.Close()
}

// bootstrap loads configuration and wires store, classifier and service.
func bootstrap(ctx context.Context) (*components, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Validate has already accepted the format.
	format, _ := logger.ParseFormat(cfg.LogFormat)
	if format != logger.FormatText {
		if err := logger.InitWithFormat(os.Stdout, format); err != nil {
			return nil, err
		}
	}
	log := logger.Get()
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := service.New(
		service.WithStore(store),
		service.WithClassifier(newClassifier(cfg, log)),
		service.WithTopK(cfg.RecommendTopK),
		service.WithFriendCandidateLimit(cfg.FriendCandidateLimit),
		service.WithLogger(log.Named("service")),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}
	return &components{cfg: cfg, store: store, svc: svc, log: log}, nil
}

// newStore opens SQLite when db_path is set and the in-memory store otherwise.
func newStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.DBPath == "" {
		return repository.NewMemoryStore(ctx), nil
	}
	s, err := repository.NewSQLiteStore(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}
	return s, nil
}

// newClassifier returns a breaker-guarded OpenAI client, or Disabled when
// no API key is configured.
func newClassifier(cfg *config.Config, log logger.Logger) classifier.Classifier {
	if !cfg.ClassifierEnabled() {
		return classifier.Disabled{}
	}
	client := classifier.NewOpenAIClient(cfg.ClassifierAPIKey,
		classifier.WithBaseURL(cfg.ClassifierBaseURL),
		classifier.WithModel(cfg.ClassifierModel),
		classifier.WithTimeout(cfg.ClassifierTimeout()),
	)
	return classifier.NewBreaker(client, classifier.DefaultBreakerConfig(), log.Named("classifier"))
}
