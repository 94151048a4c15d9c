package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/pkg/logger"
	"github.com/okian/hangout/pkg/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	// OpenFor is how long the breaker stays open before probing again.
	OpenFor time.Duration
	// HalfOpenProbes is the number of requests allowed while half-open.
	HalfOpenProbes uint32
}

// DefaultBreakerConfig trips after five consecutive failures for 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "classifier",
		FailureThreshold: 5,
		OpenFor:          30 * time.Second,
		HalfOpenProbes:   1,
	}
}

// Breaker wraps a Classifier with a circuit breaker. Malformed replies and
// caller cancellations do not count as failures.
type Breaker struct {
	next Classifier
	cb   *gobreaker.CircuitBreaker[Result]
	log  logger.Logger
}

// NewBreaker wraps next. A nil log uses a no-op logger.
func NewBreaker(next Classifier, cfg BreakerConfig, log logger.Logger) *Breaker {
	if log == nil {
		log = logger.NewNop()
	}
	b := &Breaker{next: next, log: log}
	b.cb = gobreaker.NewCircuitBreaker[Result](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenProbes,
		Timeout:     cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrMalformed) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateCircuitBreakerState(name, stateValue(to))
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			b.log.Warn(context.Background(), "classifier breaker state changed",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	metrics.UpdateCircuitBreakerState(cfg.Name, stateValue(gobreaker.StateClosed))
	return b
}

// Classify runs next through the breaker. An open breaker yields ErrUnavailable.
func (b *Breaker) Classify(ctx context.Context, query string, candidates []model.EventSummary) (Result, error) {
	res, err := b.cb.Execute(func() (Result, error) {
		return b.next.Classify(ctx, query, candidates)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordClassifierError(Kind(ErrUnavailable))
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return res, err
}

// State returns the breaker's current state name.
func (b *Breaker) State() string { return b.cb.State().String() }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
