package repository

import (
	"time"
)

type options struct {
	metricsUpdateInterval time.Duration
	now                   func() time.Time
	newID                 func() string
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.metricsUpdateInterval = interval
		}
	}
}

// WithClock sets the clock used for the upcoming-events gauge.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides uuid-based id generation.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		metricsUpdateInterval: 5 * time.Second,
		now:                   time.Now,
		newID:                 newUUID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
