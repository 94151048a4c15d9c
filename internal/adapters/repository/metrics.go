package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/hangout/pkg/metrics"
)

func newUUID() string { return uuid.NewString() }

// observe records the latency of a repository operation started at start.
func observe(op string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// gaugeUpdater periodically publishes the number of upcoming events.
type gaugeUpdater struct {
	wg       sync.WaitGroup
	stopChan chan struct{}
	once     sync.Once
}

func (g *gaugeUpdater) start(ctx context.Context, interval time.Duration, update func(context.Context)) {
	g.stopChan = make(chan struct{})
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-g.stopChan:
				return
			case <-ticker.C:
				update(ctx)
			}
		}
	}()
}

func (g *gaugeUpdater) stop() {
	g.once.Do(func() {
		if g.stopChan != nil {
			close(g.stopChan)
		}
	})
	g.wg.Wait()
}
