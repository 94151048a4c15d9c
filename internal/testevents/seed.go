package testevents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/hangout/internal/adapters/repository"
	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/pkg/logger"
)

// Sink is the subset of repository.Store that seeding writes through.
type Sink interface {
	CreateEvent(ctx context.Context, e model.Event) (model.Event, error)
	UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	Join(ctx context.Context, eventID, userID string, at time.Time) (model.Participant, error)
}

var _ Sink = repository.Store(nil)

// SeedResult reports what Seed wrote.
type SeedResult struct {
	Profiles      int
	Events        int
	Joins         int
	JoinsRejected int
}

// Seed writes profiles, then events organised by them, then random joins
// into sink. Capacity and duplicate join rejections are counted, not fatal.
func Seed(ctx context.Context, sink Sink, g *Generator, numProfiles, numEvents, joinsPerUser int) (SeedResult, error) {
	var res SeedResult
	log := logger.Get()

	profiles := g.Profiles(numProfiles)
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if _, err := sink.UpsertProfile(ctx, p); err != nil {
			return res, fmt.Errorf("seed profile %s: %w", p.ID, err)
		}
		ids = append(ids, p.ID)
		res.Profiles++
	}

	events := make([]model.Event, 0, numEvents)
	for _, e := range g.Events(numEvents, ids) {
		stored, err := sink.CreateEvent(ctx, e)
		if err != nil {
			return res, fmt.Errorf("seed event %q: %w", e.Title, err)
		}
		events = append(events, stored)
		res.Events++
	}

	if len(events) > 0 {
		for _, userID := range ids {
			for range joinsPerUser {
				e := events[g.Intn(len(events))]
				_, err := sink.Join(ctx, e.ID, userID, g.now())
				switch {
				case err == nil:
					res.Joins++
				case errors.Is(err, repository.ErrEventFull), errors.Is(err, repository.ErrAlreadyJoined):
					res.JoinsRejected++
				default:
					return res, fmt.Errorf("seed join %s/%s: %w", e.ID, userID, err)
				}
			}
		}
	}

	log.Info(ctx, "seed completed",
		logger.Int("profiles", res.Profiles),
		logger.Int("events", res.Events),
		logger.Int("joins", res.Joins),
		logger.Int("joinsRejected", res.JoinsRejected))
	return res, nil
}
