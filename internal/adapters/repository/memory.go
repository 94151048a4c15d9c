package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/pkg/metrics"
)

// MemoryStore is a mutex-guarded, in-memory Store.
type MemoryStore struct {
	mu           sync.RWMutex
	events       map[string]model.Event
	profiles     map[string]model.Profile
	participants map[string]map[string]time.Time // event id -> user id -> joined at

	opts    options
	updater gaugeUpdater
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store and starts its metrics updater.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		events:       make(map[string]model.Event),
		profiles:     make(map[string]model.Profile),
		participants: make(map[string]map[string]time.Time),
		opts:         applyOptions(opts),
	}
	s.updater.start(ctx, s.opts.metricsUpdateInterval, s.updateMetrics)
	return s
}

// Close stops the background metrics updater.
func (s *MemoryStore) Close() error {
	s.updater.stop()
	return nil
}

func (s *MemoryStore) updateMetrics(ctx context.Context) {
	events, err := s.UpcomingEvents(ctx, s.opts.now(), EventQuery{})
	if err != nil {
		return
	}
	metrics.UpdateUpcomingEvents(len(events))
}

func cloneEvent(e model.Event) model.Event {
	e.Tags = slices.Clone(e.Tags)
	if e.Coordinate != nil {
		c := *e.Coordinate
		e.Coordinate = &c
	}
	return e
}

func cloneProfile(p model.Profile) model.Profile {
	p.Tags = slices.Clone(p.Tags)
	return p
}

// sortByDate orders events soonest first, breaking ties by id.
func sortByDate(events []model.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].ID < events[j].ID
	})
}

func (s *MemoryStore) listEvents(q EventQuery, keep func(model.Event) bool) []model.Event {
	s.mu.RLock()
	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		if q.matches(e) && keep(e) {
			out = append(out, cloneEvent(e))
		}
	}
	s.mu.RUnlock()

	sortByDate(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// UpcomingEvents implements Store.
func (s *MemoryStore) UpcomingEvents(_ context.Context, now time.Time, q EventQuery) ([]model.Event, error) {
	defer observe("upcoming_events", time.Now())
	return s.listEvents(q, func(e model.Event) bool { return !e.Date.Before(now) }), nil
}

// AllEvents implements Store.
func (s *MemoryStore) AllEvents(_ context.Context, q EventQuery) ([]model.Event, error) {
	defer observe("all_events", time.Now())
	return s.listEvents(q, func(model.Event) bool { return true }), nil
}

// Event implements Store.
func (s *MemoryStore) Event(_ context.Context, id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return model.Event{}, notFound("event", id)
	}
	return cloneEvent(e), nil
}

// CreateEvent implements Store.
func (s *MemoryStore) CreateEvent(_ context.Context, e model.Event) (model.Event, error) {
	defer observe("create_event", time.Now())
	if err := validateEvent(e); err != nil {
		return model.Event{}, err
	}
	if e.ID == "" {
		e.ID = s.opts.newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.opts.now()
	}
	e = cloneEvent(e)

	s.mu.Lock()
	s.events[e.ID] = e
	s.mu.Unlock()
	return cloneEvent(e), nil
}

// Profile implements Store.
func (s *MemoryStore) Profile(_ context.Context, userID string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, notFound("profile", userID)
	}
	return cloneProfile(p), nil
}

// UpsertProfile implements Store.
func (s *MemoryStore) UpsertProfile(_ context.Context, p model.Profile) (model.Profile, error) {
	if err := validateProfile(p); err != nil {
		return model.Profile{}, err
	}
	p = cloneProfile(p)
	s.mu.Lock()
	s.profiles[p.ID] = p
	s.mu.Unlock()
	return cloneProfile(p), nil
}

// OtherProfiles implements Store.
func (s *MemoryStore) OtherProfiles(_ context.Context, excludeUserID string, limit int) ([]model.Profile, error) {
	defer observe("other_profiles", time.Now())
	s.mu.RLock()
	out := make([]model.Profile, 0, len(s.profiles))
	for id, p := range s.profiles {
		if id != excludeUserID {
			out = append(out, cloneProfile(p))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateProfileTags implements Store.
func (s *MemoryStore) UpdateProfileTags(_ context.Context, userID string, tags []string) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, notFound("profile", userID)
	}
	p.Tags = slices.Clone(tags)
	s.profiles[userID] = p
	return cloneProfile(p), nil
}

// Join implements Store.
func (s *MemoryStore) Join(_ context.Context, eventID, userID string, at time.Time) (model.Participant, error) {
	defer observe("join", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return model.Participant{}, notFound("event", eventID)
	}
	joined := s.participants[eventID]
	if _, dup := joined[userID]; dup {
		return model.Participant{}, ErrAlreadyJoined
	}
	if e.MaxAttendees > 0 && len(joined) >= e.MaxAttendees {
		return model.Participant{}, ErrEventFull
	}
	if joined == nil {
		joined = make(map[string]time.Time)
		s.participants[eventID] = joined
	}
	joined[userID] = at
	return model.Participant{EventID: eventID, UserID: userID, JoinedAt: at}, nil
}

// Leave implements Store.
func (s *MemoryStore) Leave(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	joined := s.participants[eventID]
	if _, ok := joined[userID]; !ok {
		return ErrNotJoined
	}
	delete(joined, userID)
	return nil
}

// ParticipantCount implements Store.
func (s *MemoryStore) ParticipantCount(_ context.Context, eventID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants[eventID]), nil
}

// IsParticipant implements Store.
func (s *MemoryStore) IsParticipant(_ context.Context, eventID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.participants[eventID][userID]
	return ok, nil
}

// JoinedEvents implements Store.
func (s *MemoryStore) JoinedEvents(_ context.Context, userID string) ([]model.Event, error) {
	s.mu.RLock()
	var out []model.Event
	for eventID, joined := range s.participants {
		if _, ok := joined[userID]; !ok {
			continue
		}
		if e, ok := s.events[eventID]; ok {
			out = append(out, cloneEvent(e))
		}
	}
	s.mu.RUnlock()
	sortByDate(out)
	return out, nil
}
