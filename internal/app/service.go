// Package service provides the discovery service that implements the
// dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/hangout/internal/adapters/classifier"
	"github.com/okian/hangout/internal/adapters/repository"
	"github.com/okian/hangout/internal/domain/filter"
	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/internal/domain/ranking"
	"github.com/okian/hangout/internal/domain/reconcile"
	"github.com/okian/hangout/internal/domain/scoring"
	"github.com/okian/hangout/internal/domain/stats"
	"github.com/okian/hangout/pkg/logger"
	"github.com/okian/hangout/pkg/metrics"
)

// User-facing search messages.
const (
	EmptyCatalogMessage = "I couldn't find any upcoming events in the database to match against."
	KeywordMatchMessage = "I couldn't find a perfect conceptual match, but these events contain keywords you mentioned."
)

// Search sources reported in SearchResult.Source.
const (
	SourceClassifier = "classifier"
	SourceKeyword    = "keyword"
	SourceEmpty      = "empty"
)

// Default collaborator limits.
const (
	DefaultFriendCandidateLimit = 20
)

// Service implements discovery, participation and profile operations.
type Service struct {
	store      repository.Store
	classifier classifier.Classifier
	now        func() time.Time

	topK        int
	friendLimit int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the event and profile store. Required.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithClassifier sets the search classifier.
func WithClassifier(c classifier.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithClock sets the time source used as "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTopK sets how many recommendations are returned.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithFriendCandidateLimit caps how many other profiles are scored.
func WithFriendCandidateLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.friendLimit = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service. It fails with ErrNoStore when no store is given.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		classifier:  classifier.Disabled{},
		now:         time.Now,
		topK:        ranking.DefaultTopK,
		friendLimit: DefaultFriendCandidateLimit,
		logger:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s, nil
}

// profileTags returns the user's tags. A missing profile has none.
func (s *Service) profileTags(ctx context.Context, userID string) ([]string, error) {
	p, err := s.store.Profile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p.Tags, nil
}

// RecommendEvents ranks upcoming events by tag overlap with the user's
// interests.
func (s *Service) RecommendEvents(ctx context.Context, userID string) (ranking.Result[model.Event], error) {
	tags, err := s.profileTags(ctx, userID)
	if err != nil {
		return ranking.Result[model.Event]{}, err
	}
	events, err := s.store.UpcomingEvents(ctx, s.now(), repository.EventQuery{})
	if err != nil {
		return ranking.Result[model.Event]{}, fmt.Errorf("load upcoming events: %w", err)
	}

	res := ranking.Rank(events, tags, s.topK, scoring.ModeEvent)
	metrics.RecordRecommendation(scoring.ModeEvent.String(), res.Status.String(), len(events))
	s.logger.Debug(ctx, "recommended events",
		logger.String("user", userID),
		logger.Int("candidates", len(events)),
		logger.Int("returned", len(res.Items)),
		logger.String("status", res.Status.String()),
	)
	return res, nil
}

// RecommendFriends ranks other users by shared interests.
func (s *Service) RecommendFriends(ctx context.Context, userID string) (ranking.Result[model.Profile], error) {
	tags, err := s.profileTags(ctx, userID)
	if err != nil {
		return ranking.Result[model.Profile]{}, err
	}
	others, err := s.store.OtherProfiles(ctx, userID, s.friendLimit)
	if err != nil {
		return ranking.Result[model.Profile]{}, fmt.Errorf("load profiles: %w", err)
	}

	res := ranking.Rank(others, tags, s.topK, scoring.ModeFriend)
	metrics.RecordRecommendation(scoring.ModeFriend.String(), res.Status.String(), len(others))
	s.logger.Debug(ctx, "recommended friends",
		logger.String("user", userID),
		logger.Int("candidates", len(others)),
		logger.Int("returned", len(res.Items)),
	)
	return res, nil
}

// BrowseResult is a filtered listing plus the cities available for filtering.
type BrowseResult struct {
	Events []model.Event `json:"events"`
	Cities []string      `json:"cities"`
}

// BrowseEvents lists events matching c. Category is pushed down to the
// store; the remaining predicates run in memory so the city list stays
// complete for the chosen category.
func (s *Service) BrowseEvents(ctx context.Context, c filter.Criteria) (BrowseResult, error) {
	all, err := s.store.AllEvents(ctx, repository.EventQuery{Category: c.Category})
	if err != nil {
		return BrowseResult{}, fmt.Errorf("load events: %w", err)
	}
	events := filter.Filter(all, c, s.now())
	metrics.RecordFilterResults(len(events))
	return BrowseResult{Events: events, Cities: filter.Cities(all)}, nil
}

// SearchResult is the outcome of a natural-language search.
type SearchResult struct {
	Events    []model.Event `json:"events"`
	Reasoning string        `json:"reasoning"`
	Source    string        `json:"source"`
	// Dropped counts classifier ids that matched no upcoming event.
	Dropped int `json:"dropped"`
}

// Search asks the classifier which upcoming events fit query and reconciles
// the answer against the catalog. A classifier failure is returned as an
// error; only an empty answer triggers the keyword fallback.
func (s *Service) Search(ctx context.Context, query string) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, ErrEmptyQuery
	}
	events, err := s.store.UpcomingEvents(ctx, s.now(), repository.EventQuery{})
	if err != nil {
		return SearchResult{}, fmt.Errorf("load upcoming events: %w", err)
	}
	if len(events) == 0 {
		metrics.RecordSearch(SourceEmpty, 0)
		return SearchResult{Events: []model.Event{}, Reasoning: EmptyCatalogMessage, Source: SourceEmpty}, nil
	}

	reply, err := s.classifier.Classify(ctx, query, model.Summaries(events))
	if err != nil {
		s.logger.Warn(ctx, "classifier failed",
			logger.String("kind", classifier.Kind(err)),
			logger.Error(err),
		)
		return SearchResult{}, fmt.Errorf("classify: %w", err)
	}

	out := reconcile.Reconcile(reply.MatchedIDs, events, query)
	result := SearchResult{
		Events:    out.Items,
		Reasoning: reply.Reasoning,
		Source:    out.Source.String(),
		Dropped:   out.Dropped,
	}
	if result.Events == nil {
		result.Events = []model.Event{}
	}
	if out.Source == reconcile.SourceKeyword && len(out.Items) > 0 {
		result.Reasoning = KeywordMatchMessage
	}
	if out.Dropped > 0 {
		s.logger.Warn(ctx, "classifier proposed unknown event ids",
			logger.Int("dropped", out.Dropped),
		)
	}
	metrics.RecordSearch(result.Source, out.Dropped)
	return result, nil
}

// EventDetails is an event with its participation state.
type EventDetails struct {
	Event        model.Event `json:"event"`
	Participants int         `json:"participants"`
	IsFull       bool        `json:"is_full"`
	Joined       bool        `json:"joined"`
}

// GetEvent returns an event, its participant count and whether viewerID
// has joined. An empty viewerID is never joined.
func (s *Service) GetEvent(ctx context.Context, eventID, viewerID string) (EventDetails, error) {
	e, err := s.store.Event(ctx, eventID)
	if err != nil {
		return EventDetails{}, err
	}
	n, err := s.store.ParticipantCount(ctx, eventID)
	if err != nil {
		return EventDetails{}, err
	}
	d := EventDetails{Event: e, Participants: n, IsFull: e.MaxAttendees > 0 && n >= e.MaxAttendees}
	if viewerID != "" {
		if d.Joined, err = s.store.IsParticipant(ctx, eventID, viewerID); err != nil {
			return EventDetails{}, err
		}
	}
	return d, nil
}

// CreateEvent stores a new event organised by e.OrganizerID.
func (s *Service) CreateEvent(ctx context.Context, e model.Event) (model.Event, error) {
	e.ID = ""
	e.CreatedAt = s.now()
	created, err := s.store.CreateEvent(ctx, e)
	if err != nil {
		return model.Event{}, err
	}
	s.logger.Info(ctx, "event created",
		logger.String("id", created.ID),
		logger.String("organizer", created.OrganizerID),
		logger.String("category", created.Category),
	)
	return created, nil
}

// Join registers userID for eventID at the current time.
func (s *Service) Join(ctx context.Context, eventID, userID string) (model.Participant, error) {
	p, err := s.store.Join(ctx, eventID, userID, s.now())
	metrics.RecordParticipantChange("join", participationResult(err))
	return p, err
}

// Leave removes userID from eventID.
func (s *Service) Leave(ctx context.Context, eventID, userID string) error {
	err := s.store.Leave(ctx, eventID, userID)
	metrics.RecordParticipantChange("leave", participationResult(err))
	return err
}

func participationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, repository.ErrEventFull):
		return "full"
	case errors.Is(err, repository.ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, repository.ErrNotJoined):
		return "not_joined"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// JoinedEvents lists the events userID joined.
func (s *Service) JoinedEvents(ctx context.Context, userID string) ([]model.Event, error) {
	return s.store.JoinedEvents(ctx, userID)
}

// AddInterests merges tags into the user's profile, keeping existing tags
// first. A missing profile is created.
func (s *Service) AddInterests(ctx context.Context, userID string, tags []string) (model.Profile, error) {
	p, err := s.store.Profile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.store.UpsertProfile(ctx, model.Profile{ID: userID, Tags: model.MergeTags(nil, tags)})
	}
	if err != nil {
		return model.Profile{}, err
	}
	return s.store.UpdateProfileTags(ctx, userID, model.MergeTags(p.Tags, tags))
}

// UpdateProfile replaces the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	p.Tags = model.MergeTags(nil, p.Tags)
	return s.store.UpsertProfile(ctx, p)
}

// Profile returns a user's profile.
func (s *Service) Profile(ctx context.Context, userID string) (model.Profile, error) {
	return s.store.Profile(ctx, userID)
}

// Statistics returns category and city distributions of upcoming events.
func (s *Service) Statistics(ctx context.Context) (stats.Stats, error) {
	events, err := s.store.UpcomingEvents(ctx, s.now(), repository.EventQuery{})
	if err != nil {
		return stats.Stats{}, fmt.Errorf("load upcoming events: %w", err)
	}
	metrics.UpdateUpcomingEvents(len(events))
	return stats.Compute(events), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	out := map[string]interface{}{
		"topK":                 s.topK,
		"friendCandidateLimit": s.friendLimit,
	}
	if b, ok := s.classifier.(interface{ State() string }); ok {
		out["classifierBreaker"] = b.State()
	}
	_, disabled := s.classifier.(classifier.Disabled)
	out["classifierEnabled"] = !disabled

	if events, err := s.store.UpcomingEvents(ctx, s.now(), repository.EventQuery{}); err == nil {
		out["upcomingEvents"] = len(events)
		metrics.UpdateUpcomingEvents(len(events))
	}
	return out
}
