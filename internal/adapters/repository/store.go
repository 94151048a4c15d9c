// Package repository defines the event and profile store interface and its
// in-memory and SQLite implementations.
package repository

import (
	"context"
	"time"

	"github.com/okian/hangout/internal/domain/model"
)

// EventQuery narrows event listings. Zero values mean no restriction.
type EventQuery struct {
	// Category filters by exact category; "" and model.CategoryAll match all.
	Category string
	// City filters by exact city name.
	City string
	// Limit caps the number of rows; 0 means unlimited.
	Limit int
}

func (q EventQuery) matches(e model.Event) bool {
	if q.Category != "" && q.Category != model.CategoryAll && e.Category != q.Category {
		return false
	}
	if q.City != "" && e.City != q.City {
		return false
	}
	return true
}

// Store provides read/write access to events, profiles and participation.
type Store interface {
	// UpcomingEvents returns events dated at or after now, soonest first.
	UpcomingEvents(ctx context.Context, now time.Time, q EventQuery) ([]model.Event, error)
	// AllEvents returns every event regardless of date, soonest first.
	AllEvents(ctx context.Context, q EventQuery) ([]model.Event, error)
	// Event returns a single event or ErrNotFound.
	Event(ctx context.Context, id string) (model.Event, error)
	// CreateEvent stores e, assigning an id when e.ID is empty.
	CreateEvent(ctx context.Context, e model.Event) (model.Event, error)

	// Profile returns a profile or ErrNotFound.
	Profile(ctx context.Context, userID string) (model.Profile, error)
	// UpsertProfile inserts or replaces a profile.
	UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	// OtherProfiles returns up to limit profiles other than excludeUserID,
	// ordered by id. limit <= 0 means unlimited.
	OtherProfiles(ctx context.Context, excludeUserID string, limit int) ([]model.Profile, error)
	// UpdateProfileTags replaces the tags of an existing profile.
	UpdateProfileTags(ctx context.Context, userID string, tags []string) (model.Profile, error)

	// Join registers userID for eventID. It fails with ErrEventFull when
	// the event is at capacity and ErrAlreadyJoined on a repeat.
	Join(ctx context.Context, eventID, userID string, at time.Time) (model.Participant, error)
	// Leave removes the registration or returns ErrNotJoined.
	Leave(ctx context.Context, eventID, userID string) error
	// ParticipantCount returns how many users joined eventID.
	ParticipantCount(ctx context.Context, eventID string) (int, error)
	// IsParticipant reports whether userID joined eventID.
	IsParticipant(ctx context.Context, eventID, userID string) (bool, error)
	// JoinedEvents returns the events userID joined, soonest first.
	JoinedEvents(ctx context.Context, userID string) ([]model.Event, error)

	// Close releases resources held by the store.
	Close() error
}

// validateEvent checks the fields every stored event needs.
func validateEvent(e model.Event) error {
	switch {
	case e.Title == "":
		return wrapInvalid(ErrInvalidEvent, "title is required")
	case e.Date.IsZero():
		return wrapInvalid(ErrInvalidEvent, "event date is required")
	case e.MaxAttendees < 0:
		return wrapInvalid(ErrInvalidEvent, "max attendees must not be negative")
	}
	return nil
}

func validateProfile(p model.Profile) error {
	if p.ID == "" {
		return wrapInvalid(ErrInvalidProfile, "id is required")
	}
	return nil
}
