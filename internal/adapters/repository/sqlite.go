package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/pkg/metrics"
)

//go:embed schema.sql
var schema string

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore is a Store backed by a SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	opts    options
	updater gaugeUpdater
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and applies the
// schema. ":memory:" gives a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	s := &SQLiteStore{db: db, opts: applyOptions(opts)}
	s.updater.start(ctx, s.opts.metricsUpdateInterval, s.updateMetrics)
	return s, nil
}

// Close stops the metrics updater and closes the database.
func (s *SQLiteStore) Close() error {
	s.updater.stop()
	return s.db.Close()
}

func (s *SQLiteStore) updateMetrics(ctx context.Context) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE event_date >= ?", toUnix(s.opts.now()),
	).Scan(&n)
	if err != nil {
		return
	}
	metrics.UpdateUpcomingEvents(n)
}

func toUnix(t time.Time) int64 { return t.UnixNano() }

func fromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }

const eventColumns = `id, organizer_id, title, description, category, location, city,
	latitude, longitude, image_url, event_date, max_attendees, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(r rowScanner) (model.Event, error) {
	var (
		e             model.Event
		lat, lng      sql.NullFloat64
		date, created int64
	)
	err := r.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Category, &e.Location, &e.City,
		&lat, &lng, &e.ImageURL, &date, &e.MaxAttendees, &created)
	if err != nil {
		return model.Event{}, err
	}
	if lat.Valid && lng.Valid {
		e.Coordinate = &model.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	e.Date = fromUnix(date)
	e.CreatedAt = fromUnix(created)
	return e, nil
}

func (s *SQLiteStore) queryEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	_ = rows.Close()

	if err := s.attachEventTags(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// attachEventTags loads the tags of events in one query.
func (s *SQLiteStore) attachEventTags(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	index := make(map[string]int, len(events))
	args := make([]any, len(events))
	for i, e := range events {
		index[e.ID] = i
		args[i] = e.ID
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(events)), ",")
	rows, err := s.db.QueryContext(ctx,
		"SELECT event_id, tag FROM event_tags WHERE event_id IN ("+placeholders+") ORDER BY event_id, position",
		args...)
	if err != nil {
		return fmt.Errorf("query event tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return fmt.Errorf("scan event tag: %w", err)
		}
		i := index[id]
		events[i].Tags = append(events[i].Tags, tag)
	}
	return rows.Err()
}

func eventFilter(q EventQuery, where []string, args []any) (string, []any) {
	if q.Category != "" && q.Category != model.CategoryAll {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.City != "" {
		where = append(where, "city = ?")
		args = append(args, q.City)
	}
	query := "SELECT " + eventColumns + " FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY event_date ASC, id ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return query, args
}

// UpcomingEvents implements Store.
func (s *SQLiteStore) UpcomingEvents(ctx context.Context, now time.Time, q EventQuery) ([]model.Event, error) {
	defer observe("upcoming_events", time.Now())
	query, args := eventFilter(q, []string{"event_date >= ?"}, []any{toUnix(now)})
	return s.queryEvents(ctx, query, args...)
}

// AllEvents implements Store.
func (s *SQLiteStore) AllEvents(ctx context.Context, q EventQuery) ([]model.Event, error) {
	defer observe("all_events", time.Now())
	query, args := eventFilter(q, nil, nil)
	return s.queryEvents(ctx, query, args...)
}

// Event implements Store.
func (s *SQLiteStore) Event(ctx context.Context, id string) (model.Event, error) {
	events, err := s.queryEvents(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	if err != nil {
		return model.Event{}, err
	}
	if len(events) == 0 {
		return model.Event{}, notFound("event", id)
	}
	return events[0], nil
}

// CreateEvent implements Store.
func (s *SQLiteStore) CreateEvent(ctx context.Context, e model.Event) (model.Event, error) {
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

	var lat, lng sql.NullFloat64
	if e.Coordinate != nil {
		lat = sql.NullFloat64{Float64: e.Coordinate.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: e.Coordinate.Lng, Valid: true}
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			e.ID, e.OrganizerID, e.Title, e.Description, e.Category, e.Location, e.City,
			lat, lng, e.ImageURL, toUnix(e.Date), e.MaxAttendees, toUnix(e.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		return insertTags(ctx, tx, "event_tags", "event_id", e.ID, e.Tags)
	})
	if err != nil {
		return model.Event{}, err
	}
	return e, nil
}

func insertTags(ctx context.Context, q querier, table, owner, id string, tags []string) error {
	for i, tag := range tags {
		_, err := q.ExecContext(ctx,
			"INSERT INTO "+table+" ("+owner+", position, tag) VALUES (?, ?, ?)", id, i, tag)
		if err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) profileTags(ctx context.Context, q querier, id string) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT tag FROM profile_tags WHERE profile_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("query profile tags: %w", err)
	}
	defer rows.Close()
	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan profile tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *SQLiteStore) profile(ctx context.Context, q querier, userID string) (model.Profile, error) {
	var p model.Profile
	err := q.QueryRowContext(ctx,
		"SELECT id, email, full_name, avatar_url FROM profiles WHERE id = ?", userID,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, notFound("profile", userID)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if p.Tags, err = s.profileTags(ctx, q, userID); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// Profile implements Store.
func (s *SQLiteStore) Profile(ctx context.Context, userID string) (model.Profile, error) {
	return s.profile(ctx, s.db, userID)
}

// UpsertProfile implements Store.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	if err := validateProfile(p); err != nil {
		return model.Profile{}, err
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO profiles (id, email, full_name, avatar_url) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET email = excluded.email, full_name = excluded.full_name, avatar_url = excluded.avatar_url`,
			p.ID, p.Email, p.FullName, p.AvatarURL)
		if err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}
		return replaceProfileTags(ctx, tx, p.ID, p.Tags)
	})
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

func replaceProfileTags(ctx context.Context, tx *sql.Tx, id string, tags []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM profile_tags WHERE profile_id = ?", id); err != nil {
		return fmt.Errorf("clear profile tags: %w", err)
	}
	return insertTags(ctx, tx, "profile_tags", "profile_id", id, tags)
}

// OtherProfiles implements Store.
func (s *SQLiteStore) OtherProfiles(ctx context.Context, excludeUserID string, limit int) ([]model.Profile, error) {
	defer observe("other_profiles", time.Now())
	query := "SELECT id, email, full_name, avatar_url FROM profiles WHERE id != ? ORDER BY id"
	args := []any{excludeUserID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	var out []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.AvatarURL); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	_ = rows.Close()

	for i := range out {
		if out[i].Tags, err = s.profileTags(ctx, s.db, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateProfileTags implements Store.
func (s *SQLiteStore) UpdateProfileTags(ctx context.Context, userID string, tags []string) (model.Profile, error) {
	var p model.Profile
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if p, err = s.profile(ctx, tx, userID); err != nil {
			return err
		}
		p.Tags = tags
		return replaceProfileTags(ctx, tx, userID, tags)
	})
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// Join implements Store.
func (s *SQLiteStore) Join(ctx context.Context, eventID, userID string, at time.Time) (model.Participant, error) {
	defer observe("join", time.Now())
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var capacity int
		err := tx.QueryRowContext(ctx, "SELECT max_attendees FROM events WHERE id = ?", eventID).Scan(&capacity)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("event", eventID)
		}
		if err != nil {
			return fmt.Errorf("get event capacity: %w", err)
		}

		var joined, count int
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*), COALESCE(SUM(user_id = ?), 0) FROM event_participants WHERE event_id = ?",
			userID, eventID).Scan(&count, &joined)
		if err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		if joined > 0 {
			return ErrAlreadyJoined
		}
		if capacity > 0 && count >= capacity {
			return ErrEventFull
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO event_participants (event_id, user_id, joined_at) VALUES (?, ?, ?)",
			eventID, userID, toUnix(at))
		if err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Participant{}, err
	}
	return model.Participant{EventID: eventID, UserID: userID, JoinedAt: at}, nil
}

// Leave implements Store.
func (s *SQLiteStore) Leave(ctx context.Context, eventID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM event_participants WHERE event_id = ? AND user_id = ?", eventID, userID)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotJoined
	}
	return nil
}

// ParticipantCount implements Store.
func (s *SQLiteStore) ParticipantCount(ctx context.Context, eventID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_participants WHERE event_id = ?", eventID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

// IsParticipant implements Store.
func (s *SQLiteStore) IsParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_participants WHERE event_id = ? AND user_id = ?", eventID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return n > 0, nil
}

// JoinedEvents implements Store.
func (s *SQLiteStore) JoinedEvents(ctx context.Context, userID string) ([]model.Event, error) {
	return s.queryEvents(ctx,
		"SELECT "+eventColumns+` FROM events
		WHERE id IN (SELECT event_id FROM event_participants WHERE user_id = ?)
		ORDER BY event_date ASC, id ASC`, userID)
}
