package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/hangout/internal/adapters/repository"
	"github.com/okian/hangout/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func sequentialIDs() repository.Option {
	n := 0
	return repository.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	})
}

func newMemory(ctx context.Context) (repository.Store, error) {
	return repository.NewMemoryStore(ctx, repository.WithClock(func() time.Time { return now }), sequentialIDs()), nil
}

func newSQLite(ctx context.Context) (repository.Store, error) {
	return repository.NewSQLiteStore(ctx, ":memory:", repository.WithClock(func() time.Time { return now }), sequentialIDs())
}

func TestMemoryStore(t *testing.T) { storeContract(t, "MemoryStore", newMemory) }

func TestSQLiteStore(t *testing.T) { storeContract(t, "SQLiteStore", newSQLite) }

func ids(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func storeContract(t *testing.T, name string, open func(context.Context) (repository.Store, error)) {
	Convey("Given an empty "+name, t, func() {
		ctx := context.Background()
		store, err := open(ctx)
		So(err, ShouldBeNil)
		Reset(func() { _ = store.Close() })

		past := model.Event{ID: "past", Title: "Old Meetup", Category: "Social", City: "Berlin", Date: now.Add(-time.Hour)}
		soon := model.Event{
			ID: "soon", Title: "Jazz Night", Category: "Music", City: "Berlin",
			Date: now.Add(2 * time.Hour), Tags: []string{"Nightlife", "Creative"},
			Coordinate: &model.Coordinate{Lat: 52.52, Lng: 13.405}, MaxAttendees: 2,
		}
		later := model.Event{ID: "later", Title: "Hike", Category: "Hiking", City: "Munich", Date: now.Add(48 * time.Hour)}
		for _, e := range []model.Event{later, past, soon} {
			_, err := store.CreateEvent(ctx, e)
			So(err, ShouldBeNil)
		}

		Convey("When listing upcoming events", func() {
			events, err := store.UpcomingEvents(ctx, now, repository.EventQuery{})

			Convey("Then past events should be excluded and the rest sorted by date", func() {
				So(err, ShouldBeNil)
				So(ids(events), ShouldResemble, []string{"soon", "later"})
				So(events[0].Tags, ShouldResemble, []string{"Nightlife", "Creative"})
				So(events[0].Coordinate, ShouldNotBeNil)
				So(events[0].Coordinate.Lat, ShouldAlmostEqual, 52.52)
				So(events[1].Coordinate, ShouldBeNil)
			})
		})

		Convey("When listing with category, city and limit", func() {
			byCity, _ := store.AllEvents(ctx, repository.EventQuery{City: "Berlin"})
			byCategory, _ := store.UpcomingEvents(ctx, now, repository.EventQuery{Category: "Hiking"})
			all, _ := store.UpcomingEvents(ctx, now, repository.EventQuery{Category: model.CategoryAll, Limit: 1})

			Convey("Then the query should narrow the results", func() {
				So(ids(byCity), ShouldResemble, []string{"past", "soon"})
				So(ids(byCategory), ShouldResemble, []string{"later"})
				So(ids(all), ShouldResemble, []string{"soon"})
			})
		})

		Convey("When creating an event without an id or title", func() {
			created, err := store.CreateEvent(ctx, model.Event{Title: "Fresh", Date: now.Add(time.Hour)})
			_, invalid := store.CreateEvent(ctx, model.Event{Date: now})

			Convey("Then an id and creation time should be assigned and invalid events rejected", func() {
				So(err, ShouldBeNil)
				So(created.ID, ShouldEqual, "gen-1")
				So(created.CreatedAt.Equal(now), ShouldBeTrue)
				So(errors.Is(invalid, repository.ErrInvalidEvent), ShouldBeTrue)
			})
		})

		Convey("When fetching a single event", func() {
			e, err := store.Event(ctx, "soon")
			_, missing := store.Event(ctx, "nope")

			Convey("Then it should round-trip and unknown ids should be not found", func() {
				So(err, ShouldBeNil)
				So(e.Title, ShouldEqual, "Jazz Night")
				So(e.Date.Equal(soon.Date), ShouldBeTrue)
				So(errors.Is(missing, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When managing profiles", func() {
			for _, p := range []model.Profile{
				{ID: "u2", FullName: "Bea", Tags: []string{"Foodies"}},
				{ID: "u1", FullName: "Ada", Tags: []string{"Gen Z", "Creative"}},
				{ID: "u3", FullName: "Cy"},
			} {
				_, err := store.UpsertProfile(ctx, p)
				So(err, ShouldBeNil)
			}

			Convey("Then profiles should be readable and others listed by id", func() {
				p, err := store.Profile(ctx, "u1")
				So(err, ShouldBeNil)
				So(p.Tags, ShouldResemble, []string{"Gen Z", "Creative"})

				others, err := store.OtherProfiles(ctx, "u1", 0)
				So(err, ShouldBeNil)
				So(len(others), ShouldEqual, 2)
				So(others[0].ID, ShouldEqual, "u2")
				So(others[0].Tags, ShouldResemble, []string{"Foodies"})

				limited, _ := store.OtherProfiles(ctx, "u1", 1)
				So(len(limited), ShouldEqual, 1)
			})

			Convey("Then tags can be replaced", func() {
				p, err := store.UpdateProfileTags(ctx, "u3", []string{"Wellness"})
				So(err, ShouldBeNil)
				So(p.FullName, ShouldEqual, "Cy")
				again, _ := store.Profile(ctx, "u3")
				So(again.Tags, ShouldResemble, []string{"Wellness"})

				_, err = store.UpdateProfileTags(ctx, "ghost", nil)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then upserting replaces the existing profile", func() {
				_, err := store.UpsertProfile(ctx, model.Profile{ID: "u1", FullName: "Ada L", Tags: []string{"Wellness"}})
				So(err, ShouldBeNil)
				p, _ := store.Profile(ctx, "u1")
				So(p.FullName, ShouldEqual, "Ada L")
				So(p.Tags, ShouldResemble, []string{"Wellness"})
			})

			Convey("Then a profile without id is rejected", func() {
				_, err := store.UpsertProfile(ctx, model.Profile{FullName: "Nobody"})
				So(errors.Is(err, repository.ErrInvalidProfile), ShouldBeTrue)
			})
		})

		Convey("When users join an event with capacity two", func() {
			p, err := store.Join(ctx, "soon", "u1", now)
			So(err, ShouldBeNil)
			So(p.UserID, ShouldEqual, "u1")
			_, err = store.Join(ctx, "soon", "u2", now)
			So(err, ShouldBeNil)

			Convey("Then a third join should fail with event full", func() {
				_, err := store.Join(ctx, "soon", "u3", now)
				So(errors.Is(err, repository.ErrEventFull), ShouldBeTrue)
			})

			Convey("Then a repeat join should fail with already joined", func() {
				_, err := store.Join(ctx, "soon", "u1", now)
				So(errors.Is(err, repository.ErrAlreadyJoined), ShouldBeTrue)
			})

			Convey("Then counts and membership should be reported", func() {
				n, err := store.ParticipantCount(ctx, "soon")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
				ok, _ := store.IsParticipant(ctx, "soon", "u2")
				So(ok, ShouldBeTrue)
				ok, _ = store.IsParticipant(ctx, "later", "u2")
				So(ok, ShouldBeFalse)
			})

			Convey("Then leaving frees a seat and leaving twice fails", func() {
				So(store.Leave(ctx, "soon", "u1"), ShouldBeNil)
				So(errors.Is(store.Leave(ctx, "soon", "u1"), repository.ErrNotJoined), ShouldBeTrue)
				_, err := store.Join(ctx, "soon", "u3", now)
				So(err, ShouldBeNil)
			})

			Convey("Then joined events should be listed by date", func() {
				_, err := store.Join(ctx, "later", "u1", now)
				So(err, ShouldBeNil)
				events, err := store.JoinedEvents(ctx, "u1")
				So(err, ShouldBeNil)
				So(ids(events), ShouldResemble, []string{"soon", "later"})
			})
		})

		Convey("When joining an unknown event", func() {
			_, err := store.Join(ctx, "ghost", "u1", now)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When an event has no capacity limit", func() {
			for i := 0; i < 5; i++ {
				_, err := store.Join(ctx, "later", fmt.Sprintf("u%d", i), now)
				So(err, ShouldBeNil)
			}
			n, _ := store.ParticipantCount(ctx, "later")
			So(n, ShouldEqual, 5)
		})
	})
}

func TestMemoryStoreIsolation(t *testing.T) {
	Convey("Given a memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx)
		defer store.Close()

		tags := []string{"Foodies"}
		_, err := store.UpsertProfile(ctx, model.Profile{ID: "u1", Tags: tags})
		So(err, ShouldBeNil)

		Convey("When the caller mutates its slice", func() {
			tags[0] = "Changed"
			p, _ := store.Profile(ctx, "u1")

			Convey("Then the stored profile should be unaffected", func() {
				So(p.Tags, ShouldResemble, []string{"Foodies"})
			})
		})
	})
}

func TestStoreMetricsUpdater(t *testing.T) {
	Convey("Given a memory store with a short metrics interval", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		store := repository.NewMemoryStore(ctx, repository.WithMetricsUpdateInterval(5*time.Millisecond))

		Convey("When the context is cancelled", func() {
			time.Sleep(20 * time.Millisecond)
			cancel()

			Convey("Then Close should return promptly and be idempotent", func() {
				So(store.Close(), ShouldBeNil)
				So(store.Close(), ShouldBeNil)
			})
		})
	})
}
