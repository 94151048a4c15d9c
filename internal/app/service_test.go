package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/hangout/internal/adapters/classifier"
	"github.com/okian/hangout/internal/adapters/repository"
	service "github.com/okian/hangout/internal/app"
	"github.com/okian/hangout/internal/domain/filter"
	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/internal/domain/ranking"
	"github.com/okian/hangout/internal/domain/window"
	"github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type fakeClassifier struct {
	result classifier.Result
	err    error
	calls  int
	seen   []model.EventSummary
}

func (f *fakeClassifier) Classify(_ context.Context, _ string, c []model.EventSummary) (classifier.Result, error) {
	f.calls++
	f.seen = c
	return f.result, f.err
}

func seed(ctx context.Context, store repository.Store) {
	events := []model.Event{
		{ID: "e1", Title: "Morning Hike", Category: "Hiking", City: "Munich", Tags: []string{"Outdoor Lovers", "Wellness"}, Date: now.Add(3 * time.Hour), MaxAttendees: 1},
		{ID: "e2", Title: "Jazz Night", Category: "Music", City: "Berlin", Tags: []string{"Nightlife"}, Date: now.Add(30 * time.Hour)},
		{ID: "e3", Title: "Yoga in the Park", Category: "Health", City: "Berlin", Tags: []string{"Wellness", "Outdoor Lovers", "Chill Vibes"}, Date: now.Add(5 * 24 * time.Hour)},
		{ID: "old", Title: "Past Hike", Category: "Hiking", City: "Hamburg", Tags: []string{"Outdoor Lovers"}, Date: now.Add(-24 * time.Hour)},
	}
	for _, e := range events {
		if _, err := store.CreateEvent(ctx, e); err != nil {
			panic(err)
		}
	}
	profiles := []model.Profile{
		{ID: "me", FullName: "Me", Tags: []string{"Outdoor Lovers", "Wellness"}},
		{ID: "a", FullName: "Ann", Tags: []string{"Wellness"}},
		{ID: "b", FullName: "Ben", Tags: []string{"Nightlife"}},
		{ID: "c", FullName: "Cat"},
		{ID: "d", FullName: "Dan", Tags: []string{"Outdoor Lovers", "Wellness"}},
		{ID: "blank", FullName: "No Tags"},
	}
	for _, p := range profiles {
		if _, err := store.UpsertProfile(ctx, p); err != nil {
			panic(err)
		}
	}
}

func eventIDs(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestService(t *testing.T) {
	convey.Convey("Given a seeded service", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx)
		convey.Reset(func() { _ = store.Close() })
		seed(ctx, store)

		fake := &fakeClassifier{}
		svc, err := service.New(
			service.WithStore(store),
			service.WithClassifier(fake),
			service.WithClock(func() time.Time { return now }),
		)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When recommending events", func() {
			res, err := svc.RecommendEvents(ctx, "me")

			convey.Convey("Then upcoming events should be ranked by shared tags", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Status, convey.ShouldEqual, ranking.StatusOK)
				convey.So(eventIDs(res.Candidates()), convey.ShouldResemble, []string{"e1", "e3"})
				convey.So(res.Items[0].Score, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a user without interests asks for events", func() {
			blank, _ := svc.RecommendEvents(ctx, "blank")
			unknown, _ := svc.RecommendEvents(ctx, "nobody")

			convey.Convey("Then the status should ask for interests", func() {
				convey.So(blank.Status, convey.ShouldEqual, ranking.StatusNoProfileTags)
				convey.So(unknown.Status, convey.ShouldEqual, ranking.StatusNoProfileTags)
			})
		})

		convey.Convey("When recommending friends", func() {
			res, err := svc.RecommendFriends(ctx, "me")

			convey.Convey("Then best matches come first and tagged strangers beat untagged ones", func() {
				convey.So(err, convey.ShouldBeNil)
				ids := []string{}
				for _, p := range res.Candidates() {
					ids = append(ids, p.ID)
				}
				convey.So(ids, convey.ShouldResemble, []string{"d", "a", "b"})
				convey.So(res.Items[2].Score, convey.ShouldAlmostEqual, 0.1)
			})
		})

		convey.Convey("When browsing with a window and city", func() {
			res, err := svc.BrowseEvents(ctx, filter.Criteria{City: "Berlin", Window: window.Week})

			convey.Convey("Then only matching events are returned with every city listed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(eventIDs(res.Events), convey.ShouldResemble, []string{"e2", "e3"})
				convey.So(res.Cities, convey.ShouldResemble, []string{"Berlin", "Hamburg", "Munich"})
			})
		})

		convey.Convey("When browsing a category", func() {
			res, err := svc.BrowseEvents(ctx, filter.Criteria{Category: "Hiking", Window: window.Today})
			convey.So(err, convey.ShouldBeNil)
			convey.So(eventIDs(res.Events), convey.ShouldResemble, []string{"e1"})
			convey.So(res.Cities, convey.ShouldResemble, []string{"Hamburg", "Munich"})
		})

		convey.Convey("When the classifier proposes ids", func() {
			fake.result = classifier.Result{MatchedIDs: []string{"e3", "ghost", "e1"}, Reasoning: "Active and calm."}
			res, err := svc.Search(ctx, "something outdoorsy")

			convey.Convey("Then results follow the proposal and unknown ids are dropped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(eventIDs(res.Events), convey.ShouldResemble, []string{"e3", "e1"})
				convey.So(res.Reasoning, convey.ShouldEqual, "Active and calm.")
				convey.So(res.Source, convey.ShouldEqual, service.SourceClassifier)
				convey.So(res.Dropped, convey.ShouldEqual, 1)
				convey.So(len(fake.seen), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the classifier finds nothing", func() {
			fake.result = classifier.Result{Reasoning: "Nothing fits."}
			res, err := svc.Search(ctx, "jazz please")

			convey.Convey("Then the keyword fallback should answer", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(eventIDs(res.Events), convey.ShouldResemble, []string{"e2"})
				convey.So(res.Source, convey.ShouldEqual, service.SourceKeyword)
				convey.So(res.Reasoning, convey.ShouldEqual, service.KeywordMatchMessage)
			})

			convey.Convey("Then a fallback miss keeps the model reasoning", func() {
				res, err := svc.Search(ctx, "karaoke")
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Events, convey.ShouldBeEmpty)
				convey.So(res.Reasoning, convey.ShouldEqual, "Nothing fits.")
			})
		})

		convey.Convey("When the classifier fails", func() {
			fake.err = classifier.ErrUnavailable
			_, err := svc.Search(ctx, "hiking")

			convey.Convey("Then the failure should surface without a fallback", func() {
				convey.So(errors.Is(err, classifier.ErrUnavailable), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the query is blank", func() {
			_, err := svc.Search(ctx, "   ")
			convey.So(errors.Is(err, service.ErrEmptyQuery), convey.ShouldBeTrue)
			convey.So(fake.calls, convey.ShouldEqual, 0)
		})

		convey.Convey("When joining a one-seat event", func() {
			_, err := svc.Join(ctx, "e1", "me")
			convey.So(err, convey.ShouldBeNil)
			_, full := svc.Join(ctx, "e1", "a")

			convey.Convey("Then the second user is turned away and details reflect it", func() {
				convey.So(errors.Is(full, repository.ErrEventFull), convey.ShouldBeTrue)
				d, err := svc.GetEvent(ctx, "e1", "me")
				convey.So(err, convey.ShouldBeNil)
				convey.So(d.Participants, convey.ShouldEqual, 1)
				convey.So(d.IsFull, convey.ShouldBeTrue)
				convey.So(d.Joined, convey.ShouldBeTrue)

				joined, _ := svc.JoinedEvents(ctx, "me")
				convey.So(eventIDs(joined), convey.ShouldResemble, []string{"e1"})
			})

			convey.Convey("Then leaving frees the seat", func() {
				convey.So(svc.Leave(ctx, "e1", "me"), convey.ShouldBeNil)
				convey.So(errors.Is(svc.Leave(ctx, "e1", "me"), repository.ErrNotJoined), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When adding interests", func() {
			p, err := svc.AddInterests(ctx, "me", []string{"Wellness", "Foodies"})
			fresh, err2 := svc.AddInterests(ctx, "newbie", []string{"Gen Z", "Gen Z"})

			convey.Convey("Then tags should be merged without duplicates", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Tags, convey.ShouldResemble, []string{"Outdoor Lovers", "Wellness", "Foodies"})
				convey.So(err2, convey.ShouldBeNil)
				convey.So(fresh.Tags, convey.ShouldResemble, []string{"Gen Z"})
			})
		})

		convey.Convey("When updating a profile", func() {
			p, err := svc.UpdateProfile(ctx, model.Profile{ID: "me", FullName: "New Name", Tags: []string{"Creative"}})
			convey.So(err, convey.ShouldBeNil)
			got, _ := svc.Profile(ctx, "me")
			convey.So(got.FullName, convey.ShouldEqual, p.FullName)
			convey.So(got.Tags, convey.ShouldResemble, []string{"Creative"})
		})

		convey.Convey("When creating an event", func() {
			e, err := svc.CreateEvent(ctx, model.Event{ID: "ignored", Title: "Board Games", OrganizerID: "me", Date: now.Add(time.Hour)})

			convey.Convey("Then a fresh id and creation time are assigned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.ID, convey.ShouldNotEqual, "ignored")
				convey.So(e.CreatedAt.Equal(now), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When computing statistics", func() {
			s, err := svc.Statistics(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.Cities[0].Name, convey.ShouldEqual, "Berlin")
			convey.So(s.Cities[0].Count, convey.ShouldEqual, 2)

			st := svc.GetStats(ctx)
			convey.So(st["upcomingEvents"], convey.ShouldEqual, 3)
			convey.So(st["classifierEnabled"], convey.ShouldBeTrue)
		})
	})
}

func TestSearchEmptyCatalog(t *testing.T) {
	convey.Convey("Given a service with no upcoming events", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx)
		defer store.Close()
		fake := &fakeClassifier{}
		svc, _ := service.New(service.WithStore(store), service.WithClassifier(fake))

		res, err := svc.Search(ctx, "anything fun")

		convey.So(err, convey.ShouldBeNil)
		convey.So(res.Reasoning, convey.ShouldEqual, service.EmptyCatalogMessage)
		convey.So(res.Source, convey.ShouldEqual, service.SourceEmpty)
		convey.So(fake.calls, convey.ShouldEqual, 0)
	})
}

func TestNewRequiresStore(t *testing.T) {
	convey.Convey("Given no store", t, func() {
		_, err := service.New()
		convey.So(errors.Is(err, service.ErrNoStore), convey.ShouldBeTrue)
	})
}
