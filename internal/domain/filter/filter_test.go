package filter_test

import (
	"testing"
	"time"

	"github.com/okian/hangout/internal/domain/filter"
	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/internal/domain/window"
	. "github.com/smartystreets/goconvey/convey"
)

func ids(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	Convey("Given a catalog of events", t, func() {
		now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		berlin := model.Coordinate{Lat: 52.52, Lng: 13.405}
		potsdam := model.Coordinate{Lat: 52.3906, Lng: 13.0645}
		hamburg := model.Coordinate{Lat: 53.5511, Lng: 9.9937}

		events := []model.Event{
			{ID: "hike", Title: "Morning Hiking Trip", Description: "Trail walk", Location: "Grunewald", Category: "Hiking", City: "Berlin", Coordinate: &berlin, Date: now.Add(2 * time.Hour)},
			{ID: "jazz", Title: "Jazz Night", Description: "Live music", Location: "Blue Note Club", Category: "Music", City: "Hamburg", Coordinate: &hamburg, Date: now.AddDate(0, 0, 3)},
			{ID: "code", Title: "Go Meetup", Description: "Talks about hiking the stack", Location: "Factory", Category: "Technology", City: "Berlin", Date: now.AddDate(0, 0, 20)},
			{ID: "lake", Title: "Lake Picnic", Description: "Bring food", Location: "Sanssouci", Category: "Social", City: "Potsdam", Coordinate: &potsdam, Date: now.AddDate(0, 2, 0)},
			{ID: "past", Title: "Yesterday's Brunch", Category: "Dining", City: "Berlin", Date: now.Add(-24 * time.Hour)},
		}

		Convey("When no criteria are set", func() {
			out := filter.Filter(events, filter.Criteria{}, now)

			Convey("Then every event should pass in input order", func() {
				So(ids(out), ShouldResemble, []string{"hike", "jazz", "code", "lake", "past"})
			})
		})

		Convey("When filtering by category", func() {
			So(ids(filter.Filter(events, filter.Criteria{Category: "Music"}, now)), ShouldResemble, []string{"jazz"})

			Convey("And the All sentinel should disable it", func() {
				So(filter.Filter(events, filter.Criteria{Category: model.CategoryAll}, now), ShouldHaveLength, 5)
			})

			Convey("And matching should be case-sensitive", func() {
				So(filter.Filter(events, filter.Criteria{Category: "music"}, now), ShouldBeEmpty)
			})
		})

		Convey("When filtering by city", func() {
			So(ids(filter.Filter(events, filter.Criteria{City: "Berlin"}, now)), ShouldResemble, []string{"hike", "code", "past"})
		})

		Convey("When filtering by free text", func() {
			Convey("Then title, description and location should all be searched", func() {
				So(ids(filter.Filter(events, filter.Criteria{FreeText: "HIKING"}, now)), ShouldResemble, []string{"hike", "code"})
				So(ids(filter.Filter(events, filter.Criteria{FreeText: "blue note"}, now)), ShouldResemble, []string{"jazz"})
			})

			Convey("And blank text should be ignored", func() {
				So(filter.Filter(events, filter.Criteria{FreeText: "   "}, now), ShouldHaveLength, 5)
			})
		})

		Convey("When filtering by time window", func() {
			So(ids(filter.Filter(events, filter.Criteria{Window: window.Today}, now)), ShouldResemble, []string{"hike"})
			So(ids(filter.Filter(events, filter.Criteria{Window: window.Week}, now)), ShouldResemble, []string{"hike", "jazz"})
			So(ids(filter.Filter(events, filter.Criteria{Window: window.Month}, now)), ShouldResemble, []string{"hike", "jazz", "code"})
		})

		Convey("When filtering by distance from Berlin", func() {
			c := filter.Criteria{MaxDistanceKm: 50, Origin: &berlin}
			out := filter.Filter(events, c, now)

			Convey("Then only nearby geolocated events should remain", func() {
				So(ids(out), ShouldResemble, []string{"hike", "lake"})
			})
		})

		Convey("When a distance is given without an origin", func() {
			out := filter.Filter(events, filter.Criteria{MaxDistanceKm: 5}, now)

			Convey("Then the distance predicate should be skipped", func() {
				So(out, ShouldHaveLength, 5)
			})
		})

		Convey("When an origin is given with a zero distance", func() {
			So(filter.Filter(events, filter.Criteria{Origin: &berlin}, now), ShouldHaveLength, 5)
		})

		Convey("When combining predicates", func() {
			c := filter.Criteria{City: "Berlin", Window: window.Month, FreeText: "hiking", MaxDistanceKm: 10, Origin: &berlin}

			Convey("Then all of them must hold", func() {
				So(ids(filter.Filter(events, c, now)), ShouldResemble, []string{"hike"})
			})

			Convey("And filtering twice should change nothing", func() {
				once := filter.Filter(events, c, now)
				So(filter.Filter(once, c, now), ShouldResemble, once)
			})
		})

		Convey("When the TODAY window is applied to the boundary scenario", func() {
			evts := []model.Event{
				{ID: "early", Date: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
				{ID: "late", Date: time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)},
				{ID: "next", Date: time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)},
			}

			Convey("Then only the later event of today should stay", func() {
				So(ids(filter.Filter(evts, filter.Criteria{Window: window.Today}, now)), ShouldResemble, []string{"late"})
			})
		})

		Convey("When the input is empty", func() {
			So(filter.Filter(nil, filter.Criteria{City: "Berlin"}, now), ShouldBeEmpty)
		})
	})
}

func TestCities(t *testing.T) {
	Convey("Given events in several cities", t, func() {
		events := []model.Event{{City: "Paris"}, {City: ""}, {City: "Berlin"}, {City: "Paris"}}

		Convey("When collecting cities", func() {
			So(filter.Cities(events), ShouldResemble, []string{"Berlin", "Paris"})
		})

		Convey("When there are none", func() {
			So(filter.Cities(nil), ShouldBeEmpty)
		})
	})
}
