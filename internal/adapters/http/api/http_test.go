package api_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/hangout/internal/adapters/classifier"
	"github.com/okian/hangout/internal/adapters/http/api"
	"github.com/okian/hangout/internal/adapters/repository"
	service "github.com/okian/hangout/internal/app"
	"github.com/okian/hangout/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type stubClassifier struct {
	result classifier.Result
	err    error
}

func (s *stubClassifier) Classify(context.Context, string, []model.EventSummary) (classifier.Result, error) {
	return s.result, s.err
}

type fixture struct {
	srv   *httptest.Server
	store *repository.MemoryStore
	cls   *stubClassifier
}

func newFixture(opts ...api.Option) *fixture {
	ctx := context.Background()
	store := repository.NewMemoryStore(ctx, repository.WithClock(func() time.Time { return now }))
	cls := &stubClassifier{}
	svc, err := service.New(
		service.WithStore(store),
		service.WithClassifier(cls),
		service.WithClock(func() time.Time { return now }),
	)
	if err != nil {
		panic(err)
	}
	for _, e := range []model.Event{
		{ID: "e1", Title: "Morning Hike", Category: "Hiking", City: "Munich", Tags: []string{"Outdoor Lovers"},
			Date: now.Add(2 * time.Hour), MaxAttendees: 1, Coordinate: &model.Coordinate{Lat: 48.137, Lng: 11.575}},
		{ID: "e2", Title: "Jazz Night", Category: "Music", City: "Berlin", Tags: []string{"Nightlife"},
			Date: now.Add(50 * time.Hour), Coordinate: &model.Coordinate{Lat: 52.52, Lng: 13.405}},
	} {
		if _, err := store.CreateEvent(ctx, e); err != nil {
			panic(err)
		}
	}
	if _, err := store.UpsertProfile(ctx, model.Profile{ID: "u1", FullName: "Ada", Tags: []string{"Outdoor Lovers"}}); err != nil {
		panic(err)
	}
	if _, err := store.UpsertProfile(ctx, model.Profile{ID: "u2", FullName: "Bo", Tags: []string{"Outdoor Lovers", "Nightlife"}}); err != nil {
		panic(err)
	}

	s := api.NewServer(svc, opts...)
	return &fixture{srv: httptest.NewServer(s.Router(ctx)), store: store, cls: cls}
}

func (f *fixture) close() {
	f.srv.Close()
	_ = f.store.Close()
}

func (f *fixture) do(method, path, body string) (int, map[string]any) {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, f.srv.URL+path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func TestEventsAPI(t *testing.T) {
	Convey("Given the API server", t, func() {
		f := newFixture()
		Reset(f.close)

		Convey("When listing events near Munich", func() {
			code, body := f.do(http.MethodGet, "/events?max_km=50&lat=48.1&lng=11.6&window=week", "")

			Convey("Then only the nearby event and all cities should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				events := body["events"].([]any)
				So(len(events), ShouldEqual, 1)
				So(events[0].(map[string]any)["id"], ShouldEqual, "e1")
				So(body["cities"], ShouldResemble, []any{"Berlin", "Munich"})
			})
		})

		Convey("When listing with an unknown window", func() {
			code, body := f.do(http.MethodGet, "/events?window=decade", "")
			So(code, ShouldEqual, http.StatusBadRequest)
			So(body["code"], ShouldEqual, "validation_error")
		})

		Convey("When listing with a malformed number", func() {
			code, body := f.do(http.MethodGet, "/events?lat=north", "")
			So(code, ShouldEqual, http.StatusBadRequest)
			So(body["code"], ShouldEqual, "bad_request")
		})

		Convey("When the limit exceeds the maximum", func() {
			code, body := f.do(http.MethodGet, "/events?limit=1000", "")
			So(code, ShouldEqual, http.StatusBadRequest)
			So(body["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When creating an event", func() {
			code, body := f.do(http.MethodPost, "/events", `{"organizer_id":"u1","title":"Board Games","category":"Social","event_date":"2025-06-12T18:00:00Z","tags":["Chill Vibes","Chill Vibes"],"max_attendees":6}`)

			Convey("Then it should be stored with a generated id", func() {
				So(code, ShouldEqual, http.StatusCreated)
				So(body["id"], ShouldNotBeEmpty)
				So(body["tags"], ShouldResemble, []any{"Chill Vibes"})

				code, got := f.do(http.MethodGet, fmt.Sprintf("/events/%s", body["id"]), "")
				So(code, ShouldEqual, http.StatusOK)
				So(got["event"].(map[string]any)["title"], ShouldEqual, "Board Games")
			})
		})

		Convey("When creating an invalid event", func() {
			code, body := f.do(http.MethodPost, "/events", `{"title":"","category":"Knitting"}`)

			Convey("Then every failing field should be reported", func() {
				So(code, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "validation_error")
				So(len(body["fields"].([]any)), ShouldBeGreaterThanOrEqualTo, 3)
			})
		})

		Convey("When the body is not JSON", func() {
			code, _ := f.do(http.MethodPost, "/events", `{nope`)
			So(code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching an unknown event", func() {
			code, body := f.do(http.MethodGet, "/events/ghost", "")
			So(code, ShouldEqual, http.StatusNotFound)
			So(body["code"], ShouldEqual, "not_found")
		})

		Convey("When two users join a one-seat event", func() {
			code, _ := f.do(http.MethodPost, "/events/e1/participants", `{"user_id":"u1"}`)
			So(code, ShouldEqual, http.StatusCreated)
			code, body := f.do(http.MethodPost, "/events/e1/participants", `{"user_id":"u2"}`)

			Convey("Then the second join should conflict", func() {
				So(code, ShouldEqual, http.StatusConflict)
				So(body["code"], ShouldEqual, "event_full")

				_, details := f.do(http.MethodGet, "/events/e1?user_id=u1", "")
				So(details["is_full"], ShouldBeTrue)
				So(details["joined"], ShouldBeTrue)
			})

			Convey("Then leaving should succeed once", func() {
				code, _ := f.do(http.MethodDelete, "/events/e1/participants/u1", "")
				So(code, ShouldEqual, http.StatusNoContent)
				code, body := f.do(http.MethodDelete, "/events/e1/participants/u1", "")
				So(code, ShouldEqual, http.StatusConflict)
				So(body["code"], ShouldEqual, "not_joined")
			})
		})
	})
}

func TestUsersAPI(t *testing.T) {
	Convey("Given the API server", t, func() {
		f := newFixture()
		Reset(f.close)

		Convey("When requesting event recommendations", func() {
			code, body := f.do(http.MethodGet, "/users/u1/recommendations/events", "")

			Convey("Then the overlapping event should be returned", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(body["status"], ShouldEqual, "ok")
				items := body["items"].([]any)
				So(len(items), ShouldEqual, 1)
				So(items[0].(map[string]any)["candidate"].(map[string]any)["id"], ShouldEqual, "e1")
			})
		})

		Convey("When a user without a profile asks for events", func() {
			code, body := f.do(http.MethodGet, "/users/nobody/recommendations/events", "")
			So(code, ShouldEqual, http.StatusOK)
			So(body["status"], ShouldEqual, "no_profile_tags")
			So(body["items"], ShouldBeEmpty)
		})

		Convey("When requesting friend recommendations", func() {
			code, body := f.do(http.MethodGet, "/users/u1/recommendations/friends", "")
			So(code, ShouldEqual, http.StatusOK)
			items := body["items"].([]any)
			So(items[0].(map[string]any)["shared_tags"], ShouldResemble, []any{"Outdoor Lovers"})
		})

		Convey("When adding interests", func() {
			code, body := f.do(http.MethodPost, "/users/u1/interests", `{"tags":["Foodies","Outdoor Lovers"]}`)
			So(code, ShouldEqual, http.StatusOK)
			So(body["tags"], ShouldResemble, []any{"Outdoor Lovers", "Foodies"})
		})

		Convey("When adding no interests", func() {
			code, _ := f.do(http.MethodPost, "/users/u1/interests", `{"tags":[]}`)
			So(code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When replacing a profile", func() {
			code, _ := f.do(http.MethodPut, "/users/u3/profile", `{"full_name":"Cy","email":"cy@example.com","tags":["Gen Z"]}`)
			So(code, ShouldEqual, http.StatusOK)
			_, body := f.do(http.MethodGet, "/users/u3/profile", "")
			So(body["full_name"], ShouldEqual, "Cy")

			code, _ = f.do(http.MethodPut, "/users/u3/profile", `{"email":"not-an-email"}`)
			So(code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestSearchAPI(t *testing.T) {
	Convey("Given the API server", t, func() {
		f := newFixture(api.WithSearchRateLimit(3, time.Minute))
		Reset(f.close)

		Convey("When the classifier answers", func() {
			f.cls.result = classifier.Result{MatchedIDs: []string{"e2"}, Reasoning: "Music at night."}
			code, body := f.do(http.MethodPost, "/search", `{"query":"something with music"}`)
			So(code, ShouldEqual, http.StatusOK)
			So(body["source"], ShouldEqual, "classifier")
			So(body["reasoning"], ShouldEqual, "Music at night.")
		})

		Convey("When the classifier is down", func() {
			f.cls.err = fmt.Errorf("wrapped: %w", classifier.ErrUnavailable)
			code, body := f.do(http.MethodPost, "/search", `{"query":"hike"}`)
			So(code, ShouldEqual, http.StatusServiceUnavailable)
			So(body["code"], ShouldEqual, "classifier_unavailable")
		})

		Convey("When the classifier reply is malformed", func() {
			f.cls.err = classifier.ErrMalformed
			code, _ := f.do(http.MethodPost, "/search", `{"query":"hike"}`)
			So(code, ShouldEqual, http.StatusBadGateway)
		})

		Convey("When the query is missing", func() {
			code, _ := f.do(http.MethodPost, "/search", `{}`)
			So(code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a client exceeds the rate limit", func() {
			var last int
			for i := 0; i < 4; i++ {
				last, _ = f.do(http.MethodPost, "/search", `{"query":"jazz"}`)
			}
			So(last, ShouldEqual, http.StatusTooManyRequests)
		})
	})
}

func TestOperationalAPI(t *testing.T) {
	Convey("Given the API server", t, func() {
		f := newFixture()
		Reset(f.close)

		Convey("When checking health", func() {
			code, body := f.do(http.MethodGet, "/healthz", "")
			So(code, ShouldEqual, http.StatusOK)
			So(body["status"], ShouldEqual, "ok")
		})

		Convey("When a request carries an id", func() {
			req, _ := http.NewRequest(http.MethodGet, f.srv.URL+"/healthz", http.NoBody)
			req.Header.Set("X-Request-Id", "req-42")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			_ = resp.Body.Close()
			So(resp.Header.Get("X-Request-Id"), ShouldEqual, "req-42")
		})

		Convey("When scraping metrics", func() {
			f.do(http.MethodGet, "/healthz", "")
			resp, err := http.Get(f.srv.URL + "/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			raw, _ := io.ReadAll(resp.Body)
			So(string(raw), ShouldContainSubstring, "hangout_discovery_http_requests_total")
		})

		Convey("When reading stats and statistics", func() {
			code, st := f.do(http.MethodGet, "/stats", "")
			So(code, ShouldEqual, http.StatusOK)
			So(st["upcomingEvents"], ShouldEqual, float64(2))

			code, dist := f.do(http.MethodGet, "/statistics", "")
			So(code, ShouldEqual, http.StatusOK)
			So(len(dist["categories"].([]any)), ShouldEqual, 2)
		})
	})
}

func TestOpError(t *testing.T) {
	Convey("Given API operation errors", t, func() {
		cause := errors.New("boom")

		Convey("Then kind and cause should both match", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("Then NewKind and Wrap should format", func() {
			So(api.NewKind("api.op", api.ErrLimitExceeded).Error(), ShouldEqual, "api.op: limit exceeded")
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
