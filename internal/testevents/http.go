package testevents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/pkg/logger"
)

// HTTPClient wraps http.Client with a base URL and JSON helpers.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request with an optional JSON body and decodes a JSON reply
// into out when out is non-nil. It returns the status code.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if out != nil && resp.StatusCode < http.StatusBadRequest && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

type eventRequest struct {
	OrganizerID  string    `json:"organizer_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Location     string    `json:"location"`
	City         string    `json:"city"`
	Lat          *float64  `json:"lat,omitempty"`
	Lng          *float64  `json:"lng,omitempty"`
	Tags         []string  `json:"tags"`
	Date         time.Time `json:"event_date"`
	MaxAttendees int       `json:"max_attendees"`
}

func newEventRequest(e model.Event) eventRequest {
	r := eventRequest{
		OrganizerID:  e.OrganizerID,
		Title:        e.Title,
		Description:  e.Description,
		Category:     e.Category,
		Location:     e.Location,
		City:         e.City,
		Tags:         e.Tags,
		Date:         e.Date,
		MaxAttendees: e.MaxAttendees,
	}
	if e.Coordinate != nil {
		lat, lng := e.Coordinate.Lat, e.Coordinate.Lng
		r.Lat, r.Lng = &lat, &lng
	}
	return r
}

// fanOut runs fn for every item on workers goroutines.
func fanOut[T any](ctx context.Context, workers int, items []T, fn func(T)) {
	if workers <= 0 {
		workers = 1
	}
	ch := make(chan T, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range ch {
				fn(item)
			}
		}()
	}
	go func() {
		defer close(ch)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case ch <- item:
			}
		}
	}()
	wg.Wait()
}

// submitProfiles creates profiles concurrently via PUT /users/{id}/profile.
func submitProfiles(ctx context.Context, cfg *Config, c *HTTPClient, profiles []model.Profile, stats *Stats) {
	fanOut(ctx, cfg.Workers, profiles, func(p model.Profile) {
		body := map[string]any{"full_name": p.FullName, "email": p.Email, "tags": p.Tags}
		code, err := c.do(ctx, http.MethodPut, "/users/"+p.ID+"/profile", body, nil)
		if err != nil || code != http.StatusOK {
			stats.ProfilesFailed.Add(1)
			logFailure(ctx, cfg, "profile", code, err)
			return
		}
		stats.ProfilesCreated.Add(1)
	})
}

// submitEvents creates events concurrently and returns the stored ids.
func submitEvents(ctx context.Context, cfg *Config, c *HTTPClient, events []model.Event, stats *Stats) []string {
	var (
		mu  sync.Mutex
		ids = make([]string, 0, len(events))
	)
	fanOut(ctx, cfg.Workers, events, func(e model.Event) {
		var stored model.Event
		code, err := c.do(ctx, http.MethodPost, "/events", newEventRequest(e), &stored)
		if err != nil || code != http.StatusCreated {
			stats.EventsFailed.Add(1)
			logFailure(ctx, cfg, "event", code, err)
			return
		}
		stats.EventsCreated.Add(1)
		mu.Lock()
		ids = append(ids, stored.ID)
		mu.Unlock()
	})
	return ids
}

type joinAttempt struct {
	eventID string
	userID  string
}

// submitJoins sends join requests concurrently. 409 answers are expected
// for full or repeated joins.
func submitJoins(ctx context.Context, cfg *Config, c *HTTPClient, attempts []joinAttempt, stats *Stats) {
	fanOut(ctx, cfg.Workers, attempts, func(a joinAttempt) {
		code, err := c.do(ctx, http.MethodPost, "/events/"+a.eventID+"/participants", map[string]string{"user_id": a.userID}, nil)
		switch {
		case err == nil && code == http.StatusCreated:
			stats.Joins.Add(1)
		case err == nil && code == http.StatusConflict:
			stats.JoinsRejected.Add(1)
		default:
			stats.JoinsFailed.Add(1)
			logFailure(ctx, cfg, "join", code, err)
		}
	})
}

func logFailure(ctx context.Context, cfg *Config, what string, code int, err error) {
	if !cfg.Verbose {
		return
	}
	fields := []logger.Field{logger.String("kind", what), logger.Int("status", code)}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	logger.Get().Warn(ctx, "request failed", fields...)
}
