package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	service "github.com/okian/hangout/internal/app"
	"github.com/okian/hangout/internal/domain/filter"
	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/internal/domain/window"
	"github.com/okian/hangout/internal/validation"
)

// EventDependencies defines the event listing and participation operations.
type EventDependencies interface {
	BrowseEvents(ctx context.Context, c filter.Criteria) (service.BrowseResult, error)
	GetEvent(ctx context.Context, eventID, viewerID string) (service.EventDetails, error)
	CreateEvent(ctx context.Context, e model.Event) (model.Event, error)
	Join(ctx context.Context, eventID, userID string) (model.Participant, error)
	Leave(ctx context.Context, eventID, userID string) error
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps     EventDependencies
	maxLimit int
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies, maxLimit int) *EventsHandler {
	if maxLimit <= 0 {
		maxLimit = defaultMaxEventsLimit
	}
	return &EventsHandler{deps: deps, maxLimit: maxLimit}
}

// listEventsQuery mirrors the query string of GET /events.
type listEventsQuery struct {
	Category string   `json:"category" validate:"omitempty,category"`
	City     string   `json:"city" validate:"max=100"`
	Text     string   `json:"q" validate:"max=200"`
	Window   string   `json:"window" validate:"omitempty,window"`
	MaxKm    float64  `json:"max_km" validate:"gte=0"`
	Lat      *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng      *float64 `json:"lng" validate:"omitempty,longitude"`
	Limit    int      `json:"limit" validate:"gte=0"`
}

func parseFloat(q url.Values, key string, dst **float64) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*dst = &f
	return nil
}

func parseListQuery(r *http.Request) (listEventsQuery, error) {
	q := r.URL.Query()
	out := listEventsQuery{
		Category: q.Get("category"),
		City:     q.Get("city"),
		Text:     q.Get("q"),
		Window:   q.Get("window"),
	}
	if v := q.Get("max_km"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return out, err
		}
		out.MaxKm = f
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return out, err
		}
		out.Limit = n
	}
	if err := parseFloat(q, "lat", &out.Lat); err != nil {
		return out, err
	}
	if err := parseFloat(q, "lng", &out.Lng); err != nil {
		return out, err
	}
	return out, nil
}

func (q listEventsQuery) criteria() filter.Criteria {
	w, _ := window.Parse(q.Window)
	c := filter.Criteria{
		Category:      q.Category,
		City:          q.City,
		FreeText:      q.Text,
		Window:        w,
		MaxDistanceKm: q.MaxKm,
	}
	if q.Lat != nil && q.Lng != nil {
		c.Origin = &model.Coordinate{Lat: *q.Lat, Lng: *q.Lng}
	}
	return c
}

// HandleListEvents handles GET /events.
func (h *EventsHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_events"
	q, err := parseListQuery(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validation.Struct(q); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if q.Limit > h.maxLimit {
		writeFailure(w, NewKind(op, ErrLimitExceeded))
		return
	}

	res, err := h.deps.BrowseEvents(r.Context(), q.criteria())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if q.Limit > 0 && len(res.Events) > q.Limit {
		res.Events = res.Events[:q.Limit]
	}
	if res.Events == nil {
		res.Events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, res)
}

// createEventRequest mirrors the body of POST /events.
type createEventRequest struct {
	OrganizerID  string    `json:"organizer_id" validate:"required,max=100"`
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description" validate:"max=5000"`
	Category     string    `json:"category" validate:"required,category"`
	Location     string    `json:"location" validate:"max=300"`
	City         string    `json:"city" validate:"max=100"`
	Lat          *float64  `json:"lat" validate:"omitempty,latitude"`
	Lng          *float64  `json:"lng" validate:"omitempty,longitude"`
	ImageURL     string    `json:"image_url" validate:"omitempty,url"`
	Tags         []string  `json:"tags" validate:"max=20,dive,required,max=50"`
	Date         time.Time `json:"event_date" validate:"required"`
	MaxAttendees int       `json:"max_attendees" validate:"gte=0"`
}

func (c createEventRequest) event() model.Event {
	e := model.Event{
		OrganizerID:  c.OrganizerID,
		Title:        c.Title,
		Description:  c.Description,
		Category:     c.Category,
		Location:     c.Location,
		City:         c.City,
		ImageURL:     c.ImageURL,
		Tags:         model.MergeTags(nil, c.Tags),
		Date:         c.Date,
		MaxAttendees: c.MaxAttendees,
	}
	if c.Lat != nil && c.Lng != nil {
		e.Coordinate = &model.Coordinate{Lat: *c.Lat, Lng: *c.Lng}
	}
	return e
}

// HandleCreateEvent handles POST /events.
func (h *EventsHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_event"
	var req createEventRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	e, err := h.deps.CreateEvent(r.Context(), req.event())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// HandleGetEvent handles GET /events/{id}?user_id=.
func (h *EventsHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_event"
	d, err := h.deps.GetEvent(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("user_id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type joinRequest struct {
	UserID string `json:"user_id" validate:"required,max=100"`
}

// HandleJoin handles POST /events/{id}/participants.
func (h *EventsHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	const op = "api.join_event"
	var req joinRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	p, err := h.deps.Join(r.Context(), chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleLeave handles DELETE /events/{id}/participants/{user_id}.
func (h *EventsHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	const op = "api.leave_event"
	if err := h.deps.Leave(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "user_id")); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
