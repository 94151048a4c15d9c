// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/okian/hangout/internal/adapters/classifier"
	"github.com/okian/hangout/internal/adapters/repository"
	service "github.com/okian/hangout/internal/app"
	"github.com/okian/hangout/internal/validation"
	"github.com/okian/hangout/pkg/logger"
)

const (
	maxBodyBytes            = 1 << 20
	defaultSearchRateLimit  = 30
	defaultSearchRateWindow = time.Minute
	defaultMaxEventsLimit   = 100
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EventDependencies
	UserDependencies
	SearchDependencies
	StatsProvider
}

var _ Dependencies = (*service.Service)(nil)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	eventsHandler *EventsHandler
	usersHandler  *UsersHandler
	searchHandler *SearchHandler

	searchRateLimit  int
	searchRateWindow time.Duration
	maxEventsLimit   int
	logger           logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithSearchRateLimit allows n searches per client within window.
func WithSearchRateLimit(n int, window time.Duration) Option {
	return func(s *Server) {
		if n > 0 {
			s.searchRateLimit = n
		}
		if window > 0 {
			s.searchRateWindow = window
		}
	}
}

// WithMaxEventsLimit caps GET /events?limit.
func WithMaxEventsLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxEventsLimit = n
		}
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		searchRateLimit:  defaultSearchRateLimit,
		searchRateWindow: defaultSearchRateWindow,
		maxEventsLimit:   defaultMaxEventsLimit,
		logger:           logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.eventsHandler = NewEventsHandler(deps, s.maxEventsLimit)
	s.usersHandler = NewUsersHandler(deps)
	s.searchHandler = NewSearchHandler(deps)
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/statistics", MetricsMiddleware(s.statsHandler.HandleStatistics, "statistics"))

	r.Route("/events", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.eventsHandler.HandleListEvents, "events_list"))
		r.Post("/", MetricsMiddleware(s.eventsHandler.HandleCreateEvent, "events_create"))
		r.Get("/{id}", MetricsMiddleware(s.eventsHandler.HandleGetEvent, "events_get"))
		r.Post("/{id}/participants", MetricsMiddleware(s.eventsHandler.HandleJoin, "events_join"))
		r.Delete("/{id}/participants/{user_id}", MetricsMiddleware(s.eventsHandler.HandleLeave, "events_leave"))
	})

	r.Route("/users/{id}", func(r chi.Router) {
		r.Get("/profile", MetricsMiddleware(s.usersHandler.HandleGetProfile, "users_profile_get"))
		r.Put("/profile", MetricsMiddleware(s.usersHandler.HandlePutProfile, "users_profile_put"))
		r.Post("/interests", MetricsMiddleware(s.usersHandler.HandleAddInterests, "users_interests"))
		r.Get("/events", MetricsMiddleware(s.usersHandler.HandleJoinedEvents, "users_events"))
		r.Get("/recommendations/events", MetricsMiddleware(s.usersHandler.HandleRecommendEvents, "recommend_events"))
		r.Get("/recommendations/friends", MetricsMiddleware(s.usersHandler.HandleRecommendFriends, "recommend_friends"))
	})

	r.With(httprate.Limit(
		s.searchRateLimit,
		s.searchRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind("api.search", ErrLimitExceeded))
		}),
	)).Post("/search", MetricsMiddleware(s.searchHandler.HandleSearch, "search"))
}

// Router returns a chi router with common middleware and every route.
func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestFields)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logFailures)
	s.Register(ctx, r)
	return r
}

// logFailures logs 5xx responses. The request id comes from the context.
func (s *Server) logFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if ww.Status() >= http.StatusInternalServerError {
			s.logger.Error(r.Context(), "request failed",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", ww.Status()),
				logger.Duration("took", time.Since(start)),
			)
		}
	})
}

type errorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var verr *validation.Error
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}

// writeFailure maps err onto a status and code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidEvent),
		errors.Is(err, repository.ErrInvalidProfile),
		errors.Is(err, service.ErrEmptyQuery):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrEventFull):
		return http.StatusConflict, "event_full"
	case errors.Is(err, repository.ErrAlreadyJoined):
		return http.StatusConflict, "already_joined"
	case errors.Is(err, repository.ErrNotJoined):
		return http.StatusConflict, "not_joined"
	case errors.Is(err, classifier.ErrNotConfigured):
		return http.StatusServiceUnavailable, "classifier_not_configured"
	case errors.Is(err, classifier.ErrUnavailable):
		return http.StatusServiceUnavailable, "classifier_unavailable"
	case errors.Is(err, classifier.ErrMalformed):
		return http.StatusBadGateway, "classifier_malformed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON reads a size-limited JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	if err := validation.Struct(v); err != nil {
		return Wrap(op, err)
	}
	return nil
}
