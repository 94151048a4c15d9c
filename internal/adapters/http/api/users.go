package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/internal/domain/ranking"
)

// UserDependencies defines profile and recommendation operations.
type UserDependencies interface {
	Profile(ctx context.Context, userID string) (model.Profile, error)
	UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	AddInterests(ctx context.Context, userID string, tags []string) (model.Profile, error)
	JoinedEvents(ctx context.Context, userID string) ([]model.Event, error)
	RecommendEvents(ctx context.Context, userID string) (ranking.Result[model.Event], error)
	RecommendFriends(ctx context.Context, userID string) (ranking.Result[model.Profile], error)
}

// UsersHandler handles per-user requests.
type UsersHandler struct {
	deps UserDependencies
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps UserDependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

type recommendationResponse[T model.Tagged] struct {
	Status string              `json:"status"`
	Items  []ranking.Scored[T] `json:"items"`
}

func newRecommendationResponse[T model.Tagged](res ranking.Result[T]) recommendationResponse[T] {
	items := res.Items
	if items == nil {
		items = []ranking.Scored[T]{}
	}
	return recommendationResponse[T]{Status: res.Status.String(), Items: items}
}

// HandleRecommendEvents handles GET /users/{id}/recommendations/events.
func (h *UsersHandler) HandleRecommendEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend_events"
	res, err := h.deps.RecommendEvents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, newRecommendationResponse(res))
}

// HandleRecommendFriends handles GET /users/{id}/recommendations/friends.
func (h *UsersHandler) HandleRecommendFriends(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend_friends"
	res, err := h.deps.RecommendFriends(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, newRecommendationResponse(res))
}

// HandleGetProfile handles GET /users/{id}/profile.
func (h *UsersHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	p, err := h.deps.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type profileRequest struct {
	Email     string   `json:"email" validate:"omitempty,email"`
	FullName  string   `json:"full_name" validate:"max=200"`
	AvatarURL string   `json:"avatar_url" validate:"omitempty,url"`
	Tags      []string `json:"tags" validate:"max=50,dive,required,max=50"`
}

// HandlePutProfile handles PUT /users/{id}/profile.
func (h *UsersHandler) HandlePutProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_profile"
	var req profileRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	p, err := h.deps.UpdateProfile(r.Context(), model.Profile{
		ID:        chi.URLParam(r, "id"),
		Email:     req.Email,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Tags:      req.Tags,
	})
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type interestsRequest struct {
	Tags []string `json:"tags" validate:"required,min=1,max=50,dive,required,max=50"`
}

// HandleAddInterests handles POST /users/{id}/interests.
func (h *UsersHandler) HandleAddInterests(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_interests"
	var req interestsRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	p, err := h.deps.AddInterests(r.Context(), chi.URLParam(r, "id"), req.Tags)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleJoinedEvents handles GET /users/{id}/events.
func (h *UsersHandler) HandleJoinedEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.joined_events"
	events, err := h.deps.JoinedEvents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
