// Package model contains domain models passed between layers.
package model

import "time"

// CategoryAll is the category selector value that disables category filtering.
const CategoryAll = "All"

// Categories lists the event categories offered by the create and browse forms.
var Categories = []string{
	CategoryAll,
	"Hiking",
	"Sports",
	"Dining",
	"Music",
	"Art",
	"Technology",
	"Travel",
	"Social",
	"Education",
	"Networking",
	"Health",
	"Other",
}

// PopularTags lists the interest tags suggested to users.
var PopularTags = []string{
	"Gen Z",
	"Millennials",
	"Students",
	"Young Professionals",
	"Introvert Friendly",
	"Dog Lovers",
	"Foodies",
	"Tech Enthusiasts",
	"Outdoor Lovers",
	"Wellness",
	"Nightlife",
	"Creative",
	"Chill Vibes",
	"Adrenaline",
	"Family Friendly",
	"LGBTQ+ Friendly",
}

// Tagged is anything that can be ranked by interest tags.
type Tagged interface {
	GetID() string
	GetTags() []string
}

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Event is a scheduled hangout users can join.
type Event struct {
	ID           string      `json:"id"`
	OrganizerID  string      `json:"organizer_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Category     string      `json:"category"`
	Location     string      `json:"location"`
	City         string      `json:"city,omitempty"`
	Coordinate   *Coordinate `json:"coordinate,omitempty"` // nil when the event has no geolocation
	ImageURL     string      `json:"image_url,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	Date         time.Time   `json:"event_date"`
	MaxAttendees int         `json:"max_attendees"`
	CreatedAt    time.Time   `json:"created_at"`
}

// GetID implements Tagged.
func (e Event) GetID() string { return e.ID }

// GetTags implements Tagged.
func (e Event) GetTags() []string { return e.Tags }

// GetTitle returns the event title.
func (e Event) GetTitle() string { return e.Title }

// GetDescription returns the event description.
func (e Event) GetDescription() string { return e.Description }

// GetCategory returns the event category.
func (e Event) GetCategory() string { return e.Category }

// Summary projects the event onto the fields shared with the classifier.
func (e Event) Summary() EventSummary {
	return EventSummary{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Tags:        e.Tags,
		Category:    e.Category,
		Date:        e.Date,
	}
}

// EventSummary is the reduced event shape sent to the classifier.
type EventSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
}

// Summaries projects events onto classifier summaries, preserving order.
func Summaries(events []Event) []EventSummary {
	out := make([]EventSummary, len(events))
	for i, e := range events {
		out[i] = e.Summary()
	}
	return out
}

// Participant records a user's attendance of an event.
type Participant struct {
	EventID  string    `json:"event_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
