// Package filter narrows an event list by category, city, free text, time
// window and distance.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/hangout/internal/domain/geo"
	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/internal/domain/textmatch"
	"github.com/okian/hangout/internal/domain/window"
)

// Criteria selects events. Zero values disable the matching predicate.
type Criteria struct {
	Category      string
	City          string
	FreeText      string
	Window        window.Window
	MaxDistanceKm float64
	Origin        *model.Coordinate
}

// distanceActive reports whether the distance predicate applies.
func (c Criteria) distanceActive() bool {
	return c.MaxDistanceKm > 0 && c.Origin != nil
}

// Filter returns the events matching every predicate of c, in input order.
func Filter(events []model.Event, c Criteria, now time.Time) []model.Event {
	text := strings.TrimSpace(c.FreeText)
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if c.Category != "" && c.Category != model.CategoryAll && e.Category != c.Category {
			continue
		}
		if c.City != "" && e.City != c.City {
			continue
		}
		if text != "" && !matchesText(e, text) {
			continue
		}
		if !window.InWindow(e.Date, now, c.Window) {
			continue
		}
		if c.distanceActive() {
			// Events without a location cannot satisfy a radius.
			if e.Coordinate == nil || !geo.Within(*c.Origin, *e.Coordinate, c.MaxDistanceKm) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func matchesText(e model.Event, text string) bool {
	return textmatch.Contains(e.Title, text) ||
		textmatch.Contains(e.Description, text) ||
		textmatch.Contains(e.Location, text)
}

// Cities returns the distinct non-empty cities of events, sorted.
func Cities(events []model.Event) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, e := range events {
		if e.City == "" {
			continue
		}
		if _, ok := seen[e.City]; ok {
			continue
		}
		seen[e.City] = struct{}{}
		out = append(out, e.City)
	}
	sort.Strings(out)
	return out
}
