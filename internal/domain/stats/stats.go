// Package stats aggregates upcoming events by category and city.
package stats

import (
	"sort"

	"github.com/okian/hangout/internal/domain/model"
)

// Bucket names for events missing the grouped field.
const (
	UncategorizedBucket = "Uncategorized"
	UnknownCityBucket   = "Unknown"
	TopCities           = 5
)

// Count is one bucket of a distribution.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats holds category and city distributions, largest first.
type Stats struct {
	Categories []Count `json:"categories"`
	Cities     []Count `json:"cities"`
}

// Compute builds the category distribution and the top cities of events.
func Compute(events []model.Event) Stats {
	return Stats{
		Categories: countBy(events, func(e model.Event) string {
			if e.Category == "" {
				return UncategorizedBucket
			}
			return e.Category
		}, 0),
		Cities: countBy(events, func(e model.Event) string {
			if e.City == "" {
				return UnknownCityBucket
			}
			return e.City
		}, TopCities),
	}
}

// countBy groups events by key, sorts by count descending keeping
// first-seen order on ties, and keeps at most limit buckets (0 = all).
func countBy(events []model.Event, key func(model.Event) string, limit int) []Count {
	index := make(map[string]int)
	out := []Count{}
	for _, e := range events {
		k := key(e)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Count{Name: k})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
