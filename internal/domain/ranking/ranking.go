// Package ranking orders tagged candidates by interest overlap.
package ranking

import (
	"sort"

	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/internal/domain/scoring"
)

// DefaultTopK is the number of recommendations shown by both call sites.
const DefaultTopK = 3

// Status explains an empty or non-empty result to the caller.
type Status int

// Result states.
const (
	// StatusOK means at least one candidate was returned.
	StatusOK Status = iota
	// StatusNoProfileTags means the user declared no interests (event mode only).
	StatusNoProfileTags
	// StatusNoMatches means interests exist but nothing qualified.
	StatusNoMatches
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoProfileTags:
		return "no_profile_tags"
	case StatusNoMatches:
		return "no_matches"
	default:
		return "unknown"
	}
}

// Scored pairs a candidate with its score.
type Scored[T model.Tagged] struct {
	Candidate  T        `json:"candidate"`
	Score      float64  `json:"score"`
	SharedTags []string `json:"shared_tags,omitempty"`
}

// Result is the ordered top-K list plus its status.
type Result[T model.Tagged] struct {
	Items  []Scored[T] `json:"items"`
	Status Status      `json:"-"`
}

// Candidates returns the ranked candidates without scores.
func (r Result[T]) Candidates() []T {
	out := make([]T, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Candidate
	}
	return out
}

// Rank scores every candidate against userTags, drops zero scores in event
// mode, sorts by score descending (stable) and keeps the first topK.
func Rank[T model.Tagged](candidates []T, userTags []string, topK int, mode scoring.Mode) Result[T] {
	if mode == scoring.ModeEvent && len(userTags) == 0 {
		return Result[T]{Items: []Scored[T]{}, Status: StatusNoProfileTags}
	}

	user := scoring.NewTagSet(userTags)
	scored := make([]Scored[T], 0, len(candidates))
	for _, c := range candidates {
		tags := c.GetTags()
		s := user.Score(tags, mode)
		if mode == scoring.ModeEvent && s == 0 {
			continue
		}
		scored = append(scored, Scored[T]{
			Candidate:  c,
			Score:      s,
			SharedTags: user.Shared(tags),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < 0 {
		topK = 0
	}
	if len(scored) > topK {
		scored = scored[:topK]
	}

	status := StatusOK
	if len(scored) == 0 {
		status = StatusNoMatches
	}
	return Result[T]{Items: scored, Status: status}
}
