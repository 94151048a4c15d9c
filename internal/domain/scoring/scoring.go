// Package scoring computes interest similarity between a user and a candidate.
package scoring

import "fmt"

// FriendSignalBonus is added in friend mode to candidates that carry tags
// but share none with the user, so they outrank blank profiles.
const FriendSignalBonus = 0.1

// Mode selects the scoring rules for a call site.
type Mode int

// Supported modes.
const (
	// ModeEvent scores by pure tag intersection.
	ModeEvent Mode = iota
	// ModeFriend adds FriendSignalBonus for tagged candidates without overlap.
	ModeFriend
)

// String returns the metric label for the mode.
func (m Mode) String() string {
	switch m {
	case ModeEvent:
		return "event"
	case ModeFriend:
		return "friend"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// TagSet is a set of case-sensitive tags.
type TagSet map[string]struct{}

// NewTagSet builds a set from tags. Nil input yields an empty set.
func NewTagSet(tags []string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Score returns the similarity of candidateTags to userTags under mode.
func Score(userTags, candidateTags []string, mode Mode) float64 {
	return NewTagSet(userTags).Score(candidateTags, mode)
}

// Score is the set-receiver form of Score, useful when one user is scored
// against many candidates.
func (s TagSet) Score(candidateTags []string, mode Mode) float64 {
	cand := NewTagSet(candidateTags)
	overlap := 0
	for t := range cand {
		if s.Has(t) {
			overlap++
		}
	}
	score := float64(overlap)
	if mode == ModeFriend && overlap == 0 && len(cand) > 0 {
		score += FriendSignalBonus
	}
	return score
}

// Shared returns the candidate tags present in s, in candidate order and
// without duplicates.
func (s TagSet) Shared(candidateTags []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(candidateTags))
	for _, t := range candidateTags {
		if _, dup := seen[t]; dup || !s.Has(t) {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SharedTags returns the tags of candidateTags also present in userTags.
func SharedTags(userTags, candidateTags []string) []string {
	return NewTagSet(userTags).Shared(candidateTags)
}
