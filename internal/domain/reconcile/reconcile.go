// Package reconcile maps identifiers proposed by an external classifier
// back onto the authoritative candidate list, falling back to keyword
// matching when the classifier proposes nothing.
package reconcile

import (
	"strings"

	"github.com/okian/hangout/internal/domain/model"
	"github.com/okian/hangout/internal/domain/textmatch"
)

// Searchable is a candidate that can be matched by id or by keyword.
type Searchable interface {
	model.Tagged
	GetTitle() string
	GetDescription() string
	GetCategory() string
}

// Source tells which path produced an Outcome.
type Source int

// Outcome sources.
const (
	SourceClassifier Source = iota
	SourceKeyword
)

// String returns the metric label for the source.
func (s Source) String() string {
	if s == SourceKeyword {
		return "keyword"
	}
	return "classifier"
}

// Outcome is the reconciled result.
type Outcome[T Searchable] struct {
	Items  []T
	Source Source
	// Dropped counts proposed ids with no matching candidate.
	Dropped int
}

// Reconcile resolves proposedIDs against candidates. When proposedIDs is
// empty the keyword fallback runs over rawQuery.
func Reconcile[T Searchable](proposedIDs []string, candidates []T, rawQuery string) Outcome[T] {
	if len(proposedIDs) == 0 {
		return Outcome[T]{Items: KeywordMatch(candidates, rawQuery), Source: SourceKeyword}
	}

	byID := make(map[string]T, len(candidates))
	for _, c := range candidates {
		if _, ok := byID[c.GetID()]; !ok {
			byID[c.GetID()] = c
		}
	}

	out := Outcome[T]{Items: make([]T, 0, len(proposedIDs)), Source: SourceClassifier}
	emitted := make(map[string]struct{}, len(proposedIDs))
	for _, id := range proposedIDs {
		c, ok := byID[id]
		if !ok {
			out.Dropped++
			continue
		}
		if _, dup := emitted[id]; dup {
			continue
		}
		emitted[id] = struct{}{}
		out.Items = append(out.Items, c)
	}
	return out
}

// KeywordMatch returns the candidates whose title, description, category or
// tags contain any token of rawQuery, in candidate order.
func KeywordMatch[T Searchable](candidates []T, rawQuery string) []T {
	tokens := textmatch.Tokens(rawQuery)
	out := make([]T, 0)
	if len(tokens) == 0 {
		return out
	}
	for _, c := range candidates {
		if textmatch.ContainsAny(haystack(c), tokens) {
			out = append(out, c)
		}
	}
	return out
}

func haystack(c Searchable) string {
	parts := append([]string{c.GetTitle(), c.GetDescription(), c.GetCategory()}, c.GetTags()...)
	return strings.Join(parts, " ")
}
