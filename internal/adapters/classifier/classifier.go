// Package classifier asks a language model which events match a free-text
// request.
package classifier

import (
	"context"

	"github.com/okian/hangout/internal/domain/model"
)

// Result is what a classifier returns: proposed event ids in preference
// order and a short explanation. MatchedIDs may contain ids that are not in
// the candidate list.
type Result struct {
	MatchedIDs []string `json:"matches"`
	Reasoning  string   `json:"reasoning"`
}

// Classifier maps a query onto candidate events.
type Classifier interface {
	Classify(ctx context.Context, query string, candidates []model.EventSummary) (Result, error)
}

// Disabled is used when no API key is configured.
type Disabled struct{}

// Classify always fails with ErrNotConfigured.
func (Disabled) Classify(context.Context, string, []model.EventSummary) (Result, error) {
	return Result{}, ErrNotConfigured
}

// Kind names the error class of err for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case isKind(err, ErrNotConfigured):
		return "not_configured"
	case isKind(err, ErrMalformed):
		return "malformed"
	case isKind(err, ErrUnavailable):
		return "unavailable"
	default:
		return "unknown"
	}
}
