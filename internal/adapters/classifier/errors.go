package classifier

import "errors"

// Sentinel kinds for classifier errors.
var (
	// ErrUnavailable covers transport failures, non-2xx replies and an open breaker.
	ErrUnavailable = errors.New("classifier unavailable")
	// ErrMalformed means the model replied with something that is not the expected JSON.
	ErrMalformed = errors.New("classifier reply malformed")
	// ErrNotConfigured means no API key was provided.
	ErrNotConfigured = errors.New("classifier not configured")
)

func isKind(err, kind error) bool { return errors.Is(err, kind) }
