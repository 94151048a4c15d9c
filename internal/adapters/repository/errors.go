package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrEventFull      = errors.New("event is full")
	ErrAlreadyJoined  = errors.New("already joined")
	ErrNotJoined      = errors.New("not joined")
	ErrInvalidEvent   = errors.New("invalid event")
	ErrInvalidProfile = errors.New("invalid profile")
)

func wrapInvalid(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %q: %w", what, id, ErrNotFound)
}
