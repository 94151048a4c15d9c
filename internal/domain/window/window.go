// Package window buckets event times into named ranges relative to a
// caller supplied reference instant.
package window

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownWindow is returned by Parse for unrecognised names.
var ErrUnknownWindow = errors.New("unknown time window")

// Window is a named time range starting at "now".
type Window int

// Supported windows.
const (
	All Window = iota
	Today
	Week
	Month
)

// String returns the wire name of the window.
func (w Window) String() string {
	switch w {
	case All:
		return "all"
	case Today:
		return "today"
	case Week:
		return "week"
	case Month:
		return "month"
	default:
		return fmt.Sprintf("window(%d)", int(w))
	}
}

// Parse converts a wire name into a Window. The empty string maps to All.
func Parse(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return All, nil
	case "today":
		return Today, nil
	case "week":
		return Week, nil
	case "month":
		return Month, nil
	default:
		return All, fmt.Errorf("%w: %q", ErrUnknownWindow, s)
	}
}

// Bounds returns the half-open range [start, end) covered by w at now.
// ok is false for All, which is unbounded.
func Bounds(now time.Time, w Window) (start, end time.Time, ok bool) {
	switch w {
	case Today:
		return now, startOfNextDay(now), true
	case Week:
		return now, now.AddDate(0, 0, 7), true
	case Month:
		return now, now.AddDate(0, 1, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// InWindow reports whether eventTime falls inside w relative to now.
// Events before now are outside every window except All.
func InWindow(eventTime, now time.Time, w Window) bool {
	start, end, ok := Bounds(now, w)
	if !ok {
		return true
	}
	return !eventTime.Before(start) && eventTime.Before(end)
}

// startOfNextDay is midnight after now in now's location.
func startOfNextDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}
