package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned by stores when no record exists for an id.
	ErrNotFound = errors.New("not found")

	// ErrNotConfigured marks a component whose credential is absent.
	ErrNotConfigured = errors.New("service not configured")

	// ErrThrottled marks a capacity/quota/throttling signal from an
	// external service. Adapters wrap recognizable 429-class failures in
	// this sentinel; Classify additionally matches textual markers for
	// errors that arrive unwrapped.
	ErrThrottled = errors.New("service throttled")

	// ErrMalformedResponse marks an inference response that stayed
	// unparsable after fence stripping.
	ErrMalformedResponse = errors.New("malformed inference response")
)

// FailKind classifies the outcome of a primary-strategy attempt. The
// pipeline switches to the deterministic fallback for every kind except
// FailNone; the kind only decides what gets logged and counted.
type FailKind int

const (
	FailNone FailKind = iota
	FailNotConfigured
	FailThrottled
	FailMalformed
	FailTransient
)

func (k FailKind) String() string {
	switch k {
	case FailNone:
		return "none"
	case FailNotConfigured:
		return "not_configured"
	case FailThrottled:
		return "throttled"
	case FailMalformed:
		return "malformed"
	default:
		return "transient"
	}
}

// throttleMarkers are the textual signals treated as capacity exhaustion
// when the error is not already wrapped in ErrThrottled.
var throttleMarkers = []string{"insufficient_quota", "insufficient quota", "rate_limit", "rate limit", "429"}

// Classify maps an error from a primary-strategy attempt onto a FailKind.
// This is the single place that decides "is this a capacity signal".
func Classify(err error) FailKind {
	switch {
	case err == nil:
		return FailNone
	case errors.Is(err, ErrNotConfigured):
		return FailNotConfigured
	case errors.Is(err, ErrThrottled):
		return FailThrottled
	case errors.Is(err, ErrMalformedResponse):
		return FailMalformed
	}
	low := strings.ToLower(err.Error())
	for _, m := range throttleMarkers {
		if strings.Contains(low, m) {
			return FailThrottled
		}
	}
	return FailTransient
}
