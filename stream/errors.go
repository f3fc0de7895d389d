// Agent stream error classification.
//
// Raw provider errors are never shown to the user; they are mapped to a
// small fixed set of friendly messages.
package stream

import "strings"

// ErrorCategory buckets agent stream failures for user-facing display.
type ErrorCategory int

const (
	ErrorGeneric ErrorCategory = iota
	ErrorRateLimited
	ErrorConnectivity
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	switch c {
	case ErrorRateLimited:
		return "rate_limited"
	case ErrorConnectivity:
		return "connectivity"
	default:
		return "generic"
	}
}

// Message returns the friendly message shown for this category.
func (c ErrorCategory) Message() string {
	switch c {
	case ErrorRateLimited:
		return "The assistant is handling too many requests right now. Please wait a moment and try again."
	case ErrorConnectivity:
		return "Could not reach the assistant. Check your connection and try again."
	default:
		return "Something went wrong while generating changes. Please try again."
	}
}

// Classify buckets a raw error string by pattern match.
func Classify(raw string) ErrorCategory {
	lower := strings.ToLower(raw)

	rateLimited := []string{"rate limit", "rate_limit", "too many requests", "429", "quota", "overloaded"}
	for _, s := range rateLimited {
		if strings.Contains(lower, s) {
			return ErrorRateLimited
		}
	}

	connectivity := []string{"connection", "network", "timeout", "dial", "dns", "unreachable", "eof"}
	for _, s := range connectivity {
		if strings.Contains(lower, s) {
			return ErrorConnectivity
		}
	}

	return ErrorGeneric
}
