package locate

import (
	"context"
	"errors"
	"fmt"
)

// FailureReason classifies why a position could not be acquired
type FailureReason int

const (
	// None means the acquisition succeeded
	None FailureReason = iota
	NoSupport
	PermissionDenied
	PositionUnavailable
	Timeout
	Unknown
)

var reasonNames = map[FailureReason]string{
	None:                "none",
	NoSupport:           "no_support",
	PermissionDenied:    "permission_denied",
	PositionUnavailable: "position_unavailable",
	Timeout:             "timeout",
	Unknown:             "unknown",
}

func (r FailureReason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("FailureReason(%d)", int(r))
}

// Message returns the user-facing explanation for the reason
func (r FailureReason) Message() string {
	switch r {
	case None:
		return ""
	case NoSupport:
		return "Location is not available on this device. Set geo.static or pass --at lat,lng."
	case PermissionDenied:
		return "Location permission was denied."
	case PositionUnavailable:
		return "Your position could not be determined."
	case Timeout:
		return "Locating took too long. Try again."
	default:
		return "Could not get your location."
	}
}

// Standard position error codes
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// PositionError is returned by providers for classified failures
type PositionError struct {
	Code    int
	Message string
}

func (e *PositionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("position error %d", e.Code)
	}
	return fmt.Sprintf("position error %d: %s", e.Code, e.Message)
}

// ErrNoSupport is returned when no positioning capability exists
var ErrNoSupport = errors.New("geolocation not supported")

// Classify maps a provider error onto a FailureReason
func Classify(err error) FailureReason {
	if err == nil {
		return None
	}
	if errors.Is(err, ErrNoSupport) {
		return NoSupport
	}

	var pe *PositionError
	if errors.As(err, &pe) {
		switch pe.Code {
		case CodePermissionDenied:
			return PermissionDenied
		case CodePositionUnavailable:
			return PositionUnavailable
		case CodeTimeout:
			return Timeout
		}
		return Unknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	return Unknown
}
