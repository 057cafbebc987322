// Package collectors provides the data sources feeding the netcheck core:
// command execution with timeouts, input validation, and the probe error
// taxonomy shared by the link, route, dns, modem, and socket probes.
package collectors

import (
	"fmt"
)

// ErrorType categorizes a probe failure.
type ErrorType string

const (
	// ErrorTypeQuery indicates a command ran but failed.
	ErrorTypeQuery ErrorType = "query"

	// ErrorTypeTimeout indicates a command exceeded its deadline.
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeParse indicates command output had an unexpected shape.
	ErrorTypeParse ErrorType = "parse"

	// ErrorTypeUnavailable indicates a required command is missing.
	ErrorTypeUnavailable ErrorType = "unavailable"
)

// ProbeError is an error from a data-source probe with context. Probe
// failures are non-fatal: callers log them and degrade the affected field
// to its marker.
type ProbeError struct {
	Probe   string
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s probe %s error: %s: %v", e.Probe, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s probe %s error: %s", e.Probe, e.Type, e.Message)
}

// Unwrap returns the wrapped error.
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// NewProbeError creates a new probe error.
func NewProbeError(probe string, errType ErrorType, message string, err error) *ProbeError {
	return &ProbeError{
		Probe:   probe,
		Type:    errType,
		Message: message,
		Err:     err,
	}
}
