package usage

import (
	"errors"
	"fmt"
)

// ErrNoUsage indicates a payload that parsed fine but carried no token-count
// information whatsoever. Payloads with partial usage (some fields missing)
// never trigger it; missing fields default to zero.
var ErrNoUsage = errors.New("no token usage information")

// ExtractionError is returned for any failure while extracting usage from a
// response payload: absent input, a payload with no usage at all, an explicit
// error event inside a stream, or an unexpected failure while inspecting the
// payload. It is non-retriable; it indicates a malformed or unsupported
// payload, not a transient condition.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("usage extraction failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("usage extraction failed: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// newExtractionError creates an ExtractionError with a plain message.
func newExtractionError(message string) *ExtractionError {
	return &ExtractionError{Message: message}
}

// wrapExtractionError creates an ExtractionError preserving the original
// failure for errors.Is / errors.As inspection.
func wrapExtractionError(message string, err error) *ExtractionError {
	return &ExtractionError{Message: message, Err: err}
}
