package api

import (
	"errors"
	"fmt"
)

// TransportError covers everything that went wrong talking to the backend:
// network unreachable, request timeout, or a non-2xx status. Callers get one
// error shape with a human-readable message either way.
type TransportError struct {
	StatusCode int // 0 when the request never produced a response
	Message    string
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// ValidationError reports a request rejected locally before touching the
// network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsTransport reports whether err originated from a failed backend call.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsValidation reports whether err was raised before any request was sent.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
