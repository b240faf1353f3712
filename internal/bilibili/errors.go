package bilibili

import (
	"errors"
	"fmt"
)

var (
	ErrVideoNotFound  = errors.New("video not found")
	ErrInvalidVideoId = errors.New("invalid video id")
	// ErrTransport covers network, HTTP status and payload decoding failures.
	ErrTransport = errors.New("platform transport failure")
)

// APIError is a non-zero code in the platform's JSON envelope.
type APIError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: platform code %d: %s", e.Endpoint, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrTransport
}

func transportError(endpoint string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, endpoint, err)
}
