package ports

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrMissingIdentity    = errors.New("missing identity")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrRemote             = errors.New("remote error")
)

// RemoteError is a non-2xx answer from the backend.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote error: status %d: %s", e.StatusCode, e.Body)
}

func (e *RemoteError) Unwrap() error {
	return ErrRemote
}
