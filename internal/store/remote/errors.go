package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches a TransportError for a 404 response.
	ErrNotFound = errors.New("todo not found")

	// ErrMalformedResponse is wrapped when a 2xx body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// TransportError is returned for every failed call: network errors
// (StatusCode 0), non-2xx responses and undecodable bodies.
//
//	var te *remote.TransportError
//	if errors.As(err, &te) && te.StatusCode == http.StatusConflict { ... }
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	// Body is the start of the response body for non-2xx responses.
	Body string
	Err  error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: %d %s: %v", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	case e.StatusCode != 0:
		msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
		if e.Body != "" {
			msg += ": " + e.Body
		}
		return msg
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) see through status codes.
func (e *TransportError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
