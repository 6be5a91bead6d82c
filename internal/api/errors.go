package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthRequired is returned (or checked pre-flight) when an action
// needs a session that is not present. No request is attempted.
var ErrAuthRequired = errors.New("authentication required")

// NetworkError wraps a transport failure: the request never completed,
// so no server-side state can have changed.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("server connection failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is a transport-level failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// RequestError is a non-2xx response. Message holds the server-provided
// human text when the body carried one.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// ServerMessage returns the server's message, or fallback when the body
// carried none.
func ServerMessage(err error, fallback string) string {
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		if msg := ve.First("username", "email", "password"); msg != "" {
			return msg
		}
	}
	return fallback
}

// IsAuthRejection reports whether the server refused the bearer
// credential, the trigger for self-healing logout.
func IsAuthRejection(err error) bool {
	var re *RequestError
	if !errors.As(err, &re) {
		return false
	}
	return re.Status == http.StatusUnauthorized || re.Status == http.StatusForbidden
}

// ValidationError is a rejection whose body keys messages by field, each
// an array whose first element is the displayable text.
type ValidationError struct {
	Status int
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("api: status %d: validation failed", e.Status)
}

// First returns the first message found walking fields in priority
// order, or the empty string when none match.
func (e *ValidationError) First(priority ...string) string {
	for _, field := range priority {
		if msgs, ok := e.Fields[field]; ok && len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}
