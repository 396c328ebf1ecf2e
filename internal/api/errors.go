package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthenticated matches any *Error carrying a 401 status.
var ErrUnauthenticated = errors.New("unauthenticated")

// Error is a failure reported by the API with a non-2xx status.
type Error struct {
	Status  int
	Message string
	// Body holds the raw JSON error body when the server sent one.
	Body json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Is reports 401 errors as ErrUnauthenticated.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthenticated && e.Status == http.StatusUnauthorized
}

// TransportError means the request never produced a response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0 when there is none.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type errorBody struct {
	Error json.RawMessage `json:"error"`
}

// parseError builds an *Error from a failed response. The body is expected to
// be `{"error": "..."}`; anything else falls back to the status reason phrase.
// It never fails.
func parseError(status int, body []byte) *Error {
	e := &Error{Status: status, Message: reasonPhrase(status)}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return e
	}
	e.Body = json.RawMessage(body)

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Error) == 0 {
		return e
	}
	var msg string
	if err := json.Unmarshal(eb.Error, &msg); err == nil {
		if msg != "" {
			e.Message = msg
		}
		return e
	}
	// Validation failures come back as an object or list under "error".
	e.Message = string(eb.Error)
	return e
}

func reasonPhrase(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}
