package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies what went wrong with a backend call so callers can react
// without inspecting HTTP details.
type Kind int

const (
	// KindNetwork means no response was received at all.
	KindNetwork Kind = iota + 1
	// KindAuth covers 401/403 responses.
	KindAuth
	// KindValidation is a local input violation; the request never left.
	KindValidation
	// KindConflict covers 409 responses (stale or conflicting state).
	KindConflict
	// KindUnavailable means the backend does not implement the route (501).
	KindUnavailable
	// KindBackend is any other non-2xx response carrying a message payload.
	KindBackend
)

// Error is the single error type returned by the client for failed calls.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for network/local errors
	Message string // backend message verbatim, or a local description
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request failed"
}

func (e *Error) Unwrap() error { return e.Err }

// NetworkError wraps a transport failure.
func NetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err, Message: "network error: no response from server"}
}

// ValidationError reports a local input violation.
func ValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func fromStatus(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}

	kind := KindBackend
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusConflict:
		kind = KindConflict
	case status == http.StatusNotImplemented:
		kind = KindUnavailable
	}

	return &Error{Kind: kind, Status: status, Message: message}
}

// KindOf returns the Kind of err, or 0 if err is not a client error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsAuth reports whether err is an authentication/authorization failure.
func IsAuth(err error) bool { return KindOf(err) == KindAuth }

// IsNetwork reports whether err is a transport failure with no response.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }
