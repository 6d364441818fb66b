package remote

import (
	"fmt"
	"strings"
)

// TransportError covers everything that prevented a readable answer: network failures,
// timeouts, non-JSON bodies and non-2xx responses without a JSON payload.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError is an application-level refusal ({"success": false, "message": ...}).
type RejectedError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "rejected"
	}
	return fmt.Sprintf("%s: %s (http %d)", e.Op, msg, e.StatusCode)
}

// UserMessage is the server-supplied message, suitable for a notification.
func (e *RejectedError) UserMessage() string { return strings.TrimSpace(e.Message) }

type missingTokenError struct {
	cookie string
}

func (e missingTokenError) Error() string {
	return fmt.Sprintf("anti-forgery cookie %q not found; load a page first or pass it with --cookie", e.cookie)
}
