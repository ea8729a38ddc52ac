package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TransportError reports a non-success HTTP status returned before any
// streaming began. It carries the status code and the upstream's error
// message so callers can distinguish auth failures from capacity errors.
type TransportError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion request failed with status %d: %s", e.StatusCode, e.Message)
}

// UpstreamError reports a failure while reading or parsing an in-flight
// stream. It is terminal: the stream cannot resume after one is surfaced.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("reading completion stream: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// errorEnvelope is the upstream's JSON error body shape.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// newTransportError builds a TransportError from a non-success response,
// extracting the message from the error envelope when the body carries one.
func newTransportError(statusCode int, body []byte) *TransportError {
	msg := ""

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		msg = envelope.Error.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(statusCode)
	}

	return &TransportError{
		StatusCode: statusCode,
		Message:    msg,
		Body:       string(body),
	}
}

// isCancellation reports whether an error (or the request context itself)
// represents caller-driven cancellation. Cancellation is a distinguished
// silent termination, never an error condition; deadline expiry counts
// because timeout policy is composed externally through the same context.
func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
