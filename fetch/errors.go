package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FailureKind classifies fetch failures for retry and escalation decisions.
type FailureKind int

const (
	// FailureTransient covers timeouts, connection drops, and 5xx
	// responses; worth retrying.
	FailureTransient FailureKind = iota
	// FailureBlocked covers block pages, 403/429 responses, and bodies
	// too small to be a real listing or product page.
	FailureBlocked
	// FailureMalformed covers bad URLs and permanently missing pages;
	// never retried.
	FailureMalformed
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransient:
		return "transient"
	case FailureBlocked:
		return "blocked"
	case FailureMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is a classified fetch failure.
type Error struct {
	Kind   FailureKind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retriable reports whether another attempt at the same URL makes sense.
func (e *Error) Retriable() bool {
	return e.Kind != FailureMalformed
}

// Classify wraps a raw fetch failure into an Error with a FailureKind.
func Classify(url string, err error, status int) *Error {
	kind := FailureTransient

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = FailureTransient
	case isNetTimeout(err):
		kind = FailureTransient
	case status == http.StatusForbidden, status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable:
		kind = FailureBlocked
	case status == http.StatusNotFound, status == http.StatusGone:
		kind = FailureMalformed
	}

	if err == nil {
		err = fmt.Errorf("http status %d", status)
	}
	return &Error{Kind: kind, URL: url, Status: status, Err: err}
}

// KindLabel extracts the failure kind from an error chain for metrics and
// stats labels.
func KindLabel(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind.String()
	}
	return "other"
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
