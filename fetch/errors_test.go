package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		kind     FailureKind
		retriable bool
	}{
		{name: "context timeout", err: context.DeadlineExceeded, kind: FailureTransient, retriable: true},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, kind: FailureTransient, retriable: true},
		{name: "server error", status: http.StatusInternalServerError, kind: FailureTransient, retriable: true},
		{name: "forbidden", status: http.StatusForbidden, kind: FailureBlocked, retriable: true},
		{name: "rate limited", status: http.StatusTooManyRequests, kind: FailureBlocked, retriable: true},
		{name: "unavailable", status: http.StatusServiceUnavailable, kind: FailureBlocked, retriable: true},
		{name: "not found", status: http.StatusNotFound, kind: FailureMalformed, retriable: false},
		{name: "gone", status: http.StatusGone, kind: FailureMalformed, retriable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := Classify("http://shop.test/x", tt.err, tt.status)
			if fe.Kind != tt.kind {
				t.Fatalf("kind=%s, want %s", fe.Kind, tt.kind)
			}
			if fe.Retriable() != tt.retriable {
				t.Fatalf("retriable=%v, want %v", fe.Retriable(), tt.retriable)
			}
		})
	}
}

func TestKindLabel(t *testing.T) {
	blocked := &Error{Kind: FailureBlocked, URL: "http://shop.test"}
	if got := KindLabel(blocked); got != "blocked" {
		t.Fatalf("label=%q, want blocked", got)
	}
	wrapped := errors.Join(errors.New("outer"), blocked)
	if got := KindLabel(wrapped); got != "blocked" {
		t.Fatalf("label through chain=%q, want blocked", got)
	}
	if got := KindLabel(errors.New("plain")); got != "other" {
		t.Fatalf("label=%q, want other", got)
	}
}
