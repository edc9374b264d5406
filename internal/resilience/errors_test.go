package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestIsTransient_TransientErrorType(t *testing.T) {
	err := NewTransientError(errors.New("service unavailable"), 503)
	if !IsTransient(err) {
		t.Error("TransientError should be transient")
	}
}

func TestIsTransient_WrappedTransientError(t *testing.T) {
	inner := NewTransientError(errors.New("overloaded"), 529)
	wrapped := fmt.Errorf("classify lead: %w", inner)
	if !IsTransient(wrapped) {
		t.Error("wrapped TransientError should stay transient")
	}
}

func TestIsTransient_SyscallErrors(t *testing.T) {
	for _, errno := range []error{syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.EPIPE} {
		if !IsTransient(fmt.Errorf("dial: %w", errno)) {
			t.Errorf("%v should be transient", errno)
		}
	}
}

func TestIsTransient_NetworkTimeout(t *testing.T) {
	err := &net.DNSError{IsTimeout: true, Err: "timeout"}
	if !IsTransient(err) {
		t.Error("net.Error timeout should be transient")
	}
}

func TestIsTransient_MessagePatterns(t *testing.T) {
	cases := []string{
		"read tcp 10.0.0.2:443: connection reset by peer",
		"post https://api.anthropic.com: i/o timeout",
		"net/http: TLS handshake timeout",
		"dial tcp: lookup api.anthropic.com: no such host",
	}
	for _, msg := range cases {
		if !IsTransient(errors.New(msg)) {
			t.Errorf("%q should be transient", msg)
		}
	}
}

func TestIsTransient_PermanentErrors(t *testing.T) {
	cases := []error{
		nil,
		errors.New("invalid api key"),
		errors.New("lead not found"),
		context.Canceled,
	}
	for _, err := range cases {
		if IsTransient(err) {
			t.Errorf("%v should not be transient", err)
		}
	}
}

func TestTransientError_MessageCarriesStatus(t *testing.T) {
	err := NewTransientError(errors.New("overloaded"), 529)
	want := "transient (status 529): overloaded"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	noStatus := NewTransientError(errors.New("conn dropped"), 0)
	if noStatus.Error() != "transient: conn dropped" {
		t.Errorf("got %q", noStatus.Error())
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := NewTransientError(inner, 500)
	if !errors.Is(err, inner) {
		t.Error("Unwrap should expose the inner error")
	}
	if err.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", err.StatusCode)
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("status %d should be transient", code)
		}
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("status %d should not be transient", code)
		}
	}
}
