package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	"github.com/thywilljoshua/survey-report/internal/failure"
)

// APIError is a backend error with its retry classification.
type APIError struct {
	Provider string
	Status   int
	Kind     failure.Kind
	Err      error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d (%s): %v", e.Provider, e.Status, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) FailureKind() failure.Kind { return e.Kind }

// classifyStatus maps an HTTP status from the service to a failure kind.
func classifyStatus(status int) failure.Kind {
	switch status {
	case http.StatusTooManyRequests:
		return failure.KindRateLimited
	case http.StatusRequestTimeout, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return failure.KindNetworkTransient
	default:
		return failure.KindFatalAPI
	}
}

// classifyTransport maps an error that carries no HTTP status.
func classifyTransport(err error) failure.Kind {
	if errors.Is(err, context.Canceled) {
		return failure.KindFatalAPI
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return failure.KindNetworkTransient
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return failure.KindNetworkTransient
	}
	return failure.KindFatalAPI
}
