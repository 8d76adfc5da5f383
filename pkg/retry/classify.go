package retry

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// Class is the failure classification used to decide whether to retry.
type Class int

const (
	// ClassUnknown matched no rule. It is retried.
	ClassUnknown Class = iota

	// ClassTransient is rate limiting, quota exhaustion, or a server error.
	ClassTransient

	// ClassPermission is a bad credential or a missing entity. Never retried.
	ClassPermission

	// ClassCanceled is a context cancellation. Never retried.
	ClassCanceled
)

// String returns the lowercase class name used in logs and metrics.
func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassPermission:
		return "permission"
	case ClassCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Retryable reports whether failures of this class consume retry budget.
func (c Class) Retryable() bool {
	return c == ClassTransient || c == ClassUnknown
}

// StatusError is implemented by errors that carry an HTTP status code.
type StatusError interface {
	error
	HTTPStatus() int
}

var (
	transientPatterns = []string{
		"429",
		"quota",
		"rate limit",
		"rate-limit",
		"resource_exhausted",
		"resource exhausted",
		"too many requests",
		"unavailable",
	}
	permissionPatterns = []string{
		"permission denied",
		"permission_denied",
		"entity was not found",
		"entity not found",
		"requested entity",
		"api key not valid",
		"api_key_invalid",
		"unauthenticated",
		"403",
		"404",
	}
)

// Classify sorts an error into a Class. It checks, in order: context
// cancellation, an HTTP status from StatusError or *googleapi.Error, then
// well-known message fragments.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}

	var se StatusError
	if errors.As(err, &se) {
		if c := classifyStatus(se.HTTPStatus()); c != ClassUnknown {
			return c
		}
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		if c := classifyStatus(ge.Code); c != ClassUnknown {
			return c
		}
	}

	return classifyMessage(err.Error())
}

func classifyStatus(code int) Class {
	switch {
	case code == http.StatusTooManyRequests:
		return ClassTransient
	case code >= 500 && code < 600:
		return ClassTransient
	case code == http.StatusUnauthorized, code == http.StatusForbidden, code == http.StatusNotFound:
		return ClassPermission
	}
	return ClassUnknown
}

func classifyMessage(msg string) Class {
	msg = strings.ToLower(msg)
	for _, p := range permissionPatterns {
		if strings.Contains(msg, p) {
			return ClassPermission
		}
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return ClassTransient
		}
	}
	return ClassUnknown
}
