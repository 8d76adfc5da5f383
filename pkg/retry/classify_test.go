package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"
)

type codeErr int

func (c codeErr) Error() string   { return fmt.Sprintf("upstream returned %d", int(c)) }
func (c codeErr) HTTPStatus() int { return int(c) }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ClassUnknown},
		{"status 429", codeErr(429), ClassTransient},
		{"status 503", codeErr(503), ClassTransient},
		{"status 401", codeErr(401), ClassPermission},
		{"status 403", codeErr(403), ClassPermission},
		{"status 404", codeErr(404), ClassPermission},
		{"wrapped status", fmt.Errorf("generate: %w", codeErr(429)), ClassTransient},
		{"googleapi 429", &googleapi.Error{Code: 429, Message: "Resource has been exhausted"}, ClassTransient},
		{"googleapi 403", &googleapi.Error{Code: 403, Message: "denied"}, ClassPermission},
		{"bad api key message", errors.New("API key not valid. Please pass a valid API key."), ClassPermission},
		{"entity message", errors.New("Requested entity was not found."), ClassPermission},
		{"permission message", errors.New("PERMISSION_DENIED: caller lacks access"), ClassPermission},
		{"quota message", errors.New("You exceeded your current quota"), ClassTransient},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED"), ClassTransient},
		{"status 400 falls through to message", &googleapi.Error{Code: 400, Message: "API key not valid"}, ClassPermission},
		{"status 400 plain", &googleapi.Error{Code: 400, Message: "bad request"}, ClassUnknown},
		{"canceled", context.Canceled, ClassCanceled},
		{"deadline", context.DeadlineExceeded, ClassTransient},
		{"unknown", errors.New("connection reset by peer"), ClassUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassRetryable(t *testing.T) {
	if !ClassTransient.Retryable() || !ClassUnknown.Retryable() {
		t.Error("transient and unknown classes must be retryable")
	}
	if ClassPermission.Retryable() || ClassCanceled.Retryable() {
		t.Error("permission and canceled classes must not be retryable")
	}
}
