package gemini

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

const providerGemini = "gemini"

// Sentinel errors for common conditions.
var (
	// ErrNoCredential is returned when neither an API key nor token source is set.
	ErrNoCredential = errors.New("gemini: API key or token source required")

	// ErrNoQuestions is returned when no valid question was generated.
	ErrNoQuestions = errors.New("gemini: no valid quiz questions generated")

	// ErrNoImage is returned when the response carries no image data.
	ErrNoImage = errors.New("gemini: no image in response")

	// ErrNoAudio is returned when the response carries no audio data.
	ErrNoAudio = errors.New("gemini: no audio in response")

	// ErrBlocked is returned when the prompt was blocked by safety filters.
	ErrBlocked = errors.New("gemini: prompt blocked")

	// ErrEmptyInput is returned for blank prompts.
	ErrEmptyInput = errors.New("gemini: empty input")
)

// APIError represents an error response from the Gemini API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Code is the canonical status (e.g. RESOURCE_EXHAUSTED), if provided.
	Code string

	// Provider identifies which provider returned the error.
	Provider string

	err *googleapi.Error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: API error %d (%s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// HTTPStatus returns the status code for retry classification.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Unwrap returns the underlying googleapi error, if any.
func (e *APIError) Unwrap() error {
	if e.err == nil {
		return nil
	}
	return e.err
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsForbidden returns true if this is a permission error (HTTP 403).
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == 403
}

// newAPIError converts a googleapi error into an APIError.
func newAPIError(ge *googleapi.Error) *APIError {
	msg := ge.Message
	if msg == "" {
		msg = ge.Body
	}
	var envelope struct {
		Error struct {
			Status string `json:"status"`
		} `json:"error"`
	}
	_ = json.Unmarshal([]byte(ge.Body), &envelope)

	return &APIError{
		StatusCode: ge.Code,
		Message:    msg,
		Code:       envelope.Error.Status,
		Provider:   providerGemini,
		err:        ge,
	}
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
