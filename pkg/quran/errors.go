package quran

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSurah is returned for surah numbers outside 1..114.
	ErrInvalidSurah = errors.New("quran: invalid surah number")

	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("quran: not found")
)

// APIError is a non-2xx response from the Quran API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("quran: API error %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the status code for retry classification.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}
