package pcm

import (
	"errors"
	"fmt"
)

// Sentinel errors describing why a payload was rejected.
var (
	// ErrMalformedBase64 is returned when the payload is not valid base64.
	ErrMalformedBase64 = errors.New("pcm: malformed base64 payload")

	// ErrTruncatedPayload is returned when the byte length is not a whole
	// number of frames.
	ErrTruncatedPayload = errors.New("pcm: payload is not a whole number of frames")

	// ErrInvalidFormat is returned for a non-positive sample rate or channel count.
	ErrInvalidFormat = errors.New("pcm: invalid audio format")

	// ErrChannelMismatch is returned by Encode when channels differ in length.
	ErrChannelMismatch = errors.New("pcm: channels have different lengths")

	// ErrUnsupportedRate is returned by Resample outside MinSampleRate..MaxSampleRate.
	ErrUnsupportedRate = errors.New("pcm: unsupported sample rate")
)

// DecodeError reports a payload that could not be decoded.
type DecodeError struct {
	// Kind is one of the package sentinel errors.
	Kind error

	// Length is the decoded byte length, or the payload length for base64 errors.
	Length int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v (length %d): %v", e.Kind, e.Length, e.Err)
	}
	return fmt.Sprintf("%v (length %d)", e.Kind, e.Length)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsDecodeError reports whether err is a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
