// Package retry runs outbound content requests with bounded exponential
// backoff.
//
// Failures are sorted by Classify. Rate limiting and server errors are
// retried. Permission and missing-entity failures return at once as a
// *PermissionError, so callers can ask for a new credential instead of
// waiting out the whole budget. Unclassified failures are retried.
//
//	inv, _ := retry.New(retry.DefaultPolicy())
//	questions, err := retry.Do(ctx, inv, func(ctx context.Context) ([]Question, error) {
//	    return client.fetch(ctx, category)
//	})
package retry

import (
	"errors"
	"fmt"
	"time"
)

// Default policy values.
const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = time.Second
	DefaultMultiplier   = 2.0
)

// ErrInvalidPolicy is returned by Validate for unusable policies.
var ErrInvalidPolicy = errors.New("retry: invalid policy")

// Policy configures one retry sequence.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// Multiplier scales the delay after every retry. Must be > 1.
	Multiplier float64

	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration

	// AttemptTimeout bounds each attempt. Zero means only the caller's
	// context applies.
	AttemptTimeout time.Duration
}

// DefaultPolicy returns three retries starting at one second, doubling.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
	}
}

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	switch {
	case p.MaxRetries < 0:
		return fmt.Errorf("%w: max retries %d < 0", ErrInvalidPolicy, p.MaxRetries)
	case p.InitialDelay <= 0:
		return fmt.Errorf("%w: initial delay %s must be positive", ErrInvalidPolicy, p.InitialDelay)
	case p.Multiplier <= 1:
		return fmt.Errorf("%w: multiplier %v must be > 1", ErrInvalidPolicy, p.Multiplier)
	case p.MaxDelay < 0 || p.AttemptTimeout < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidPolicy)
	}
	return nil
}

// Delays returns the backoff schedule the policy produces when every
// attempt fails.
func (p Policy) Delays() []time.Duration {
	out := make([]time.Duration, 0, p.MaxRetries)
	d := p.InitialDelay
	for i := 0; i < p.MaxRetries; i++ {
		out = append(out, d)
		d = p.next(d)
	}
	return out
}

func (p Policy) next(d time.Duration) time.Duration {
	n := time.Duration(float64(d) * p.Multiplier)
	if p.MaxDelay > 0 && n > p.MaxDelay {
		return p.MaxDelay
	}
	return n
}
