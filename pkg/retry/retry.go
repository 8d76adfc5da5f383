package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/teslashibe/alifbata/pkg/metrics"
)

// Operation is one attempt of a retried call. It is invoked afresh on every
// attempt and must not carry state between attempts.
type Operation[T any] func(ctx context.Context) (T, error)

// Sleeper waits between attempts. Sleep returns early with ctx.Err() if the
// context ends first.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper sleeps on a real timer.
var TimerSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
})

// Invoker runs operations under a fixed policy. It holds no per-call state and
// is safe for concurrent use.
type Invoker struct {
	policy  Policy
	sleeper Sleeper
	logger  *slog.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithSleeper replaces the backoff timer, typically with a fake in tests.
func WithSleeper(s Sleeper) Option {
	return func(i *Invoker) { i.sleeper = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Invoker) { i.logger = l }
}

// New creates an Invoker after validating the policy.
func New(policy Policy, opts ...Option) (*Invoker, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	inv := &Invoker{
		policy:  policy,
		sleeper: TimerSleeper,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	inv.logger = inv.logger.With("component", "retry")
	return inv, nil
}

// Policy returns the invoker's policy.
func (i *Invoker) Policy() Policy {
	return i.policy
}

// Do runs op, retrying transient and unknown failures with exponential
// backoff until it succeeds, the budget runs out, or ctx ends.
//
// A permission failure returns immediately as a *PermissionError. When the
// budget runs out the last error is returned unchanged. If ctx ends, ctx.Err()
// is returned.
func Do[T any](ctx context.Context, inv *Invoker, op Operation[T]) (T, error) {
	var zero T
	p := inv.policy
	remaining := p.MaxRetries
	delay := p.InitialDelay

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			metrics.InvocationsTotal.WithLabelValues("canceled").Inc()
			return zero, err
		}

		v, err := runAttempt(ctx, p.AttemptTimeout, op)
		if err == nil {
			metrics.InvocationsTotal.WithLabelValues("success").Inc()
			return v, nil
		}
		if ctx.Err() != nil {
			metrics.InvocationsTotal.WithLabelValues("canceled").Inc()
			return zero, ctx.Err()
		}

		class := Classify(err)
		switch {
		case class == ClassPermission:
			inv.logger.Warn("permission failure, not retrying",
				"attempt", attempt,
				"error", err,
			)
			metrics.InvocationsTotal.WithLabelValues("permission").Inc()
			return zero, &PermissionError{Err: err}
		case !class.Retryable():
			metrics.InvocationsTotal.WithLabelValues("failed").Inc()
			return zero, err
		case remaining == 0:
			inv.logger.Warn("retry budget exhausted",
				"attempts", attempt,
				"error", err,
			)
			metrics.InvocationsTotal.WithLabelValues("exhausted").Inc()
			return zero, err
		}

		inv.logger.Debug("retrying after failure",
			"attempt", attempt,
			"class", class.String(),
			"delay", delay,
			"error", err,
		)
		metrics.RetriesTotal.WithLabelValues(class.String()).Inc()

		if err := inv.sleeper.Sleep(ctx, delay); err != nil {
			metrics.InvocationsTotal.WithLabelValues("canceled").Inc()
			return zero, err
		}
		remaining--
		delay = p.next(delay)
	}
}

// Run is Do with a one-off invoker built from policy.
func Run[T any](ctx context.Context, policy Policy, op Operation[T], opts ...Option) (T, error) {
	inv, err := New(policy, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return Do(ctx, inv, op)
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, op Operation[T]) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(actx)
}
