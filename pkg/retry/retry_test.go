package retry_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/teslashibe/alifbata/pkg/retry"
)

// statusErr is a minimal StatusError for tests.
type statusErr struct {
	code int
	msg  string
}

func (e *statusErr) Error() string   { return fmt.Sprintf("status %d: %s", e.code, e.msg) }
func (e *statusErr) HTTPStatus() int { return e.code }

var (
	errRateLimited = &statusErr{code: 429, msg: "quota exceeded"}
	errForbidden   = &statusErr{code: 403, msg: "permission denied"}
)

// fakeSleeper records requested delays without waiting.
type fakeSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.delays = append(f.delays, d)
	f.mu.Unlock()
	return ctx.Err()
}

func (f *fakeSleeper) Delays() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.delays))
	copy(out, f.delays)
	return out
}

func newInvoker(t *testing.T, p retry.Policy, s retry.Sleeper) *retry.Invoker {
	t.Helper()
	inv, err := retry.New(p, retry.WithSleeper(s))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return inv
}

func policy(maxRetries int, initial time.Duration) retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxRetries = maxRetries
	p.InitialDelay = initial
	return p
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	sleeper := &fakeSleeper{}
	inv := newInvoker(t, policy(3, time.Second), sleeper)

	var calls int
	got, err := retry.Do(context.Background(), inv, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Errorf("got %q after %d calls", got, calls)
	}
	if len(sleeper.Delays()) != 0 {
		t.Errorf("expected no backoff, got %v", sleeper.Delays())
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	sleeper := &fakeSleeper{}
	inv := newInvoker(t, policy(2, time.Second), sleeper)

	var calls int
	_, err := retry.Do(context.Background(), inv, func(ctx context.Context) (int, error) {
		calls++
		return 0, errRateLimited
	})

	if calls != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", calls)
	}
	if err != errRateLimited {
		t.Errorf("expected original error unchanged, got %v", err)
	}
}

func TestDoFailsFastOnPermission(t *testing.T) {
	sleeper := &fakeSleeper{}
	inv := newInvoker(t, policy(5, time.Second), sleeper)

	var calls int
	_, err := retry.Do(context.Background(), inv, func(ctx context.Context) (int, error) {
		calls++
		return 0, errForbidden
	})

	if calls != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", calls)
	}
	if !retry.IsPermission(err) {
		t.Fatalf("expected permission error, got %v", err)
	}
	var pe *retry.PermissionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PermissionError, got %T", err)
	}
	if !errors.Is(err, errForbidden) {
		t.Error("permission error should wrap the original")
	}
	if len(sleeper.Delays()) != 0 {
		t.Errorf("permission failures must not back off, got %v", sleeper.Delays())
	}
}

func TestDoBackoffDoubles(t *testing.T) {
	sleeper := &fakeSleeper{}
	inv := newInvoker(t, policy(3, 1000*time.Millisecond), sleeper)

	_, _ = retry.Do(context.Background(), inv, func(ctx context.Context) (int, error) {
		return 0, errRateLimited
	})

	want := []time.Duration{1000 * time.Millisecond, 2000 * time.Millisecond, 4000 * time.Millisecond}
	if diff := cmp.Diff(want, sleeper.Delays()); diff != "" {
		t.Errorf("delays mismatch (-want +got):\n%s", diff)
	}
}

func TestDoSucceedsOnSecondAttempt(t *testing.T) {
	sleeper := &fakeSleeper{}
	inv := newInvoker(t, policy(3, 100*time.Millisecond), sleeper)

	var calls int
	got, err := retry.Do(context.Background(), inv, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errRateLimited
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want ok", got)
	}
	if diff := cmp.Diff([]time.Duration{100 * time.Millisecond}, sleeper.Delays()); diff != "" {
		t.Errorf("expected one 100ms wait (-want +got):\n%s", diff)
	}
}

func TestDoRetriesUnknownErrors(t *testing.T) {
	inv := newInvoker(t, policy(1, time.Millisecond), &fakeSleeper{})

	var calls int
	_, err := retry.Do(context.Background(), inv, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("connection reset by peer")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Errorf("unknown errors should be retried: got %d attempts", calls)
	}
}

func TestDoZeroRetries(t *testing.T) {
	inv := newInvoker(t, policy(0, time.Millisecond), &fakeSleeper{})

	var calls int
	_, err := retry.Do(context.Background(), inv, func(ctx context.Context) (int, error) {
		calls++
		return 0, errRateLimited
	})
	if err != errRateLimited || calls != 1 {
		t.Errorf("expected single attempt with original error, got %d calls, err=%v", calls, err)
	}
}

func TestDoConcurrentIndependence(t *testing.T) {
	inv := newInvoker(t, policy(2, time.Millisecond), retry.SleeperFunc(func(ctx context.Context, d time.Duration) error {
		return nil
	}))

	var failingCalls, recoveringCalls atomic.Int32
	var wg sync.WaitGroup
	var failErr, recoverErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, failErr = retry.Do(context.Background(), inv, func(ctx context.Context) (int, error) {
			failingCalls.Add(1)
			return 0, errRateLimited
		})
	}()
	go func() {
		defer wg.Done()
		_, recoverErr = retry.Do(context.Background(), inv, func(ctx context.Context) (int, error) {
			if recoveringCalls.Add(1) < 3 {
				return 0, errRateLimited
			}
			return 1, nil
		})
	}()
	wg.Wait()

	if failErr == nil || failingCalls.Load() != 3 {
		t.Errorf("failing call: err=%v attempts=%d, want error after 3", failErr, failingCalls.Load())
	}
	if recoverErr != nil || recoveringCalls.Load() != 3 {
		t.Errorf("recovering call: err=%v attempts=%d, want success after 3", recoverErr, recoveringCalls.Load())
	}
}

func TestDoStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	inv := newInvoker(t, policy(5, time.Second), retry.SleeperFunc(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := retry.Do(ctx, inv, func(ctx context.Context) (int, error) {
		calls++
		return 0, errRateLimited
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", calls)
	}
}

func TestDoCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inv := newInvoker(t, policy(3, time.Millisecond), &fakeSleeper{})
	var calls int
	_, err := retry.Do(ctx, inv, func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Errorf("expected no attempts and Canceled, got %d calls, err=%v", calls, err)
	}
}

func TestDoAttemptTimeout(t *testing.T) {
	p := policy(1, time.Millisecond)
	p.AttemptTimeout = 20 * time.Millisecond
	inv := newInvoker(t, p, &fakeSleeper{})

	var calls int
	got, err := retry.Do(context.Background(), inv, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "second", nil
	})
	if err != nil {
		t.Fatalf("expected timed-out attempt to be retried, got %v", err)
	}
	if got != "second" || calls != 2 {
		t.Errorf("got %q after %d calls", got, calls)
	}
}

func TestTimerSleeperHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := retry.TimerSleeper.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleeper should return immediately on a canceled context")
	}
}

func TestRunRejectsInvalidPolicy(t *testing.T) {
	_, err := retry.Run(context.Background(), retry.Policy{MaxRetries: -1, InitialDelay: time.Second, Multiplier: 2},
		func(ctx context.Context) (int, error) { return 1, nil })
	if !errors.Is(err, retry.ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}
