// Package retry runs an operation until it succeeds or a budget of
// attempts runs out.  The handshake reads its response under a
// constant-delay policy; gateway connects back off between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// ErrExhausted is returned, wrapped with the last attempt's error, when
// every attempt failed.
var ErrExhausted = errors.New("retry budget exhausted")

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Do returns it without another attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err}
}

func permanent(err error) (error, bool) {
	var pe permanentError
	if errors.As(err, &pe) {
		return pe.err, true
	}
	return nil, false
}

// Policy paces attempts.  The wait after attempt n is Delay*Factor^(n-1),
// capped at MaxDelay.  A zero Delay retries without waiting.
type Policy struct {
	Delay    time.Duration
	MaxDelay time.Duration // zero means no cap
	Factor   float64       // below 1 means constant
	Attempts int           // total tries, at least 1
	Jitter   bool          // spread each wait by up to a quarter either way
}

// Constant waits delay between attempts and gives up after attempts
// tries.
func Constant(delay time.Duration, attempts int) *Policy {
	return &Policy{Delay: delay, Attempts: attempts}
}

// Gateway is the policy for reaching a node over SSH: three tries,
// half a second apart and doubling.
func Gateway() *Policy {
	return &Policy{
		Delay:    500 * time.Millisecond,
		MaxDelay: 2 * time.Second,
		Factor:   2,
		Attempts: 3,
		Jitter:   true,
	}
}

// Do calls fn with a 1-based attempt number until it returns nil or a
// [Permanent] error, the attempts run out, or ctx is done.
func (p *Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := max(p.Attempts, 1)
	wait := p.Delay

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if inner, ok := permanent(err); ok {
			return inner
		}
		if attempt >= attempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
		}

		if serr := p.sleep(ctx, wait); serr != nil {
			return fmt.Errorf("retry stopped: %w: %w", serr, err)
		}
		wait = p.next(wait)
	}
}

func (p *Policy) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if p.Jitter {
		d = jitter(d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Policy) next(d time.Duration) time.Duration {
	if p.Factor > 1 {
		d = time.Duration(float64(d) * p.Factor)
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// jitter spreads d uniformly over [0.75d, 1.25d].
func jitter(d time.Duration) time.Duration {
	spread := int64(d) / 2
	if spread <= 0 {
		return d
	}
	return d - time.Duration(spread/2) + time.Duration(rand.Int64N(spread+1))
}
