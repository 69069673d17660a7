// Package retry runs an operation under a bounded exponential-backoff policy.
// Only failures classified as retryable are attempted again; everything else
// is returned on the spot.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/thywilljoshua/survey-report/internal/failure"
)

type Policy struct {
	// MaxAttempts counts the first call. Values below 1 mean 1.
	MaxAttempts int
	// TransientBase is the first delay after a network failure; it doubles per retry.
	TransientBase time.Duration
	// RateLimitBase is the first delay after a rate-limit signal; it doubles per retry.
	RateLimitBase time.Duration
	// Jitter spreads each delay by ±Jitter (fraction of the delay).
	Jitter float64

	Classify func(error) failure.Kind
	Sleep    func(ctx context.Context, d time.Duration) error
	Rand     func() float64
	OnRetry  func(attempt int, kind failure.Kind, delay time.Duration, err error)
}

// Default waits 5s/10s/20s after network failures and 10s/20s/40s after
// rate limiting.
func Default() Policy {
	return Policy{
		MaxAttempts:   4,
		TransientBase: 5 * time.Second,
		RateLimitBase: 10 * time.Second,
		Jitter:        0.1,
	}
}

// Delay returns the wait before retry number n (0-based) for a failure of kind.
func (p Policy) Delay(kind failure.Kind, n int) time.Duration {
	base := p.TransientBase
	if kind == failure.KindRateLimited {
		base = p.RateLimitBase
	}
	d := base << uint(n)
	if p.Jitter > 0 {
		r := rand.Float64
		if p.Rand != nil {
			r = p.Rand
		}
		spread := (r()*2 - 1) * p.Jitter
		d += time.Duration(float64(d) * spread)
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Do calls fn until it succeeds, fails with a non-retryable error, the
// attempts run out, or ctx is done.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	classify := p.Classify
	if classify == nil {
		classify = failure.KindOf
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		kind := classify(err)
		if !kind.Retryable() {
			return err
		}
		if attempt == attempts {
			break
		}
		delay := p.Delay(kind, attempt-1)
		if p.OnRetry != nil {
			p.OnRetry(attempt, kind, delay, err)
		}
		if serr := sleep(ctx, delay); serr != nil {
			return fmt.Errorf("retry interrupted after attempt %d: %w", attempt, err)
		}
	}
	return fmt.Errorf("retries exhausted after %d attempts: %w", attempts, err)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
