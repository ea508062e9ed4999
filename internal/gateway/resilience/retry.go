package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

// Jitter band applied to every computed delay: [0.75, 1.25] x delay.
const (
	jitterLow  = 0.75
	jitterSpan = 0.5
)

// clock is the time source used by the retry loop; tests substitute a fake.
type clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// WithRetry runs op until it succeeds, fails terminally, or the policy's
// deadline leaves no room for another wait. The error returned is always the
// one op produced last, never a synthesized "gave up" error. Cancelling ctx
// abandons a pending wait and returns ctx.Err().
func WithRetry[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	return withRetry(ctx, p, op, realClock{}, rand.Float64)
}

func withRetry[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), c clock, jitter func() float64) (T, error) {
	if !p.Enabled {
		return op(ctx)
	}
	b := &backoff{
		policy:   p,
		deadline: c.Now().Add(p.Timeout),
		delay:    p.InitialDelay,
		clock:    c,
		jitter:   jitter,
	}
	logger := log.Ctx(ctx)

	return retry.DoWithData(
		func() (T, error) { return op(ctx) },
		retry.Context(ctx),
		retry.Attempts(0),
		retry.RetryIf(b.shouldRetry),
		retry.DelayType(b.nextDelay),
		retry.WithTimer(c),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn().
				Uint("attempt", n).
				Dur("wait", b.pending).
				Err(err).
				Msg("retrying after transient error")
		}),
	)
}

// backoff holds the state of one WithRetry call. retry-go consults
// shouldRetry before nextDelay for every failed attempt, so the wait picked
// in shouldRetry is the one nextDelay hands back.
type backoff struct {
	policy   Policy
	deadline time.Time
	delay    time.Duration // un-jittered wait for the next retry
	pending  time.Duration // jittered wait chosen for the upcoming retry
	clock    clock
	jitter   func() float64
}

func (b *backoff) shouldRetry(err error) bool {
	if !IsRetryable(err) {
		return false
	}
	if b.clock.Now().Add(b.delay).After(b.deadline) {
		return false
	}
	b.pending = time.Duration(float64(b.delay) * (jitterLow + b.jitter()*jitterSpan))
	next := time.Duration(float64(b.delay) * b.policy.Multiplier)
	b.delay = min(next, b.policy.MaxDelay)
	return true
}

func (b *backoff) nextDelay(_ uint, _ error, _ *retry.Config) time.Duration {
	return b.pending
}
