// Package retrylimit paces outbound calls with an adaptive rate limit and
// retries the ones that fail transiently.
//
// Example usage:
//
//	lim := retrylimit.NewLimiter(5, 1, 20)
//	err := retrylimit.Do(ctx, lim, retrylimit.DefaultPolicy(), func(ctx context.Context) error {
//	    return send(ctx)
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ErrAttemptsExhausted is returned once a policy's attempts are used up. It
// wraps the last error.
var ErrAttemptsExhausted = errors.New("max attempts exceeded")

// Limiter is a rate limit that speeds up after successes and backs off after
// the remote end pushes back. It is safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	min       rate.Limit
	max       rate.Limit
	cooldown  time.Duration
	lastError time.Time
}

// NewLimiter creates a Limiter starting at initial requests per second and
// kept within [min, max].
func NewLimiter(initial, min, max float64) *Limiter {
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min
	}
	if initial < min {
		initial = min
	}
	if initial > max {
		initial = max
	}
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Limit(initial), burstFor(initial)),
		min:      rate.Limit(min),
		max:      rate.Limit(max),
		cooldown: 10 * time.Second,
	}
}

// Wait blocks until a call may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Success raises the rate by one request per second, unless the last
// pushback was recent.
func (l *Limiter) Success() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastError) > l.cooldown {
		l.set(l.limiter.Limit() + 1)
	}
}

// Throttled halves the rate.
func (l *Limiter) Throttled() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastError = time.Now()
	l.set(l.limiter.Limit() / 2)
}

// Limit returns the current requests per second.
func (l *Limiter) Limit() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return float64(l.limiter.Limit())
}

func (l *Limiter) set(limit rate.Limit) {
	if limit > l.max {
		limit = l.max
	} else if limit < l.min {
		limit = l.min
	}
	if limit != l.limiter.Limit() {
		l.limiter.SetLimit(limit)
		l.limiter.SetBurst(burstFor(float64(limit)))
	}
}

func burstFor(limit float64) int {
	if limit < 1 {
		return 1
	}
	return int(limit)
}

// Class tells Do what to do with a failed attempt.
type Class int

const (
	// Retry backs off exponentially and tries again.
	Retry Class = iota
	// Throttle slows the limiter down and tries again after a short pause.
	Throttle
	// Fatal stops immediately.
	Fatal
)

// Classifier sorts errors into classes.
type Classifier func(error) Class

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ClassifyStatus maps 429 to Throttle, 5xx to Retry and every other status to
// Fatal. Errors without a status are retried.
func ClassifyStatus(err error) Class {
	var sc StatusCoder
	if !errors.As(err, &sc) {
		return Retry
	}
	return ClassForStatus(sc.StatusCode())
}

// ClassForStatus classifies a bare HTTP status code.
func ClassForStatus(code int) Class {
	switch {
	case code == http.StatusTooManyRequests:
		return Throttle
	case code >= 500 && code < 600:
		return Retry
	default:
		return Fatal
	}
}

// Policy configures Do.
type Policy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	ThrottleDelay time.Duration
	Multiplier    float64
	Jitter        bool
	Classify      Classifier
}

// DefaultPolicy retries up to five times with exponential backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   5,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		ThrottleDelay: time.Second,
		Multiplier:    2,
		Jitter:        true,
		Classify:      ClassifyStatus,
	}
}

// Do calls fn until it succeeds, returns a Fatal error, ctx is done or the
// policy's attempts run out. A nil limiter disables pacing.
func Do(ctx context.Context, lim *Limiter, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.Classify == nil {
		p.Classify = ClassifyStatus
	}

	delay := p.InitialDelay
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = fn(ctx)
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}

		pause := delay
		switch p.Classify(err) {
		case Fatal:
			return err
		case Throttle:
			if lim != nil {
				lim.Throttled()
			}
			pause = p.ThrottleDelay
			log.Warn().Err(err).Int("attempt", attempt).Msg("throttled, backing off")
		default:
			if p.Jitter {
				pause = addJitter(pause)
			}
			delay = nextDelay(delay, p)
			log.Debug().Err(err).Int("attempt", attempt).Dur("sleep", pause).Msg("attempt failed, retrying")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
	}

	return fmt.Errorf("%w (%d): %w", ErrAttemptsExhausted, p.MaxAttempts, err)
}

func nextDelay(d time.Duration, p Policy) time.Duration {
	if p.Multiplier > 1 {
		d = time.Duration(float64(d) * p.Multiplier)
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// addJitter adds up to 25% to delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(int64(delay/4)))
}
