package store

import (
	"math"
	"math/rand"
	"time"
)

// Retryer decides how long to wait before another connection attempt.
type Retryer interface {
	// NextDelay returns the delay before retry number attempt (0-based) and
	// whether to retry at all.
	NextDelay(attempt int, lastErr error) (time.Duration, bool)
}

// ExponentialBackoffRetryer implements exponential backoff with jitter
type ExponentialBackoffRetryer struct {
	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration

	// MaxDelay caps every delay, jitter excluded
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier
	Multiplier float64

	// MaxRetries is the maximum number of retries. Zero disables retrying,
	// a negative value retries until the context is done.
	MaxRetries int

	// JitterFactor is the maximum jitter as a fraction of the delay (0.0 to 1.0).
	// Zero disables jitter.
	JitterFactor float64
}

// NewExponentialBackoffRetryer returns a retryer giving up after maxRetries.
func NewExponentialBackoffRetryer(maxRetries int) *ExponentialBackoffRetryer {
	return &ExponentialBackoffRetryer{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		MaxRetries:   maxRetries,
		JitterFactor: 0.2,
	}
}

// NextDelay implements Retryer
func (r *ExponentialBackoffRetryer) NextDelay(attempt int, _ error) (time.Duration, bool) {
	if r.MaxRetries >= 0 && attempt >= r.MaxRetries {
		return 0, false
	}

	delay := float64(r.InitialDelay) * math.Pow(r.Multiplier, float64(attempt))
	if delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}

	if r.JitterFactor > 0 {
		//nolint:gosec // jitter is not security-critical
		delay += delay * r.JitterFactor * (2*rand.Float64() - 1)
		if delay < 0 {
			delay = float64(r.InitialDelay)
		}
	}

	return time.Duration(delay), true
}

// NoRetry never retries.
type NoRetry struct{}

func (NoRetry) NextDelay(int, error) (time.Duration, bool) { return 0, false }
