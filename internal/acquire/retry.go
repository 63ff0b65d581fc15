package acquire

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"net"
	"time"
)

// backoffPolicy implements jittered exponential backoff for transient
// acquisition failures.
type backoffPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

func newBackoffPolicy(maxAttempts int) *backoffPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &backoffPolicy{
		maxAttempts: maxAttempts,
		baseDelay:   2 * time.Second,
		maxDelay:    30 * time.Second,
	}
}

// ShouldRetry decides whether the error is retryable at this attempt.
func (p *backoffPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if attempt >= p.maxAttempts-1 {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrBadCredentials) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && !netErr.Timeout() {
		return false
	}
	return true
}

// Backoff returns the wait duration before the next attempt.
func (p *backoffPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	jitter := randomJitter(time.Duration(delay) / 2)
	return time.Duration(delay/2) + jitter
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
