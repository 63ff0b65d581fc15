// Package pacing produces the randomized, human-plausible delays placed
// between network actions.
package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Controller spaces navigation actions out with a uniform random delay in
// [minDelay, maxDelay] on top of a hard rate-limiter floor. Omitting a wait
// never changes the result of an operation, only its timing profile.
type Controller struct {
	mu            sync.Mutex
	rng           *rand.Rand
	minDelay      time.Duration
	maxDelay      time.Duration
	gestureChance float64
	limiter       *rate.Limiter
}

// New constructs a Controller. gestureChance is the probability that a
// navigation is accompanied by a simulated scroll.
func New(minDelay, maxDelay time.Duration, gestureChance float64) *Controller {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	floor := rate.Inf
	if minDelay > 0 {
		floor = rate.Every(minDelay)
	}
	return &Controller{
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		minDelay:      minDelay,
		maxDelay:      maxDelay,
		gestureChance: gestureChance,
		limiter:       rate.NewLimiter(floor, 1),
	}
}

// Wait blocks for a randomized delay, honoring context cancellation.
func (c *Controller) Wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	delay := c.randomDelay()
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Gesture reports whether the caller should perform a simulated browsing
// action before the next navigation.
func (c *Controller) Gesture() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64() < c.gestureChance
}

// ScrollAmount returns a plausible pixel offset for a simulated scroll.
func (c *Controller) ScrollAmount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return 200 + c.rng.Intn(600)
}

func (c *Controller) randomDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	span := c.maxDelay - c.minDelay
	if span <= 0 {
		return c.minDelay
	}
	return c.minDelay + time.Duration(c.rng.Int63n(int64(span)))
}
