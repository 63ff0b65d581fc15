package egress

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Checker probes every identity in a pool against a canary URL and marks
// unreachable ones failed before the crawl starts.
type Checker struct {
	canaryURL string
	timeout   time.Duration
	transport http.RoundTripper
	logger    *zap.Logger
}

// NewChecker builds a Checker. transport may be nil outside tests.
func NewChecker(canaryURL string, timeout time.Duration, logger *zap.Logger) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		canaryURL: canaryURL,
		timeout:   timeout,
		logger:    logger,
	}
}

// WithTransport overrides the HTTP transport, used by tests to stub the
// canary endpoint.
func (c *Checker) WithTransport(rt http.RoundTripper) *Checker {
	c.transport = rt
	return c
}

// Validate probes each identity and marks failures in the pool. It returns
// the number of usable identities remaining.
func (c *Checker) Validate(pool *Pool) int {
	total, _ := pool.Size()
	for i := 0; i < total; i++ {
		id := pool.Next()
		if id == nil {
			break
		}
		if err := c.probe(*id); err != nil {
			pool.MarkFailed(*id)
			c.logger.Warn("egress identity failed canary check",
				zap.String("identity", id.Addr()),
				zap.Error(err),
			)
		}
	}
	_, usable := pool.Size()
	c.logger.Info("egress pool validated",
		zap.Int("total", total),
		zap.Int("usable", usable),
	)
	return usable
}

func (c *Checker) probe(id Identity) error {
	collector := colly.NewCollector()
	collector.SetRequestTimeout(c.timeout)
	if err := collector.SetProxy(id.URL()); err != nil {
		return fmt.Errorf("set proxy: %w", err)
	}
	// Test transport must come last: SetProxy installs its own otherwise.
	if c.transport != nil {
		collector.WithTransport(c.transport)
	}

	var probeErr error
	reached := false
	collector.OnError(func(r *colly.Response, err error) {
		// colly reports bodyless success codes such as 204 as errors.
		// Reaching the canary is all the probe needs.
		if r != nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices {
			reached = true
			return
		}
		probeErr = err
	})
	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= http.StatusBadRequest {
			probeErr = fmt.Errorf("canary responded %d", r.StatusCode)
			return
		}
		reached = true
	})

	visitErr := collector.Visit(c.canaryURL)
	collector.Wait()

	if reached {
		return nil
	}
	if probeErr != nil {
		return probeErr
	}
	if visitErr != nil {
		return fmt.Errorf("visit canary: %w", visitErr)
	}
	return nil
}
