// Package acquire drives a headless browsing session against the platform:
// login, seed discovery, profile fetches, and follower listing, with
// human-like pacing between navigations.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/soclens/profile-scout/internal/egress"
	"github.com/soclens/profile-scout/internal/pacing"
	"github.com/soclens/profile-scout/internal/scout"
)

var (
	// ErrAuthFailed is the terminal authentication error after retries and
	// identity rotation are exhausted.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrBadCredentials means the platform rejected the username/password.
	// Never retried.
	ErrBadCredentials = errors.New("credentials rejected")
	// ErrNotAuthenticated is returned by operations that need a login first.
	ErrNotAuthenticated = errors.New("session not authenticated")
)

// followersPerScroll is how many entries the followers dialog loads per
// scroll on average, used to bound the scroll loop.
const followersPerScroll = 12

// Options configures the acquisition client.
type Options struct {
	BaseURL           string
	UserAgent         string
	NavTimeout        time.Duration
	MaxRetries        int
	EngagementSamples int
}

var _ scout.Acquirer = (*Client)(nil)

// Client implements scout.Acquirer on top of a headless Chrome session.
type Client struct {
	opts     Options
	pool     *egress.Pool
	pacer    *pacing.Controller
	logger   *zap.Logger
	policy   *backoffPolicy
	identity *egress.Identity

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	authenticated bool
}

// New starts a headless browser and returns a client bound to it. When the
// egress pool has usable identities the browser egresses through one.
func New(opts Options, pool *egress.Pool, pacer *pacing.Controller, logger *zap.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL required")
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 10 * time.Second
	}
	if opts.EngagementSamples <= 0 {
		opts.EngagementSamples = 3
	}

	c := &Client{
		opts:   opts,
		pool:   pool,
		pacer:  pacer,
		logger: logger,
		policy: newBackoffPolicy(opts.MaxRetries),
	}
	if err := c.startBrowser(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) startBrowser() error {
	var identity *egress.Identity
	if c.pool != nil {
		identity = c.pool.Next()
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.UserAgent(c.opts.UserAgent),
	)
	if identity != nil {
		opts = append(opts, chromedp.ProxyServer(identity.Addr()))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("chromedp warmup: %w", err)
	}

	c.identity = identity
	c.allocCancel = allocCancel
	c.browserCtx = browserCtx
	c.browserCancel = browserCancel
	if identity != nil {
		c.logger.Info("browser started", zap.String("egress", identity.Addr()))
	} else {
		c.logger.Info("browser started", zap.String("egress", "direct"))
	}
	return nil
}

// rotateIdentity tears the browser down and restarts it on the next usable
// egress identity.
func (c *Client) rotateIdentity() error {
	if c.pool == nil {
		return fmt.Errorf("no egress pool configured")
	}
	if c.identity != nil {
		c.pool.MarkFailed(*c.identity)
	}
	c.stopBrowser()
	return c.startBrowser()
}

func (c *Client) stopBrowser() {
	if c.browserCancel != nil {
		c.browserCancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}
}

// Release tears down the browsing session.
func (c *Client) Release() {
	c.stopBrowser()
	c.logger.Info("browser session released")
}

// Authenticate logs in, retrying transient failures with backoff. After the
// retry budget is spent it rotates the egress identity once and tries the
// fresh browser before giving up with ErrAuthFailed. A credential rejection
// fails immediately.
func (c *Client) Authenticate(ctx context.Context, creds scout.Credentials) error {
	rotated := false
	attempt := 0
	for {
		err := c.login(ctx, creds)
		if err == nil {
			c.authenticated = true
			c.logger.Info("authenticated", zap.String("username", creds.Username))
			return nil
		}
		if errors.Is(err, ErrBadCredentials) {
			return err
		}

		if !c.policy.ShouldRetry(err, attempt) {
			if !rotated && c.pool != nil {
				if _, usable := c.pool.Size(); usable > 0 {
					c.logger.Warn("rotating egress identity after login failures", zap.Error(err))
					if rotateErr := c.rotateIdentity(); rotateErr == nil {
						rotated = true
						attempt = 0
						continue
					}
				}
			}
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		}

		wait := c.policy.Backoff(attempt)
		c.logger.Warn("login attempt failed, backing off",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		attempt++
	}
}

func (c *Client) login(ctx context.Context, creds scout.Credentials) error {
	tabCtx, cancel := c.newTab(ctx)
	defer cancel()

	var body string
	err := chromedp.Run(tabCtx,
		network.Enable(),
		emulation.SetUserAgentOverride(c.opts.UserAgent),
		chromedp.Navigate(c.opts.BaseURL+"/accounts/login/"),
		chromedp.WaitVisible(`input[name="username"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="username"]`, creds.Username, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, creds.Password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &body, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("login navigation: %w", err)
	}

	lower := strings.ToLower(body)
	if strings.Contains(lower, "your password was incorrect") ||
		strings.Contains(lower, "the username you entered doesn't belong to an account") {
		return ErrBadCredentials
	}
	if strings.Contains(lower, `name="username"`) {
		return fmt.Errorf("still on login page after submit")
	}
	return nil
}

// Discover lists up to limit seed usernames for a topic hashtag page.
func (c *Client) Discover(ctx context.Context, topic string, limit int) ([]string, error) {
	if !c.authenticated {
		return nil, ErrNotAuthenticated
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	tabCtx, cancel := c.newTab(ctx)
	defer cancel()

	var usernames []string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(c.opts.BaseURL+"/explore/tags/"+url.PathEscape(topic)+"/"),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.Evaluate(collectProfileLinksJS, &usernames),
	)
	if err != nil {
		return nil, fmt.Errorf("discover topic %q: %w", topic, err)
	}

	seeds := filterReserved(dedupe(usernames))
	if limit > 0 && len(seeds) > limit {
		seeds = seeds[:limit]
	}
	c.logger.Info("discovered seeds", zap.String("topic", topic), zap.Int("count", len(seeds)))
	return seeds, nil
}

// FetchProfile loads a profile page and extracts a candidate record. A page
// the platform reports missing yields a not-found outcome with no error; a
// rate-limit interstitial or navigation failure yields a transient outcome.
func (c *Client) FetchProfile(ctx context.Context, username string) (scout.FetchOutcome, error) {
	if !c.authenticated {
		return scout.Transient(), ErrNotAuthenticated
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return scout.Transient(), err
	}

	tabCtx, cancel := c.newTab(ctx)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(c.opts.BaseURL + "/" + url.PathEscape(username) + "/"),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
	}
	if c.pacer.Gesture() {
		actions = append(actions,
			chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", c.pacer.ScrollAmount()), nil),
			chromedp.Sleep(300*time.Millisecond),
		)
	}
	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return scout.Transient(), fmt.Errorf("fetch profile %q: %w", username, err)
	}

	if pageHasMarker(html, notFoundMarkers) {
		return scout.NotFound(), nil
	}
	if pageHasMarker(html, transientMarkers) {
		return scout.Transient(), fmt.Errorf("rate-limit interstitial for %q", username)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return scout.Transient(), fmt.Errorf("parse profile %q: %w", username, err)
	}

	record := parseProfile(username, doc, c.opts.BaseURL)
	record.EngagementRate = sampleEngagement(doc, record.FollowerCount, c.opts.EngagementSamples)
	return scout.Found(record), nil
}

// FetchFollowers opens the followers dialog and scrolls it until limit
// names are collected, the list stalls, or the scroll budget runs out.
func (c *Client) FetchFollowers(ctx context.Context, username string, limit int) ([]string, error) {
	if !c.authenticated {
		return nil, ErrNotAuthenticated
	}
	if limit <= 0 {
		return nil, nil
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	tabCtx, cancel := c.newTab(ctx)
	defer cancel()

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(c.opts.BaseURL+"/"+url.PathEscape(username)+"/"),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Click(`a[href$="/followers/"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`div[role="dialog"]`, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open followers dialog for %q: %w", username, err)
	}

	maxScrolls := scrollBudget(limit)
	var collected []string
	stalls := 0
	for scroll := 0; scroll < maxScrolls; scroll++ {
		select {
		case <-ctx.Done():
			return dedupe(collected), ctx.Err()
		default:
		}

		var names []string
		err := chromedp.Run(tabCtx,
			chromedp.Evaluate(collectDialogLinksJS, &names),
			chromedp.Evaluate(scrollDialogJS, nil),
			chromedp.Sleep(800*time.Millisecond),
		)
		if err != nil {
			return dedupe(collected), fmt.Errorf("scroll followers for %q: %w", username, err)
		}

		before := len(dedupe(collected))
		collected = append(collected, names...)
		after := len(dedupe(collected))
		if after >= limit {
			break
		}
		if after == before {
			stalls++
			if stalls >= 3 {
				break
			}
		} else {
			stalls = 0
		}
	}

	followers := filterReserved(dedupe(collected))
	for i, name := range followers {
		if name == username {
			followers = append(followers[:i], followers[i+1:]...)
			break
		}
	}
	if len(followers) > limit {
		followers = followers[:limit]
	}
	c.logger.Debug("followers collected", zap.String("username", username), zap.Int("count", len(followers)))
	return followers, nil
}

// scrollBudget bounds the followers dialog loop: enough rounds to load
// limit entries at the expected page size, plus one slack round.
func scrollBudget(limit int) int {
	return (limit+followersPerScroll-1)/followersPerScroll + 1
}

func (c *Client) newTab(ctx context.Context) (context.Context, context.CancelFunc) {
	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	taskCtx, cancelTask := context.WithTimeout(tabCtx, c.opts.NavTimeout)
	stop := forwardCancel(ctx, cancelTask)
	return taskCtx, func() {
		stop()
		cancelTask()
		cancelTab()
	}
}

// forwardCancel propagates cancellation from the caller's context into the
// chromedp task context, which otherwise only sees its own timeout.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// reservedPaths are single-segment platform routes that look like profile
// links but are not usernames.
var reservedPaths = map[string]struct{}{
	"explore":  {},
	"accounts": {},
	"about":    {},
	"legal":    {},
	"p":        {},
	"reels":    {},
	"stories":  {},
	"direct":   {},
}

func filterReserved(names []string) []string {
	out := names[:0]
	for _, name := range names {
		if _, ok := reservedPaths[strings.ToLower(name)]; ok {
			continue
		}
		out = append(out, name)
	}
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

const collectProfileLinksJS = `(() => {
	const names = [];
	document.querySelectorAll('article a[href]').forEach(a => {
		const m = a.getAttribute('href').match(/^\/([A-Za-z0-9._]+)\/$/);
		if (m) names.push(m[1]);
	});
	return names;
})()`

const collectDialogLinksJS = `(() => {
	const names = [];
	document.querySelectorAll('div[role="dialog"] a[href]').forEach(a => {
		const m = a.getAttribute('href').match(/^\/([A-Za-z0-9._]+)\/$/);
		if (m) names.push(m[1]);
	});
	return names;
})()`

const scrollDialogJS = `(() => {
	const dialog = document.querySelector('div[role="dialog"] ul');
	if (dialog && dialog.parentElement) {
		dialog.parentElement.scrollTop = dialog.parentElement.scrollHeight;
	}
	return true;
})()`
