// Package crawl walks the follower graph breadth-first: seed profiles come
// from topic discovery, and each accepted profile's followers feed the next
// depth level, until the depth or profile budget runs out.
package crawl

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soclens/profile-scout/internal/metrics"
	"github.com/soclens/profile-scout/internal/scout"
	"github.com/soclens/profile-scout/internal/textsig"
)

// Options tunes a crawl run beyond the acceptance criteria.
type Options struct {
	Criteria       scout.CrawlCriteria
	SeedsPerTopic  int
	FollowerFanOut int
}

// Summary reports what a finished (or interrupted) run accomplished.
type Summary struct {
	Examined int
	Accepted int
	Errors   int
	Elapsed  time.Duration
}

// candidate is a frontier entry with its provenance.
type candidate struct {
	username string
	source   string
}

// Orchestrator owns one crawl run end to end.
type Orchestrator struct {
	acquirer scout.Acquirer
	qualify  scout.Qualifier
	signals  *textsig.Extractor
	store    scout.SessionStore
	notifier scout.Notifier
	metrics  *metrics.Metrics
	clock    scout.Clock
	logger   *zap.Logger
	opts     Options
}

// New wires an orchestrator.
func New(
	acquirer scout.Acquirer,
	qualifier scout.Qualifier,
	signals *textsig.Extractor,
	store scout.SessionStore,
	notifier scout.Notifier,
	m *metrics.Metrics,
	clock scout.Clock,
	logger *zap.Logger,
	opts Options,
) *Orchestrator {
	if opts.SeedsPerTopic <= 0 {
		opts.SeedsPerTopic = 5
	}
	if opts.FollowerFanOut <= 0 {
		opts.FollowerFanOut = 50
	}
	return &Orchestrator{
		acquirer: acquirer,
		qualify:  qualifier,
		signals:  signals,
		store:    store,
		notifier: notifier,
		metrics:  m,
		clock:    clock,
		logger:   logger,
		opts:     opts,
	}
}

// Run executes the crawl until every depth level is exhausted, the profile
// budget is spent, or ctx is canceled. Session state is saved at every depth
// boundary and once more before returning, including on error and panic, so
// an interrupted run resumes where it stopped.
func (o *Orchestrator) Run(ctx context.Context) (summary Summary, err error) {
	start := o.clock.Now()

	defer func() {
		if saveErr := o.store.Save(); saveErr != nil {
			o.logger.Error("saving session state", zap.Error(saveErr))
			if err == nil {
				err = saveErr
			}
		}
		summary = o.summarize(start)
		o.notifier.SessionSummary(summary.Examined, summary.Accepted, summary.Errors, summary.Elapsed)
	}()

	frontier, err := o.seed(ctx)
	if err != nil {
		return Summary{}, err
	}

	for depth := 0; depth <= o.opts.Criteria.MaxDepth; depth++ {
		if len(frontier) == 0 {
			o.logger.Info("frontier exhausted", zap.Int("depth", depth))
			break
		}
		o.store.SetDepth(depth)
		o.metrics.CrawlDepth.Set(float64(depth))
		o.logger.Info("processing depth level",
			zap.Int("depth", depth),
			zap.Int("frontier", len(frontier)),
		)

		next, levelErr := o.processLevel(ctx, depth, frontier)
		if saveErr := o.store.Save(); saveErr != nil {
			o.logger.Error("saving session state", zap.Error(saveErr))
		}
		if levelErr != nil {
			return Summary{}, levelErr
		}
		if o.budgetSpent() {
			o.logger.Info("profile budget spent", zap.Int("examined", o.store.TotalExamined()))
			break
		}
		frontier = next
	}

	return Summary{}, nil
}

// seed turns the configured topics into the depth-zero frontier.
func (o *Orchestrator) seed(ctx context.Context) ([]candidate, error) {
	var frontier []candidate
	for _, topic := range o.opts.Criteria.SeedTopics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seeds, err := o.acquirer.Discover(ctx, topic, o.opts.SeedsPerTopic)
		if err != nil {
			o.logger.Warn("topic discovery failed", zap.String("topic", topic), zap.Error(err))
			o.store.RecordError()
			o.metrics.FetchErrors.Inc()
			continue
		}
		for _, username := range seeds {
			frontier = append(frontier, candidate{username: username, source: topic})
		}
	}
	if len(frontier) == 0 {
		return nil, fmt.Errorf("no seed profiles discovered")
	}
	return frontier, nil
}

// processLevel examines one frontier and returns the next one, built from
// the followers of every profile accepted at this level.
func (o *Orchestrator) processLevel(ctx context.Context, depth int, frontier []candidate) ([]candidate, error) {
	var next []candidate
	for _, cand := range frontier {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if o.budgetSpent() {
			return nil, nil
		}
		if o.store.Seen(cand.username) {
			continue
		}

		accepted, profile := o.examine(ctx, cand)
		if !accepted || depth >= o.opts.Criteria.MaxDepth {
			continue
		}

		followers, err := o.acquirer.FetchFollowers(ctx, profile.Username, o.opts.FollowerFanOut)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("follower listing failed",
				zap.String("username", profile.Username),
				zap.Error(err),
			)
			o.store.RecordError()
			o.metrics.FetchErrors.Inc()
			continue
		}
		for _, follower := range followers {
			if !o.store.Seen(follower) {
				next = append(next, candidate{username: follower, source: profile.Username})
			}
		}
	}
	return next, nil
}

// examine fetches and qualifies one candidate. It returns the accepted
// profile when qualification passed.
func (o *Orchestrator) examine(ctx context.Context, cand candidate) (bool, scout.QualifiedProfile) {
	outcome, err := o.acquirer.FetchProfile(ctx, cand.username)
	if err != nil && ctx.Err() != nil {
		// A shutdown-interrupted fetch never ran; leave the username for
		// the resumed session.
		return false, scout.QualifiedProfile{}
	}

	// Every completed fetch attempt consumes the username and the budget,
	// whatever its outcome.
	o.store.MarkExamined(cand.username)
	o.metrics.ProfilesExamined.Inc()

	if err != nil {
		o.logger.Warn("profile fetch failed", zap.String("username", cand.username), zap.Error(err))
		o.store.RecordError()
		o.metrics.FetchErrors.Inc()
		return false, scout.QualifiedProfile{}
	}

	switch outcome.Status {
	case scout.FetchNotFound:
		o.logger.Debug("profile not found", zap.String("username", cand.username))
		return false, scout.QualifiedProfile{}
	case scout.FetchTransient:
		o.store.RecordError()
		o.metrics.FetchErrors.Inc()
		return false, scout.QualifiedProfile{}
	}

	record := outcome.Record
	ok, reason := o.qualify.Evaluate(record, o.opts.Criteria)
	if !ok {
		o.logger.Debug("candidate rejected",
			zap.String("username", cand.username),
			zap.String("reason", reason),
		)
		return false, scout.QualifiedProfile{}
	}

	signals := o.signals.Analyze(record.Username, record.Bio)
	profile := scout.QualifiedProfile{
		CandidateRecord: record,
		Language:        signals.Language,
		Demographic:     signals.Demographic,
		Reason:          reason,
		Source:          cand.source,
		DiscoveredAt:    o.clock.Now(),
	}
	if !o.store.AddAccepted(profile) {
		return true, profile
	}

	total := len(o.store.Accepted())
	o.metrics.ProfilesAccepted.Inc()
	o.notifier.ProfileAccepted(profile, total)
	o.logger.Info("candidate accepted",
		zap.String("username", cand.username),
		zap.String("source", cand.source),
		zap.String("reason", reason),
	)
	return true, profile
}

func (o *Orchestrator) budgetSpent() bool {
	return o.opts.Criteria.MaxProfiles > 0 && o.store.TotalExamined() >= o.opts.Criteria.MaxProfiles
}

func (o *Orchestrator) summarize(start time.Time) Summary {
	return Summary{
		Examined: o.store.TotalExamined(),
		Accepted: len(o.store.Accepted()),
		Errors:   o.store.ErrorCount(),
		Elapsed:  o.clock.Now().Sub(start),
	}
}
