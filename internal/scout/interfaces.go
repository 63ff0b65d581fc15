package scout

import (
	"context"
	"time"
)

// Acquirer is the browsing-session client the orchestrator drives. All
// blocking calls honor ctx cancellation.
type Acquirer interface {
	// Authenticate logs the session in, retrying transient failures.
	Authenticate(ctx context.Context, creds Credentials) error
	// Discover lists seed usernames for a topic.
	Discover(ctx context.Context, topic string, limit int) ([]string, error)
	// FetchProfile loads a profile page and extracts a candidate record.
	FetchProfile(ctx context.Context, username string) (FetchOutcome, error)
	// FetchFollowers lists follower usernames, up to limit.
	FetchFollowers(ctx context.Context, username string, limit int) ([]string, error)
	// Release tears down the browsing session.
	Release()
}

// Qualifier decides whether a candidate is worth keeping.
type Qualifier interface {
	Evaluate(record CandidateRecord, criteria CrawlCriteria) (accepted bool, reason string)
}

// SessionStore tracks crawl progress durably across process restarts.
type SessionStore interface {
	Seen(username string) bool
	MarkExamined(username string)
	AddAccepted(profile QualifiedProfile) bool
	Accepted() []QualifiedProfile
	RecordError()
	ErrorCount() int
	SetDepth(depth int)
	TotalExamined() int
	Save() error
}

// Exporter writes accepted profiles to a downstream artifact.
type Exporter interface {
	Export(profiles []QualifiedProfile) error
}

// Notifier delivers out-of-band progress signals. Implementations must not
// fail the crawl: delivery errors are theirs to log and swallow.
type Notifier interface {
	ProfileAccepted(profile QualifiedProfile, totalAccepted int)
	SessionSummary(examined, accepted, errors int, elapsed time.Duration)
}

// Clock abstracts wall time for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current wall time.
func (SystemClock) Now() time.Time { return time.Now() }
