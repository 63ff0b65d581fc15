// Package scout defines the core domain types shared across the acquisition,
// qualification, and expansion layers.
package scout

import "time"

// CandidateRecord is the raw profile data extracted from a profile page.
// Extraction is best-effort per field: a field that cannot be read keeps its
// zero value rather than failing the whole record.
type CandidateRecord struct {
	Username       string     `json:"username"`
	ProfileURL     string     `json:"profile_url"`
	FollowerCount  int        `json:"follower_count"`
	FollowingCount int        `json:"following_count"`
	PostCount      int        `json:"post_count"`
	Bio            string     `json:"bio"`
	Location       string     `json:"location"`
	Verified       bool       `json:"verified"`
	Private        bool       `json:"private"`
	HasActiveStory bool       `json:"has_active_story"`
	ProfilePicURL  string     `json:"profile_pic_url"`
	LastPostAt     *time.Time `json:"last_post_at,omitempty"`
	EngagementRate float64    `json:"engagement_rate"`
}

// QualifiedProfile is a candidate that passed every qualification stage,
// annotated with the signals and provenance gathered along the way.
type QualifiedProfile struct {
	CandidateRecord

	Language     string    `json:"language"`
	Demographic  string    `json:"demographic"`
	Reason       string    `json:"reason"`
	Source       string    `json:"source"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// CrawlCriteria is the tunable acceptance envelope for a crawl run.
type CrawlCriteria struct {
	MinFollowers      int      `json:"min_followers" mapstructure:"min_followers"`
	MaxFollowers      int      `json:"max_followers" mapstructure:"max_followers"`
	MinPosts          int      `json:"min_posts" mapstructure:"min_posts"`
	MinEngagement     float64  `json:"min_engagement" mapstructure:"min_engagement"`
	MaxEngagement     float64  `json:"max_engagement" mapstructure:"max_engagement"`
	RequireProfilePic bool     `json:"require_profile_pic" mapstructure:"require_profile_pic"`
	IncludeKeywords   []string `json:"include_keywords" mapstructure:"include_keywords"`
	ExcludeKeywords   []string `json:"exclude_keywords" mapstructure:"exclude_keywords"`
	SeedTopics        []string `json:"seed_topics" mapstructure:"seed_topics"`
	MaxDepth          int      `json:"max_depth" mapstructure:"max_depth"`
	MaxProfiles       int      `json:"max_profiles" mapstructure:"max_profiles"`
}

// Credentials identifies the platform account driving the browsing session.
type Credentials struct {
	Username string
	Password string
}

// FetchStatus classifies the outcome of a profile fetch.
type FetchStatus int

const (
	// FetchFound means the profile page rendered and a record was extracted.
	FetchFound FetchStatus = iota
	// FetchNotFound means the platform reported the profile as missing or
	// unavailable. Not retryable.
	FetchNotFound
	// FetchTransient means the fetch failed in a way worth retrying, such
	// as a timeout or a rate-limit interstitial.
	FetchTransient
)

// String returns the status name for logs.
func (s FetchStatus) String() string {
	switch s {
	case FetchFound:
		return "found"
	case FetchNotFound:
		return "not_found"
	case FetchTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// FetchOutcome pairs a fetch status with the record extracted on success.
type FetchOutcome struct {
	Status FetchStatus
	Record CandidateRecord
}

// Found wraps a successfully extracted record.
func Found(record CandidateRecord) FetchOutcome {
	return FetchOutcome{Status: FetchFound, Record: record}
}

// NotFound marks a profile the platform says does not exist.
func NotFound() FetchOutcome {
	return FetchOutcome{Status: FetchNotFound}
}

// Transient marks a retryable fetch failure.
func Transient() FetchOutcome {
	return FetchOutcome{Status: FetchTransient}
}
