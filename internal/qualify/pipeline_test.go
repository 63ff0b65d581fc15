package qualify

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soclens/profile-scout/internal/scout"
	"github.com/soclens/profile-scout/internal/textsig"
)

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	extractor, err := textsig.New(64)
	require.NoError(t, err)
	return New(extractor, zap.NewNop())
}

func baseCriteria() scout.CrawlCriteria {
	return scout.CrawlCriteria{
		MinFollowers:      1000,
		MaxFollowers:      50000,
		MinPosts:          50,
		MinEngagement:     0.5,
		MaxEngagement:     15.0,
		RequireProfilePic: true,
		MaxDepth:          3,
		MaxProfiles:       1000,
	}
}

func baseRecord() scout.CandidateRecord {
	return scout.CandidateRecord{
		Username:       "austinmom",
		FollowerCount:  5000,
		PostCount:      80,
		Bio:            "mom of 3 in Austin, Texas",
		HasActiveStory: true,
		ProfilePicURL:  "https://cdn.example.com/pic.jpg",
		EngagementRate: 3.2,
	}
}

func TestEvaluateAcceptsMatchingProfile(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	accepted, reason := p.Evaluate(baseRecord(), baseCriteria())
	require.True(t, accepted, "reason: %s", reason)
	require.Contains(t, reason, "USA location")
	require.Contains(t, reason, "normal engagement rate: 3.20%")
}

func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	firstAccepted, firstReason := p.Evaluate(baseRecord(), baseCriteria())
	for range 5 {
		accepted, reason := p.Evaluate(baseRecord(), baseCriteria())
		require.Equal(t, firstAccepted, accepted)
		require.Equal(t, firstReason, reason)
	}
}

func TestEvaluateFollowerRangeShortCircuits(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	record := baseRecord()
	record.FollowerCount = 200000
	// Everything else disqualifying too; the follower reason must win.
	record.Verified = true
	record.Private = true
	record.Bio = "OnlyFans in Toronto"

	accepted, reason := p.Evaluate(record, baseCriteria())
	require.False(t, accepted)
	require.Contains(t, reason, "follower count (200000) outside range 1000-50000")
}

func TestEvaluateBoundaryInclusive(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	criteria := baseCriteria()

	record := baseRecord()
	record.FollowerCount = 1000
	accepted, _ := p.Evaluate(record, criteria)
	require.True(t, accepted)

	record.FollowerCount = 999
	accepted, reason := p.Evaluate(record, criteria)
	require.False(t, accepted)
	require.Contains(t, reason, "follower count (999)")

	record = baseRecord()
	record.FollowerCount = 50000
	accepted, _ = p.Evaluate(record, criteria)
	require.True(t, accepted)
}

func TestEvaluateRejectionLadder(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	criteria := baseCriteria()

	cases := []struct {
		name   string
		mutate func(*scout.CandidateRecord)
		reason string
	}{
		{"low posts", func(r *scout.CandidateRecord) { r.PostCount = 10 }, "post count (10) below minimum 50"},
		{"verified", func(r *scout.CandidateRecord) { r.Verified = true }, "verified account"},
		{"private", func(r *scout.CandidateRecord) { r.Private = true }, "private profile"},
		{"non-usa", func(r *scout.CandidateRecord) { r.Bio = "living in Berlin" }, "location check failed"},
		{"no story", func(r *scout.CandidateRecord) { r.HasActiveStory = false }, "no active story"},
		{"no picture", func(r *scout.CandidateRecord) { r.ProfilePicURL = "" }, "no profile picture"},
		{"commercial", func(r *scout.CandidateRecord) {
			r.Username = "texasgirl"
			r.Bio = "Texas girl, link in bio!"
		}, "commercial intent"},
		{"fast engagement", func(r *scout.CandidateRecord) { r.EngagementRate = 40 }, "engagement rate (40.00%) outside normal range"},
		{"slow engagement", func(r *scout.CandidateRecord) { r.EngagementRate = 0.1 }, "engagement rate (0.10%) outside normal range"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := baseRecord()
			tc.mutate(&record)
			accepted, reason := p.Evaluate(record, criteria)
			require.False(t, accepted)
			require.Contains(t, reason, tc.reason)
		})
	}
}

func TestEvaluateZeroEngagementNotPenalized(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	record := baseRecord()
	record.EngagementRate = 0

	accepted, reason := p.Evaluate(record, baseCriteria())
	require.True(t, accepted, "reason: %s", reason)
	require.NotContains(t, reason, "engagement")
}

func TestEvaluateExcludeKeywords(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	criteria := baseCriteria()
	criteria.ExcludeKeywords = []string{"Escort", "sugar daddy"}

	record := baseRecord()
	record.Bio = "Texas mom, part time escort driver"
	accepted, reason := p.Evaluate(record, criteria)
	require.False(t, accepted)
	require.Contains(t, reason, "excluded keyword found: Escort")
}

func TestEvaluateIncludeKeywords(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	criteria := baseCriteria()
	criteria.IncludeKeywords = []string{"yoga", "runner"}

	record := baseRecord()
	accepted, reason := p.Evaluate(record, criteria)
	require.False(t, accepted)
	require.Contains(t, reason, "required keywords")

	record.Bio = "mom of 3 in Austin, Texas, morning runner"
	record.Username = "austinrunner"
	accepted, reason = p.Evaluate(record, criteria)
	require.True(t, accepted, "reason: %s", reason)
	require.Contains(t, reason, "required keyword present")
}
