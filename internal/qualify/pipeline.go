// Package qualify implements the multi-stage accept/reject decision for a
// candidate profile. Evaluation is an ordered short-circuit chain: cheap
// structural checks first, text analysis last, and the first failing stage
// names the rejection reason.
package qualify

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/soclens/profile-scout/internal/scout"
	"github.com/soclens/profile-scout/internal/textsig"
)

// qualityWarnThreshold marks candidates whose extracted data looks thin.
// A low score is logged, never rejected: missing data is a markup problem,
// not evidence about the profile.
const qualityWarnThreshold = 70

var _ scout.Qualifier = (*Pipeline)(nil)

// Pipeline evaluates candidates against the active criteria.
type Pipeline struct {
	signals *textsig.Extractor
	logger  *zap.Logger
}

// New constructs a Pipeline.
func New(signals *textsig.Extractor, logger *zap.Logger) *Pipeline {
	return &Pipeline{signals: signals, logger: logger}
}

// Evaluate returns the accept decision and a human-readable reason. For
// identical inputs it always returns the same pair.
func (p *Pipeline) Evaluate(record scout.CandidateRecord, criteria scout.CrawlCriteria) (bool, string) {
	var reasons []string

	if record.FollowerCount < criteria.MinFollowers || record.FollowerCount > criteria.MaxFollowers {
		return false, fmt.Sprintf("follower count (%d) outside range %d-%d",
			record.FollowerCount, criteria.MinFollowers, criteria.MaxFollowers)
	}

	if record.PostCount < criteria.MinPosts {
		return false, fmt.Sprintf("post count (%d) below minimum %d", record.PostCount, criteria.MinPosts)
	}

	if record.Verified {
		return false, "verified account"
	}
	if record.Private {
		return false, "private profile"
	}

	isUSA, locationReason := LocateUSA(record.Bio, record.Location)
	if !isUSA {
		return false, fmt.Sprintf("location check failed: %s", locationReason)
	}
	reasons = append(reasons, fmt.Sprintf("USA location: %s", locationReason))

	if !record.HasActiveStory {
		return false, "no active story"
	}
	reasons = append(reasons, "active story confirmed")

	if criteria.RequireProfilePic && record.ProfilePicURL == "" {
		return false, "no profile picture"
	}

	analysis := p.signals.Analyze(record.Username, record.Bio)

	if analysis.Language != "en" && analysis.Language != "unknown" {
		reasons = append(reasons, fmt.Sprintf("bio language: %s", analysis.Language))
	}

	if analysis.CommercialIntent {
		return false, "commercial intent detected in bio"
	}

	bioLower := strings.ToLower(record.Bio)
	for _, kw := range criteria.ExcludeKeywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(bioLower, strings.ToLower(kw)) {
			return false, fmt.Sprintf("excluded keyword found: %s", kw)
		}
	}

	// Zero/unknown engagement is not penalized: the sub-step may simply
	// have failed, which is not evidence of a bot.
	if record.EngagementRate > 0 {
		if record.EngagementRate < criteria.MinEngagement || record.EngagementRate > criteria.MaxEngagement {
			return false, fmt.Sprintf("engagement rate (%.2f%%) outside normal range", record.EngagementRate)
		}
		reasons = append(reasons, fmt.Sprintf("normal engagement rate: %.2f%%", record.EngagementRate))
	}

	if len(criteria.IncludeKeywords) > 0 {
		found := false
		for _, kw := range criteria.IncludeKeywords {
			kw = strings.TrimSpace(kw)
			if kw != "" && strings.Contains(bioLower, strings.ToLower(kw)) {
				found = true
				break
			}
		}
		if !found {
			return false, "does not contain required keywords"
		}
		reasons = append(reasons, "required keyword present")
	}

	if analysis.Demographic != "unknown" {
		reasons = append(reasons, fmt.Sprintf("demographic: %s", analysis.Demographic))
	}

	if score := qualityScore(record); score < qualityWarnThreshold {
		p.logger.Warn("low quality score for accepted candidate",
			zap.String("username", record.Username),
			zap.Int("score", score),
		)
	}

	return true, strings.Join(reasons, "; ")
}

// qualityScore estimates how complete the extracted record is.
func qualityScore(record scout.CandidateRecord) int {
	score := 100
	if record.Bio == "" {
		score -= 20
	}
	if record.FollowerCount == 0 {
		score -= 10
	}
	if record.PostCount == 0 {
		score -= 10
	}
	if record.ProfilePicURL == "" {
		score -= 10
	}
	if record.EngagementRate == 0 {
		score -= 15
	}
	return score
}
