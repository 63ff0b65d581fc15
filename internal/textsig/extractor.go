// Package textsig derives heuristic signals from free-form biography text:
// language, sentiment, demographic estimate, topic tags, and commercial
// intent. It is the weakest, most heuristic part of the system and is kept
// behind one interface so it can be swapped for a stronger model later.
package textsig

import (
	"regexp"
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Sentiment buckets for the compound polarity score.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"

	polarityThreshold = 0.05
)

// Signals is the full set of derived attributes for one biography.
type Signals struct {
	Language         string
	Sentiment        string
	CommercialIntent bool
	Demographic      string
	Topics           []string
	AgeIndicators    []string
}

var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{2})\b`),
	regexp.MustCompile(`(?i)born in (\d{4})`),
	regexp.MustCompile(`(?i)class of (\d{4})`),
}

// iso1 maps the detector's common ISO 639-3 codes to the two-letter codes
// the rest of the system reports.
var iso1 = map[string]string{
	"eng": "en", "spa": "es", "fra": "fr", "deu": "de", "por": "pt",
	"ita": "it", "rus": "ru", "jpn": "ja", "kor": "ko", "zho": "zh",
	"ara": "ar", "hin": "hi", "tur": "tr", "nld": "nl", "pol": "pl",
}

// Extractor computes Signals with a bounded per-candidate cache so the
// pipeline can consult the same biography at several stages for free.
type Extractor struct {
	cache *lru.Cache[string, Signals]
}

// New builds an Extractor with the given cache capacity.
func New(cacheSize int) (*Extractor, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cache, err := lru.New[string, Signals](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Extractor{cache: cache}, nil
}

// Analyze derives all signals for the candidate's biography, memoized by
// username.
func (e *Extractor) Analyze(username, bio string) Signals {
	if cached, ok := e.cache.Get(username); ok {
		return cached
	}

	signals := Signals{
		Language:    "unknown",
		Sentiment:   SentimentNeutral,
		Demographic: "unknown",
	}
	if strings.TrimSpace(bio) != "" {
		signals = Signals{
			Language:         detectLanguage(bio),
			Sentiment:        scoreSentiment(bio),
			CommercialIntent: HasCommercialIntent(bio),
			Demographic:      estimateDemographic(bio),
			Topics:           extractTopics(bio),
			AgeIndicators:    ageIndicators(bio),
		}
	}

	e.cache.Add(username, signals)
	return signals
}

// HasCommercialIntent reports whether the biography matches the fixed
// promotional keyword set.
func HasCommercialIntent(bio string) bool {
	lower := strings.ToLower(bio)
	for _, kw := range commercialKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if info.IsReliable() {
		code := whatlanggo.LangToString(info.Lang)
		if short, ok := iso1[code]; ok {
			return short
		}
		return code
	}

	// Fallback word-overlap heuristic for short or mixed text.
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	present := make(map[string]struct{}, len(words))
	for _, w := range words {
		present[strings.Trim(w, ".,!?:;")] = struct{}{}
	}
	hits := 0
	for _, stop := range englishStopwords {
		if _, ok := present[stop]; ok {
			hits++
		}
	}
	if hits > 2 {
		return "en"
	}
	return "unknown"
}

func scoreSentiment(text string) string {
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	score := sentitext.PolarityScore(parsed)
	switch {
	case score.Compound >= polarityThreshold:
		return SentimentPositive
	case score.Compound <= -polarityThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func estimateDemographic(bio string) string {
	lower := strings.ToLower(bio)
	female := countMatches(lower, femaleIndicators)
	male := countMatches(lower, maleIndicators)
	switch {
	case female > male:
		return "female"
	case male > female:
		return "male"
	default:
		return "unknown"
	}
}

func extractTopics(bio string) []string {
	lower := strings.ToLower(bio)
	var topics []string
	for topic, keywords := range topicKeywords {
		if countMatches(lower, keywords) > 0 {
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)
	return topics
}

func ageIndicators(bio string) []string {
	var indicators []string
	for _, pattern := range agePatterns {
		for _, match := range pattern.FindAllStringSubmatch(bio, -1) {
			if len(match) > 1 {
				indicators = append(indicators, match[1])
			}
		}
	}
	return indicators
}

func countMatches(lower string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}
