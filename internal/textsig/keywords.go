package textsig

// Keyword inventories driving the heuristic signal extractors. These are
// deliberately plain data so a stronger model can replace the scoring
// functions without touching the qualification pipeline.

var commercialKeywords = []string{
	"link in bio", "linktree", "dm for collab", "business inquiries",
	"sponsored", "promo code", "discount", "shop now", "buy now",
	"affiliate", "partnership", "brand ambassador", "influencer",
	"onlyfans", "premium", "exclusive content", "subscribe",
}

var femaleIndicators = []string{
	"she/her", "girl", "woman", "mom", "mother", "wife", "daughter",
	"sister", "queen", "goddess", "beauty", "makeup", "fashion",
}

var maleIndicators = []string{
	"he/him", "guy", "man", "dad", "father", "husband", "son",
	"brother", "king", "fitness", "gym", "sports",
}

var topicKeywords = map[string][]string{
	"fitness":  {"gym", "workout", "fitness", "health", "yoga", "trainer"},
	"fashion":  {"fashion", "style", "outfit", "designer", "model"},
	"food":     {"food", "cooking", "chef", "restaurant", "recipe"},
	"travel":   {"travel", "adventure", "explore", "wanderlust", "vacation"},
	"tech":     {"tech", "developer", "coding", "startup", "innovation"},
	"art":      {"art", "artist", "creative", "design", "photography"},
	"music":    {"music", "musician", "singer", "band", "concert"},
	"business": {"entrepreneur", "business", "ceo", "founder", "startup"},
}

// englishStopwords back the fallback language heuristic when the detector
// has no confident opinion.
var englishStopwords = []string{
	"the", "and", "or", "but", "in", "on", "at", "to", "for", "with",
}
