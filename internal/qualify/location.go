package qualify

import (
	"fmt"
	"strings"
)

// usaTokens are positive USA-locale indicators: states, major cities, and
// general identifiers. Two-letter state abbreviations that collide with
// common English words (in, or, me, oh, ...) are deliberately omitted;
// token matching is word-bounded, so keeping them would still accept
// ordinary prose.
var usaTokens = []string{
	// States.
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado",
	"connecticut", "delaware", "florida", "georgia", "hawaii", "idaho",
	"illinois", "indiana", "iowa", "kansas", "kentucky", "louisiana",
	"maine", "maryland", "massachusetts", "michigan", "minnesota",
	"mississippi", "missouri", "montana", "nebraska", "nevada",
	"new hampshire", "new jersey", "new mexico", "new york",
	"north carolina", "north dakota", "ohio", "oklahoma", "oregon",
	"pennsylvania", "rhode island", "south carolina", "south dakota",
	"tennessee", "texas", "utah", "vermont", "virginia", "washington",
	"west virginia", "wisconsin", "wyoming",
	// Unambiguous abbreviations.
	"ak", "az", "ca", "fl", "il", "nj", "nm", "nv", "ny", "tx", "wv",
	// Major cities.
	"new york city", "nyc", "los angeles", "chicago", "houston", "phoenix",
	"philadelphia", "san antonio", "san diego", "dallas", "san jose",
	"austin", "jacksonville", "fort worth", "columbus", "charlotte",
	"san francisco", "indianapolis", "seattle", "denver", "washington dc",
	"boston", "nashville", "miami", "atlanta", "vegas", "las vegas",
	"detroit", "portland", "memphis",
	// General identifiers and territories.
	"usa", "united states", "america", "american",
	"puerto rico", "guam", "virgin islands", "american samoa",
}

// nonUSATokens reject immediately when present.
var nonUSATokens = []string{
	"uk", "london", "england", "britain", "canada", "toronto", "vancouver",
	"australia", "sydney", "melbourne", "germany", "berlin", "france",
	"paris", "italy", "spain", "mexico", "brazil", "india", "mumbai",
	"delhi", "japan", "tokyo", "china", "beijing", "russia", "moscow",
}

// ambiguousCities are shared across countries and only count as USA
// evidence when a positive token co-occurs.
var ambiguousCities = []string{
	"springfield", "madison", "franklin", "georgetown", "clinton",
}

// LocateUSA decides whether the biography and location fields place the
// profile in the USA, returning the evidence string either way.
func LocateUSA(bio, location string) (bool, string) {
	text := normalizeTokens(bio + " " + location)

	for _, token := range nonUSATokens {
		if containsToken(text, token) {
			return false, fmt.Sprintf("non-USA location detected: %s", token)
		}
	}

	var matches []string
	for _, token := range usaTokens {
		if containsToken(text, token) {
			matches = append(matches, token)
			if len(matches) == 3 {
				break
			}
		}
	}
	if len(matches) > 0 {
		return true, fmt.Sprintf("USA location confirmed: %s", strings.Join(matches, ", "))
	}

	for _, city := range ambiguousCities {
		if containsToken(text, city) {
			return false, fmt.Sprintf("ambiguous city (%s) without USA context", city)
		}
	}

	return false, "no USA location evidence"
}

// normalizeTokens lowercases and collapses punctuation to spaces so token
// lookups are word-bounded.
func normalizeTokens(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, strings.ToLower(s))
	return " " + strings.Join(strings.Fields(mapped), " ") + " "
}

func containsToken(normalized, token string) bool {
	return strings.Contains(normalized, " "+token+" ")
}
