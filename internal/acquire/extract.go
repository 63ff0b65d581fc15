package acquire

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/soclens/profile-scout/internal/scout"
)

var (
	countsPattern  = regexp.MustCompile(`(?i)([\d.,]+[KkMm]?)\s+Followers?,\s+([\d.,]+[KkMm]?)\s+Following,\s+([\d.,]+[KkMm]?)\s+Posts?`)
	likesPattern   = regexp.MustCompile(`(?i)([\d.,]+[KkMm]?)\s+likes?`)
	commentPattern = regexp.MustCompile(`(?i)([\d.,]+[KkMm]?)\s+comments?`)
)

// notFoundMarkers are page texts that identify a missing or removed profile.
var notFoundMarkers = []string{
	"sorry, this page isn't available",
	"page not found",
	"the link you followed may be broken",
}

// transientMarkers identify interstitials worth retrying later.
var transientMarkers = []string{
	"please wait a few minutes before you try again",
	"try again later",
}

func pageHasMarker(body string, markers []string) bool {
	lower := strings.ToLower(body)
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseProfile extracts a candidate record from a rendered profile page.
// Every field is best-effort: a selector that matches nothing leaves the
// field at its zero value and extraction continues.
func parseProfile(username string, doc *goquery.Document, baseURL string) scout.CandidateRecord {
	record := scout.CandidateRecord{
		Username:   username,
		ProfileURL: strings.TrimRight(baseURL, "/") + "/" + username + "/",
	}

	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if m := countsPattern.FindStringSubmatch(desc); m != nil {
			record.FollowerCount = scout.ParseCount(m[1])
			record.FollowingCount = scout.ParseCount(m[2])
			record.PostCount = scout.ParseCount(m[3])
		}
	}
	if record.FollowerCount == 0 {
		parseHeaderCounts(doc, &record)
	}

	if pic, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		record.ProfilePicURL = pic
	} else if src, ok := doc.Find("header img").First().Attr("src"); ok {
		record.ProfilePicURL = src
	}

	record.Bio = strings.TrimSpace(doc.Find("header section div.biography").First().Text())
	record.Location = strings.TrimSpace(doc.Find(`header a[href*="/locations/"]`).First().Text())

	record.Verified = doc.Find(`svg[aria-label="Verified"]`).Length() > 0
	record.HasActiveStory = doc.Find("header canvas").Length() > 0

	body := doc.Text()
	record.Private = strings.Contains(strings.ToLower(body), "this account is private")

	if datetime, ok := doc.Find("article time[datetime]").First().Attr("datetime"); ok {
		if ts, err := time.Parse(time.RFC3339, datetime); err == nil {
			record.LastPostAt = &ts
		}
	}

	return record
}

// parseHeaderCounts reads the follower/following/post counts from the
// profile header list when the page meta is absent.
func parseHeaderCounts(doc *goquery.Document, record *scout.CandidateRecord) {
	doc.Find("header section ul li").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.ToLower(sel.Text())
		value := sel.Find("span").First().Text()
		if title, ok := sel.Find("span[title]").Attr("title"); ok {
			value = title
		}
		switch {
		case strings.Contains(text, "follower"):
			record.FollowerCount = scout.ParseCount(value)
		case strings.Contains(text, "following"):
			record.FollowingCount = scout.ParseCount(value)
		case strings.Contains(text, "post"):
			record.PostCount = scout.ParseCount(value)
		}
		return i < 5
	})
}

// sampleEngagement averages likes+comments over up to samples recent posts
// and returns a percentage of the follower count. A profile with no readable
// post stats or no followers yields 0, which qualification treats as
// unknown rather than suspicious.
func sampleEngagement(doc *goquery.Document, followers, samples int) float64 {
	if followers <= 0 || samples <= 0 {
		return 0
	}

	var total, counted int
	doc.Find(`article a[href*="/p/"]`).EachWithBreak(func(_ int, post *goquery.Selection) bool {
		if counted >= samples {
			return false
		}
		interactions, ok := postInteractions(post)
		if !ok {
			return true
		}
		total += interactions
		counted++
		return true
	})

	if counted == 0 {
		return 0
	}
	average := float64(total) / float64(counted)
	return average / float64(followers) * 100
}

func postInteractions(post *goquery.Selection) (int, bool) {
	var interactions int
	var found bool
	post.Find("span[aria-label]").Each(func(_ int, span *goquery.Selection) {
		label, _ := span.Attr("aria-label")
		if m := likesPattern.FindStringSubmatch(label); m != nil {
			interactions += scout.ParseCount(m[1])
			found = true
		}
		if m := commentPattern.FindStringSubmatch(label); m != nil {
			interactions += scout.ParseCount(m[1])
			found = true
		}
	})
	return interactions, found
}
