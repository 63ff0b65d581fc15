package acquire

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const profilePage = `<html>
<head>
<meta property="og:description" content="12.3K Followers, 450 Following, 89 Posts - see photos from austinmom">
<meta property="og:image" content="https://cdn.example.com/austinmom.jpg">
</head>
<body>
<header>
<canvas height="66" width="66"></canvas>
<section>
<div class="biography">mom of 3 living my best life in Austin, Texas</div>
<a href="/explore/locations/213385402/austin-texas/">Austin, Texas</a>
</section>
</header>
<article>
<a href="/p/AAA111/"><span aria-label="1,200 likes"></span><span aria-label="34 comments"></span></a>
<a href="/p/BBB222/"><span aria-label="980 likes"></span><span aria-label="21 comments"></span></a>
<a href="/p/CCC333/"><span aria-label="1.1K likes"></span><span aria-label="40 comments"></span></a>
<a href="/p/DDD444/"><span aria-label="5,000 likes"></span></a>
<time datetime="2025-05-20T14:30:00Z">May 20</time>
</article>
</body>
</html>`

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestParseProfile(t *testing.T) {
	t.Parallel()

	record := parseProfile("austinmom", doc(t, profilePage), "https://www.instagram.com")

	require.Equal(t, "austinmom", record.Username)
	require.Equal(t, "https://www.instagram.com/austinmom/", record.ProfileURL)
	require.Equal(t, 12300, record.FollowerCount)
	require.Equal(t, 450, record.FollowingCount)
	require.Equal(t, 89, record.PostCount)
	require.Equal(t, "mom of 3 living my best life in Austin, Texas", record.Bio)
	require.Equal(t, "Austin, Texas", record.Location)
	require.Equal(t, "https://cdn.example.com/austinmom.jpg", record.ProfilePicURL)
	require.False(t, record.Verified)
	require.False(t, record.Private)
	require.True(t, record.HasActiveStory)
	require.NotNil(t, record.LastPostAt)
	require.Equal(t, "2025-05-20T14:30:00Z", record.LastPostAt.UTC().Format("2006-01-02T15:04:05Z"))
}

func TestParseProfileHeaderCountFallback(t *testing.T) {
	t.Parallel()

	page := `<html><body><header><section>
	<ul>
	<li><span title="5,400">5.4K</span> followers</li>
	<li><span>320</span> following</li>
	<li><span>77</span> posts</li>
	</ul>
	</section></header></body></html>`

	record := parseProfile("fallback", doc(t, page), "https://www.instagram.com")
	require.Equal(t, 5400, record.FollowerCount)
	require.Equal(t, 320, record.FollowingCount)
	require.Equal(t, 77, record.PostCount)
}

func TestParseProfileMissingFieldsKeepZeroValues(t *testing.T) {
	t.Parallel()

	record := parseProfile("sparse", doc(t, "<html><body><header></header></body></html>"), "https://www.instagram.com")

	require.Equal(t, "sparse", record.Username)
	require.Zero(t, record.FollowerCount)
	require.Empty(t, record.Bio)
	require.Empty(t, record.ProfilePicURL)
	require.Nil(t, record.LastPostAt)
	require.False(t, record.HasActiveStory)
}

func TestParseProfileDetectsVerifiedAndPrivate(t *testing.T) {
	t.Parallel()

	page := `<html><body><header>
	<svg aria-label="Verified"></svg>
	</header>
	<p>This Account is Private</p>
	</body></html>`

	record := parseProfile("celeb", doc(t, page), "https://www.instagram.com")
	require.True(t, record.Verified)
	require.True(t, record.Private)
}

func TestSampleEngagement(t *testing.T) {
	t.Parallel()

	d := doc(t, profilePage)

	// Three samples: (1234 + 1001 + 1140) / 3 = 1125 interactions on
	// 12300 followers, about 9.15 percent.
	rate := sampleEngagement(d, 12300, 3)
	require.InDelta(t, 9.146, rate, 0.01)

	require.Zero(t, sampleEngagement(d, 0, 3))
	require.Zero(t, sampleEngagement(d, 12300, 0))
	require.Zero(t, sampleEngagement(doc(t, "<html><body></body></html>"), 12300, 3))
}

func TestPageMarkers(t *testing.T) {
	t.Parallel()

	require.True(t, pageHasMarker("<p>Sorry, this page isn't available.</p>", notFoundMarkers))
	require.True(t, pageHasMarker("Please wait a few minutes before you try again.", transientMarkers))
	require.False(t, pageHasMarker("<p>regular profile</p>", notFoundMarkers))
}
