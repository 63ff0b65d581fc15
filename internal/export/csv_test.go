package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soclens/profile-scout/internal/scout"
)

func TestCSVWriterRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "profiles.csv")
	writer, err := NewCSVWriter(path)
	require.NoError(t, err)

	profiles := []scout.QualifiedProfile{
		{
			CandidateRecord: scout.CandidateRecord{
				Username:       "austinmom",
				ProfileURL:     "https://www.instagram.com/austinmom/",
				FollowerCount:  5000,
				FollowingCount: 300,
				PostCount:      80,
				Bio:            "mom of 3, Austin TX",
				EngagementRate: 3.2,
			},
			Language:     "en",
			Demographic:  "female",
			Source:       "momlife",
			Reason:       "USA location confirmed: texas",
			DiscoveredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, writer.Export(profiles))
	require.NoError(t, writer.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, csvHeader, rows[0])
	require.Equal(t, "austinmom", rows[1][0])
	require.Equal(t, "5000", rows[1][2])
	require.Equal(t, "3.20", rows[1][5])
	require.Equal(t, "momlife", rows[1][10])
	require.Equal(t, "2025-06-01T12:00:00Z", rows[1][12])
}

func TestNewCSVWriterCreatesMissingDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deeply", "nested", "profiles.csv")
	writer, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}
