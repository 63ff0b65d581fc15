package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soclens/profile-scout/internal/scout"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func testClock() fixedClock {
	return fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func profile(username string) scout.QualifiedProfile {
	return scout.QualifiedProfile{
		CandidateRecord: scout.CandidateRecord{
			Username:      username,
			FollowerCount: 1234,
			Bio:           "Texas mom",
		},
		Language:     "en",
		Reason:       "USA location: USA location confirmed: texas",
		Source:       "momlife",
		DiscoveredAt: testClock().Now(),
	}
}

func TestOpenFreshSession(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := Open(path, testClock(), zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 0, store.TotalExamined())
	require.False(t, store.Seen("anyone"))
}

func TestRoundTripPersistence(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := Open(path, testClock(), zap.NewNop())
	require.NoError(t, err)

	store.MarkExamined("alpha")
	store.MarkExamined("bravo")
	store.MarkExamined("charlie")
	require.True(t, store.AddAccepted(profile("bravo")))
	require.True(t, store.AddAccepted(profile("charlie")))
	store.SetDepth(2)
	store.RecordError()
	require.NoError(t, store.Save())

	reloaded, err := Open(path, testClock(), zap.NewNop())
	require.NoError(t, err)

	original := store.Snapshot()
	restored := reloaded.Snapshot()

	require.Equal(t, original.ID, restored.ID)
	require.Equal(t, original.Examined, restored.Examined)
	require.Equal(t, original.Depth, restored.Depth)
	require.Equal(t, original.TotalExamined, restored.TotalExamined)
	require.Equal(t, original.ErrorCount, restored.ErrorCount)
	require.Equal(t, original.StartedAt, restored.StartedAt)

	// Accepted order and field values survive the trip.
	require.Len(t, restored.Accepted, 2)
	require.Equal(t, "bravo", restored.Accepted[0].Username)
	require.Equal(t, "charlie", restored.Accepted[1].Username)
	require.Equal(t, original.Accepted, restored.Accepted)
}

func TestExaminedSetCollapsesDuplicatesOnLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	raw := map[string]any{
		"id":             "abc",
		"examined":       []string{"alpha", "alpha", "bravo"},
		"accepted":       []any{},
		"current_depth":  1,
		"total_examined": 2,
		"error_count":    0,
		"started_at":     testClock().Now(),
	}
	payload, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	store, err := Open(path, testClock(), zap.NewNop())
	require.NoError(t, err)

	snap := store.Snapshot()
	require.Len(t, snap.Examined, 2)
	require.True(t, store.Seen("alpha"))
	require.True(t, store.Seen("bravo"))
}

func TestMarkExaminedIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := Open(path, testClock(), zap.NewNop())
	require.NoError(t, err)

	store.MarkExamined("alpha")
	store.MarkExamined("alpha")
	require.Equal(t, 1, store.TotalExamined())
}

func TestReacceptanceIsNoOp(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := Open(path, testClock(), zap.NewNop())
	require.NoError(t, err)

	require.True(t, store.AddAccepted(profile("alpha")))
	require.False(t, store.AddAccepted(profile("alpha")))
	require.Len(t, store.Accepted(), 1)
}

func TestOpenCorruptFileFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path, testClock(), zap.NewNop())
	require.Error(t, err)
}
