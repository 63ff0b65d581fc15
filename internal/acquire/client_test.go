package acquire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScrollBudgetCeiling(t *testing.T) {
	t.Parallel()

	cases := []struct {
		limit int
		want  int
	}{
		{1, 2},
		{11, 2},
		{12, 2}, // exact multiple gets only the slack round
		{13, 3},
		{24, 3},
		{50, 6},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, scrollBudget(tc.limit), "limit %d", tc.limit)
	}
}

func TestDedupePreservesFirstOccurrence(t *testing.T) {
	t.Parallel()

	got := dedupe([]string{"alpha", "bravo", "alpha", " ", "", "bravo", "charlie"})
	require.Equal(t, []string{"alpha", "bravo", "charlie"}, got)
}

func TestFilterReservedDropsPlatformRoutes(t *testing.T) {
	t.Parallel()

	got := filterReserved([]string{"austinmom", "explore", "p", "Reels", "texasgirl"})
	require.Equal(t, []string{"austinmom", "texasgirl"}, got)
}
