package qualify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocateUSA(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		bio      string
		location string
		want     bool
		contains string
	}{
		{"explicit state", "mom of 3 in Austin, Texas", "", true, "USA location confirmed"},
		{"explicit city", "", "Chicago", true, "chicago"},
		{"negative country", "living my best life in London", "", false, "non-USA"},
		{"negative beats positive", "from Texas, now in Toronto", "", false, "toronto"},
		{"ambiguous alone", "Springfield", "", false, "without USA context"},
		{"ambiguous with context", "Springfield, Illinois", "", true, "illinois"},
		{"no signal", "coffee lover and cat person", "", false, "no USA location evidence"},
		{"territory", "San Juan, Puerto Rico", "", true, "puerto rico"},
		{"word boundaries", "drinking in the garden", "", false, "no USA location evidence"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := LocateUSA(tc.bio, tc.location)
			require.Equal(t, tc.want, got, "reason: %s", reason)
			require.Contains(t, reason, tc.contains)
		})
	}
}

func TestLocateUSADeterministic(t *testing.T) {
	t.Parallel()

	first, firstReason := LocateUSA("NYC based photographer", "")
	for range 5 {
		got, reason := LocateUSA("NYC based photographer", "")
		require.Equal(t, first, got)
		require.Equal(t, firstReason, reason)
	}
}
