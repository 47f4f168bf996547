package audit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestFindBestMatchSelectsOverlappingSummary(t *testing.T) {
	m := NewTokenOverlapMatcher()
	target := Candidate{ID: uuid.New(), Summary: `Increased confidence for "Inner Critic" by 0.1`}
	candidates := []Candidate{
		{ID: uuid.New(), Summary: `Created part "Protector"`},
		target,
		{ID: uuid.New(), Summary: `Created polarized relationship`},
	}

	got := m.FindBestMatch("increased confidence inner critic", candidates)
	require.NotNil(t, got)
	require.Equal(t, target.ID, got.ID)
}

func TestFindBestMatchNoOverlapReturnsNil(t *testing.T) {
	m := NewTokenOverlapMatcher()
	candidates := []Candidate{
		{ID: uuid.New(), Summary: `Increased confidence for "Inner Critic" by 0.1`},
	}
	require.Nil(t, m.FindBestMatch("weather forecast tomorrow", candidates))
}

func TestFindBestMatchEmptyInputs(t *testing.T) {
	m := NewTokenOverlapMatcher()
	require.Nil(t, m.FindBestMatch("", []Candidate{{ID: uuid.New(), Summary: "x"}}))
	require.Nil(t, m.FindBestMatch("anything at all", nil))
}

func TestFindBestMatchFirstSeenWinsTies(t *testing.T) {
	m := NewTokenOverlapMatcher()
	first := Candidate{ID: uuid.New(), Summary: `Created part "Inner Critic"`}
	second := Candidate{ID: uuid.New(), Summary: `Created part "Inner Critic"`}

	got := m.FindBestMatch("created part inner critic", []Candidate{first, second})
	require.NotNil(t, got)
	require.Equal(t, first.ID, got.ID)
}

func TestFindBestMatchShortTokensIgnored(t *testing.T) {
	m := NewTokenOverlapMatcher()
	// Only tokens longer than two characters participate in overlap.
	candidates := []Candidate{{ID: uuid.New(), Summary: "by of to it"}}
	require.Nil(t, m.FindBestMatch("by of to it", candidates))
}
