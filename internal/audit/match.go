package audit

import (
	"strings"

	"github.com/google/uuid"
)

// Candidate is one logged action offered to the matcher.
type Candidate struct {
	ID      uuid.UUID
	Summary string
}

// Matcher resolves a natural-language rollback description to one logged
// action. Kept behind an interface so the heuristic can be swapped or
// tightened without touching the mutation log.
type Matcher interface {
	FindBestMatch(description string, candidates []Candidate) *Candidate
}

// TokenOverlapMatcher scores candidates by token overlap between the
// description and each candidate's summary. Overlap uses substring
// containment in either direction, which is deliberately lenient: short,
// common tokens can over-match, and the length guard below is the only
// defense. Deterministic for a fixed candidate order; first seen wins ties.
type TokenOverlapMatcher struct {
	// Threshold is the minimum score (exclusive) to accept a match.
	Threshold float64
}

// NewTokenOverlapMatcher returns the matcher with the default threshold.
func NewTokenOverlapMatcher() *TokenOverlapMatcher {
	return &TokenOverlapMatcher{Threshold: 0.3}
}

func (m *TokenOverlapMatcher) FindBestMatch(description string, candidates []Candidate) *Candidate {
	queryTokens := strings.Fields(strings.ToLower(description))
	if len(queryTokens) == 0 {
		return nil
	}

	var best *Candidate
	bestScore := m.Threshold
	for i := range candidates {
		summaryTokens := strings.Fields(strings.ToLower(candidates[i].Summary))
		if len(summaryTokens) == 0 {
			continue
		}

		overlap := 0
		for _, qt := range queryTokens {
			if len(qt) <= 2 {
				continue
			}
			for _, st := range summaryTokens {
				if strings.Contains(st, qt) || strings.Contains(qt, st) {
					overlap++
					break
				}
			}
		}

		denom := len(queryTokens)
		if len(summaryTokens) > denom {
			denom = len(summaryTokens)
		}
		score := float64(overlap) / float64(denom)
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	return best
}
