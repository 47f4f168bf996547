package audit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarizeKnownKinds(t *testing.T) {
	cases := []struct {
		name string
		kind string
		meta map[string]any
		want string
	}{
		{
			name: "create part",
			kind: "create_part",
			meta: map[string]any{"partName": "Inner Critic"},
			want: `Created part "Inner Critic"`,
		},
		{
			name: "update part with description",
			kind: "update_part",
			meta: map[string]any{"partName": "Inner Critic", "changeDescription": "refined role notes"},
			want: `Updated part "Inner Critic": refined role notes`,
		},
		{
			name: "confidence increase",
			kind: "confidence_change",
			meta: map[string]any{"partName": "Inner Critic", "confidenceDelta": 0.1},
			want: `Increased confidence for "Inner Critic" by 0.1`,
		},
		{
			name: "confidence decrease",
			kind: "confidence_change",
			meta: map[string]any{"partName": "Inner Critic", "confidenceDelta": -0.25},
			want: `Decreased confidence for "Inner Critic" by 0.25`,
		},
		{
			name: "confidence from old and new",
			kind: "confidence_change",
			meta: map[string]any{"partName": "Guard", "oldConfidence": 0.6, "newConfidence": 0.7},
			want: `Increased confidence for "Guard" by 0.1`,
		},
		{
			name: "category change",
			kind: "category_change",
			meta: map[string]any{"partName": "Guard", "oldCategory": "unknown", "newCategory": "manager"},
			want: `Changed category for "Guard" from unknown to manager`,
		},
		{
			name: "relationship create",
			kind: "create_relationship",
			meta: map[string]any{"relationshipType": "polarized"},
			want: "Created polarized relationship",
		},
		{
			name: "proposal create",
			kind: "create_proposal",
			meta: map[string]any{"proposalId": "prop-42"},
			want: "Created proposal prop-42",
		},
		{
			name: "unknown kind with description",
			kind: "merge_parts",
			meta: map[string]any{"changeDescription": "merged two duplicates"},
			want: "merge_parts: merged two duplicates",
		},
		{
			name: "unknown kind without description",
			kind: "merge_parts",
			meta: nil,
			want: "merge_parts: Unknown change",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Summarize(tc.kind, tc.meta))
		})
	}
}

func TestSummarizeIsTotalOverBadMetadata(t *testing.T) {
	// Historical metadata can hold anything; Summarize must never panic.
	kinds := []string{
		"create_part", "update_part", "confidence_change", "category_change",
		"create_relationship", "update_relationship", "create_proposal", "???",
	}
	metas := []map[string]any{
		nil,
		{},
		{"partName": 42, "confidenceDelta": "not a number"},
		{"partName": "", "oldCategory": nil, "newCategory": []string{"x"}},
		{"confidenceDelta": "0.5"},
	}
	for _, kind := range kinds {
		for _, meta := range metas {
			require.NotPanics(t, func() {
				require.NotEmpty(t, Summarize(kind, meta))
			})
		}
	}
}
