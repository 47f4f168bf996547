package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const profileDoc = `# Part: Inner Critic

## Identity
<!-- @anchor: identity v1 -->
A harsh internal voice.

## Role

[//]: # (anchor: role v1)
Protects against external judgment.

## Notes

Free-form notes without an anchor.

## Change Log
<!-- @anchor: change_log v1 -->
- 2023-12-01T00:00:00Z: created
`

func TestListSections(t *testing.T) {
	sections := ListSections(profileDoc)
	require.Len(t, sections, 3)

	require.Equal(t, "identity v1", sections[0].Anchor)
	require.Equal(t, "Identity", sections[0].Heading)
	require.Equal(t, "role v1", sections[1].Anchor)
	require.Equal(t, "change_log v1", sections[2].Anchor)

	// The anchor-less "Notes" heading still terminates the previous section.
	require.Equal(t, 6, sections[1].Start)
	require.Equal(t, 11, sections[1].End)
	for i := 1; i < len(sections); i++ {
		require.Greater(t, sections[i].Start, sections[i-1].Start)
	}
}

func TestListSectionsSkipsUnanchoredHeadings(t *testing.T) {
	doc := "## First\nno marker here\n\n## Second\n<!-- @anchor: second v1 -->\nbody\n"
	sections := ListSections(doc)
	require.Len(t, sections, 1)
	require.Equal(t, "second v1", sections[0].Anchor)
}

func TestListSectionsAnchorAfterBlankLines(t *testing.T) {
	doc := "## Role\n\n\n[//]: # (anchor: role v1)\nbody\n"
	sections := ListSections(doc)
	require.Len(t, sections, 1)
	require.Equal(t, "role v1", sections[0].Anchor)
}

func TestListSectionsSectionSpansToEOF(t *testing.T) {
	doc := "## Only\n<!-- @anchor: only v1 -->\nline a\nline b\n"
	sections := ListSections(doc)
	require.Len(t, sections, 1)
	require.Equal(t, 0, sections[0].Start)
	require.Equal(t, 4, sections[0].End)
}

func TestListSectionsNonMarkerLineBlocksAnchor(t *testing.T) {
	// A non-blank, non-marker line between heading and marker means the
	// heading is not addressable even if a marker appears later.
	doc := "## Role\nsome text\n<!-- @anchor: role v1 -->\n"
	require.Empty(t, ListSections(doc))
}
