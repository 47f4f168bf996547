// Package markdown implements anchored-section addressing over narrative
// documents. Sections are spans delimited by H2 headings; a section is only
// addressable when the heading is followed by an anchor marker, either:
//
//	<!-- @anchor: change_log v1 -->
//	[//]: # (anchor: change_log v1)
//
// Headings without a marker are visible to the linter but cannot be patched.
package markdown

import (
	"regexp"
	"strings"

	"github.com/innerfold/parts-service/internal/canon"
)

// Section is a heading-delimited span of a canonicalized document.
// Line offsets are zero-based and refer to the canonicalized line slice;
// Start is the heading line, End is one past the last line of the section.
type Section struct {
	Anchor  string
	Heading string
	Start   int
	End     int

	// markerLine is the offset of the anchor marker, or -1 when absent.
	markerLine int
}

var (
	htmlAnchorRe = regexp.MustCompile(`^\s*<!--\s*@anchor:\s*(.+?)\s*-->\s*$`)
	refAnchorRe  = regexp.MustCompile(`^\s*\[//\]: # \(anchor:\s*(.+?)\s*\)\s*$`)
)

// splitLines canonicalizes text and returns its lines without the final
// empty element produced by the trailing newline.
func splitLines(text string) []string {
	return strings.Split(strings.TrimSuffix(canon.Canonicalize(text), "\n"), "\n")
}

// parseAnchor returns the anchor ID on a marker line, or "" if the line is
// not a recognized marker.
func parseAnchor(line string) string {
	if m := htmlAnchorRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if m := refAnchorRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// scan returns every H2-delimited span, anchored or not. The linter needs
// the unanchored ones; ListSections filters them out.
func scan(lines []string) []Section {
	var sections []Section
	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], "## ") {
			continue
		}
		sec := Section{
			Heading:    strings.TrimPrefix(lines[i], "## "),
			Start:      i,
			markerLine: -1,
		}
		// The anchor marker may be separated from the heading by blank lines.
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			if anchor := parseAnchor(lines[j]); anchor != "" {
				sec.Anchor = anchor
				sec.markerLine = j
			}
			break
		}
		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if strings.HasPrefix(lines[j], "## ") {
				end = j
				break
			}
		}
		sec.End = end
		sections = append(sections, sec)
	}
	return sections
}

// ListSections returns the addressable sections of a document, in order of
// appearance. Anchor uniqueness is not enforced; patching resolves the first
// match (the linter flags duplicates).
func ListSections(text string) []Section {
	var out []Section
	for _, sec := range scan(splitLines(text)) {
		if sec.Anchor != "" {
			out = append(out, sec)
		}
	}
	return out
}
