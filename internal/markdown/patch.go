package markdown

import (
	"fmt"
	"strings"

	"github.com/innerfold/parts-service/internal/canon"
)

// Change describes an edit to a single section. Exactly one of Replace or
// Append must be set: Replace swaps the section body below the anchor
// marker, Append concatenates below the existing body.
type Change struct {
	Replace *string
	Append  *string
}

// PatchResult is the outcome of a section patch. BeforeHash and AfterHash
// are content hashes of the full canonicalized document and serve as an
// advisory optimistic-concurrency token for callers; the patcher itself
// never rejects a write based on them.
type PatchResult struct {
	Text       string `json:"text"`
	BeforeHash string `json:"beforeHash"`
	AfterHash  string `json:"afterHash"`
}

// SectionNotFoundError indicates no addressable section carries the anchor.
// This is a programmer error (wrong anchor string), so the patcher returns
// it rather than a soft result.
type SectionNotFoundError struct {
	Anchor string
}

func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("section not found: %s", e.Anchor)
}

// ValidationError indicates a malformed change request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PatchSectionByAnchor applies a change to the first section matching the
// anchor and returns the re-canonicalized document with before/after hashes.
// Pure function: callers persist the resulting text themselves.
func PatchSectionByAnchor(doc, anchor string, change Change) (*PatchResult, error) {
	if (change.Replace == nil) == (change.Append == nil) {
		return nil, &ValidationError{Message: "change must set exactly one of replace or append"}
	}

	original := canon.Canonicalize(doc)
	lines := strings.Split(strings.TrimSuffix(original, "\n"), "\n")

	var target *Section
	for _, sec := range scan(lines) {
		if sec.Anchor == anchor {
			s := sec
			target = &s
			break
		}
	}
	if target == nil {
		return nil, &SectionNotFoundError{Anchor: anchor}
	}

	var section []string
	if change.Replace != nil {
		// Keep the heading through the anchor marker, replace the body.
		section = append(section, lines[target.Start:target.markerLine+1]...)
		section = append(section, payloadLines(*change.Replace)...)
	} else {
		section = append(section, lines[target.Start:target.End]...)
		section = append(section, payloadLines(*change.Append)...)
	}

	var out []string
	out = append(out, lines[:target.Start]...)
	out = append(out, section...)
	out = append(out, lines[target.End:]...)

	text := canon.Canonicalize(strings.Join(out, "\n"))
	return &PatchResult{
		Text:       text,
		BeforeHash: canon.Hash(original),
		AfterHash:  canon.Hash(text),
	}, nil
}

func payloadLines(payload string) []string {
	return strings.Split(strings.TrimSuffix(canon.Canonicalize(payload), "\n"), "\n")
}
