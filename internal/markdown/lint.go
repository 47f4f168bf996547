package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// EvidenceBulletSoftCap is the advisory limit on bullets in evidence
// sections. Exceeding it produces a warning, never a rejection.
const EvidenceBulletSoftCap = 7

var bulletRe = regexp.MustCompile(`^\s*[-*]\s+`)

// LintResult holds the advisory findings for a document. Blocked is always
// false: linting never prevents a write.
type LintResult struct {
	Warnings []string `json:"warnings"`
	Blocked  bool     `json:"blocked"`
}

// Lint runs the structural checks over a document: H2 headings missing an
// anchor marker, oversized evidence bullet lists, and duplicate anchors.
func Lint(text string) LintResult {
	lines := splitLines(text)
	var warnings []string
	seen := map[string]bool{}

	for _, sec := range scan(lines) {
		if sec.Anchor == "" {
			// Line numbers are 1-based for humans.
			warnings = append(warnings, fmt.Sprintf("Missing anchor marker after H2 at line %d", sec.Start+1))
			continue
		}
		if seen[sec.Anchor] {
			warnings = append(warnings, fmt.Sprintf("Duplicate anchor %q; only the first section is patchable", sec.Anchor))
		}
		seen[sec.Anchor] = true

		if strings.Contains(strings.ToLower(sec.Anchor), "evidence") {
			bullets := 0
			for _, line := range lines[sec.markerLine+1 : sec.End] {
				if bulletRe.MatchString(line) {
					bullets++
				}
			}
			if bullets > EvidenceBulletSoftCap {
				warnings = append(warnings, fmt.Sprintf("Evidence list in %q has %d bullets; soft cap is %d", sec.Anchor, bullets, EvidenceBulletSoftCap))
			}
		}
	}
	return LintResult{Warnings: warnings, Blocked: false}
}
