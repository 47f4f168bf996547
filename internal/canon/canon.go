// Package canon normalizes narrative document text and produces the content
// hashes used for drift detection. Every document write and every section
// patch goes through Canonicalize first so that hashing and diffing are
// byte-stable regardless of where the text came from.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashPrefix is prepended to hex digests so stored hashes are self-describing.
const HashPrefix = "sha256:"

// Canonicalize normalizes text to the canonical document form:
// LF line endings, no trailing whitespace per line, exactly one trailing
// newline. Idempotent: Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	text = strings.TrimRight(text, "\n")
	return text + "\n"
}

// Hash returns the prefixed SHA-256 hex digest of the canonicalized text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(Canonicalize(text)))
	return HashPrefix + hex.EncodeToString(sum[:])
}
