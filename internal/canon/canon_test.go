package canon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "a\r\nb\r\n", "a\nb\n"},
		{"bare cr", "a\rb", "a\nb\n"},
		{"trailing spaces", "a  \nb\t\n", "a\nb\n"},
		{"missing final newline", "a\nb", "a\nb\n"},
		{"many final newlines", "a\n\n\n", "a\n"},
		{"preserves interior blanks", "a\n\nb\n", "a\n\nb\n"},
		{"empty", "", "\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Canonicalize(tc.in))
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"# Title\r\n\r\nBody text  \r\n",
		"no newline at all",
		"mixed\rline\r\nendings\n\n",
		strings.Repeat("x \n", 50),
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		require.Equal(t, once, Canonicalize(once))
	}
}

func TestHash(t *testing.T) {
	h := Hash("a\n")
	require.True(t, strings.HasPrefix(h, HashPrefix))
	require.Len(t, strings.TrimPrefix(h, HashPrefix), 64)

	// Hash is computed over the canonical form, so equivalent inputs agree.
	require.Equal(t, Hash("a\r\n"), Hash("a  \n"))
	require.NotEqual(t, Hash("a\n"), Hash("b\n"))
}
