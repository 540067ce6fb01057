package domain

import (
	"regexp"
	"strings"
)

var numericToken = regexp.MustCompile(`^[0-9]+$`)

// IsValidStructuredQuery reports whether a rewritten query has the expected
// shape: at least 4 tokens when split on single spaces, with the trailing 3
// tokens all ASCII digits. No normalization is attempted: doubled spaces or
// non-ASCII digits make the query invalid.
func IsValidStructuredQuery(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}

	tokens := strings.Split(trimmed, " ")
	if len(tokens) < 4 {
		return false
	}

	for _, tok := range tokens[len(tokens)-3:] {
		if !numericToken.MatchString(tok) {
			return false
		}
	}

	return true
}
