package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryLineCommentRegex = regexp.MustCompile(`--[^\n]*`)
	queryWhitespaceRegex  = regexp.MustCompile(`\s+`)
)

// formatDBQueryForTrace collapses a statement onto one line for span
// attributes. Batched upserts can be huge, so the result is capped.
func formatDBQueryForTrace(query string) string {
	query = queryLineCommentRegex.ReplaceAllString(query, "")
	normalized := strings.TrimSpace(queryWhitespaceRegex.ReplaceAllString(query, " "))
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
