// Package sqlguard is the deterministic lexical gate between the SQL
// generator and everything downstream. It is deliberately coarse: a deny-list
// substring scan, not a parser. It always runs before the model-based
// validator and before any database call.
package sqlguard

import (
	"fmt"
	"strings"
)

// denyList holds the forbidden fragments. A match anywhere in the text,
// including inside string literals or identifiers, rejects the query.
var denyList = []string{"insert", "update", "delete", "drop", "alter", "select *"}

// UnsafeSQLError reports a deny-list hit in generated SQL.
type UnsafeSQLError struct {
	Keyword string
}

func (e *UnsafeSQLError) Error() string {
	return fmt.Sprintf("unsafe SQL: contains %q", e.Keyword)
}

// Sanitize scans sql case-insensitively against the deny-list and returns an
// *UnsafeSQLError on the first match.
func Sanitize(sql string) error {
	lowered := strings.ToLower(sql)
	for _, keyword := range denyList {
		if strings.Contains(lowered, keyword) {
			return &UnsafeSQLError{Keyword: keyword}
		}
	}
	return nil
}

// StripFences removes a markdown code fence, with or without a language tag,
// that models often wrap SQL in. Stripping is idempotent: unfenced text comes
// back unchanged.
func StripFences(value string) string {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
		// Drop the language tag line, if any.
		firstLine := strings.TrimSpace(trimmed[:newline])
		if isLanguageTag(firstLine) {
			trimmed = trimmed[newline+1:]
		}
	} else if tag, rest, ok := strings.Cut(trimmed, " "); ok && isKnownTag(tag) {
		// Single-line fence: only an explicit tag is dropped, the first SQL
		// token must survive.
		trimmed = rest
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func isKnownTag(token string) bool {
	switch strings.ToLower(token) {
	case "sql", "text", "plaintext":
		return true
	default:
		return false
	}
}

func isLanguageTag(line string) bool {
	if line == "" {
		return true
	}
	for _, r := range line {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
