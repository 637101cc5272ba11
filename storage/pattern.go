package storage

import (
	"strings"

	"github.com/poiesic/claimdesk/core"
)

// Pattern is a case-insensitive substring filter over record titles and
// descriptions, written %needle% in SQL terms.
type Pattern struct {
	needle string
}

// NewPattern lower-cases text and wraps it as a substring pattern.
func NewPattern(text string) Pattern {
	return Pattern{needle: strings.ToLower(text)}
}

// Needle returns the lower-cased text the pattern looks for.
func (p Pattern) Needle() string {
	return p.needle
}

// String returns the pattern in %needle% form.
func (p Pattern) String() string {
	return "%" + p.needle + "%"
}

// Matches reports whether text contains the needle, ignoring case.
func (p Pattern) Matches(text string) bool {
	return strings.Contains(strings.ToLower(text), p.needle)
}

// MatchesRecord reports whether the record's title or description matches.
func (p Pattern) MatchesRecord(record *core.Record) bool {
	if record == nil {
		return false
	}
	return p.Matches(record.Title) || p.Matches(record.Description)
}

// likeEscaper escapes LIKE wildcards so the needle matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Like returns the pattern as a SQL LIKE operand using '\' as the escape
// character. Wildcards inside the needle are escaped.
func (p Pattern) Like() string {
	return "%" + likeEscaper.Replace(p.needle) + "%"
}
