package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Query represents parsed user search input.
type Query struct {
	Raw   string   // Original input, untouched
	Terms []string // Lower-cased, whitespace separated, never empty strings
}

// ParseQuery parses user input into search terms.
// Examples:
//   - "React docs"   -> ["react", "docs"]
//   - "  go   chi "  -> ["go", "chi"]
//   - "   "          -> [] (Empty() is false, but nothing can match)
func ParseQuery(input string) *Query {
	return &Query{
		Raw:   input,
		Terms: strings.Fields(fold(input)),
	}
}

// Empty reports whether the user typed nothing at all. Whitespace-only input
// is not empty: it is a query with zero terms.
func (q *Query) Empty() bool {
	return q == nil || q.Raw == ""
}

// fold lower-cases s for case-insensitive containment checks.
// A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// containsFold reports whether term (already folded) appears in s.
func containsFold(s, term string) bool {
	if s == "" {
		return false
	}
	return strings.Contains(fold(s), term)
}
