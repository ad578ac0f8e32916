package domain

import (
	"sort"
	"time"
)

const (
	// Per-term weights, summed over every term of the query
	ScoreTitle       = 10
	ScoreTag         = 8
	ScoreURL         = 5
	ScoreDomain      = 4
	ScoreDescription = 3
)

// Candidate represents a bookmark with its match score
type Candidate struct {
	Bookmark Bookmark
	Score    int
}

// Score calculates the match score of a bookmark against already parsed terms.
// Every check is a case-insensitive substring check: "act" hits "React".
func Score(b Bookmark, terms []string) int {
	var total int
	for _, term := range terms {
		if term == "" {
			continue
		}
		if containsFold(b.Title, term) {
			total += ScoreTitle
		}
		if anyTagContains(b.Tags, term) {
			total += ScoreTag
		}
		if containsFold(b.URL, term) {
			total += ScoreURL
		}
		if containsFold(b.Domain, term) {
			total += ScoreDomain
		}
		if containsFold(b.Description, term) {
			total += ScoreDescription
		}
	}
	return total
}

// anyTagContains counts a tag hit at most once per term.
func anyTagContains(tags []string, term string) bool {
	for _, tag := range tags {
		if containsFold(tag, term) {
			return true
		}
	}
	return false
}

// Rank scores every bookmark against the query and returns those with a
// positive score, best first. Equal scores keep their input order.
func Rank(query *Query, bookmarks []Bookmark) []Candidate {
	if query == nil || len(query.Terms) == 0 {
		return []Candidate{}
	}

	candidates := make([]Candidate, 0, len(bookmarks))
	for _, b := range bookmarks {
		score := Score(b, query.Terms)

		// Skip bookmarks with zero score (no match)
		if score == 0 {
			continue
		}

		candidates = append(candidates, Candidate{Bookmark: b, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}

// Evaluate produces the view the user sees: filter first, then either sort by
// creation date (no query) or rank by score (query given).
//
// The input slice is never modified. now is the evaluation time used by the
// "recent" filter.
func Evaluate(bookmarks []Bookmark, filter Filter, queryText string, now time.Time) []Bookmark {
	filtered := filter.Apply(bookmarks, now)

	query := ParseQuery(queryText)
	if query.Empty() {
		SortByCreatedDesc(filtered)
		return filtered
	}

	candidates := Rank(query, filtered)
	out := make([]Bookmark, len(candidates))
	for i, c := range candidates {
		out[i] = c.Bookmark
	}
	return out
}

// SortByCreatedDesc sorts newest first in place; ties keep their order.
func SortByCreatedDesc(bookmarks []Bookmark) {
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].CreatedAt.After(bookmarks[j].CreatedAt)
	})
}
