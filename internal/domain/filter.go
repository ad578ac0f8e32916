package domain

import (
	"fmt"
	"strings"
	"time"
)

// Filter selects which part of the library a view shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterRecent    Filter = "recent"
	FilterFavorites Filter = "favorites"
)

// RecentWindow is how far back the "recent" filter looks.
const RecentWindow = 7 * 24 * time.Hour

// ParseFilter converts user input into a Filter. Empty input means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterRecent:
		return FilterRecent, nil
	case FilterFavorites:
		return FilterFavorites, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, recent or favorites)", s)
	}
}

// Keep reports whether b passes the filter at evaluation time now.
func (f Filter) Keep(b Bookmark, now time.Time) bool {
	switch f {
	case FilterFavorites:
		return b.IsFavorite
	case FilterRecent:
		return IsRecent(b, now)
	default:
		return true
	}
}

// IsRecent reports whether b was created inside the trailing RecentWindow.
func IsRecent(b Bookmark, now time.Time) bool {
	return b.CreatedAt.After(now.Add(-RecentWindow))
}

// Apply returns the bookmarks passing f, preserving order.
func (f Filter) Apply(bookmarks []Bookmark, now time.Time) []Bookmark {
	out := make([]Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if f.Keep(b, now) {
			out = append(out, b)
		}
	}
	return out
}
