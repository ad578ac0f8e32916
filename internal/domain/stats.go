package domain

import "time"

// Stats summarises the library for the sidebar counters.
type Stats struct {
	Total     int `json:"total"`
	Favorites int `json:"favorites"`
	Recent    int `json:"recent"`
}

// ComputeStats counts all, favorite and recent bookmarks as of now.
func ComputeStats(bookmarks []Bookmark, now time.Time) Stats {
	s := Stats{Total: len(bookmarks)}
	for _, b := range bookmarks {
		if b.IsFavorite {
			s.Favorites++
		}
		if IsRecent(b, now) {
			s.Recent++
		}
	}
	return s
}
