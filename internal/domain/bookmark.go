package domain

import (
	"net/url"
	"strings"
	"time"
)

// Bookmark is a saved URL in the desktop library.
//
// A Bookmark is created once (fresh ID, current timestamp) and afterwards
// only ever replaced wholesale (favorite toggle) or deleted.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is unique within the library.
	ID string `json:"id"`

	// URL is the absolute address the bookmark points to.
	URL string `json:"url"`

	// ─────────────────────────────
	// User / extracted metadata
	// ─────────────────────────────

	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Favicon     string   `json:"favicon"`

	// Domain is derived from URL at creation time and never recomputed.
	// Example: https://www.github.com/x -> github.com
	Domain string `json:"domain"`

	// CreatedAt drives the default ordering and the "recent" filter.
	CreatedAt time.Time `json:"createdAt"`

	// ─────────────────────────────
	// Mutable state
	// ─────────────────────────────

	IsFavorite bool `json:"isFavorite"`
}

// BookmarkForm carries the user supplied fields of a new bookmark.
type BookmarkForm struct {
	URL         string
	Title       string
	Description string
	Tags        []string
	Favicon     string
}

// NewBookmark builds a bookmark from a form with the given identity and
// timestamp. Tags are lower-cased; duplicates are kept.
func NewBookmark(id string, form BookmarkForm, now time.Time) Bookmark {
	tags := make([]string, 0, len(form.Tags))
	for _, t := range form.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			tags = append(tags, t)
		}
	}

	return Bookmark{
		ID:          id,
		URL:         strings.TrimSpace(form.URL),
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Tags:        tags,
		Favicon:     form.Favicon,
		Domain:      ExtractDomain(form.URL),
		CreatedAt:   now,
		IsFavorite:  false,
	}
}

// ExtractDomain returns the lower-cased hostname of raw without a leading "www.".
// Unparsable input is returned unchanged.
func ExtractDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// IsWebURL reports whether raw uses the http or https scheme.
func IsWebURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
