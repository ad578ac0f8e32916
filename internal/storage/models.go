package storage

import "time"

// Bookmark is a bookmark saved through the kernel API.
type Bookmark struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Favicon     string    `json:"favicon"`
	Domain      string    `json:"domain"` // hostname, www kept
	Tags        []string  `json:"tags"`   // stored comma-joined
	Source      string    `json:"source"` // "extension", "cli", ...
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookmarkInput is the create/upsert payload.
type BookmarkInput struct {
	URL         string
	Title       string
	Description string
	Favicon     string
	Tags        []string
	Source      string
}

// BookmarkPatch updates only the non-nil fields.
type BookmarkPatch struct {
	Title       *string
	Description *string
	Favicon     *string
	Tags        *[]string
}

// ListParams filters and paginates List.
type ListParams struct {
	Query  string // substring of title, url, description or domain
	Tag    string // exact tag
	Limit  int
	Offset int
}

// APIKey is a stored key. The plain key is never stored, only its hash.
type APIKey struct {
	ID         int64      `json:"id"`
	KeyHash    string     `json:"-"`
	KeyPrefix  string     `json:"key_prefix"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
