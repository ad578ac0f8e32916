package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	DefaultSource    = "extension"
)

const bookmarkColumns = `id, url, title, description, favicon, domain, tags, source, created_at, updated_at`

// BookmarkRepo provides methods for bookmark operations.
type BookmarkRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewBookmarkRepo creates a new BookmarkRepo.
func NewBookmarkRepo(db *sql.DB) *BookmarkRepo {
	return &BookmarkRepo{db: db, now: time.Now}
}

// Create inserts a bookmark, or updates the one already stored for the same
// URL. On update only non-empty input fields overwrite stored values; domain
// and source are always refreshed.
func (r *BookmarkRepo) Create(ctx context.Context, in BookmarkInput) (Bookmark, error) {
	source := in.Source
	if source == "" {
		source = DefaultSource
	}
	domain := hostname(in.URL)
	tags := joinTags(in.Tags)
	now := formatTime(r.now())

	existing, err := r.GetByURL(ctx, in.URL)
	switch {
	case err == nil:
		_, err = r.db.ExecContext(ctx, `
			UPDATE bookmarks SET
				title       = CASE WHEN ? <> '' THEN ? ELSE title END,
				description = CASE WHEN ? <> '' THEN ? ELSE description END,
				favicon     = CASE WHEN ? <> '' THEN ? ELSE favicon END,
				tags        = CASE WHEN ? <> '' THEN ? ELSE tags END,
				domain      = ?,
				source      = ?,
				updated_at  = ?
			WHERE id = ?`,
			in.Title, in.Title,
			in.Description, in.Description,
			in.Favicon, in.Favicon,
			tags, tags,
			domain, source, now, existing.ID,
		)
		if err != nil {
			return Bookmark{}, fmt.Errorf("failed to update bookmark: %w", err)
		}
		return r.GetByID(ctx, existing.ID)

	case errors.Is(err, ErrNotFound):
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO bookmarks (url, title, description, favicon, domain, tags, source, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.URL, in.Title, in.Description, in.Favicon, domain, tags, source, now, now,
		)
		if err != nil {
			return Bookmark{}, fmt.Errorf("failed to insert bookmark: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return Bookmark{}, err
		}
		return r.GetByID(ctx, id)

	default:
		return Bookmark{}, err
	}
}

// GetByID returns ErrNotFound when no row matches.
func (r *BookmarkRepo) GetByID(ctx context.Context, id int64) (Bookmark, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ?`, id)
	return scanBookmark(row)
}

// GetByURL returns ErrNotFound when no row matches.
func (r *BookmarkRepo) GetByURL(ctx context.Context, rawURL string) (Bookmark, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks WHERE url = ?`, rawURL)
	return scanBookmark(row)
}

// List returns one page of bookmarks, newest first, and the total number of
// rows matching the filters.
func (r *BookmarkRepo) List(ctx context.Context, p ListParams) ([]Bookmark, int, error) {
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	if p.Limit > MaxListLimit {
		p.Limit = MaxListLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	var (
		where []string
		args  []any
	)

	if p.Query != "" {
		like := "%" + escapeLike(strings.ToLower(p.Query)) + "%"
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(url) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(domain) LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like, like)
	}

	if p.Tag != "" {
		tag := escapeLike(strings.ToLower(p.Tag))
		where = append(where, `(LOWER(tags) LIKE ? ESCAPE '\' OR LOWER(tags) LIKE ? ESCAPE '\' OR LOWER(tags) LIKE ? ESCAPE '\' OR LOWER(tags) = ?)`)
		args = append(args, tag+",%", "%,"+tag+",%", "%,"+tag, strings.ToLower(p.Tag))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmarks`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks`+clause+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, p.Limit, p.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	items := make([]Bookmark, 0)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Update applies a partial update and returns the stored result.
func (r *BookmarkRepo) Update(ctx context.Context, id int64, patch BookmarkPatch) (Bookmark, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return Bookmark{}, err
	}

	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	if patch.Favicon != nil {
		b.Favicon = *patch.Favicon
	}
	if patch.Tags != nil {
		b.Tags = *patch.Tags
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE bookmarks SET title = ?, description = ?, favicon = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		b.Title, b.Description, b.Favicon, joinTags(b.Tags), formatTime(r.now()), id,
	)
	if err != nil {
		return Bookmark{}, fmt.Errorf("failed to update bookmark: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Delete returns ErrNotFound when nothing was deleted.
func (r *BookmarkRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored bookmarks.
func (r *BookmarkRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmarks`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBookmark(s scanner) (Bookmark, error) {
	var (
		b                    Bookmark
		tags                 string
		createdAt, updatedAt string
	)
	err := s.Scan(&b.ID, &b.URL, &b.Title, &b.Description, &b.Favicon, &b.Domain, &tags, &b.Source, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bookmark{}, ErrNotFound
		}
		return Bookmark{}, fmt.Errorf("failed to scan bookmark: %w", err)
	}

	b.Tags = splitTags(tags)
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return Bookmark{}, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Bookmark{}, err
	}
	return b, nil
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func joinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

func splitTags(s string) []string {
	out := make([]string, 0)
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
