// Package library owns the desktop bookmark collection: it loads the stored
// snapshot, applies user mutations and rewrites the snapshot after each one.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/domain"
	"github.com/MrSnakeDoc/arvai/internal/kv"
	"github.com/MrSnakeDoc/arvai/internal/logger"
	"github.com/google/uuid"
)

// StorageKey is the kv key holding the bookmark array.
const StorageKey = "arvai-bookmarks"

// ErrNotFound is returned when no bookmark has the requested ID.
var ErrNotFound = errors.New("bookmark not found")

// Library is the in-memory bookmark store backed by a kv.Store snapshot.
// Order is newest first: new bookmarks are prepended.
type Library struct {
	mu       sync.RWMutex
	items    []domain.Bookmark
	selected string

	store  kv.Store
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

// Option customises a Library.
type Option func(*Library)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithIDGenerator overrides uuid generation, for tests.
func WithIDGenerator(f func() string) Option {
	return func(l *Library) { l.newID = f }
}

// Open loads the snapshot from store. A missing, empty or unreadable snapshot is
// replaced by the default starter library; it never fails the caller.
func Open(ctx context.Context, store kv.Store, log logger.Logger, opts ...Option) *Library {
	l := &Library{
		store:  store,
		logger: log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.items = l.load(ctx)
	return l
}

func (l *Library) load(ctx context.Context) []domain.Bookmark {
	data, err := l.store.Load(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			l.logger.Warn("failed to read bookmarks, using defaults", logger.Error(err))
		}
		return domain.DefaultBookmarks(l.now())
	}

	var items []domain.Bookmark
	if err := json.Unmarshal(data, &items); err != nil {
		l.logger.Debug("discarding unreadable bookmark snapshot", logger.Int("bytes", len(data)))
		return domain.DefaultBookmarks(l.now())
	}
	if len(items) == 0 {
		return domain.DefaultBookmarks(l.now())
	}

	return items
}

// commit persists next and swaps it in. Callers hold the write lock.
func (l *Library) commit(ctx context.Context, next []domain.Bookmark) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmarks: %w", err)
	}
	if err := l.store.Save(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to persist bookmarks: %w", err)
	}
	l.items = next
	return nil
}

// Bookmarks returns a copy of the stored order.
func (l *Library) Bookmarks() []domain.Bookmark {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Bookmark(nil), l.items...)
}

// View runs the query engine over the library at the current time.
func (l *Library) View(filter domain.Filter, query string) []domain.Bookmark {
	return domain.Evaluate(l.Bookmarks(), filter, query, l.now())
}

// Rank returns scored matches for diagnostics.
func (l *Library) Rank(filter domain.Filter, query string) []domain.Candidate {
	filtered := filter.Apply(l.Bookmarks(), l.now())
	return domain.Rank(domain.ParseQuery(query), filtered)
}

// Tags returns tag usage counts, most used first.
func (l *Library) Tags() []domain.TagCount {
	return domain.ComputeTagCounts(l.Bookmarks())
}

// Stats returns the sidebar counters.
func (l *Library) Stats() domain.Stats {
	return domain.ComputeStats(l.Bookmarks(), l.now())
}

// Get returns the bookmark with the given ID.
func (l *Library) Get(id string) (domain.Bookmark, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.indexOf(id); i >= 0 {
		return l.items[i], nil
	}
	return domain.Bookmark{}, ErrNotFound
}

// FindByURL returns the first bookmark pointing at rawURL.
func (l *Library) FindByURL(rawURL string) (domain.Bookmark, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, b := range l.items {
		if b.URL == rawURL {
			return b, true
		}
	}
	return domain.Bookmark{}, false
}

func (l *Library) indexOf(id string) int {
	for i, b := range l.items {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Add validates the form and prepends a new bookmark.
func (l *Library) Add(ctx context.Context, form domain.BookmarkForm) (domain.Bookmark, error) {
	if err := domain.ValidateForm(form); err != nil {
		return domain.Bookmark{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := domain.NewBookmark(l.newID(), form, l.now())

	next := make([]domain.Bookmark, 0, len(l.items)+1)
	next = append(next, b)
	next = append(next, l.items...)

	if err := l.commit(ctx, next); err != nil {
		return domain.Bookmark{}, err
	}

	l.logger.Debug("bookmark added", logger.String("id", b.ID), logger.String("url", b.URL))
	return b, nil
}

// Remove deletes a bookmark and clears the selection if it pointed at it.
func (l *Library) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	next := make([]domain.Bookmark, 0, len(l.items)-1)
	next = append(next, l.items[:i]...)
	next = append(next, l.items[i+1:]...)

	if err := l.commit(ctx, next); err != nil {
		return err
	}

	if l.selected == id {
		l.selected = ""
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the replaced record.
func (l *Library) ToggleFavorite(ctx context.Context, id string) (domain.Bookmark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return domain.Bookmark{}, ErrNotFound
	}

	next := append([]domain.Bookmark(nil), l.items...)
	b := next[i]
	b.IsFavorite = !b.IsFavorite
	next[i] = b

	if err := l.commit(ctx, next); err != nil {
		return domain.Bookmark{}, err
	}
	return b, nil
}

// Import adds every valid form whose URL is not already present. The new
// block is prepended with the first form on top. It returns how many were
// added and how many were skipped.
func (l *Library) Import(ctx context.Context, forms []domain.BookmarkForm) (added, skipped int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	known := make(map[string]bool, len(l.items))
	for _, b := range l.items {
		known[b.URL] = true
	}

	now := l.now()
	fresh := make([]domain.Bookmark, 0, len(forms))
	for _, form := range forms {
		if verr := domain.ValidateForm(form); verr != nil {
			l.logger.Debug("skipping invalid import entry", logger.String("url", form.URL), logger.Error(verr))
			skipped++
			continue
		}
		b := domain.NewBookmark(l.newID(), form, now)
		if known[b.URL] {
			skipped++
			continue
		}
		known[b.URL] = true
		fresh = append(fresh, b)
	}

	if len(fresh) == 0 {
		return 0, skipped, nil
	}

	next := make([]domain.Bookmark, 0, len(l.items)+len(fresh))
	next = append(next, fresh...)
	next = append(next, l.items...)

	if err := l.commit(ctx, next); err != nil {
		return 0, 0, err
	}
	return len(fresh), skipped, nil
}

// Select marks a bookmark as the one shown in the detail view.
func (l *Library) Select(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id != "" && l.indexOf(id) < 0 {
		return ErrNotFound
	}
	l.selected = id
	return nil
}

// Selected returns the selected bookmark, if any.
func (l *Library) Selected() (domain.Bookmark, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.selected == "" {
		return domain.Bookmark{}, false
	}
	if i := l.indexOf(l.selected); i >= 0 {
		return l.items[i], true
	}
	return domain.Bookmark{}, false
}
