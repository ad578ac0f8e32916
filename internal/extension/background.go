package extension

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/apiclient"
	"github.com/MrSnakeDoc/arvai/internal/logger"
)

// DefaultSource tags bookmarks saved from the extension.
const DefaultSource = "extension"

// ErrNoActiveTab is returned when page data is requested before any tab was seen.
var ErrNoActiveTab = errors.New("no active tab")

// StatusResult answers CHECK_STATUS.
type StatusResult struct {
	Connected  bool       `json:"connected"`
	Bookmarked bool       `json:"bookmarked"`
	BookmarkID *int64     `json:"bookmarkId,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// BookmarkData is the popup's save form.
type BookmarkData struct {
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Favicon     string   `json:"favicon,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// Tab is a browser tab as the background last saw it.
type Tab struct {
	ID  int    `json:"tabId"`
	URL string `json:"url"`
}

type BackgroundConfig struct {
	Connections *ConnectionManager
	Cache       *StatusCache
	Clients     ClientFactory
	Painter     Painter
	Pages       PageSource
	Logger      logger.Logger
}

// Background is the long-lived extension worker. It owns the status cache and
// repaints the active tab after every change.
type Background struct {
	conns     *ConnectionManager
	cache     *StatusCache
	newClient ClientFactory
	icons     *IconSync
	pages     PageSource
	logger    logger.Logger

	mu     sync.RWMutex
	active *Tab
}

func NewBackground(cfg BackgroundConfig) *Background {
	b := &Background{
		conns:     cfg.Connections,
		cache:     cfg.Cache,
		newClient: cfg.Clients,
		pages:     cfg.Pages,
		logger:    cfg.Logger,
	}
	if b.cache == nil {
		b.cache = NewStatusCache(DefaultStatusTTL, nil)
	}
	painter := cfg.Painter
	if painter == nil {
		painter = NewBadgeBoard(cfg.Logger)
	}
	b.icons = NewIconSync(painter, b, cfg.Logger)
	return b
}

func (b *Background) Cache() *StatusCache { return b.cache }

// CheckStatus reports whether pageURL is bookmarked. It never fails: network
// errors come back in StatusResult.Error and are not cached.
func (b *Background) CheckStatus(ctx context.Context, pageURL string) StatusResult {
	cfg, err := b.conns.Get(ctx)
	if err != nil {
		b.logger.Warn("failed to read connection", logger.Error(err))
	}
	if cfg == nil || !cfg.Connected {
		return StatusResult{Connected: false, Bookmarked: false}
	}

	if e, ok := b.cache.Get(pageURL); ok {
		return StatusResult{
			Connected:  true,
			Bookmarked: e.Bookmarked,
			BookmarkID: e.BookmarkID,
			CreatedAt:  e.CreatedAt,
		}
	}

	res, err := b.newClient(cfg.Server, cfg.APIKey).CheckBookmark(ctx, pageURL)
	if err != nil {
		b.logger.Warn("failed to check bookmark status",
			logger.String("url", pageURL),
			logger.Error(err))
		return StatusResult{Connected: true, Bookmarked: false, Error: err.Error()}
	}

	b.cache.Put(CacheEntry{
		URL:        pageURL,
		Bookmarked: res.Bookmarked,
		BookmarkID: res.BookmarkID,
		CreatedAt:  res.CreatedAt,
	})
	return StatusResult{
		Connected:  true,
		Bookmarked: res.Bookmarked,
		BookmarkID: res.BookmarkID,
		CreatedAt:  res.CreatedAt,
	}
}

// AddBookmark saves a page and marks it bookmarked in the cache.
func (b *Background) AddBookmark(ctx context.Context, data BookmarkData) (apiclient.Bookmark, error) {
	api, err := b.client(ctx)
	if err != nil {
		return apiclient.Bookmark{}, err
	}

	if data.Source == "" {
		data.Source = DefaultSource
	}
	bm, err := api.CreateBookmark(ctx, apiclient.CreateBookmarkRequest{
		URL:         data.URL,
		Title:       data.Title,
		Description: data.Description,
		Favicon:     data.Favicon,
		Tags:        data.Tags,
		Source:      data.Source,
	})
	if err != nil {
		return apiclient.Bookmark{}, fmt.Errorf("create bookmark: %w", err)
	}

	id, created := bm.ID, bm.CreatedAt
	b.cache.Put(CacheEntry{URL: data.URL, Bookmarked: true, BookmarkID: &id, CreatedAt: &created})
	b.logger.Info("bookmark added", logger.Int64("id", bm.ID), logger.String("url", data.URL))

	b.repaintActive(ctx, data.URL)
	return bm, nil
}

// RemoveBookmark deletes a bookmark; when pageURL is known the cache records
// it as not bookmarked.
func (b *Background) RemoveBookmark(ctx context.Context, id int64, pageURL string) error {
	api, err := b.client(ctx)
	if err != nil {
		return err
	}

	if _, err := api.DeleteBookmark(ctx, id); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}

	if pageURL != "" {
		b.cache.Put(CacheEntry{URL: pageURL, Bookmarked: false})
	}
	b.logger.Info("bookmark removed", logger.Int64("id", id), logger.String("url", pageURL))

	b.repaintActive(ctx, pageURL)
	return nil
}

// OnConnectionChanged drops every cached status and repaints the active tab.
func (b *Background) OnConnectionChanged(ctx context.Context) {
	b.cache.Clear()
	if tab, ok := b.ActiveTab(); ok && tab.URL != "" {
		b.icons.Update(ctx, tab.ID, tab.URL)
	}
}

func (b *Background) TabUpdated(ctx context.Context, tab Tab, status string) {
	b.mu.Lock()
	if b.active != nil && b.active.ID == tab.ID && tab.URL != "" {
		b.active.URL = tab.URL
	}
	b.mu.Unlock()

	b.icons.TabUpdated(ctx, tab.ID, tab.URL, status)
}

func (b *Background) TabActivated(ctx context.Context, tab Tab) {
	b.mu.Lock()
	b.active = &Tab{ID: tab.ID, URL: tab.URL}
	b.mu.Unlock()

	b.icons.TabActivated(ctx, tab.ID, tab.URL)
}

func (b *Background) ActiveTab() (Tab, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.active == nil {
		return Tab{}, false
	}
	return *b.active, true
}

// PageData fetches metadata for pageURL, or for the active tab when empty.
func (b *Background) PageData(ctx context.Context, pageURL string) (PageMetadata, error) {
	if pageURL == "" {
		tab, ok := b.ActiveTab()
		if !ok || tab.URL == "" {
			return PageMetadata{}, ErrNoActiveTab
		}
		pageURL = tab.URL
	}
	if b.pages == nil {
		return PageMetadata{}, errors.New("page fetching is not configured")
	}
	return b.pages.Fetch(ctx, pageURL)
}

// client binds the kernel client to the stored connection.
func (b *Background) client(ctx context.Context) (BookmarkAPI, error) {
	cfg, err := b.conns.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil || !cfg.Connected {
		return nil, ErrNotConnected
	}
	return b.newClient(cfg.Server, cfg.APIKey), nil
}

// repaintActive refreshes the active tab's icon as if it showed pageURL.
func (b *Background) repaintActive(ctx context.Context, pageURL string) {
	tab, ok := b.ActiveTab()
	if !ok || pageURL == "" {
		return
	}
	b.icons.Update(ctx, tab.ID, pageURL)
}
