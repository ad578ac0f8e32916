package extension_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/MrSnakeDoc/arvai/internal/apiclient"
	"github.com/MrSnakeDoc/arvai/internal/extension"
	"github.com/MrSnakeDoc/arvai/internal/extension/mocks"
	"github.com/MrSnakeDoc/arvai/internal/kv"
	"github.com/MrSnakeDoc/arvai/internal/logger"
)

const page = "https://go.dev/doc/"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	api    *mocks.MockBookmarkAPI
	conns  *extension.ConnectionManager
	cache  *extension.StatusCache
	clock  *fakeClock
	board  *extension.BadgeBoard
	bg     *extension.Background
	router *extension.Router
}

func newHarness(t *testing.T, connected bool) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	h := &harness{
		api:   mocks.NewMockBookmarkAPI(ctrl),
		clock: &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		board: extension.NewBadgeBoard(logger.NewNop()),
	}
	clients := func(server, key string) extension.BookmarkAPI { return h.api }

	h.conns = extension.NewConnectionManager(kv.NewMemoryStore(), clients, logger.NewNop())
	if connected {
		err := h.conns.Save(context.Background(), extension.ConnectionConfig{
			Server: "http://127.0.0.1:8731", APIKey: "arvai_test", Connected: true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	h.cache = extension.NewStatusCache(extension.DefaultStatusTTL, h.clock.Now)
	h.bg = extension.NewBackground(extension.BackgroundConfig{
		Connections: h.conns,
		Cache:       h.cache,
		Clients:     clients,
		Painter:     h.board,
		Logger:      logger.NewNop(),
	})
	h.router = extension.NewRouter(h.bg, h.board, logger.NewNop())
	return h
}

func ptr[T any](v T) *T { return &v }

func TestCheckStatus_Disconnected(t *testing.T) {
	// No EXPECT: any network call fails the test.
	h := newHarness(t, false)

	got := h.bg.CheckStatus(context.Background(), page)
	if got.Connected || got.Bookmarked {
		t.Errorf("got %+v, want disconnected", got)
	}
	if h.cache.Len() != 0 {
		t.Error("cache written while disconnected")
	}
}

func TestCheckStatus_CachesWithinTTL(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	created := h.clock.Now().Add(-time.Hour)

	h.api.EXPECT().CheckBookmark(gomock.Any(), page).
		Return(apiclient.CheckResult{Bookmarked: true, BookmarkID: ptr(int64(7)), CreatedAt: &created}, nil).
		Times(1)

	first := h.bg.CheckStatus(ctx, page)
	h.clock.Advance(extension.DefaultStatusTTL - time.Second)
	second := h.bg.CheckStatus(ctx, page)

	for _, got := range []extension.StatusResult{first, second} {
		if !got.Connected || !got.Bookmarked || got.BookmarkID == nil || *got.BookmarkID != 7 {
			t.Errorf("unexpected status %+v", got)
		}
	}

	// Past the TTL the kernel is asked again.
	h.api.EXPECT().CheckBookmark(gomock.Any(), page).
		Return(apiclient.CheckResult{Bookmarked: false}, nil).
		Times(1)
	h.clock.Advance(time.Second)

	if got := h.bg.CheckStatus(ctx, page); got.Bookmarked {
		t.Errorf("stale entry served: %+v", got)
	}
}

func TestCheckStatus_ErrorsAreNotCached(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	gomock.InOrder(
		h.api.EXPECT().CheckBookmark(gomock.Any(), page).Return(apiclient.CheckResult{}, errors.New("connection refused")),
		h.api.EXPECT().CheckBookmark(gomock.Any(), page).Return(apiclient.CheckResult{Bookmarked: true}, nil),
	)

	got := h.bg.CheckStatus(ctx, page)
	if !got.Connected || got.Bookmarked || got.Error == "" {
		t.Errorf("failed check = %+v", got)
	}
	if h.cache.Len() != 0 {
		t.Error("failure was cached")
	}

	if got := h.bg.CheckStatus(ctx, page); !got.Bookmarked || got.Error != "" {
		t.Errorf("retry = %+v", got)
	}
}

func TestAddAndRemoveUpdateCache(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	created := h.clock.Now()

	h.api.EXPECT().CreateBookmark(gomock.Any(), apiclient.CreateBookmarkRequest{
		URL: page, Title: "Docs", Source: extension.DefaultSource,
	}).Return(apiclient.Bookmark{ID: 42, URL: page, CreatedAt: created}, nil)

	res, err := h.router.Handle(ctx, extension.Message{
		Type: extension.MsgAddBookmark,
		Data: &extension.BookmarkData{URL: page, Title: "Docs"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if add := res.(extension.AddResponse); !add.Success || add.Bookmark.ID != 42 {
		t.Errorf("unexpected response %+v", add)
	}

	// Served from the cache: no CheckBookmark expected.
	got := h.bg.CheckStatus(ctx, page)
	if !got.Bookmarked || *got.BookmarkID != 42 || !got.CreatedAt.Equal(created) {
		t.Errorf("after add: %+v", got)
	}

	h.api.EXPECT().DeleteBookmark(gomock.Any(), int64(42)).
		Return(apiclient.Message{Message: "Bookmark deleted"}, nil)

	if _, err := h.router.Handle(ctx, extension.Message{Type: extension.MsgRemoveBookmark, BookmarkID: 42, URL: page}); err != nil {
		t.Fatal(err)
	}
	if got := h.bg.CheckStatus(ctx, page); got.Bookmarked || got.BookmarkID != nil {
		t.Errorf("after remove: %+v", got)
	}
}

func TestAddBookmark_NotConnected(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.bg.AddBookmark(context.Background(), extension.BookmarkData{URL: page})
	if !errors.Is(err, extension.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if err := h.bg.RemoveBookmark(context.Background(), 1, page); !errors.Is(err, extension.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestDisconnectClearsEverything(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	h.api.EXPECT().CheckBookmark(gomock.Any(), page).Return(apiclient.CheckResult{Bookmarked: true}, nil)
	h.bg.TabActivated(ctx, extension.Tab{ID: 3, URL: page})
	if badge, _ := h.board.Badge(3); badge.Title != extension.TitleSaved {
		t.Fatalf("badge = %+v", badge)
	}

	if err := h.conns.Disconnect(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := h.router.Handle(ctx, extension.Message{Type: extension.MsgConnectionChanged}); err != nil {
		t.Fatal(err)
	}

	if cfg, _ := h.conns.Get(ctx); cfg != nil {
		t.Errorf("config survived disconnect: %+v", cfg)
	}
	if h.cache.Len() != 0 {
		t.Errorf("cache has %d entries after disconnect", h.cache.Len())
	}
	if got := h.bg.CheckStatus(ctx, page); got.Connected {
		t.Errorf("status after disconnect = %+v", got)
	}
	if badge, _ := h.board.Badge(3); badge.Icon != extension.IconDefault || badge.Title != extension.TitleConnect {
		t.Errorf("active tab not repainted: %+v", badge)
	}
}

func TestIconSync(t *testing.T) {
	tests := []struct {
		name       string
		connected  bool
		url        string
		bookmarked bool
		wantIcon   extension.Icon
		wantTitle  string
	}{
		{"internal page", true, "chrome://extensions", false, extension.IconDefault, extension.TitleDefault},
		{"disconnected", false, page, false, extension.IconDefault, extension.TitleConnect},
		{"saved", true, page, true, extension.IconBookmarked, extension.TitleSaved},
		{"not saved", true, page, false, extension.IconDefault, extension.TitleAdd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.connected)
			ctx := context.Background()
			if tt.connected && tt.url == page {
				h.api.EXPECT().CheckBookmark(gomock.Any(), page).
					Return(apiclient.CheckResult{Bookmarked: tt.bookmarked}, nil)
			}

			// Loading tabs are ignored.
			h.bg.TabUpdated(ctx, extension.Tab{ID: 1, URL: tt.url}, "loading")
			if _, ok := h.board.Badge(1); ok {
				t.Fatal("painted before the page completed")
			}

			h.bg.TabUpdated(ctx, extension.Tab{ID: 1, URL: tt.url}, "complete")
			badge, ok := h.board.Badge(1)
			if !ok || badge.Icon != tt.wantIcon || badge.Title != tt.wantTitle {
				t.Errorf("badge = %+v, want %s/%s", badge, tt.wantIcon, tt.wantTitle)
			}

			res, err := h.router.Handle(ctx, extension.Message{Type: extension.MsgGetBadge, TabID: 1})
			if err != nil || res.(extension.Badge).Title != tt.wantTitle {
				t.Errorf("GET_BADGE = %+v, %v", res, err)
			}
		})
	}
}

func TestRouter_Errors(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	if _, err := h.router.Handle(ctx, extension.Message{Type: "EXPLODE"}); !errors.Is(err, extension.ErrUnknownMessage) {
		t.Errorf("expected ErrUnknownMessage, got %v", err)
	}
	if _, err := h.router.Handle(ctx, extension.Message{Type: extension.MsgGetPageData}); !errors.Is(err, extension.ErrNoActiveTab) {
		t.Errorf("expected ErrNoActiveTab, got %v", err)
	}
	if _, err := h.router.Handle(ctx, extension.Message{Type: extension.MsgCheckStatus}); err == nil {
		t.Error("CHECK_STATUS without url should fail")
	}

	h.api.EXPECT().CreateBookmark(gomock.Any(), gomock.Any()).
		Return(apiclient.Bookmark{}, &apiclient.APIError{Status: 422, Message: "bad url"})
	_, err := h.router.Handle(ctx, extension.Message{Type: extension.MsgAddBookmark, Data: &extension.BookmarkData{URL: "x"}})
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "bad url" {
		t.Errorf("kernel error not propagated: %v", err)
	}
}

func TestStatusCache_Sweep(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := extension.NewStatusCache(time.Minute, clock.Now)

	c.Put(extension.CacheEntry{URL: "a"})
	clock.Advance(30 * time.Second)
	c.Put(extension.CacheEntry{URL: "b"})
	clock.Advance(31 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Error("stale entry returned")
	}
	if n := c.Sweep(); n != 1 || c.Len() != 1 {
		t.Errorf("Sweep() = %d, Len() = %d", n, c.Len())
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("fresh entry lost")
	}
}
