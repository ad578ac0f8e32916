package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/domain"
	"github.com/MrSnakeDoc/arvai/internal/kv"
	"github.com/MrSnakeDoc/arvai/internal/logger"
)

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestLibrary(t *testing.T, store kv.Store) *Library {
	t.Helper()
	n := 0
	return Open(context.Background(), store, logger.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func seeded(t *testing.T, items []domain.Bookmark) kv.Store {
	t.Helper()
	store := kv.NewMemoryStore()
	data, err := json.Marshal(items)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(context.Background(), StorageKey, data); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestOpenFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name  string
		store func() kv.Store
	}{
		{"missing key", func() kv.Store { return kv.NewMemoryStore() }},
		{"corrupt blob", func() kv.Store {
			s := kv.NewMemoryStore()
			_ = s.Save(context.Background(), StorageKey, []byte("{not json"))
			return s
		}},
		{"null blob", func() kv.Store {
			s := kv.NewMemoryStore()
			_ = s.Save(context.Background(), StorageKey, []byte("null"))
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := newTestLibrary(t, tt.store())
			if got := len(lib.Bookmarks()); got != len(domain.DefaultBookmarks(fixedNow)) {
				t.Errorf("expected default library, got %d bookmarks", got)
			}
		})
	}
}

func TestOpenSeedsEmptyLibrary(t *testing.T) {
	lib := newTestLibrary(t, seeded(t, []domain.Bookmark{}))
	if got, want := len(lib.Bookmarks()), len(domain.DefaultBookmarks(fixedNow)); got != want {
		t.Errorf("expected an empty snapshot to load the %d defaults, got %d", want, got)
	}
}

func TestAddPrependsAndPersists(t *testing.T) {
	store := seeded(t, []domain.Bookmark{{ID: "old", URL: "https://old.example", Title: "Old", CreatedAt: fixedNow.Add(-time.Hour)}})
	lib := newTestLibrary(t, store)

	b, err := lib.Add(context.Background(), domain.BookmarkForm{
		URL:   "https://www.go.dev/doc",
		Title: "Go docs",
		Tags:  []string{"Go"},
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if b.ID != "id-1" || b.Domain != "go.dev" || !b.CreatedAt.Equal(fixedNow) {
		t.Errorf("unexpected bookmark: %+v", b)
	}

	items := lib.Bookmarks()
	if len(items) != 2 || items[0].ID != "id-1" {
		t.Fatalf("expected new bookmark first, got %+v", items)
	}

	// reopening reads the persisted snapshot
	reopened := newTestLibrary(t, store)
	if got := reopened.Bookmarks(); len(got) != 2 || got[0].ID != "id-1" {
		t.Errorf("snapshot not persisted: %+v", got)
	}
}

func TestAddRejectsInvalidForm(t *testing.T) {
	lib := newTestLibrary(t, seeded(t, []domain.Bookmark{{ID: "old", URL: "https://old.example", Title: "Old"}}))

	_, err := lib.Add(context.Background(), domain.BookmarkForm{URL: "not-a-url", Title: "x"})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(lib.Bookmarks()) != 1 {
		t.Error("invalid form must not be stored")
	}
}

func TestRemoveClearsSelection(t *testing.T) {
	lib := newTestLibrary(t, seeded(t, []domain.Bookmark{
		{ID: "a", URL: "https://a.example", Title: "A"},
		{ID: "b", URL: "https://b.example", Title: "B"},
	}))
	ctx := context.Background()

	if err := lib.Select("a"); err != nil {
		t.Fatal(err)
	}
	if err := lib.Remove(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if sel, ok := lib.Selected(); !ok || sel.ID != "a" {
		t.Errorf("removing another bookmark must keep the selection, got %+v %v", sel, ok)
	}

	if err := lib.Remove(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := lib.Selected(); ok {
		t.Error("selection should be cleared after deleting the selected bookmark")
	}
	if _, err := lib.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := lib.Remove(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestToggleFavorite(t *testing.T) {
	lib := newTestLibrary(t, seeded(t, []domain.Bookmark{{ID: "a", URL: "https://a.example", Title: "A"}}))
	ctx := context.Background()

	b, err := lib.ToggleFavorite(ctx, "a")
	if err != nil || !b.IsFavorite {
		t.Fatalf("expected favorite, got %+v (%v)", b, err)
	}
	if lib.Stats().Favorites != 1 {
		t.Errorf("expected 1 favorite, got %+v", lib.Stats())
	}

	b, _ = lib.ToggleFavorite(ctx, "a")
	if b.IsFavorite {
		t.Error("second toggle should unset favorite")
	}

	if _, err := lib.ToggleFavorite(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestImportSkipsKnownURLs(t *testing.T) {
	lib := newTestLibrary(t, seeded(t, []domain.Bookmark{{ID: "a", URL: "https://a.example", Title: "A"}}))

	added, skipped, err := lib.Import(context.Background(), []domain.BookmarkForm{
		{URL: "https://a.example", Title: "dup"},
		{URL: "https://b.example", Title: "B"},
		{URL: "https://b.example", Title: "B again"},
		{URL: "ftp://c.example", Title: "bad"},
		{URL: "https://d.example", Title: "D"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if added != 2 || skipped != 3 {
		t.Errorf("expected 2 added / 3 skipped, got %d / %d", added, skipped)
	}

	items := lib.Bookmarks()
	if items[0].URL != "https://b.example" || items[1].URL != "https://d.example" || items[2].ID != "a" {
		t.Errorf("unexpected order: %+v", items)
	}
}

func TestViewUsesQueryEngine(t *testing.T) {
	lib := newTestLibrary(t, seeded(t, []domain.Bookmark{
		{ID: "a", URL: "https://go.dev", Title: "Go", Domain: "go.dev", CreatedAt: fixedNow.Add(-48 * time.Hour)},
		{ID: "b", URL: "https://rust-lang.org", Title: "Rust", Domain: "rust-lang.org", CreatedAt: fixedNow.Add(-30 * 24 * time.Hour), IsFavorite: true},
	}))

	if got := lib.View(domain.FilterRecent, ""); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("recent view: %+v", got)
	}
	if got := lib.View(domain.FilterFavorites, "rust"); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("favorites view: %+v", got)
	}
	if got := lib.Rank(domain.FilterAll, "rust"); len(got) != 1 || got[0].Score == 0 {
		t.Errorf("rank: %+v", got)
	}
}

type failingStore struct{ kv.Store }

func (failingStore) Save(context.Context, string, []byte) error { return errors.New("disk full") }

func TestMutationLeavesStateOnSaveFailure(t *testing.T) {
	base := seeded(t, []domain.Bookmark{{ID: "a", URL: "https://a.example", Title: "A"}})
	lib := newTestLibrary(t, failingStore{base})

	if _, err := lib.Add(context.Background(), domain.BookmarkForm{URL: "https://b.example", Title: "B"}); err == nil {
		t.Fatal("expected save error")
	}
	if got := lib.Bookmarks(); len(got) != 1 {
		t.Errorf("library changed despite failed save: %+v", got)
	}
}
