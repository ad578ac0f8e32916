package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/auth"
	"github.com/MrSnakeDoc/arvai/internal/httpserver"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/deps"
	"github.com/MrSnakeDoc/arvai/internal/logger"
	"github.com/MrSnakeDoc/arvai/internal/storage"
)

// startKernel serves the real router on a loopback listener.
func startKernel(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "kernel.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatal(err)
	}

	d := deps.Deps{
		Logger:        logger.NewNop(),
		StartTime:     time.Now(),
		Version:       "test",
		AllowedCIDRS:  []string{"127.0.0.1/32", "::1/128"},
		KeyRateLimit:  10,
		KeyRateWindow: time.Minute,
		DB:            db,
		Bookmarks:     storage.NewBookmarkRepo(db),
		APIKeys:       storage.NewAPIKeyRepo(db),
	}
	key, err := d.APIKeys.Create(t.Context(), "test")
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(httpserver.NewRouter(nil, d.Logger, d))
	t.Cleanup(srv.Close)
	return srv, key.Key
}

func TestClient_AgainstKernel(t *testing.T) {
	srv, key := startKernel(t)
	ctx := t.Context()
	c := New(srv.URL+"/", key, WithHTTPClient(srv.Client()))

	if c.Server() != srv.URL {
		t.Errorf("trailing slash not trimmed: %s", c.Server())
	}

	h, err := c.Health(ctx)
	if err != nil || h.Status != "ok" || h.Version != "test" {
		t.Fatalf("Health() = %+v, %v", h, err)
	}

	ok, err := c.VerifyAPIKey(ctx)
	if err != nil || !ok {
		t.Fatalf("VerifyAPIKey() = %v, %v", ok, err)
	}

	page := "https://go.dev/blog/?tag=a&b=c"
	created, err := c.CreateBookmark(ctx, CreateBookmarkRequest{URL: page, Title: "Go blog", Tags: []string{"go"}})
	if err != nil {
		t.Fatalf("CreateBookmark() error = %v", err)
	}

	check, err := c.CheckBookmark(ctx, page)
	if err != nil || !check.Bookmarked || check.BookmarkID == nil || *check.BookmarkID != created.ID {
		t.Fatalf("CheckBookmark() = %+v, %v", check, err)
	}

	title := "The Go Blog"
	updated, err := c.UpdateBookmark(ctx, created.ID, UpdateBookmarkRequest{Title: &title})
	if err != nil || updated.Title != title || len(updated.Tags) != 1 {
		t.Fatalf("UpdateBookmark() = %+v, %v", updated, err)
	}

	list, err := c.ListBookmarks(ctx, ListOptions{Query: "blog", Limit: 5})
	if err != nil || list.Total != 1 {
		t.Fatalf("ListBookmarks() = %+v, %v", list, err)
	}

	msg, err := c.DeleteBookmark(ctx, created.ID)
	if err != nil || msg.Message != "Bookmark deleted" {
		t.Fatalf("DeleteBookmark() = %+v, %v", msg, err)
	}

	_, err = c.GetBookmark(ctx, created.ID)
	if !IsNotFound(err) {
		t.Fatalf("expected 404, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Bookmark not found" {
		t.Errorf("unexpected error %v", err)
	}

	newKey, err := New(srv.URL, "", WithHTTPClient(srv.Client())).CreateAPIKey(ctx, "cli")
	if err != nil || !auth.HasValidPrefix(newKey.Key) || newKey.Name != "cli" {
		t.Errorf("CreateAPIKey() = %+v, %v", newKey, err)
	}
}

func TestClient_VerifyAPIKey(t *testing.T) {
	srv, _ := startKernel(t)

	ok, err := New(srv.URL, "arvai_revoked", WithHTTPClient(srv.Client())).VerifyAPIKey(t.Context())
	if err != nil || ok {
		t.Errorf("rejected key: got %v, %v; want false, nil", ok, err)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	ok, err = New(broken.URL, "arvai_x").VerifyAPIKey(t.Context())
	if err == nil || ok {
		t.Errorf("502 should surface as an error, got %v, %v", ok, err)
	}
}

func TestClient_Headers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get(auth.HeaderName) != "arvai_abc" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("url") != "https://a.example/?x=1&y=2" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"bookmarked": false})
	}))
	defer srv.Close()

	res, err := New(srv.URL, "arvai_abc").CheckBookmark(context.Background(), "https://a.example/?x=1&y=2")
	if err != nil || res.Bookmarked {
		t.Errorf("CheckBookmark() = %+v, %v", res, err)
	}
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", http.StatusNotFound, `{"detail":"Bookmark not found"}`, "Bookmark not found"},
		{"detail object", http.StatusUnprocessableEntity, `{"detail":[{"loc":["url"]}]}`, `[{"loc":["url"]}]`},
		{"no body", http.StatusInternalServerError, ``, "Internal Server Error"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "arvai_k").GetBookmark(context.Background(), 1)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T %v", err, err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.want {
				t.Errorf("got %d %q, want %d %q", apiErr.Status, apiErr.Message, tt.status, tt.want)
			}
		})
	}
}
