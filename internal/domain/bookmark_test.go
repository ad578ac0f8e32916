package domain

import (
	"errors"
	"testing"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.github.com/x", "github.com"},
		{"https://react.dev/learn", "react.dev"},
		{"http://127.0.0.1:8731/health", "127.0.0.1"},
		{"https://docs.www.example.com", "docs.www.example.com"},
		{"https://www.Go.dev/doc", "go.dev"},
		{"https://WWW.GitHub.COM/x", "github.com"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExtractDomain(tt.in); got != tt.want {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewBookmark(t *testing.T) {
	form := BookmarkForm{
		URL:   " https://www.Go.dev/doc ",
		Title: " Go docs ",
		Tags:  []string{"Go", " ", "WEB", "go"},
	}

	b := NewBookmark("id-1", form, testNow)

	if b.ID != "id-1" || !b.CreatedAt.Equal(testNow) {
		t.Errorf("identity not set: %+v", b)
	}
	if b.Domain != "go.dev" {
		t.Errorf("expected domain go.dev, got %q", b.Domain)
	}
	if b.Title != "Go docs" {
		t.Errorf("expected trimmed title, got %q", b.Title)
	}
	want := []string{"go", "web", "go"}
	if len(b.Tags) != len(want) {
		t.Fatalf("expected tags %v, got %v", want, b.Tags)
	}
	for i := range want {
		if b.Tags[i] != want[i] {
			t.Errorf("tag %d: expected %q, got %q", i, want[i], b.Tags[i])
		}
	}
	if b.IsFavorite {
		t.Error("new bookmark should not be a favorite")
	}
}

func TestValidateForm(t *testing.T) {
	tests := []struct {
		name      string
		form      BookmarkForm
		wantField string
	}{
		{"valid", BookmarkForm{URL: "https://go.dev", Title: "Go"}, ""},
		{"missing url", BookmarkForm{Title: "Go"}, "url"},
		{"relative url", BookmarkForm{URL: "/docs", Title: "Go"}, "url"},
		{"ftp url", BookmarkForm{URL: "ftp://files.example.com", Title: "Files"}, "url"},
		{"blank title", BookmarkForm{URL: "https://go.dev", Title: "   "}, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForm(tt.form)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

func TestDefaultBookmarks(t *testing.T) {
	got := DefaultBookmarks(testNow)
	if len(got) != 10 {
		t.Fatalf("expected 10 default bookmarks, got %d", len(got))
	}

	seen := make(map[string]bool)
	for i, b := range got {
		if seen[b.ID] {
			t.Errorf("duplicate id %s", b.ID)
		}
		seen[b.ID] = true

		if i > 0 && b.CreatedAt.After(got[i-1].CreatedAt) {
			t.Errorf("defaults not newest first at %d", i)
		}
		if b.Domain == "" {
			t.Errorf("bookmark %s has no domain", b.ID)
		}
	}
}
