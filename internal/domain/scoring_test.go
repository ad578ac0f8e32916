package domain

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func reactDocs() Bookmark {
	return Bookmark{
		ID:        "1",
		URL:       "https://react.dev",
		Title:     "React docs",
		Tags:      []string{"react", "frontend"},
		Domain:    "react.dev",
		CreatedAt: testNow.Add(-2 * time.Hour),
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		bookmark Bookmark
		query    string
		want     int
	}{
		{
			name:     "react hits title tag url and domain",
			bookmark: reactDocs(),
			query:    "react",
			want:     ScoreTitle + ScoreTag + ScoreURL + ScoreDomain,
		},
		{
			name:     "no match",
			bookmark: reactDocs(),
			query:    "vue",
			want:     0,
		},
		{
			name:     "case insensitive",
			bookmark: Bookmark{Title: "GoLang Tips"},
			query:    "GOLANG",
			want:     ScoreTitle,
		},
		{
			name:     "substring inside a word counts",
			bookmark: Bookmark{Title: "Reactivity"},
			query:    "act",
			want:     ScoreTitle,
		},
		{
			name:     "tag counted once per term",
			bookmark: Bookmark{Tags: []string{"go", "golang", "gopher"}},
			query:    "go",
			want:     ScoreTag,
		},
		{
			name:     "description only",
			bookmark: Bookmark{Title: "x", Description: "a guide to vectors"},
			query:    "vector",
			want:     ScoreDescription,
		},
		{
			name:     "terms are summed",
			bookmark: Bookmark{Title: "Chi router", Description: "lightweight router for go"},
			query:    "chi lightweight",
			want:     ScoreTitle + ScoreDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.bookmark, ParseQuery(tt.query).Terms)
			if got != tt.want {
				t.Errorf("Score(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestEvaluateReactExample(t *testing.T) {
	store := []Bookmark{reactDocs()}

	got := Evaluate(store, FilterAll, "react", testNow)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected react docs to be returned, got %+v", got)
	}

	// Title and tag alone already give 18.
	if s := Score(store[0], []string{"react"}); s < ScoreTitle+ScoreTag {
		t.Errorf("expected score >= %d, got %d", ScoreTitle+ScoreTag, s)
	}

	if got := Evaluate(store, FilterAll, "vue", testNow); len(got) != 0 {
		t.Errorf("expected empty result for vue, got %d bookmarks", len(got))
	}
}

func sampleStore() []Bookmark {
	return []Bookmark{
		{ID: "a", Title: "Go blog", URL: "https://go.dev/blog", Domain: "go.dev", CreatedAt: testNow.Add(-1 * time.Hour), IsFavorite: true},
		{ID: "b", Title: "Rust book", URL: "https://doc.rust-lang.org/book", Domain: "doc.rust-lang.org", Tags: []string{"rust"}, CreatedAt: testNow.Add(-72 * time.Hour)},
		{ID: "c", Title: "Go by example", URL: "https://gobyexample.com", Domain: "gobyexample.com", Tags: []string{"go"}, CreatedAt: testNow.Add(-30 * time.Hour)},
		{ID: "d", Title: "Effective Go", URL: "https://go.dev/doc/effective_go", Domain: "go.dev", CreatedAt: testNow.Add(-10 * 24 * time.Hour), IsFavorite: true},
		{ID: "e", Title: "Docs", URL: "https://example.com", Domain: "example.com", CreatedAt: testNow.Add(-30 * time.Hour)},
	}
}

func TestEvaluateEmptyQuerySortsByDate(t *testing.T) {
	for _, f := range []Filter{FilterAll, FilterRecent, FilterFavorites} {
		t.Run(string(f), func(t *testing.T) {
			store := sampleStore()
			got := Evaluate(store, f, "", testNow)

			want := f.Apply(store, testNow)
			if len(got) != len(want) {
				t.Fatalf("expected %d bookmarks, got %d", len(want), len(got))
			}

			for i := 1; i < len(got); i++ {
				if got[i].CreatedAt.After(got[i-1].CreatedAt) {
					t.Errorf("not sorted by date desc at %d: %s after %s", i, got[i].ID, got[i-1].ID)
				}
				if !f.Keep(got[i], testNow) {
					t.Errorf("bookmark %s should have been filtered out", got[i].ID)
				}
			}
		})
	}
}

func TestEvaluateEqualDatesKeepStoreOrder(t *testing.T) {
	got := Evaluate(sampleStore(), FilterAll, "", testNow)

	// c and e share a timestamp, c comes first in the store
	var order []string
	for _, b := range got {
		if b.ID == "c" || b.ID == "e" {
			order = append(order, b.ID)
		}
	}
	if len(order) != 2 || order[0] != "c" || order[1] != "e" {
		t.Errorf("expected [c e], got %v", order)
	}
}

func TestEvaluateRankedQuery(t *testing.T) {
	store := sampleStore()
	got := Evaluate(store, FilterAll, "go", testNow)

	if len(got) == 0 {
		t.Fatal("expected results for go")
	}

	terms := ParseQuery("go").Terms
	prev := Score(got[0], terms)
	for _, b := range got {
		s := Score(b, terms)
		if s <= 0 {
			t.Errorf("bookmark %s returned with score %d", b.ID, s)
		}
		if s > prev {
			t.Errorf("bookmark %s scored %d after a lower score %d", b.ID, s, prev)
		}
		prev = s
	}

	// Rust book and Docs do not contain "go"
	for _, b := range got {
		if b.ID == "b" || b.ID == "e" {
			t.Errorf("bookmark %s should not match go", b.ID)
		}
	}
}

func TestEvaluateTiesKeepStoreOrder(t *testing.T) {
	store := []Bookmark{
		{ID: "1", Title: "alpha one", CreatedAt: testNow.Add(-3 * time.Hour)},
		{ID: "2", Title: "alpha two", CreatedAt: testNow.Add(-1 * time.Hour)},
		{ID: "3", Title: "alpha three", CreatedAt: testNow.Add(-2 * time.Hour)},
	}

	got := Evaluate(store, FilterAll, "alpha", testNow)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, want := range []string{"1", "2", "3"} {
		if got[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestEvaluateWhitespaceQueryMatchesNothing(t *testing.T) {
	if got := Evaluate(sampleStore(), FilterAll, "   \t ", testNow); len(got) != 0 {
		t.Errorf("expected empty result, got %d bookmarks", len(got))
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	store := sampleStore()
	Evaluate(store, FilterAll, "", testNow)

	if store[0].ID != "a" || store[1].ID != "b" {
		t.Errorf("input slice was reordered: %s %s", store[0].ID, store[1].ID)
	}
}

func TestRecentFilterBoundary(t *testing.T) {
	store := []Bookmark{
		{ID: "old", CreatedAt: testNow.Add(-8 * 24 * time.Hour)},
		{ID: "new", CreatedAt: testNow.Add(-6 * 24 * time.Hour)},
	}

	got := Evaluate(store, FilterRecent, "", testNow)
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("expected only the 6 day old bookmark, got %+v", got)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"Recent", FilterRecent, false},
		{" favorites ", FilterFavorites, false},
		{"starred", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
