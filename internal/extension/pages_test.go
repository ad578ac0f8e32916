package extension_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/arvai/internal/extension"
)

func TestExtractMetadata(t *testing.T) {
	pageURL, _ := url.Parse("https://blog.example.com/posts/go?ref=feed")

	tests := []struct {
		name string
		doc  string
		want extension.PageMetadata
	}{
		{
			name: "open graph wins",
			doc: `<html><head>
				<title>Plain title</title>
				<meta property="og:title" content=" OG title ">
				<meta name="description" content="plain description">
				<meta property="og:description" content="og description">
				<link rel="icon" href="/static/icon.png">
			</head></html>`,
			want: extension.PageMetadata{
				Title:       "OG title",
				Description: "og description",
				Favicon:     "https://blog.example.com/static/icon.png",
			},
		},
		{
			name: "plain tags",
			doc: `<html><head>
				<title>
					Effective
					Go
				</title>
				<meta name="description" content="Tips for writing clear Go">
				<link rel="apple-touch-icon" href="touch.png">
				<link rel="shortcut icon" href="https://cdn.example.com/fav.ico">
			</head></html>`,
			want: extension.PageMetadata{
				Title:       "Effective Go",
				Description: "Tips for writing clear Go",
				Favicon:     "https://cdn.example.com/fav.ico",
			},
		},
		{
			name: "relative icon resolves against the origin",
			doc:  `<title>x</title><link rel="apple-touch-icon" href="touch.png">`,
			want: extension.PageMetadata{
				Title:   "x",
				Favicon: "https://blog.example.com/touch.png",
			},
		},
		{
			name: "nothing declared",
			doc:  `<p>hello</p>`,
			want: extension.PageMetadata{Favicon: "https://blog.example.com/favicon.ico"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extension.ExtractMetadata(pageURL, strings.NewReader(tt.doc))
			if err != nil {
				t.Fatal(err)
			}
			tt.want.URL = pageURL.String()
			if got != tt.want {
				t.Errorf("got %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestPageFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "arvai-test" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`<title>Moved page</title>`))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := extension.NewPageFetcher(srv.Client(), "arvai-test")
	ctx := context.Background()

	meta, err := f.Fetch(ctx, srv.URL+"/old")
	if err != nil {
		t.Fatal(err)
	}
	if meta.URL != srv.URL+"/new" || meta.Title != "Moved page" || meta.Favicon != srv.URL+"/favicon.ico" {
		t.Errorf("unexpected metadata %+v", meta)
	}

	if _, err := f.Fetch(ctx, srv.URL+"/gone"); err == nil {
		t.Error("404 should fail")
	}
	if _, err := f.Fetch(ctx, "file:///etc/passwd"); err == nil {
		t.Error("non-web URL should fail")
	}
}
