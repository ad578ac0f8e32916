package homepage

import (
	"errors"
	"reflect"
	"testing"

	"github.com/MrSnakeDoc/arvai/internal/domain"
)

func TestMapBookmarks(t *testing.T) {
	config := BookmarksConfig{
		{
			"Developer": []map[string][]BookmarkEntry{
				{"Github": {{Abbr: "GH", Href: "https://github.com/", Icon: "github.png"}}},
				{"Go": {{Href: "https://go.dev", Icon: "https://go.dev/favicon.ico"}}},
				{"Broken": {{Abbr: "BR"}}},
				{"Empty": {}},
			},
		},
	}

	forms, err := MapBookmarks(config)
	if err != nil {
		t.Fatalf("MapBookmarks() error = %v", err)
	}

	want := []domain.BookmarkForm{
		{URL: "https://github.com/", Title: "GH", Tags: []string{"developer"}},
		{URL: "https://go.dev", Title: "Go", Tags: []string{"developer"}, Favicon: "https://go.dev/favicon.ico"},
	}
	if !reflect.DeepEqual(forms, want) {
		t.Errorf("MapBookmarks() = %+v\nwant %+v", forms, want)
	}
}

func TestMapBookmarksEmpty(t *testing.T) {
	_, err := MapBookmarks(BookmarksConfig{{"Social": {{"Reddit": {{Href: ""}}}}}})
	if !errors.Is(err, ErrNoBookmarks) {
		t.Errorf("expected ErrNoBookmarks, got %v", err)
	}
}

func TestMapServices(t *testing.T) {
	config := ServicesConfig{
		{
			"Infrastructure": []map[string]ServiceProps{
				{
					"Traefik": {
						Icon:        "traefik.svg",
						Href:        "https://traefik.domain.ext",
						Description: "Cloud Native Application Proxy",
					},
					"AdGuard Home": {
						Href:        "https://adguard.domain.ext",
						Description: "Network-wide ads blocking",
					},
				},
				{"No Href": {Description: "skipped"}},
				{"Local": {Href: "tcp://10.0.0.1:22"}},
			},
		},
	}

	forms, err := MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("MapServices() returned %d forms, want 2", len(forms))
	}
	// keys are sorted within a list item
	if forms[0].Title != "AdGuard Home" || forms[1].Title != "Traefik" {
		t.Errorf("unexpected order %q, %q", forms[0].Title, forms[1].Title)
	}
	if forms[1].Description != "Cloud Native Application Proxy" || forms[1].Favicon != "" {
		t.Errorf("unexpected form %+v", forms[1])
	}
	if !reflect.DeepEqual(forms[0].Tags, []string{"infrastructure"}) {
		t.Errorf("unexpected tags %v", forms[0].Tags)
	}

	if _, err := MapServices(ServicesConfig{}); !errors.Is(err, ErrNoServices) {
		t.Errorf("expected ErrNoServices, got %v", err)
	}
}
