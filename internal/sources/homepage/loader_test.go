package homepage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoadBookmarks(t *testing.T) {
	path := writeFile(t, "bookmarks.yaml", `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Go:
        - href: https://go.dev
- Social:
    - Reddit:
        - icon: reddit.png
          href: {{HOMEPAGE_VAR_REDDIT}}
`)

	config, err := NewLoader(path, "").LoadBookmarks()
	if err != nil {
		t.Fatalf("LoadBookmarks() error = %v", err)
	}
	if len(config) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(config))
	}
	gh := config[0]["Developer"][0]["Github"][0]
	if gh.Abbr != "GH" || gh.Href != "https://github.com/" {
		t.Errorf("unexpected entry %+v", gh)
	}
	if href := config[1]["Social"][0]["Reddit"][0].Href; href != "" {
		t.Errorf("template variable not stripped: %q", href)
	}
}

func TestLoaderLoadServices(t *testing.T) {
	path := writeFile(t, "services.yaml", `---
- Infrastructure:
    - AdGuard Home:
        icon: adguard-home.svg
        href: https://adguard.domain.ext
        description: Network-wide ads & trackers blocking DNS server
        widget:
          type: adguard
          password: {{HOMEPAGE_VAR_ADGUARD_PASSWORD}}
`)

	config, err := NewLoader("", path).LoadServices()
	if err != nil {
		t.Fatalf("LoadServices() error = %v", err)
	}
	props := config[0]["Infrastructure"][0]["AdGuard Home"]
	if props.Href != "https://adguard.domain.ext" || props.Description == "" {
		t.Errorf("unexpected props %+v", props)
	}
}

func TestLoaderErrors(t *testing.T) {
	l := NewLoader("/nonexistent/path/bookmarks.yaml", "/nonexistent/path/services.yaml")
	if _, err := l.LoadBookmarks(); err == nil {
		t.Error("LoadBookmarks() with non-existent file should return error")
	}
	if _, err := l.LoadServices(); err == nil {
		t.Error("LoadServices() with non-existent file should return error")
	}

	broken := writeFile(t, "bookmarks.yaml", "- Developer: [unclosed")
	if _, err := NewLoader(broken, "").LoadBookmarks(); err == nil {
		t.Error("invalid YAML should return error")
	}
}

func TestStripTemplateVariablesFunc(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "single template variable",
			input:    []byte("url: {{HOMEPAGE_VAR_URL}}"),
			expected: "url: \"\"",
		},
		{
			name:     "two variables",
			input:    []byte("a: {{X}}\nb: {{Y}}"),
			expected: "a: \"\"\nb: \"\"",
		},
		{
			name:     "no template variables",
			input:    []byte("plain text"),
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := stripTemplateVariables(tt.input)
			if string(result) != tt.expected {
				t.Errorf("stripTemplateVariables() = %q, want %q", string(result), tt.expected)
			}
		})
	}
}
