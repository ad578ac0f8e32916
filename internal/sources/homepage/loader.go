// Package homepage reads gethomepage.dev configuration files and turns their
// entries into bookmark forms.
package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader handles loading and parsing of Homepage bookmarks.yaml and services.yaml
type Loader struct {
	bookmarksPath string
	servicesPath  string
}

// NewLoader creates a new Homepage loader. Either path may be empty.
func NewLoader(bookmarksPath, servicesPath string) *Loader {
	return &Loader{
		bookmarksPath: bookmarksPath,
		servicesPath:  servicesPath,
	}
}

func (l *Loader) BookmarksPath() string { return l.bookmarksPath }
func (l *Loader) ServicesPath() string  { return l.servicesPath }

// LoadBookmarks reads and parses the bookmarks.yaml file
func (l *Loader) LoadBookmarks() (BookmarksConfig, error) {
	var config BookmarksConfig
	if err := loadYAML(l.bookmarksPath, &config); err != nil {
		return nil, fmt.Errorf("bookmarks: %w", err)
	}
	return config, nil
}

// LoadServices reads and parses the services.yaml file
func (l *Loader) LoadServices() (ServicesConfig, error) {
	var config ServicesConfig
	if err := loadYAML(l.servicesPath, &config); err != nil {
		return nil, fmt.Errorf("services: %w", err)
	}
	return config, nil
}

func loadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Strip Homepage template variables ({{HOMEPAGE_VAR_...}})
	data = stripTemplateVariables(data)

	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
