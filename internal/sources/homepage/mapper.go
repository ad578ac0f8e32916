package homepage

import (
	"errors"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/arvai/internal/domain"
)

var (
	ErrNoBookmarks = errors.New("no valid bookmarks found in homepage config")
	ErrNoServices  = errors.New("no valid services found in homepage config")
)

// MapBookmarks turns bookmarks.yaml entries into forms: title is the abbr or
// the entry name, the only tag is the lower-cased group name. Entries without
// href are skipped.
func MapBookmarks(config BookmarksConfig) ([]domain.BookmarkForm, error) {
	var forms []domain.BookmarkForm

	for _, category := range config {
		for _, group := range sortedKeys(category) {
			for _, bookmarkMap := range category[group] {
				for _, name := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[name]
					// Each bookmark has a list with a single entry
					if len(entries) == 0 || entries[0].Href == "" {
						continue
					}
					entry := entries[0]

					title := entry.Abbr
					if title == "" {
						title = name
					}

					forms = append(forms, domain.BookmarkForm{
						URL:     strings.TrimSpace(entry.Href),
						Title:   title,
						Tags:    groupTags(group),
						Favicon: webIcon(entry.Icon),
					})
				}
			}
		}
	}

	if len(forms) == 0 {
		return nil, ErrNoBookmarks
	}
	return forms, nil
}

// MapServices turns services.yaml entries into forms titled after the service
// and tagged with the group name.
func MapServices(config ServicesConfig) ([]domain.BookmarkForm, error) {
	var forms []domain.BookmarkForm

	for _, groupMap := range config {
		for _, group := range sortedKeys(groupMap) {
			for _, serviceMap := range groupMap[group] {
				for _, name := range sortedKeys(serviceMap) {
					props := serviceMap[name]
					if props.Href == "" || !domain.IsWebURL(props.Href) {
						continue
					}

					forms = append(forms, domain.BookmarkForm{
						URL:         strings.TrimSpace(props.Href),
						Title:       name,
						Description: props.Description,
						Tags:        groupTags(group),
						Favicon:     webIcon(props.Icon),
					})
				}
			}
		}
	}

	if len(forms) == 0 {
		return nil, ErrNoServices
	}
	return forms, nil
}

func groupTags(group string) []string {
	tag := strings.ToLower(strings.TrimSpace(group))
	if tag == "" {
		return nil
	}
	return []string{tag}
}

// webIcon keeps icons given as URLs; Homepage icon names ("adguard-home.svg")
// mean nothing outside Homepage.
func webIcon(icon string) string {
	if domain.IsWebURL(icon) {
		return icon
	}
	return ""
}

// YAML mappings decode into Go maps; sort keys to import in a stable order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
