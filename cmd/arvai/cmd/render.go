package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/MrSnakeDoc/arvai/internal/domain"
)

// One colour per domain.TagColor slot.
var tagPalette = [domain.TagPaletteSize]lipgloss.Color{
	lipgloss.Color("#3B82F6"), // blue
	lipgloss.Color("#10B981"), // green
	lipgloss.Color("#8B5CF6"), // purple
	lipgloss.Color("#F59E0B"), // amber
	lipgloss.Color("#EC4899"), // pink
	lipgloss.Color("#06B6D4"), // cyan
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	starStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
)

func renderTag(tag string) string {
	return lipgloss.NewStyle().Foreground(tagPalette[domain.TagColor(tag)]).Render("#" + tag)
}

func renderTags(tags []string) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = renderTag(t)
	}
	return strings.Join(parts, " ")
}

// shortID keeps uuids readable; seeded ids are already short.
func shortID(id string) string {
	if len(id) > 8 && !strings.HasPrefix(id, "default-") {
		return id[:8]
	}
	return id
}

func relative(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

func printBookmarkLine(w io.Writer, b domain.Bookmark) {
	star := " "
	if b.IsFavorite {
		star = starStyle.Render("★")
	}
	fmt.Fprintf(w, "%s %s %s %s\n",
		mutedStyle.Render(fmt.Sprintf("%-10s", shortID(b.ID))),
		star,
		titleStyle.Render(b.Title),
		mutedStyle.Render(b.Domain+" · "+relative(b.CreatedAt)),
	)
	if len(b.Tags) > 0 {
		fmt.Fprintf(w, "             %s\n", renderTags(b.Tags))
	}
}

func printBookmarkDetail(w io.Writer, b domain.Bookmark) {
	fmt.Fprintln(w, titleStyle.Render(b.Title))
	fmt.Fprintf(w, "  id:        %s\n", b.ID)
	fmt.Fprintf(w, "  url:       %s\n", b.URL)
	fmt.Fprintf(w, "  domain:    %s\n", b.Domain)
	if b.Description != "" {
		fmt.Fprintf(w, "  about:     %s\n", b.Description)
	}
	if len(b.Tags) > 0 {
		fmt.Fprintf(w, "  tags:      %s\n", renderTags(b.Tags))
	}
	fmt.Fprintf(w, "  favorite:  %t\n", b.IsFavorite)
	fmt.Fprintf(w, "  added:     %s (%s)\n", b.CreatedAt.Format(time.RFC1123), relative(b.CreatedAt))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
