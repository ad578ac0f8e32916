package extension

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxPageBytes = 2 << 20

// PageMetadata is what the popup pre-fills the save form with.
type PageMetadata struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Favicon     string `json:"favicon"`
}

// PageSource returns metadata for a page.
type PageSource interface {
	Fetch(ctx context.Context, pageURL string) (PageMetadata, error)
}

// PageFetcher downloads a page and reads its metadata.
type PageFetcher struct {
	client    *http.Client
	userAgent string
}

func NewPageFetcher(client *http.Client, userAgent string) *PageFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &PageFetcher{client: client, userAgent: userAgent}
}

func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (PageMetadata, error) {
	if !isWebPage(pageURL) {
		return PageMetadata{}, fmt.Errorf("not a web page: %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return PageMetadata{}, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return PageMetadata{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return PageMetadata{}, fmt.Errorf("fetch %s: %s", pageURL, resp.Status)
	}

	// Redirects move the page; describe where we landed.
	return ExtractMetadata(resp.Request.URL, io.LimitReader(resp.Body, maxPageBytes))
}

// ExtractMetadata reads title, description and favicon from an HTML document.
// Titles prefer og:title, descriptions og:description, icons rel=icon then
// "shortcut icon" then apple-touch-icon, falling back to /favicon.ico.
func ExtractMetadata(pageURL *url.URL, r io.Reader) (PageMetadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return PageMetadata{}, fmt.Errorf("parse html: %w", err)
	}

	var (
		title, ogTitle, desc, ogDesc string
		seenTitle                    bool
		icons                        = map[string]string{}
	)

	for n := range doc.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.Title:
			if !seenTitle {
				seenTitle = true
				title = textContent(n)
			}
		case atom.Meta:
			content, hasContent := attr(n, "content")
			if !hasContent {
				continue
			}
			if prop, _ := attr(n, "property"); prop == "og:title" && ogTitle == "" {
				ogTitle = content
			} else if prop == "og:description" && ogDesc == "" {
				ogDesc = content
			}
			if name, _ := attr(n, "name"); name == "description" && desc == "" {
				desc = content
			}
		case atom.Link:
			rel, _ := attr(n, "rel")
			href, _ := attr(n, "href")
			if _, seen := icons[rel]; !seen && href != "" {
				icons[rel] = href
			}
		}
	}

	origin := &url.URL{Scheme: pageURL.Scheme, Host: pageURL.Host, Path: "/"}

	meta := PageMetadata{
		URL:         pageURL.String(),
		Title:       strings.TrimSpace(firstNonEmpty(ogTitle, title)),
		Description: strings.TrimSpace(firstNonEmpty(ogDesc, desc)),
	}
	for _, rel := range []string{"icon", "shortcut icon", "apple-touch-icon"} {
		href, ok := icons[rel]
		if !ok {
			continue
		}
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			meta.Favicon = origin.ResolveReference(ref).String()
			break
		}
	}
	if meta.Favicon == "" {
		meta.Favicon = pageURL.Scheme + "://" + pageURL.Host + "/favicon.ico"
	}
	return meta, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// textContent mirrors document.title: text joined, whitespace collapsed.
func textContent(n *html.Node) string {
	var b strings.Builder
	for c := range n.Descendants() {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
