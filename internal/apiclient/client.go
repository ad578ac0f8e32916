// Package apiclient talks to the Arvai kernel HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/auth"
)

// APIError is a non-2xx answer from the kernel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("arvai api: %d %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the kernel.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the kernel.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type CheckResult struct {
	Bookmarked bool       `json:"bookmarked"`
	BookmarkID *int64     `json:"bookmark_id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

type Bookmark struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Favicon     string    `json:"favicon"`
	Domain      string    `json:"domain"`
	Tags        []string  `json:"tags"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateBookmarkRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Favicon     string   `json:"favicon,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// UpdateBookmarkRequest only sends the non-nil fields.
type UpdateBookmarkRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Favicon     *string   `json:"favicon,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

type ListOptions struct {
	Query  string
	Tag    string
	Limit  int
	Offset int
}

type BookmarkList struct {
	Total int        `json:"total"`
	Items []Bookmark `json:"items"`
}

type Message struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

type CreatedKey struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	KeyPrefix string    `json:"key_prefix"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is bound to one server and one API key.
type Client struct {
	server string
	apiKey string
	http   *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(server, apiKey string, opts ...Option) *Client {
	c := &Client{
		server: strings.TrimRight(server, "/"),
		apiKey: apiKey,
		http:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Server() string { return c.server }

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// VerifyAPIKey probes an authenticated endpoint. It returns (false, nil) when
// the kernel rejects the key and an error for any other failure.
func (c *Client) VerifyAPIKey(ctx context.Context) (bool, error) {
	_, err := c.CheckBookmark(ctx, "https://example.com")
	if err == nil {
		return true, nil
	}
	if IsUnauthorized(err) {
		return false, nil
	}
	return false, err
}

func (c *Client) CheckBookmark(ctx context.Context, pageURL string) (CheckResult, error) {
	var out CheckResult
	err := c.do(ctx, http.MethodGet, "/api/bookmarks/check?url="+url.QueryEscape(pageURL), nil, &out)
	return out, err
}

func (c *Client) CreateBookmark(ctx context.Context, req CreateBookmarkRequest) (Bookmark, error) {
	var out Bookmark
	err := c.do(ctx, http.MethodPost, "/api/bookmarks", req, &out)
	return out, err
}

func (c *Client) GetBookmark(ctx context.Context, id int64) (Bookmark, error) {
	var out Bookmark
	err := c.do(ctx, http.MethodGet, bookmarkPath(id), nil, &out)
	return out, err
}

func (c *Client) UpdateBookmark(ctx context.Context, id int64, req UpdateBookmarkRequest) (Bookmark, error) {
	var out Bookmark
	err := c.do(ctx, http.MethodPatch, bookmarkPath(id), req, &out)
	return out, err
}

func (c *Client) DeleteBookmark(ctx context.Context, id int64) (Message, error) {
	var out Message
	err := c.do(ctx, http.MethodDelete, bookmarkPath(id), nil, &out)
	return out, err
}

func (c *Client) ListBookmarks(ctx context.Context, opts ListOptions) (BookmarkList, error) {
	q := url.Values{}
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.Tag != "" {
		q.Set("tag", opts.Tag)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/api/bookmarks"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var out BookmarkList
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// CreateAPIKey needs no key; the kernel only accepts it from allowed CIDRs.
func (c *Client) CreateAPIKey(ctx context.Context, name string) (CreatedKey, error) {
	var out CreatedKey
	err := c.do(ctx, http.MethodPost, "/api/keys", map[string]string{"name": name}, &out)
	return out, err
}

func bookmarkPath(id int64) string {
	return "/api/bookmarks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.server+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(auth.HeaderName, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError prefers the kernel's {"detail": "..."} over the status text.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil {
		switch d := body.Detail.(type) {
		case string:
			if d != "" {
				apiErr.Message = d
			}
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				apiErr.Message = string(b)
			}
		}
	}
	return apiErr
}
