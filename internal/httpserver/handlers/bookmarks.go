package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/httpserver/deps"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/respond"
	"github.com/MrSnakeDoc/arvai/internal/logger"
	"github.com/MrSnakeDoc/arvai/internal/storage"
)

const msgBookmarkNotFound = "Bookmark not found"

type checkResponse struct {
	Bookmarked bool       `json:"bookmarked"`
	BookmarkID *int64     `json:"bookmark_id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

type createBookmarkRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Favicon     string   `json:"favicon"`
	Tags        []string `json:"tags"`
	Source      string   `json:"source"`
}

type updateBookmarkRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Favicon     *string   `json:"favicon"`
	Tags        *[]string `json:"tags"`
}

type listResponse struct {
	Total int                `json:"total"`
	Items []storage.Bookmark `json:"items"`
}

// CheckBookmark answers whether ?url= is already saved.
func CheckBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("url")
		if raw == "" {
			respond.Detail(w, http.StatusUnprocessableEntity, "Query parameter url is required")
			return
		}

		b, err := d.Bookmarks.GetByURL(r.Context(), raw)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respond.JSON(w, http.StatusOK, checkResponse{Bookmarked: false})
				return
			}
			internalError(w, d, "failed to check bookmark", err)
			return
		}

		respond.JSON(w, http.StatusOK, checkResponse{
			Bookmarked: true,
			BookmarkID: &b.ID,
			CreatedAt:  &b.CreatedAt,
		})
	}
}

// CreateBookmark saves a page. Saving a known URL updates the stored record.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if err := decodeBody(r, &req, false); err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := validateURL(req.URL); err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		b, err := d.Bookmarks.Create(r.Context(), storage.BookmarkInput{
			URL:         req.URL,
			Title:       req.Title,
			Description: req.Description,
			Favicon:     req.Favicon,
			Tags:        req.Tags,
			Source:      req.Source,
		})
		if err != nil {
			internalError(w, d, "failed to save bookmark", err)
			return
		}

		d.Logger.Info("bookmark saved", logger.Int64("id", b.ID), logger.String("url", b.URL))
		respond.JSON(w, http.StatusCreated, b)
	}
}

// ListBookmarks supports ?q=, ?tag=, ?limit= (1..200, default 50) and ?offset=.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", storage.DefaultListLimit, 1, storage.MaxListLimit)
		if err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		offset, err := queryInt(r, "offset", 0, 0, int(^uint(0)>>1))
		if err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		q := r.URL.Query()
		items, total, err := d.Bookmarks.List(r.Context(), storage.ListParams{
			Query:  strings.TrimSpace(q.Get("q")),
			Tag:    strings.TrimSpace(q.Get("tag")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			internalError(w, d, "failed to list bookmarks", err)
			return
		}

		respond.JSON(w, http.StatusOK, listResponse{Total: total, Items: items})
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		b, err := d.Bookmarks.GetByID(r.Context(), id)
		if err != nil {
			bookmarkError(w, d, err)
			return
		}
		respond.JSON(w, http.StatusOK, b)
	}
}

// UpdateBookmark applies a partial update: absent fields are left alone.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		var req updateBookmarkRequest
		if err := decodeBody(r, &req, true); err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		b, err := d.Bookmarks.Update(r.Context(), id, storage.BookmarkPatch{
			Title:       req.Title,
			Description: req.Description,
			Favicon:     req.Favicon,
			Tags:        req.Tags,
		})
		if err != nil {
			bookmarkError(w, d, err)
			return
		}
		respond.JSON(w, http.StatusOK, b)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		if err := d.Bookmarks.Delete(r.Context(), id); err != nil {
			bookmarkError(w, d, err)
			return
		}

		d.Logger.Info("bookmark deleted", logger.Int64("id", id))
		respond.JSON(w, http.StatusOK, messageResponse{Message: "Bookmark deleted", Detail: fmt.Sprintf("id=%d", id)})
	}
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("Field url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("Field url must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}

func bookmarkError(w http.ResponseWriter, d deps.Deps, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Detail(w, http.StatusNotFound, msgBookmarkNotFound)
		return
	}
	internalError(w, d, "bookmark operation failed", err)
}

func internalError(w http.ResponseWriter, d deps.Deps, msg string, err error) {
	d.Logger.Error(msg, logger.Error(err))
	respond.Detail(w, http.StatusInternalServerError, "Internal server error")
}
