package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/arvai/internal/apiclient"
	"github.com/MrSnakeDoc/arvai/internal/logger"
)

// Message types understood by Router.
const (
	MsgCheckStatus       = "CHECK_STATUS"
	MsgAddBookmark       = "ADD_BOOKMARK"
	MsgRemoveBookmark    = "REMOVE_BOOKMARK"
	MsgConnectionChanged = "CONNECTION_CHANGED"
	MsgGetPageData       = "GET_PAGE_DATA"
	MsgTabUpdated        = "TAB_UPDATED"
	MsgTabActivated      = "TAB_ACTIVATED"
	MsgGetBadge          = "GET_BADGE"
)

var ErrUnknownMessage = errors.New("unknown message type")

// Message is the envelope sent by the popup and the tab watchers. Which
// fields matter depends on Type.
type Message struct {
	Type       string        `json:"type"`
	URL        string        `json:"url,omitempty"`
	Data       *BookmarkData `json:"data,omitempty"`
	BookmarkID int64         `json:"bookmarkId,omitempty"`
	TabID      int           `json:"tabId,omitempty"`
	Status     string        `json:"status,omitempty"`
}

type AddResponse struct {
	Success  bool               `json:"success"`
	Bookmark apiclient.Bookmark `json:"bookmark"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// BadgeReader exposes painted badges.
type BadgeReader interface {
	Badge(tabID int) (Badge, bool)
}

// Router dispatches messages to the background.
type Router struct {
	bg     *Background
	badges BadgeReader
	logger logger.Logger
}

// NewRouter builds a router; badges may be nil when nothing records them.
func NewRouter(bg *Background, badges BadgeReader, log logger.Logger) *Router {
	return &Router{bg: bg, badges: badges, logger: log}
}

// Handle runs msg and returns the value to send back to the caller.
func (r *Router) Handle(ctx context.Context, msg Message) (any, error) {
	res, err := r.dispatch(ctx, msg)
	if err != nil {
		r.logger.Debug("message failed", logger.String("type", msg.Type), logger.Error(err))
	}
	return res, err
}

func (r *Router) dispatch(ctx context.Context, msg Message) (any, error) {
	switch msg.Type {
	case MsgCheckStatus:
		if msg.URL == "" {
			return nil, errors.New("url is required")
		}
		return r.bg.CheckStatus(ctx, msg.URL), nil

	case MsgAddBookmark:
		if msg.Data == nil || msg.Data.URL == "" {
			return nil, errors.New("data.url is required")
		}
		bm, err := r.bg.AddBookmark(ctx, *msg.Data)
		if err != nil {
			return nil, err
		}
		return AddResponse{Success: true, Bookmark: bm}, nil

	case MsgRemoveBookmark:
		if msg.BookmarkID <= 0 {
			return nil, errors.New("bookmarkId is required")
		}
		if err := r.bg.RemoveBookmark(ctx, msg.BookmarkID, msg.URL); err != nil {
			return nil, err
		}
		return SuccessResponse{Success: true}, nil

	case MsgConnectionChanged:
		r.bg.OnConnectionChanged(ctx)
		return SuccessResponse{Success: true}, nil

	case MsgGetPageData:
		return r.bg.PageData(ctx, msg.URL)

	case MsgTabUpdated:
		r.bg.TabUpdated(ctx, Tab{ID: msg.TabID, URL: msg.URL}, msg.Status)
		return SuccessResponse{Success: true}, nil

	case MsgTabActivated:
		r.bg.TabActivated(ctx, Tab{ID: msg.TabID, URL: msg.URL})
		return SuccessResponse{Success: true}, nil

	case MsgGetBadge:
		if r.badges == nil {
			return nil, errors.New("badges are not recorded")
		}
		badge, ok := r.badges.Badge(msg.TabID)
		if !ok {
			return nil, fmt.Errorf("no badge for tab %d", msg.TabID)
		}
		return badge, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}
