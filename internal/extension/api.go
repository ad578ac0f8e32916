// Package extension is the browser-extension side of Arvai: the saved
// connection to a kernel, the per-URL status cache, the toolbar icon state and
// the message router the popup and content scripts talk to.
package extension

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_bookmark_api.go -package=mocks github.com/MrSnakeDoc/arvai/internal/extension BookmarkAPI

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/arvai/internal/apiclient"
)

// BookmarkAPI is the part of the kernel API the extension uses.
type BookmarkAPI interface {
	Health(ctx context.Context) (apiclient.Health, error)
	VerifyAPIKey(ctx context.Context) (bool, error)
	CheckBookmark(ctx context.Context, pageURL string) (apiclient.CheckResult, error)
	CreateBookmark(ctx context.Context, req apiclient.CreateBookmarkRequest) (apiclient.Bookmark, error)
	DeleteBookmark(ctx context.Context, id int64) (apiclient.Message, error)
}

// ClientFactory binds a BookmarkAPI to a server and key.
type ClientFactory func(server, apiKey string) BookmarkAPI

// HTTPClients returns a factory building apiclient clients on hc.
func HTTPClients(hc *http.Client) ClientFactory {
	if hc == nil {
		hc = http.DefaultClient
	}
	return func(server, apiKey string) BookmarkAPI {
		return apiclient.New(server, apiKey, apiclient.WithHTTPClient(hc))
	}
}
