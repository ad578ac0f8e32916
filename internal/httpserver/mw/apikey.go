package mw

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/arvai/internal/auth"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/respond"
	"github.com/MrSnakeDoc/arvai/internal/logger"
	"github.com/MrSnakeDoc/arvai/internal/storage"
)

const (
	msgMissingKey = "Missing API key. Include 'X-Arvai-API-Key' header."
	msgBadPrefix  = "Invalid API key format. Key must start with 'arvai_'."
	msgBadKey     = "Invalid or revoked API key."
)

// KeyVerifier resolves an active key and records its use.
type KeyVerifier interface {
	Verify(ctx context.Context, key string) (storage.APIKey, error)
}

type ctxKey struct{}

// APIKey rejects requests without a valid X-Arvai-API-Key header with 401.
// The verified key is available downstream through APIKeyFrom.
func APIKey(keys KeyVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(auth.HeaderName)
			if raw == "" {
				respond.Detail(w, http.StatusUnauthorized, msgMissingKey)
				return
			}
			if !auth.HasValidPrefix(raw) {
				respond.Detail(w, http.StatusUnauthorized, msgBadPrefix)
				return
			}

			key, err := keys.Verify(r.Context(), raw)
			if err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					log.Error("api key lookup failed", logger.Error(err))
					respond.Detail(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				log.Debug("api key rejected", logger.String("prefix", auth.DisplayPrefix(raw)))
				respond.Detail(w, http.StatusUnauthorized, msgBadKey)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyFrom returns the key verified by APIKey.
func APIKeyFrom(ctx context.Context) (storage.APIKey, bool) {
	k, ok := ctx.Value(ctxKey{}).(storage.APIKey)
	return k, ok
}
