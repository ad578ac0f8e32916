package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/arvai/internal/httpserver/deps"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/respond"
	"github.com/MrSnakeDoc/arvai/internal/logger"
	"github.com/MrSnakeDoc/arvai/internal/storage"
)

type createKeyRequest struct {
	Name string `json:"name"`
}

type messageResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// CreateKey issues a new API key. The plain key is only ever returned here.
func CreateKey(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createKeyRequest
		if err := decodeBody(r, &req, true); err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		created, err := d.APIKeys.Create(r.Context(), req.Name)
		if err != nil {
			d.Logger.Error("failed to create api key", logger.Error(err))
			respond.Detail(w, http.StatusInternalServerError, "Failed to create API key")
			return
		}

		d.Logger.Info("api key created",
			logger.Int64("id", created.ID),
			logger.String("prefix", created.KeyPrefix),
			logger.String("name", created.Name))
		respond.JSON(w, http.StatusCreated, created)
	}
}

// ListKeys lists keys without their secret part.
func ListKeys(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := d.APIKeys.List(r.Context())
		if err != nil {
			d.Logger.Error("failed to list api keys", logger.Error(err))
			respond.Detail(w, http.StatusInternalServerError, "Failed to list API keys")
			return
		}
		respond.JSON(w, http.StatusOK, keys)
	}
}

// DeleteKey removes a key permanently.
func DeleteKey(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		if err := d.APIKeys.Delete(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respond.Detail(w, http.StatusNotFound, "API key not found")
				return
			}
			d.Logger.Error("failed to delete api key", logger.Int64("id", id), logger.Error(err))
			respond.Detail(w, http.StatusInternalServerError, "Failed to delete API key")
			return
		}

		respond.JSON(w, http.StatusOK, messageResponse{Message: "API key deleted", Detail: fmt.Sprintf("id=%d", id)})
	}
}
