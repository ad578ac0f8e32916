// Package respond writes the JSON bodies shared by handlers and middlewares.
package respond

import (
	"encoding/json"
	"net/http"
)

// DetailBody is the error shape every kernel endpoint returns.
type DetailBody struct {
	Detail string `json:"detail"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Detail writes {"detail": msg}.
func Detail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, DetailBody{Detail: msg})
}
