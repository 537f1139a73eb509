package mw

import (
	"encoding/json"
	"net/http"
)

type rejection struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// reject writes a JSON error body with status.
func reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejection{Error: http.StatusText(status), Message: message})
}
