package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/mw"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

const defaultMaxBody = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a catalog error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status matching err. Server-side failures are
// logged and their detail is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	status := statusFor(err)
	reqID := middleware.GetReqID(r.Context())
	resp := errorResponse{Error: http.StatusText(status), RequestID: reqID}

	if status >= http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", reqID),
			logger.Error(err))
	} else {
		resp.Message = err.Error()
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched
// when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, d deps.Deps, v any, optional bool) error {
	limit := d.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBody
	}
	body := http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(body).Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidation, err)
	}
	return nil
}

// credential prefers the header and falls back to the body field the admin
// client sends.
func credential(r *http.Request, bodyPassword string) string {
	if v := strings.TrimSpace(r.Header.Get(mw.CredentialHeader)); v != "" {
		return v
	}
	return bodyPassword
}

func cardID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid card id %q", domain.ErrValidation, raw)
	}
	return uint(id), nil
}

func queryBool(r *http.Request, key string) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && b
}
