// Package httpapi wires the chi router: the tenant-scoped CRUD surfaces,
// the public share surfaces, and the error envelope shared by both
// (spec §6/§7). Handlers stay thin — validation and invariants live in
// the domain/store layers; a handler's job is decode, authorize via the
// bound tenant context, call a store or service, encode.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/techappsUT/planer/internal/apperr"
)

// errorBody is the exact shape spec §6 assigns every non-2xx response:
// {statusCode, timestamp, path, method, message, error}.
type errorBody struct {
	StatusCode int       `json:"statusCode"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path"`
	Method     string    `json:"method"`
	Message    string    `json:"message"`
	Error      string    `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError normalizes any error to an *apperr.Error (internal if it
// isn't already one) before rendering spec §7's single error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.As(err)
	status := appErr.Kind.HTTPStatus()
	writeJSON(w, status, errorBody{
		StatusCode: status,
		Timestamp:  time.Now().UTC(),
		Path:       r.URL.Path,
		Method:     r.Method,
		Message:    appErr.Message,
		Error:      string(appErr.Kind),
	})
}

type page struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func listEnvelope(data interface{}, total, pageNum, limit int) map[string]interface{} {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return map[string]interface{}{
		"data": data,
		"meta": page{Total: total, Page: pageNum, Limit: limit, TotalPages: totalPages},
	}
}
