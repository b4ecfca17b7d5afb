package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/stocksense/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes an error JSON response. The body carries a single
// "detail" string, which API clients surface to users.
func WriteError(w http.ResponseWriter, statusCode int, detail string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"detail": detail,
	})
}

// WriteServiceError maps a service-layer error onto an HTTP status and
// writes the detail response.
func WriteServiceError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		return WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrRateLimited):
		return WriteError(w, http.StatusTooManyRequests, err.Error())
	default:
		// ErrUpstreamAnalysis, ErrPersistence and anything unexpected
		return WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// BearerToken extracts the bearer credential from the Authorization header.
// Empty when no credential was supplied.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return strings.TrimSpace(header)
}

// PathSuffix returns the path segment after the given prefix, stripped of
// any trailing slash. Empty when the path is exactly the prefix.
func PathSuffix(r *http.Request, prefix string) string {
	suffix := strings.TrimPrefix(r.URL.Path, prefix)
	return strings.Trim(suffix, "/")
}
