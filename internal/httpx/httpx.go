// Package httpx provides helper functions for writing HTTP JSON responses.
package httpx

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error response with a single message.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// ValidationErrors writes a 400 carrying the full list of document problems.
func ValidationErrors(w http.ResponseWriter, problems []string) {
	JSON(w, http.StatusBadRequest, map[string]any{"errors": problems})
}
