// Package api provides shared HTTP response helpers for the CampusGuide API.
package api

import (
	"encoding/json"
	"net/http"
)

// ReplyBody is the JSON shape every chat response uses.
type ReplyBody struct {
	Reply string `json:"reply"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Reply writes a {"reply": ...} response.
func Reply(w http.ResponseWriter, status int, text string) {
	JSON(w, status, ReplyBody{Reply: text})
}

// ErrorReply formats err as a user-visible reply.
func ErrorReply(err error) string {
	return "Error: " + err.Error()
}
