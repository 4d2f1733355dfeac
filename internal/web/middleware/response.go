package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON error shape shared by the middleware and handlers.
// Error is always present; the rest is optional detail.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code,omitempty"`
}

// WriteError writes {"error": msg, "code": code} with the given status.
func WriteError(w http.ResponseWriter, status int, msg, code string) {
	WriteJSON(w, status, ErrorBody{Error: msg, Code: code})
}

// WriteJSON encodes v as the response body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
