package web

// errors.go turns pipeline errors into HTTP responses.
//
// The error flow:
//  1. A handler gets an error from core.Service
//  2. statusFor picks the HTTP status from the error kind
//  3. core.MapError supplies the message and support code
//  4. The technical error is logged with the request ID
//  5. The client gets {"error": message, "code": code, ...}

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/csvtable/internal/core"
	"github.com/JonMunkholm/csvtable/internal/logging"
	"github.com/JonMunkholm/csvtable/internal/web/middleware"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyObject), errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, core.ErrTooManyFetches):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped JSON error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	middleware.WriteJSON(w, status, middleware.ErrorBody{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}
