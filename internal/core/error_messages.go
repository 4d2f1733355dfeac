package core

// error_messages.go turns pipeline errors into messages safe to show a user,
// each with a short code support staff can search logs for.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Object missing: CSV file not found in S3
//	SRC002 - Object empty: CSV file not found or empty
//	SRC003 - Access denied: Access denied to S3 bucket
//	SRC004 - Fetch failed: Failed to fetch CSV: <cause>
//
// # Decode Errors (CSV001-CSV099)
//
//	CSV001 - Parse failure: CSV parse error: <cause>
//
// # Capacity (BUSY001, RATE001)
//
//	BUSY001 - Too many concurrent fetches
//	RATE001 - Too many requests from one client
//
// # Request lifecycle (REQ001-REQ002)
//
//	REQ001 - Request cancelled by the client
//	REQ002 - Request timed out
//
// # Transport (AUTH001-AUTH002, REQ003, REQ404, HIST001)
//
// Written directly by the HTTP layer, not by MapError:
//
//	AUTH001 - Missing API key
//	AUTH002 - Invalid API key
//	REQ003  - Bad query parameter
//	REQ404  - Unknown route
//	HIST001 - Fetch history unavailable
//
// # Default (ERR000)
//
// Typed errors are matched first with errors.Is. Anything else falls back to
// case-insensitive substring patterns, first match wins.

import (
	"context"
	"errors"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again later",
			Code:    "REQ002",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error into a UserMessage. A nil error maps to the
// zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrEmptyObject):
		return UserMessage{
			Message: "CSV file not found or empty",
			Action:  "Check that the configured object has content",
			Code:    "SRC002",
		}
	case errors.Is(err, ErrNotFound):
		return UserMessage{
			Message: "CSV file not found in S3",
			Action:  "Check the configured bucket and key",
			Code:    "SRC001",
		}
	case errors.Is(err, ErrAccessDenied):
		return UserMessage{
			Message: "Access denied to S3 bucket",
			Action:  "Check the storage credentials and bucket policy",
			Code:    "SRC003",
		}
	case errors.Is(err, ErrDecode):
		return UserMessage{
			Message: "CSV parse error: " + causeOf(err),
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "CSV001",
		}
	case errors.Is(err, ErrTooManyFetches):
		return UserMessage{
			Message: ErrTooManyFetches.Error(),
			Action:  "Please wait a moment and try again",
			Code:    "BUSY001",
		}
	case errors.Is(err, ErrTransient):
		return UserMessage{
			Message: "Failed to fetch CSV: " + causeOf(err),
			Action:  "Please try again in a few moments",
			Code:    "SRC004",
		}
	case errors.Is(err, context.Canceled):
		return errorPatterns[1].msg
	case errors.Is(err, context.DeadlineExceeded):
		return errorPatterns[2].msg
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errStr, p.pattern) {
			return p.msg
		}
	}

	return defaultMessage
}

// causeOf returns the most specific message for a pipeline error: the
// decode detail for a *DecodeError, or the underlying cause for a
// *SourceError.
func causeOf(err error) string {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Error()
	}
	var se *SourceError
	if errors.As(err, &se) && se.Err != nil {
		return se.Err.Error()
	}
	return err.Error()
}
