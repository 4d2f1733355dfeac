package core

import (
	"errors"
	"fmt"
)

// Errors surfaced by the table pipeline. Check with errors.Is.
var (
	// ErrNotFound means the configured object or bucket does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrAccessDenied means the storage service rejected the credentials.
	ErrAccessDenied = errors.New("access denied")

	// ErrTransient covers network and service failures.
	ErrTransient = errors.New("transient storage failure")

	// ErrEmptyObject means the object exists but has no content.
	ErrEmptyObject = errors.New("empty object")

	// ErrDecode is matched by every *DecodeError.
	ErrDecode = errors.New("csv decode failed")
)

// SourceError is returned by a Source when an object cannot be opened.
// Kind is one of ErrNotFound, ErrAccessDenied, ErrTransient or ErrEmptyObject.
type SourceError struct {
	Kind error
	Err  error
}

func (e *SourceError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Is lets errors.Is match the error kind.
func (e *SourceError) Is(target error) bool {
	return target == e.Kind
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// DecodeError reports why a CSV stream could not be decoded. Line and Column
// are 1-based and zero when the failure has no position (an I/O error).
type DecodeError struct {
	Line   int
	Column int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return e.Err.Error()
}

// Is lets errors.Is(err, ErrDecode) match.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
