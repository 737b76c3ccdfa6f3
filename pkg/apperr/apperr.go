// Package apperr holds the sentinel errors services wrap so handlers can pick
// a status code without string matching.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("invalid request")
	ErrUnauthorized  = errors.New("authentication required")
	ErrNotFound      = errors.New("not found")
	ErrUpstream      = errors.New("upstream service failed")
	ErrNotConfigured = errors.New("service is not configured")
)

// Validation returns an ErrValidation carrying a client-facing message.
func Validation(format string, args ...any) error {
	return &wrapped{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFound returns an ErrNotFound naming the missing resource.
func NotFound(resource string) error {
	return &wrapped{kind: ErrNotFound, msg: resource + " not found"}
}

type wrapped struct {
	kind error
	msg  string
}

func (w *wrapped) Error() string { return w.msg }

func (w *wrapped) Unwrap() error { return w.kind }

// Message returns the client-facing text of err if it was built by this
// package, or fallback otherwise.
func Message(err error, fallback string) string {
	var w *wrapped
	if errors.As(err, &w) {
		return w.msg
	}
	return fallback
}
