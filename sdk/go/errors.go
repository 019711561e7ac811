package launchsdk

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by NotFoundError.
var ErrNotFound = errors.New("not found")

// TransportError wraps network failures and non-2xx responses.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: url=%s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("transport error: url=%s status=%d body=%s", e.URL, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError reports JSON that lacks a structurally required value
// or carries a value of the wrong shape. Path is a dotted JSON path.
type MalformedResponseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	msg := "malformed response"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// NotFoundError is returned when a single result was requested and none came back.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no launch found for %s", e.Query)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UnsupportedReferenceError reports an LSP reference that resolved to another reference.
type UnsupportedReferenceError struct {
	Ref string
}

func (e *UnsupportedReferenceError) Error() string {
	return fmt.Sprintf("lsp reference %s resolved to another reference", e.Ref)
}

func malformed(path, reason string) error {
	return &MalformedResponseError{Path: path, Reason: reason}
}
