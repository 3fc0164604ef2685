package device

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by repositories when no device has the requested name.
	ErrNotFound = errors.New("device not found")
	// ErrDuplicateName is returned by repositories when the unique name index rejects a write.
	ErrDuplicateName = errors.New("device name already exists")
)

// Code is the client-visible error classification.
type Code string

const (
	CodeBadRequest          Code = "BadRequest"
	CodeNotFound            Code = "NotFound"
	CodeConflict            Code = "Conflict"
	CodeInternalServerError Code = "InternalServerError"
)

const internalMessage = "Unexpected server error."

// HTTPStatus maps the code to its conventional HTTP status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified service failure. Message is safe to return to clients;
// Err carries the underlying cause for logs only.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// BadRequest reports invalid client input.
func BadRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Message: message}
}

// NotFound reports a lookup by name that matched nothing.
func NotFound(name string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("Device %q not found.", name), Err: ErrNotFound}
}

// Conflict reports a uniqueness violation on create.
func Conflict(name string, cause error) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf("Device name %q already exists.", name), Err: cause}
}

// Internal hides cause behind a generic message.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternalServerError, Message: internalMessage, Err: cause}
}

// Classify returns err as a *Error, downgrading anything unclassified to
// InternalServerError. It returns nil for a nil error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return Internal(err)
}
