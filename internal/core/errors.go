package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a ChatError.
type ErrorKind string

// Error kinds
const (
	KindInvalidRequest     ErrorKind = "INVALID_REQUEST"
	KindServiceUnavailable ErrorKind = "SERVICE_UNAVAILABLE"
	KindUpstreamError      ErrorKind = "UPSTREAM_ERROR"
	KindUpstreamRunFailed  ErrorKind = "UPSTREAM_RUN_FAILED"
	KindUpstreamTimeout    ErrorKind = "UPSTREAM_TIMEOUT"
	KindBadGateway         ErrorKind = "BAD_GATEWAY"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindPayloadTooLarge    ErrorKind = "PAYLOAD_TOO_LARGE"
)

// ChatError carries an HTTP status and a client-safe message.
// Cause is logged, never sent to the client.
type ChatError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s %d] %s: %v", e.Kind, e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s %d] %s", e.Kind, e.Status, e.Message)
}

// Unwrap supports errors.Is / errors.As
func (e *ChatError) Unwrap() error {
	return e.Cause
}

// NewChatError creates a ChatError
func NewChatError(kind ErrorKind, status int, message string, cause error) *ChatError {
	return &ChatError{
		Kind:    kind,
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}

// ErrInvalidRequest client sent a malformed or empty request
func ErrInvalidRequest(message string, cause error) *ChatError {
	return NewChatError(KindInvalidRequest, http.StatusBadRequest, message, cause)
}

// ErrServiceUnavailable the proxy is not configured
func ErrServiceUnavailable() *ChatError {
	return NewChatError(KindServiceUnavailable, http.StatusServiceUnavailable, MsgServiceUnavailable, nil)
}

// ErrUpstream upstream answered with a non-success status; the status is forwarded.
// An empty message falls back to the generic upstream failure text.
func ErrUpstream(status int, message string) *ChatError {
	if message == "" {
		message = MsgUpstreamFailed
	}
	return NewChatError(KindUpstreamError, status, message, nil)
}

// ErrUpstreamRunFailed the asynchronous run ended in a status other than completed
func ErrUpstreamRunFailed(status string) *ChatError {
	return NewChatError(KindUpstreamRunFailed, http.StatusInternalServerError, MsgRunFailed,
		fmt.Errorf("run finished with status %q", status))
}

// ErrUpstreamTimeout the run did not finish within the configured poll budget
func ErrUpstreamTimeout(cause error) *ChatError {
	return NewChatError(KindUpstreamTimeout, http.StatusGatewayTimeout, MsgRunTimeout, cause)
}

// ErrBadGateway the upstream could not be reached
func ErrBadGateway(cause error) *ChatError {
	return NewChatError(KindBadGateway, http.StatusBadGateway, MsgBadGateway, cause)
}

// ErrNotFound asset does not resolve to a regular file
func ErrNotFound(cause error) *ChatError {
	return NewChatError(KindNotFound, http.StatusNotFound, MsgNotFound, cause)
}

// ErrForbidden asset path escapes the static root
func ErrForbidden(path string) *ChatError {
	return NewChatError(KindForbidden, http.StatusForbidden, MsgForbidden, fmt.Errorf("path %q outside static root", path))
}

// ErrPayloadTooLarge request body exceeded the cap
func ErrPayloadTooLarge(cause error) *ChatError {
	return NewChatError(KindPayloadTooLarge, http.StatusRequestEntityTooLarge, MsgBodyTooLarge, cause)
}

// AsChatError extracts a ChatError from err. Any other error becomes a 500.
func AsChatError(err error) *ChatError {
	if err == nil {
		return nil
	}
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr
	}
	return NewChatError("INTERNAL", http.StatusInternalServerError, MsgInternalError, err)
}

// IsKind reports whether err is a ChatError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var chatErr *ChatError
	return errors.As(err, &chatErr) && chatErr.Kind == kind
}
