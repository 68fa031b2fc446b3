// file: internal/transport/errors.go
package transport

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
)

// ErrorCode identifies a transport failure.
type ErrorCode int

// Transport error codes.
const (
	ErrGeneric ErrorCode = iota + 1000
	ErrInvalidMessage
	ErrMessageTooLarge
	ErrTransportClosed
	ErrReadTimeout
	ErrWriteTimeout
	ErrJSONParseFailed
)

// ErrorType groups transport errors for callers that only care about the category.
type ErrorType int

// Transport error types.
const (
	ErrorTypeGeneric ErrorType = iota
	ErrorTypeMessageSize
	ErrorTypeParse
	ErrorTypeTimeout
	ErrorTypeClosed
)

// Error is a transport-level failure.
type Error struct {
	Type    ErrorType
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}

	Size    int
	MaxSize int
}

func (e *Error) Error() string {
	base := fmt.Sprintf("TransportError [%d] %s", e.Code, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds a key-value pair to the error context.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is matches transport errors by type and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *Error) asClosed() *Error {
	e.Type = ErrorTypeClosed
	return e
}

// NewError creates a generic transport error.
func NewError(code ErrorCode, message string, cause error) *Error {
	var wrapped error
	if cause != nil {
		wrapped = errors.WithStack(cause)
	}
	return &Error{Type: ErrorTypeGeneric, Code: code, Message: message, Cause: wrapped}
}

// NewMessageSizeError reports a message larger than maxSize.
func NewMessageSizeError(size, maxSize int, fragment []byte) *Error {
	err := NewError(ErrMessageTooLarge, fmt.Sprintf("message size %d exceeds maximum allowed size %d", size, maxSize), nil)
	err.Type = ErrorTypeMessageSize
	err.Size = size
	err.MaxSize = maxSize
	return err.WithContext("messagePreview", string(fragment))
}

// NewParseError reports a message that is not valid JSON.
func NewParseError(message []byte, cause error) *Error {
	err := NewError(ErrJSONParseFailed, "failed to parse JSON message syntax", cause)
	err.Type = ErrorTypeParse
	return err.WithContext("messagePreview", preview(message)).WithContext("messageLength", len(message))
}

// NewTimeoutError reports a cancelled or timed out read or write.
func NewTimeoutError(operation string, cause error) *Error {
	code := ErrReadTimeout
	if operation == "write" {
		code = ErrWriteTimeout
	}
	err := NewError(code, fmt.Sprintf("%s operation timed out", operation), cause)
	err.Type = ErrorTypeTimeout
	return err.WithContext("operation", operation)
}

// NewClosedError reports an operation on a closed transport.
func NewClosedError(operation string) *Error {
	err := NewError(ErrTransportClosed, fmt.Sprintf("cannot perform %s on closed transport", operation), nil)
	err.Type = ErrorTypeClosed
	return err.WithContext("operation", operation)
}

// IsClosedError reports whether err means the peer or the transport has gone away.
func IsClosedError(err error) bool {
	var te *Error
	if errors.As(err, &te) && te.Type == ErrorTypeClosed {
		return true
	}
	return errors.Is(err, io.EOF)
}

// IsTimeoutError reports whether err is a cancelled read or write.
func IsTimeoutError(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Type == ErrorTypeTimeout
}

// ToProtocolError converts a recoverable transport error into the JSON-RPC error to send back.
// It returns nil for errors that should end the session instead.
func ToProtocolError(err error) *mcperrors.ProtocolError {
	var te *Error
	if !errors.As(err, &te) {
		return nil
	}
	switch te.Code {
	case ErrJSONParseFailed:
		return mcperrors.NewProtocolError(mcperrors.ErrParseError, "Parse error", err)
	case ErrInvalidMessage:
		return mcperrors.NewProtocolError(mcperrors.ErrInvalidRequest, "Invalid Request", err).
			WithContext("detail", te.Message)
	case ErrMessageTooLarge:
		return mcperrors.NewProtocolError(mcperrors.ErrInvalidRequest, "Invalid Request", err).
			WithContext("detail", fmt.Sprintf("Message size (%d bytes) exceeds limit (%d bytes).", te.Size, te.MaxSize))
	default:
		return nil
	}
}
