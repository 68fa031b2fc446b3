// Package mcperrors defines the error taxonomy shared by the catalogs and every transport adapter.
// Catalogs return NotFoundError and InvalidInputError; adapters translate them with ToJSONRPC
// or HTTPStatus instead of inventing their own conventions.
package mcperrors

// file: internal/mcperrors/errors.go

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorCode is a JSON-RPC error code.
type ErrorCode int

// JSON-RPC 2.0 standard codes plus the server-defined sequencing code.
const (
	ErrParseError      ErrorCode = -32700
	ErrInvalidRequest  ErrorCode = -32600
	ErrMethodNotFound  ErrorCode = -32601
	ErrInvalidParams   ErrorCode = -32602
	ErrInternalError   ErrorCode = -32603
	ErrRequestSequence ErrorCode = -32001 // Method not allowed in the current lifecycle state.
)

// Kind names the catalog an unknown key was looked up in.
type Kind string

// Catalog kinds.
const (
	KindPrompt   Kind = "prompt"
	KindResource Kind = "resource"
	KindTool     Kind = "tool"
)

// Title returns the kind with its first letter upper-cased, as used in messages.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// NotFoundError reports a key that is not registered in a catalog.
type NotFoundError struct {
	Kind Kind
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Unknown %s: %s", e.Kind, e.Key)
}

// InvalidInputError reports caller input that failed validation.
type InvalidInputError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input for %q: %s", e.Field, e.Reason)
}

// Unwrap returns the validation failure that produced this error, if any.
func (e *InvalidInputError) Unwrap() error {
	return e.Cause
}

// ProtocolError is a transport-level failure carrying its own JSON-RPC code.
type ProtocolError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *ProtocolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ProtocolError (Code: %d): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("ProtocolError (Code: %d): %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProtocolError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a detail that is safe to return to clients.
func (e *ProtocolError) WithContext(key string, value interface{}) *ProtocolError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewNotFound returns a NotFoundError with a stack attached.
func NewNotFound(kind Kind, key string) error {
	return errors.WithStack(&NotFoundError{Kind: kind, Key: key})
}

// NewInvalidInput returns an InvalidInputError with a stack attached.
func NewInvalidInput(field, reason string, cause error) error {
	return errors.WithStack(&InvalidInputError{Field: field, Reason: reason, Cause: cause})
}

// NewProtocolError returns a ProtocolError for code.
func NewProtocolError(code ErrorCode, message string, cause error) *ProtocolError {
	return &ProtocolError{Code: code, Message: message, Cause: cause}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidInput reports whether err wraps an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ii *InvalidInputError
	return errors.As(err, &ii)
}

// ToJSONRPC translates err into the code, message and optional data of a JSON-RPC error object.
func ToJSONRPC(err error) (code int, message string, data map[string]interface{}) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return int(ErrInvalidRequest), nf.Error(), nil
	}

	var ii *InvalidInputError
	if errors.As(err, &ii) {
		data = map[string]interface{}{"reason": ii.Reason}
		if ii.Field != "" {
			data["field"] = ii.Field
		}
		return int(ErrInvalidParams), ii.Error(), data
	}

	var pe *ProtocolError
	if errors.As(err, &pe) {
		for k, v := range pe.Context {
			switch k {
			case "method", "state", "detail":
				if data == nil {
					data = make(map[string]interface{})
				}
				data[k] = v
			}
		}
		return int(pe.Code), pe.Message, data
	}

	return int(ErrInternalError), "Internal error.", map[string]interface{}{
		"goErrorType": fmt.Sprintf("%T", err),
	}
}

// HTTPStatus translates err into an HTTP status and the message for the {"error": ...} body.
func HTTPStatus(err error) (int, string) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound, nf.Kind.Title() + " not found"
	}

	var ii *InvalidInputError
	if errors.As(err, &ii) {
		return http.StatusBadRequest, ii.Error()
	}

	return http.StatusInternalServerError, "Internal server error"
}
