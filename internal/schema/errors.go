// file: internal/schema/errors.go
package schema

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrorCode defines validation error codes.
type ErrorCode int

// Defined validation error codes.
const (
	ErrSchemaNotFound ErrorCode = iota + 1000
	ErrSchemaCompileFailed
	ErrValidationFailed
	ErrInvalidJSONFormat
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	// Code is the numeric error code.
	Code ErrorCode
	// Message is a human-readable error message.
	Message string
	// Cause is the underlying error, if any.
	Cause error
	// SchemaPath identifies the part of the schema that was violated.
	SchemaPath string
	// InstancePath identifies the part of the validated instance that violated the schema.
	InstancePath string
	// Field is the top-level property at fault, when one can be determined.
	Field string
	// Context contains additional error context.
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	base := fmt.Sprintf("[%d] %s", e.Code, e.Message)
	if e.SchemaPath != "" {
		base += fmt.Sprintf(" (schema path: %s)", e.SchemaPath)
	}
	if e.InstancePath != "" {
		base += fmt.Sprintf(" (instance path: %s)", e.InstancePath)
	}
	if e.Cause != nil {
		base += fmt.Sprintf(": %v", e.Cause)
	}
	return base
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the validation error.
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewValidationError creates a new ValidationError.
func NewValidationError(code ErrorCode, message string, cause error) *ValidationError {
	var wrapped error
	if cause != nil {
		wrapped = errors.WithStack(cause)
	}
	return &ValidationError{
		Code:    code,
		Message: message,
		Cause:   wrapped,
	}
}

// convertValidationError flattens a jsonschema.ValidationError into our ValidationError.
// The most specific (last) basic error supplies the message and paths.
func convertValidationError(valErr *jsonschema.ValidationError, schemaName string, data []byte) *ValidationError {
	basicOutput := valErr.BasicOutput()

	message := valErr.Message
	var leaf jsonschema.BasicError
	for _, be := range basicOutput.Errors {
		if be.Error != "" {
			leaf = be
		}
	}
	if leaf.Error != "" {
		message = leaf.Error
	}

	customErr := NewValidationError(ErrValidationFailed, message, valErr)
	customErr.SchemaPath = leaf.KeywordLocation
	customErr.InstancePath = leaf.InstanceLocation
	customErr.Field = fieldFromLocation(leaf.InstanceLocation, message)

	customErr = customErr.WithContext("schema", schemaName)
	customErr = customErr.WithContext("dataPreview", calculatePreview(data))

	if len(basicOutput.Errors) > 0 {
		causes := make([]map[string]string, 0, len(basicOutput.Errors))
		for _, cause := range basicOutput.Errors {
			causes = append(causes, map[string]string{
				"instanceLocation": cause.InstanceLocation,
				"keywordLocation":  cause.KeywordLocation,
				"error":            cause.Error,
			})
		}
		customErr = customErr.WithContext("validationErrors", causes)
	}

	return customErr
}

// fieldFromLocation names the top-level property at fault. Missing required
// properties are reported at the root, so their name is taken from the message.
func fieldFromLocation(instanceLocation, message string) string {
	if loc := strings.TrimPrefix(instanceLocation, "/"); loc != "" {
		if i := strings.IndexByte(loc, '/'); i >= 0 {
			loc = loc[:i]
		}
		return loc
	}
	const missing = "missing properties: "
	if i := strings.Index(message, missing); i >= 0 {
		rest := strings.TrimSpace(message[i+len(missing):])
		if j := strings.IndexByte(rest, ','); j >= 0 {
			rest = rest[:j]
		}
		return strings.Trim(rest, `'"`)
	}
	return ""
}
