// Package schema validates tool input against compiled JSON schemas and checks catalog key names.
// file: internal/schema/validator.go
//
// Each tool registers its input schema once at startup. Registration compiles the schema
// (draft 2020-12) and keeps it in memory; Validate decodes the instance and runs it against
// the compiled schema, converting failures into ValidationError values with paths.
package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/logging"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidatorInterface defines the methods needed for schema validation.
type ValidatorInterface interface {
	Register(name string, schema []byte) error
	Validate(ctx context.Context, name string, data []byte) error
	HasSchema(name string) bool
}

// Validator holds one compiled schema per registered name.
type Validator struct {
	compiler *jsonschema.Compiler
	schemas  map[string]*jsonschema.Schema
	mu       sync.RWMutex
	logger   logging.Logger
}

// Ensure Validator implements the interface.
var _ ValidatorInterface = (*Validator)(nil)

// NewValidator creates an empty Validator.
func NewValidator(logger logging.Logger) *Validator {
	logger = logging.OrNoop(logger)

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	return &Validator{
		compiler: compiler,
		schemas:  make(map[string]*jsonschema.Schema),
		logger:   logger.WithField("component", "schema_validator"),
	}
}

// Register compiles schema and stores it under name. Registering a name twice is an error.
func (v *Validator) Register(name string, schema []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.schemas[name]; exists {
		return NewValidationError(ErrSchemaCompileFailed, fmt.Sprintf("schema %q already registered", name), nil)
	}

	resourceID := "mem://schemas/" + name + ".json"
	if err := v.compiler.AddResource(resourceID, bytes.NewReader(schema)); err != nil {
		v.logger.Error("Failed to add schema resource to compiler.", "name", name, "error", err)
		return NewValidationError(ErrSchemaCompileFailed, "Failed to add schema resource", errors.Wrap(err, "compiler.AddResource failed")).
			WithContext("schema", name)
	}

	compiled, err := v.compiler.Compile(resourceID)
	if err != nil {
		v.logger.Error("Failed to compile schema.", "name", name, "error", err)
		return NewValidationError(ErrSchemaCompileFailed, "Failed to compile schema", errors.Wrap(err, "compiler.Compile failed")).
			WithContext("schema", name)
	}

	v.schemas[name] = compiled
	v.logger.Debug("Compiled schema.", "name", name)
	return nil
}

// Validate checks data against the schema registered under name.
// Empty data is validated as an empty object.
func (v *Validator) Validate(_ context.Context, name string, data []byte) error {
	v.mu.RLock()
	compiled, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return NewValidationError(ErrSchemaNotFound, fmt.Sprintf("no schema registered for %q", name), nil).
			WithContext("availableSchemas", v.names())
	}

	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = []byte("{}")
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return NewValidationError(ErrInvalidJSONFormat, "Invalid JSON format", errors.Wrap(err, "json.Unmarshal failed")).
			WithContext("schema", name).
			WithContext("dataPreview", calculatePreview(data))
	}

	if err := compiled.Validate(instance); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			v.logger.Debug("Schema validation failed.", "schema", name, "error", valErr.Message)
			return convertValidationError(valErr, name, data)
		}
		return NewValidationError(ErrValidationFailed, "Schema validation failed with unexpected error",
			errors.Wrap(err, "schema.Validate failed unexpectedly")).WithContext("schema", name)
	}
	return nil
}

// HasSchema checks if a schema with the given name exists.
func (v *Validator) HasSchema(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

func (v *Validator) names() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	keys := make([]string, 0, len(v.schemas))
	for k := range v.schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
