// file: internal/schema/name_rules.go

package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// EntityType represents a kind of catalog entry whose key needs validation.
type EntityType string

const (
	// EntityTypeTool represents a tool name.
	EntityTypeTool EntityType = "tool"

	// EntityTypeResource represents a resource URI.
	EntityTypeResource EntityType = "resource"

	// EntityTypePrompt represents a prompt name.
	EntityTypePrompt EntityType = "prompt"
)

// NameRule defines validation rules for a catalog key.
type NameRule struct {
	// Pattern is the regex pattern the key must match.
	Pattern *regexp.Regexp

	// Description is a human-readable description of the pattern.
	Description string

	// MaxLength is the maximum allowed length of the key.
	MaxLength int

	// ExampleValid contains examples of valid keys.
	ExampleValid []string
}

var kebabName = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// nameRules maps entity types to their validation rules.
var nameRules = map[EntityType]NameRule{
	EntityTypeTool: {
		Pattern:      kebabName,
		Description:  "Must be lowercase words separated by single hyphens",
		MaxLength:    64,
		ExampleValid: []string{"apply-voice-style", "get-voice-guidelines"},
	},
	EntityTypeResource: {
		Pattern:      regexp.MustCompile(`^[a-z][a-z0-9+.-]*://[^\s]+$`),
		Description:  "Must be an absolute URI with a lowercase scheme and no whitespace",
		MaxLength:    256,
		ExampleValid: []string{"voice://matt/full-profile", "voice://matt/signature-moves"},
	},
	EntityTypePrompt: {
		Pattern:      kebabName,
		Description:  "Must be lowercase words separated by single hyphens",
		MaxLength:    64,
		ExampleValid: []string{"voice-style-tone", "banned-phrases"},
	},
}

// GetNameRule returns the validation rule for a specific entity type.
func GetNameRule(entityType EntityType) (NameRule, bool) {
	rule, ok := nameRules[entityType]
	return rule, ok
}

// ValidateName validates a key against the rules for a specific entity type.
func ValidateName(entityType EntityType, name string) error {
	rule, ok := nameRules[entityType]
	if !ok {
		return errors.Newf("unknown entity type: %s", entityType)
	}

	if len(name) == 0 {
		return errors.Newf("empty %s name is not allowed", entityType)
	}

	if len(name) > rule.MaxLength {
		return errors.Newf("%s name exceeds maximum length of %d characters", entityType, rule.MaxLength)
	}

	if !rule.Pattern.MatchString(name) {
		return errors.Newf("invalid %s name '%s': %s", entityType, name, rule.Description)
	}

	return nil
}

// GetNamePatternDescription returns a human-readable description of the naming rule
// for a specific entity type.
func GetNamePatternDescription(entityType EntityType) string {
	rule, ok := nameRules[entityType]
	if !ok {
		return fmt.Sprintf("No pattern defined for %s", entityType)
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Rules for %s names:\n", entityType)
	fmt.Fprintf(&builder, "- %s\n", rule.Description)
	fmt.Fprintf(&builder, "- Maximum length: %d characters\n", rule.MaxLength)
	if len(rule.ExampleValid) > 0 {
		quoted := make([]string, len(rule.ExampleValid))
		for i, ex := range rule.ExampleValid {
			quoted[i] = fmt.Sprintf("%q", ex)
		}
		fmt.Fprintf(&builder, "- Valid examples: %s\n", strings.Join(quoted, ", "))
	}
	return builder.String()
}
