package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name          string
		entityType    EntityType
		inputName     string
		expectError   bool
		errorContains string
	}{
		{name: "[Prompt] valid kebab-case", entityType: EntityTypePrompt, inputName: "voice-style-tone"},
		{name: "[Tool] valid kebab-case", entityType: EntityTypeTool, inputName: "get-voice-guidelines"},
		{name: "[Tool] valid single word", entityType: EntityTypeTool, inputName: "ping"},
		{name: "[Tool] valid exact max length", entityType: EntityTypeTool, inputName: strings.Repeat("a", 64)},
		{name: "[Tool] invalid too long", entityType: EntityTypeTool, inputName: strings.Repeat("a", 65), expectError: true, errorContains: "maximum length"},
		{name: "[Tool] invalid empty", entityType: EntityTypeTool, inputName: "", expectError: true, errorContains: "empty tool name"},
		{name: "[Prompt] invalid uppercase", entityType: EntityTypePrompt, inputName: "VoiceStyle", expectError: true, errorContains: "lowercase"},
		{name: "[Prompt] invalid double hyphen", entityType: EntityTypePrompt, inputName: "voice--style", expectError: true},
		{name: "[Prompt] invalid trailing hyphen", entityType: EntityTypePrompt, inputName: "voice-", expectError: true},
		{name: "[Prompt] invalid underscore", entityType: EntityTypePrompt, inputName: "voice_style", expectError: true},
		{name: "[Resource] valid voice URI", entityType: EntityTypeResource, inputName: "voice://matt/full-profile"},
		{name: "[Resource] invalid no scheme", entityType: EntityTypeResource, inputName: "matt/full-profile", expectError: true, errorContains: "absolute URI"},
		{name: "[Resource] invalid whitespace", entityType: EntityTypeResource, inputName: "voice://matt/full profile", expectError: true},
		{name: "Unknown entity type", entityType: EntityType("widget"), inputName: "x", expectError: true, errorContains: "unknown entity type"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateName(tc.entityType, tc.inputName)
			if !tc.expectError {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) && tc.errorContains != "" {
				assert.Contains(t, err.Error(), tc.errorContains)
			}
		})
	}
}

func TestGetNamePatternDescription(t *testing.T) {
	desc := GetNamePatternDescription(EntityTypeResource)
	assert.Contains(t, desc, "Rules for resource names:")
	assert.Contains(t, desc, `"voice://matt/full-profile"`)
	assert.Contains(t, GetNamePatternDescription(EntityType("widget")), "No pattern defined")
}
