package catalog

// file: internal/catalog/tools.go

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
	"github.com/dkoosis/voicestyle/internal/schema"
	"github.com/dkoosis/voicestyle/internal/voice"
)

// Tool names.
const (
	ToolApplyVoiceStyle    = "apply-voice-style"
	ToolGetVoiceGuidelines = "get-voice-guidelines"
)

// ToolInfo is the listing entry for a tool.
type ToolInfo struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

type toolEntry struct {
	info   ToolInfo
	invoke func(input json.RawMessage) (string, error)
}

// Tools is the tool catalog. Input is checked against each tool's schema before invocation.
type Tools struct {
	entries   []toolEntry
	byName    map[string]int
	validator schema.ValidatorInterface
}

type applyVoiceStyleInput struct {
	Text string `json:"text"`
}

// NewTools builds the tool catalog. get-voice-guidelines reuses the writing-guidelines prompt.
func NewTools(profile voice.Profile, prompts *Prompts, validator schema.ValidatorInterface) (*Tools, error) {
	profile = profile.Clone()
	entries := []toolEntry{
		{
			info: ToolInfo{
				Name:        ToolApplyVoiceStyle,
				Description: "Review text against Matt's voice, style, and tone and return guidance for rewriting it",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"text":{"type":"string","description":"Text to review against the voice profile"}},"required":["text"]}`),
			},
			invoke: func(input json.RawMessage) (string, error) {
				var in applyVoiceStyleInput
				if len(input) > 0 {
					if err := json.Unmarshal(input, &in); err != nil {
						return "", mcperrors.NewInvalidInput("text", "must be a string", err)
					}
				}
				return renderVoiceGuidance(profile, in.Text), nil
			},
		},
		{
			info: ToolInfo{
				Name:        ToolGetVoiceGuidelines,
				Description: "Get Matt's writing guidelines as a quick reference",
				InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			},
			invoke: func(json.RawMessage) (string, error) {
				return prompts.Text(PromptWritingGuidelines)
			},
		},
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.info.Name
		if err := validator.Register(e.info.Name, e.info.InputSchema); err != nil {
			return nil, errors.Wrapf(err, "failed to register input schema for tool %q", e.info.Name)
		}
	}
	byName, err := index(schema.EntityTypeTool, keys)
	if err != nil {
		return nil, err
	}
	return &Tools{entries: entries, byName: byName, validator: validator}, nil
}

// List returns every tool in registration order.
func (t *Tools) List() []ToolInfo {
	out := make([]ToolInfo, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.info
		out[i].InputSchema = append(json.RawMessage(nil), e.info.InputSchema...)
	}
	return out
}

// Invoke validates input and runs the tool called name.
// Unknown tools yield a NotFoundError and rejected input an InvalidInputError.
func (t *Tools) Invoke(ctx context.Context, name string, input json.RawMessage) (string, error) {
	i, ok := t.byName[name]
	if !ok {
		return "", mcperrors.NewNotFound(mcperrors.KindTool, name)
	}
	if err := t.validator.Validate(ctx, name, input); err != nil {
		var valErr *schema.ValidationError
		if errors.As(err, &valErr) {
			return "", mcperrors.NewInvalidInput(valErr.Field, valErr.Message, err)
		}
		return "", mcperrors.NewInvalidInput("", "input rejected", err)
	}
	return t.entries[i].invoke(input)
}

// renderVoiceGuidance embeds text verbatim in a checklist derived from the profile.
// It gives advice only and never rewrites the text.
func renderVoiceGuidance(p voice.Profile, text string) string {
	rules := p.FormattingRules()
	formatting := make([]string, len(rules))
	for i, r := range rules {
		formatting[i] = r.Label + ": " + r.Value
	}
	return strings.Join([]string{
		"# Voice, Style, and Tone Review",
		"",
		"**Original text:**",
		`"` + text + `"`,
		"",
		"**Tone to hit:** " + p.Voice.Tone,
		"",
		"**Style to follow:** " + p.Voice.Style,
		"",
		"**Positioning:** " + p.Voice.Positioning,
		"",
		"**Work in these signature moves:**",
		bullets(p.Voice.SignatureMoves),
		"",
		"**Cut anything that looks like:**",
		bullets(p.Voice.Banned),
		"",
		"**Formatting checklist:**",
		bullets(formatting),
		"",
		"Rewrite the original text so it meets every point above.",
	}, "\n")
}
