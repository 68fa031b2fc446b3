package catalog

// file: internal/catalog/prompts.go

import (
	"strings"

	"github.com/dkoosis/voicestyle/internal/mcperrors"
	"github.com/dkoosis/voicestyle/internal/schema"
	"github.com/dkoosis/voicestyle/internal/voice"
)

// Prompt names.
const (
	PromptVoiceStyleTone    = "voice-style-tone"
	PromptWritingGuidelines = "writing-guidelines"
	PromptBannedPhrases     = "banned-phrases"
)

// RoleUser is the only role prompt messages are sent as.
const RoleUser = "user"

// PromptInfo is the listing entry for a prompt.
type PromptInfo struct {
	Name        string
	Description string
}

// Message is one rendered prompt message.
type Message struct {
	Role string
	Text string
}

// PromptResult is a rendered prompt.
type PromptResult struct {
	Description string
	Messages    []Message
}

type promptEntry struct {
	name              string
	description       string
	resultDescription string
	render            func(voice.Profile) string
}

// Prompts is the prompt catalog. It is immutable after construction.
type Prompts struct {
	profile voice.Profile
	entries []promptEntry
	byName  map[string]int
}

// NewPrompts builds the prompt catalog over profile.
func NewPrompts(profile voice.Profile) (*Prompts, error) {
	entries := []promptEntry{
		{
			name:              PromptVoiceStyleTone,
			description:       "Matt's complete voice, style, and tone preferences for writing",
			resultDescription: "Matt's complete voice, style, and tone preferences",
			render:            renderVoiceStyleTone,
		},
		{
			name:              PromptWritingGuidelines,
			description:       "Specific writing guidelines and formatting rules",
			resultDescription: "Specific writing guidelines and formatting rules",
			render:            renderWritingGuidelines,
		},
		{
			name:              PromptBannedPhrases,
			description:       "List of banned phrases and patterns to avoid",
			resultDescription: "List of banned phrases and patterns to avoid",
			render:            renderBannedPhrases,
		},
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.name
	}
	byName, err := index(schema.EntityTypePrompt, keys)
	if err != nil {
		return nil, err
	}
	return &Prompts{profile: profile.Clone(), entries: entries, byName: byName}, nil
}

// List returns every prompt in registration order.
func (p *Prompts) List() []PromptInfo {
	out := make([]PromptInfo, len(p.entries))
	for i, e := range p.entries {
		out[i] = PromptInfo{Name: e.name, Description: e.description}
	}
	return out
}

// Render returns the prompt called name, or a NotFoundError.
func (p *Prompts) Render(name string) (PromptResult, error) {
	i, ok := p.byName[name]
	if !ok {
		return PromptResult{}, mcperrors.NewNotFound(mcperrors.KindPrompt, name)
	}
	e := p.entries[i]
	return PromptResult{
		Description: e.resultDescription,
		Messages:    []Message{{Role: RoleUser, Text: e.render(p.profile)}},
	}, nil
}

// Text returns the text of the single message of prompt name.
func (p *Prompts) Text(name string) (string, error) {
	res, err := p.Render(name)
	if err != nil {
		return "", err
	}
	return res.Messages[0].Text, nil
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

func renderVoiceStyleTone(p voice.Profile) string {
	rules := p.FormattingRules()
	formatting := make([]string, len(rules))
	for i, r := range rules {
		formatting[i] = r.Label + ": " + r.Value
	}
	return strings.Join([]string{
		"Use this voice, style, and tone profile:",
		"",
		"**Tone:** " + p.Voice.Tone,
		"",
		"**Style:** " + p.Voice.Style,
		"",
		"**Positioning:** " + p.Voice.Positioning,
		"",
		"**Signature Moves:**",
		bullets(p.Voice.SignatureMoves),
		"",
		"**Banned Elements:**",
		bullets(p.Voice.Banned),
		"",
		"**Formatting Rules:**",
		bullets(formatting),
	}, "\n")
}

func renderWritingGuidelines(p voice.Profile) string {
	return strings.Join([]string{
		"Follow these writing guidelines:",
		"",
		"**Core Principles:**",
		bullets([]string{p.Voice.Tone, p.Voice.Style, p.Voice.Positioning}),
		"",
		"**Do This:**",
		bullets(p.Voice.SignatureMoves),
		"",
		"**Never Do This:**",
		bullets(p.Voice.Banned),
	}, "\n")
}

func renderBannedPhrases(p voice.Profile) string {
	return strings.Join([]string{
		"Avoid these banned elements in all writing:",
		"",
		bullets(p.Voice.Banned),
		"",
		"These create fake-smart, overly theatrical, or clichéd writing that goes against the grounded, no-polish voice.",
	}, "\n")
}
