// Package voice owns the voice, style, and tone profile served by every surface.
// A Profile is built once at startup and handed to its consumers by value.
package voice

// file: internal/voice/profile.go

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Formatting holds the formatting rules, one field per aspect.
// Field order is the order the aspects are documented and rendered in.
type Formatting struct {
	Paragraphs string `json:"paragraphs" yaml:"paragraphs"`
	Headings   string `json:"headings" yaml:"headings"`
	Emphasis   string `json:"emphasis" yaml:"emphasis"`
	Quotes     string `json:"quotes" yaml:"quotes"`
	Spacing    string `json:"spacing" yaml:"spacing"`
}

// Voice is the descriptive part of the profile.
type Voice struct {
	Tone           string     `json:"tone" yaml:"tone"`
	Style          string     `json:"style" yaml:"style"`
	Positioning    string     `json:"positioning" yaml:"positioning"`
	SignatureMoves []string   `json:"signatureMoves" yaml:"signatureMoves"`
	Banned         []string   `json:"banned" yaml:"banned"`
	Formatting     Formatting `json:"formatting" yaml:"formatting"`
}

// Profile is the complete document served as the full-profile resource.
type Profile struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Voice   Voice  `json:"voice" yaml:"voice"`
}

// Rule is one formatting aspect with its display label.
type Rule struct {
	Aspect string
	Label  string
	Value  string
}

// Default returns the built-in profile.
func Default() Profile {
	return Profile{
		Name:    "Matt's Voice, Style, and Tone",
		Version: "1.0",
		Voice: Voice{
			Tone:        "Dry, grounded, no-polish. Strategic but conversational.",
			Style:       "Punchy line + reflection. Mixed structure. No rhetorical filler.",
			Positioning: "Builder in the arena. Shows work, doesn't posture.",
			SignatureMoves: []string{
				"One strong line per section",
				"Real examples > metaphors",
				"Dry wit when earned",
				"No emotion theater",
			},
			Banned: []string{
				"Hypophora",
				"Poetic fadeouts",
				"Contrast clichés",
				"Punchline stacking",
				"'The result?' fake-smart lines",
			},
			Formatting: Formatting{
				Paragraphs: "1–3 lines",
				Headings:   "Clear, semantic",
				Emphasis:   "Bold for clarity, no italics",
				Quotes:     "No blockquotes ever",
				Spacing:    "Generous whitespace",
			},
		},
	}
}

// Clone returns a deep copy so callers can never alias the store's slices.
func (p Profile) Clone() Profile {
	c := p
	c.Voice.SignatureMoves = append([]string(nil), p.Voice.SignatureMoves...)
	c.Voice.Banned = append([]string(nil), p.Voice.Banned...)
	return c
}

// FormattingRules lists the formatting aspects in declared order.
func (p Profile) FormattingRules() []Rule {
	f := p.Voice.Formatting
	return []Rule{
		{Aspect: "paragraphs", Label: "Paragraphs", Value: f.Paragraphs},
		{Aspect: "headings", Label: "Headings", Value: f.Headings},
		{Aspect: "emphasis", Label: "Emphasis", Value: f.Emphasis},
		{Aspect: "quotes", Label: "Quotes", Value: f.Quotes},
		{Aspect: "spacing", Label: "Spacing", Value: f.Spacing},
	}
}

// Validate reports the first missing required field.
func (p Profile) Validate() error {
	switch {
	case p.Voice.Tone == "":
		return errors.New("profile: voice.tone is required")
	case p.Voice.Style == "":
		return errors.New("profile: voice.style is required")
	case p.Voice.Positioning == "":
		return errors.New("profile: voice.positioning is required")
	case len(p.Voice.SignatureMoves) == 0:
		return errors.New("profile: voice.signatureMoves needs at least one entry")
	case len(p.Voice.Banned) == 0:
		return errors.New("profile: voice.banned needs at least one entry")
	}
	for _, r := range p.FormattingRules() {
		if r.Value == "" {
			return errors.Newf("profile: voice.formatting.%s is required", r.Aspect)
		}
	}
	return nil
}

// MarshalDocument renders the profile as two-space indented JSON.
// HTML escaping is off so characters such as '>' survive verbatim.
func (p Profile) MarshalDocument() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, errors.Wrap(err, "failed to encode voice profile")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
