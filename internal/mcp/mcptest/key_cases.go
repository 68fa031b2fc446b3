// Package mcptest holds expectations shared by the stdio adapter tests, so both
// adapters are checked against the same error contract.
// file: internal/mcp/mcptest/key_cases.go
package mcptest

import "github.com/dkoosis/voicestyle/internal/mcperrors"

// Method names that look up a catalog key.
const (
	MethodPromptsGet    = "prompts/get"
	MethodResourcesRead = "resources/read"
	MethodToolsCall     = "tools/call"
)

// KeyCase is a request naming a key no catalog holds, or naming none, and the error it must produce.
type KeyCase struct {
	Name    string
	Method  string
	Kind    mcperrors.Kind
	Key     string
	Params  string // JSON params for the request.
	Code    int
	Message string
}

// KeyLookupCases returns an unknown-key case per catalog kind plus missing-key cases.
func KeyLookupCases() []KeyCase {
	return []KeyCase{
		{
			Name:    "prompt",
			Method:  MethodPromptsGet,
			Kind:    mcperrors.KindPrompt,
			Key:     "nope",
			Params:  `{"name":"nope"}`,
			Code:    int(mcperrors.ErrInvalidRequest),
			Message: "Unknown prompt: nope",
		},
		{
			Name:    "resource",
			Method:  MethodResourcesRead,
			Kind:    mcperrors.KindResource,
			Key:     "voice://matt/missing",
			Params:  `{"uri":"voice://matt/missing"}`,
			Code:    int(mcperrors.ErrInvalidRequest),
			Message: "Unknown resource: voice://matt/missing",
		},
		{
			Name:    "tool",
			Method:  MethodToolsCall,
			Kind:    mcperrors.KindTool,
			Key:     "nope",
			Params:  `{"name":"nope","arguments":{}}`,
			Code:    int(mcperrors.ErrInvalidRequest),
			Message: "Unknown tool: nope",
		},
		{
			Name:    "missing prompt name",
			Method:  MethodPromptsGet,
			Kind:    mcperrors.KindPrompt,
			Params:  `{"name":""}`,
			Code:    int(mcperrors.ErrInvalidParams),
			Message: `invalid input for "name": is required`,
		},
		{
			Name:    "missing resource uri",
			Method:  MethodResourcesRead,
			Kind:    mcperrors.KindResource,
			Params:  `{"uri":""}`,
			Code:    int(mcperrors.ErrInvalidParams),
			Message: `invalid input for "uri": is required`,
		},
	}
}
