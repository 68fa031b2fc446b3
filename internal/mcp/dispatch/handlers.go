// file: internal/mcp/dispatch/handlers.go
package dispatch

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/mcp/router"
	"github.com/dkoosis/voicestyle/internal/mcp/state"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
)

// Protocol versions this server speaks, newest first.
var supportedProtocolVersions = []string{"2025-06-18", "2025-03-26", "2024-11-05"}

func (s *Server) registerRoutes() error {
	routes := []router.Route{
		{Method: state.MethodInitialize, Handler: s.handleInitialize},
		{Method: state.MethodInitialized, NotificationHandler: s.handleInitialized},
		{Method: state.MethodPing, Handler: s.handlePing},
		{Method: "prompts/list", Handler: s.handlePromptsList},
		{Method: "prompts/get", Handler: s.handlePromptsGet},
		{Method: "resources/list", Handler: s.handleResourcesList},
		{Method: "resources/read", Handler: s.handleResourcesRead},
	}
	for _, r := range routes {
		if err := s.router.AddRoute(r); err != nil {
			return errors.Wrapf(err, "failed to register route %s", r.Method)
		}
	}
	return nil
}

func negotiateVersion(requested string) string {
	for _, v := range supportedProtocolVersions {
		if v == requested {
			return v
		}
	}
	return supportedProtocolVersions[0]
}

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var p initializeParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.ClientInfo != nil {
		s.logger.Info("Client initializing.", "client", p.ClientInfo.Name, "clientVersion", p.ClientInfo.Version, "protocolVersion", p.ProtocolVersion)
	}
	if err := s.lifecycle.Fire(ctx, state.EventServe, nil); err != nil {
		return nil, mcperrors.NewProtocolError(mcperrors.ErrRequestSequence, "Server already initialized", err)
	}
	return marshalResult(initializeResult{
		ProtocolVersion: negotiateVersion(p.ProtocolVersion),
		ServerInfo:      implementation{Name: s.info.Name, Version: s.info.Version},
	})
}

func (s *Server) handleInitialized(_ context.Context, _ json.RawMessage) error {
	s.logger.Debug("Client confirmed initialization.")
	return nil
}

func (s *Server) handlePing(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (s *Server) handlePromptsList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	prompts := s.catalogs.Prompts.List()
	out := listPromptsResult{Prompts: make([]promptDescriptor, len(prompts))}
	for i, p := range prompts {
		out.Prompts[i] = promptDescriptor{Name: p.Name, Description: p.Description}
	}
	return marshalResult(out)
}

func (s *Server) handlePromptsGet(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var p getPromptParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, mcperrors.NewInvalidInput("name", "is required", nil)
	}
	res, err := s.catalogs.Prompts.Render(p.Name)
	if err != nil {
		return nil, err
	}
	out := getPromptResult{Description: res.Description, Messages: make([]promptMessage, len(res.Messages))}
	for i, m := range res.Messages {
		out.Messages[i] = promptMessage{Role: m.Role, Content: textContent{Type: "text", Text: m.Text}}
	}
	return marshalResult(out)
}

func (s *Server) handleResourcesList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	resources := s.catalogs.Resources.List()
	out := listResourcesResult{Resources: make([]resourceDescriptor, len(resources))}
	for i, r := range resources {
		out.Resources[i] = resourceDescriptor{URI: r.URI, Name: r.Name, Description: r.Description, MIMEType: r.MIMEType}
	}
	return marshalResult(out)
}

func (s *Server) handleResourcesRead(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var p readResourceParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.URI == "" {
		return nil, mcperrors.NewInvalidInput("uri", "is required", nil)
	}
	content, err := s.catalogs.Resources.Read(p.URI)
	if err != nil {
		return nil, err
	}
	return marshalResult(readResourceResult{Contents: []resourceContents{{
		URI:      content.URI,
		MIMEType: content.MIMEType,
		Text:     content.Text,
	}}})
}

// decodeParams unmarshals params into dst. Absent params leave dst zero.
func decodeParams(params json.RawMessage, dst interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return mcperrors.NewInvalidInput("", "params do not match the method", err)
	}
	return nil
}

func marshalResult(v interface{}) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal result")
	}
	return b, nil
}
