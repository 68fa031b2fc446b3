// Package registry exposes the catalogs through the official MCP Go SDK: every prompt,
// resource and tool is registered up front and the SDK owns the protocol.
// file: internal/mcp/registry/server.go
package registry

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/catalog"
	"github.com/dkoosis/voicestyle/internal/logging"
	"github.com/dkoosis/voicestyle/internal/mcp/state"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
	"github.com/dkoosis/voicestyle/internal/metrics"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Info identifies the server to clients.
type Info struct {
	Name    string
	Version string
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logging.OrNoop(logger).WithField("component", "registry_server") }
}

// WithMetrics records every callback in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// Server binds the catalogs to an SDK server.
type Server struct {
	sdk       *mcp.Server
	catalogs  *catalog.Set
	lifecycle *state.Machine
	metrics   *metrics.Collector
	logger    logging.Logger
}

// NewServer creates the SDK server. Catalog entries are registered by Run.
func NewServer(catalogs *catalog.Set, info Info, opts ...Option) (*Server, error) {
	if catalogs == nil {
		return nil, errors.New("registry: catalogs are required")
	}
	s := &Server{
		catalogs: catalogs,
		logger:   logging.GetNoopLogger().WithField("component", "registry_server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	lifecycle, err := state.NewMachine(s.logger)
	if err != nil {
		return nil, err
	}
	s.lifecycle = lifecycle

	s.sdk = mcp.NewServer(&mcp.Implementation{Name: info.Name, Version: info.Version}, nil)
	s.sdk.AddReceivingMiddleware(s.catalogKeyMiddleware)
	return s, nil
}

// SDK returns the underlying SDK server.
func (s *Server) SDK() *mcp.Server {
	return s.sdk
}

// State returns the current lifecycle state.
func (s *Server) State() string {
	return string(s.lifecycle.CurrentState())
}

// Run registers every catalog entry and serves one session over t until the client
// disconnects or ctx ends.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	if err := s.lifecycle.Fire(ctx, state.EventConnect, nil); err != nil {
		return errors.Wrap(err, "registry: server already used")
	}
	s.registerPrompts()
	s.registerResources()
	if err := s.registerTools(); err != nil {
		s.lifecycle.Fail(ctx, err)
		return err
	}
	if err := s.lifecycle.Fire(ctx, state.EventServe, nil); err != nil {
		s.lifecycle.Fail(ctx, err)
		return errors.Wrap(err, "registry: failed to start serving")
	}
	s.metrics.RecordSession(metrics.SurfaceRegistry, true)
	defer s.metrics.RecordSession(metrics.SurfaceRegistry, false)

	s.logger.Info("Registry server running.",
		"prompts", len(s.catalogs.Prompts.List()),
		"resources", len(s.catalogs.Resources.List()),
		"tools", len(s.catalogs.Tools.List()))

	err := s.sdk.Run(ctx, t)
	if err != nil && ctx.Err() == nil && !errors.Is(err, io.EOF) {
		s.logger.Error("Registry server stopped on error.", "error", err)
		s.lifecycle.Fail(context.Background(), err)
		return errors.Wrap(err, "registry: session failed")
	}
	_ = s.lifecycle.Fire(context.Background(), state.EventClose, nil)
	s.logger.Info("Registry server stopped.")
	return nil
}

func (s *Server) registerPrompts() {
	for _, info := range s.catalogs.Prompts.List() {
		name := info.Name
		s.sdk.AddPrompt(&mcp.Prompt{Name: name, Description: info.Description},
			func(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
				start := time.Now()
				res, err := s.catalogs.Prompts.Render(name)
				s.metrics.RecordRequest(metrics.SurfaceRegistry, "prompts/get", start, err)
				if err != nil {
					return nil, s.translate(err)
				}
				out := &mcp.GetPromptResult{Description: res.Description}
				for _, m := range res.Messages {
					out.Messages = append(out.Messages, &mcp.PromptMessage{
						Role:    mcp.Role(m.Role),
						Content: &mcp.TextContent{Text: m.Text},
					})
				}
				return out, nil
			})
	}
}

func (s *Server) registerResources() {
	for _, info := range s.catalogs.Resources.List() {
		uri := info.URI
		s.sdk.AddResource(&mcp.Resource{
			URI:         uri,
			Name:        info.Name,
			Description: info.Description,
			MIMEType:    info.MIMEType,
		}, func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			start := time.Now()
			content, err := s.catalogs.Resources.Read(uri)
			s.metrics.RecordRequest(metrics.SurfaceRegistry, "resources/read", start, err)
			if err != nil {
				return nil, s.translate(err)
			}
			return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{{
				URI:      content.URI,
				MIMEType: content.MIMEType,
				Text:     content.Text,
			}}}, nil
		})
	}
}

func (s *Server) registerTools() error {
	for _, info := range s.catalogs.Tools.List() {
		var inputSchema map[string]any
		if err := json.Unmarshal(info.InputSchema, &inputSchema); err != nil {
			return errors.Wrapf(err, "registry: invalid input schema for tool %s", info.Name)
		}
		name := info.Name
		s.sdk.AddTool(&mcp.Tool{
			Name:        name,
			Description: info.Description,
			InputSchema: inputSchema,
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			start := time.Now()
			text, err := s.catalogs.Tools.Invoke(ctx, name, args)
			s.metrics.RecordRequest(metrics.SurfaceRegistry, "tools/call", start, err)
			if err != nil {
				if mcperrors.IsInvalidInput(err) {
					// Tool input problems are reported to the model, not as protocol errors.
					return &mcp.CallToolResult{
						IsError: true,
						Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
					}, nil
				}
				return nil, s.translate(err)
			}
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, nil
		})
	}
	return nil
}

// catalogKeyMiddleware answers requests for unregistered prompts, resources and tools
// before the SDK's own lookup, so they fail with the same code and message as on the
// dispatch server.
func (s *Server) catalogKeyMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		kind, field, key, ok := catalogKey(req)
		if !ok {
			return next(ctx, method, req)
		}
		var err error
		if key == "" {
			err = mcperrors.NewInvalidInput(field, "is required", nil)
		} else {
			err = s.catalogs.Check(kind, key)
		}
		if err != nil {
			s.metrics.RecordRequest(metrics.SurfaceRegistry, method, time.Now(), err)
			s.logger.Debug("Request rejected.", "method", method, "key", key, "error", err)
			return nil, s.translate(err)
		}
		return next(ctx, method, req)
	}
}

// catalogKey extracts the catalog key a request refers to. ok is false for requests
// that do not name one.
func catalogKey(req mcp.Request) (kind mcperrors.Kind, field, key string, ok bool) {
	switch r := req.(type) {
	case *mcp.GetPromptRequest:
		if r.Params != nil {
			return mcperrors.KindPrompt, "name", r.Params.Name, true
		}
	case *mcp.ReadResourceRequest:
		if r.Params != nil {
			return mcperrors.KindResource, "uri", r.Params.URI, true
		}
	case *mcp.CallToolRequest:
		if r.Params != nil {
			return mcperrors.KindTool, "name", r.Params.Name, true
		}
	}
	return "", "", "", false
}

// translate converts a catalog error into the JSON-RPC error sent to the client.
// Stack traces stay in the log.
func (s *Server) translate(err error) error {
	code, message, data := mcperrors.ToJSONRPC(err)
	if code == int(mcperrors.ErrInternalError) {
		s.logger.Error("Catalog callback failed.", "error", err)
	}
	wireErr := &jsonrpc.Error{Code: int64(code), Message: message}
	if len(data) > 0 {
		if raw, mErr := json.Marshal(data); mErr == nil {
			wireErr.Data = raw
		}
	}
	return wireErr
}
