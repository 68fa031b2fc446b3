// Package dispatch serves the catalogs over newline-delimited JSON-RPC by routing each
// method by hand, without the MCP SDK.
// file: internal/mcp/dispatch/server.go
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/catalog"
	"github.com/dkoosis/voicestyle/internal/logging"
	"github.com/dkoosis/voicestyle/internal/mcp/router"
	"github.com/dkoosis/voicestyle/internal/mcp/state"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
	"github.com/dkoosis/voicestyle/internal/metrics"
	"github.com/dkoosis/voicestyle/internal/transport"
)

var nullID = json.RawMessage("null")

// Info identifies the server in the initialize result.
type Info struct {
	Name    string
	Version string
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logging.OrNoop(logger).WithField("component", "dispatch_server") }
}

// WithMetrics records every request in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// Server answers one session at a time. Create a new Server per connection.
type Server struct {
	info      Info
	catalogs  *catalog.Set
	router    router.Router
	lifecycle *state.Machine
	metrics   *metrics.Collector
	logger    logging.Logger
	transport transport.Transport
}

// NewServer wires the catalog routes.
func NewServer(catalogs *catalog.Set, info Info, opts ...Option) (*Server, error) {
	if catalogs == nil {
		return nil, errors.New("dispatch: catalogs are required")
	}
	s := &Server{
		info:     info,
		catalogs: catalogs,
		logger:   logging.GetNoopLogger().WithField("component", "dispatch_server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	lifecycle, err := state.NewMachine(s.logger)
	if err != nil {
		return nil, err
	}
	s.lifecycle = lifecycle
	s.router = router.NewRouter(s.logger)
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Server) State() string {
	return string(s.lifecycle.CurrentState())
}

// Serve processes messages from t until the peer disconnects or ctx is cancelled, both of
// which return nil. Any other transport failure closes the session and is returned.
func (s *Server) Serve(ctx context.Context, t transport.Transport) error {
	if t == nil {
		return errors.New("dispatch: transport is required")
	}
	if err := s.lifecycle.Fire(ctx, state.EventConnect, nil); err != nil {
		return errors.Wrap(err, "dispatch: server already used")
	}
	s.transport = t
	s.metrics.RecordSession(metrics.SurfaceDispatch, true)
	defer s.metrics.RecordSession(metrics.SurfaceDispatch, false)
	defer func() {
		if err := t.Close(); err != nil {
			s.logger.Debug("Transport close failed.", "error", err)
		}
	}()

	s.logger.Info("Dispatch server processing loop started.")
	for {
		if ctx.Err() != nil {
			s.logger.Info("Context cancelled, stopping dispatch server.")
			s.closeLifecycle(context.Background())
			return nil
		}
		err := s.processNextMessage(ctx)
		if err == nil {
			continue
		}
		if s.isTerminalError(ctx, err) {
			s.logger.Info("Session ended.", "reason", err.Error())
			s.closeLifecycle(context.Background())
			return nil
		}
		s.logger.Error("Dispatch server stopped on error.", "error", fmt.Sprintf("%+v", err))
		s.lifecycle.Fail(ctx, err)
		return err
	}
}

func (s *Server) closeLifecycle(ctx context.Context) {
	if s.lifecycle.CanTransition(state.EventClose) {
		_ = s.lifecycle.Fire(ctx, state.EventClose, nil)
		return
	}
	s.lifecycle.Fail(ctx, errors.New("session ended before connect"))
}

// isTerminalError reports whether err ends the session normally.
func (s *Server) isTerminalError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return transport.IsClosedError(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// processNextMessage reads and answers one message. It returns an error only when the
// session cannot continue.
func (s *Server) processNextMessage(ctx context.Context) error {
	msg, readErr := s.transport.ReadMessage(ctx)
	if readErr != nil {
		return s.handleTransportReadError(ctx, msg, readErr)
	}

	var req request
	if err := json.Unmarshal(msg, &req); err != nil {
		// The transport validated the framing, so this only happens for odd shapes.
		return s.writeError(ctx, transport.ExtractID(msg), "",
			mcperrors.NewProtocolError(mcperrors.ErrInvalidRequest, "Invalid Request", err))
	}
	if req.Method == "" {
		s.logger.Debug("Ignoring response message from client.", "id", string(req.ID))
		return nil
	}

	start := time.Now()
	result, handleErr := s.handle(ctx, req)
	s.metrics.RecordRequest(metrics.SurfaceDispatch, req.Method, start, handleErr)

	if req.isNotification() {
		if handleErr != nil {
			s.logger.Warn("Notification failed.", "method", req.Method, "error", handleErr)
		}
		return nil
	}
	if handleErr != nil {
		return s.handleProcessingError(ctx, req, handleErr)
	}
	return s.writeResponse(ctx, req.Method, response{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (s *Server) handle(ctx context.Context, req request) (json.RawMessage, error) {
	if err := s.lifecycle.ValidateMethod(req.Method); err != nil {
		return nil, err
	}
	return s.router.Route(ctx, req.Method, req.Params, req.isNotification())
}

// handleTransportReadError answers recoverable framing errors and passes terminal ones up.
func (s *Server) handleTransportReadError(ctx context.Context, msg []byte, readErr error) error {
	pe := transport.ToProtocolError(readErr)
	if pe == nil {
		return readErr
	}
	id := transport.ExtractID(msg)
	if pe.Code == mcperrors.ErrParseError || id == nil {
		id = nullID
	}
	s.logger.Warn("Rejected malformed message.", "code", int(pe.Code), "error", readErr)
	s.metrics.RecordRequest(metrics.SurfaceDispatch, "invalid", time.Now(), pe)
	return s.writeError(ctx, id, "", pe)
}

func (s *Server) handleProcessingError(ctx context.Context, req request, handleErr error) error {
	if mcperrors.IsNotFound(handleErr) || mcperrors.IsInvalidInput(handleErr) {
		s.logger.Debug("Request rejected.", "method", req.Method, "id", string(req.ID), "error", handleErr)
	} else {
		s.logger.Warn("Error processing request.", "method", req.Method, "id", string(req.ID), "error", fmt.Sprintf("%+v", handleErr))
	}
	return s.writeError(ctx, req.ID, req.Method, handleErr)
}

func (s *Server) writeError(ctx context.Context, id json.RawMessage, method string, err error) error {
	code, message, data := mcperrors.ToJSONRPC(err)
	return s.writeResponse(ctx, method, response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message, Data: data},
	})
}

func (s *Server) writeResponse(ctx context.Context, method string, resp response) error {
	if len(resp.ID) == 0 {
		resp.ID = nullID
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return errors.Wrap(err, "failed to marshal response")
	}
	if err := s.transport.WriteMessage(ctx, b); err != nil {
		s.logger.Error("Failed to write response.", "method", method, "id", string(resp.ID), "error", err)
		return errors.Wrap(err, "failed to write response")
	}
	return nil
}
