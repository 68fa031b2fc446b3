// Package router dispatches JSON-RPC methods to handlers for the stdio dispatch server.
// file: internal/mcp/router/router.go
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/logging"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
)

// Handler answers a request.
type Handler func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

// NotificationHandler processes a notification. Nothing is sent back.
type NotificationHandler func(ctx context.Context, params json.RawMessage) error

// Route binds a method name to its handlers. At least one handler is required.
type Route struct {
	Method              string
	Handler             Handler
	NotificationHandler NotificationHandler
}

// Router maps method names to routes.
type Router interface {
	AddRoute(route Route) error
	Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error)
	GetRoutes() []string
}

type router struct {
	routes map[string]Route
	mu     sync.RWMutex
	logger logging.Logger
}

// NewRouter creates an empty Router.
func NewRouter(logger logging.Logger) Router {
	return &router{
		routes: make(map[string]Route),
		logger: logging.OrNoop(logger).WithField("component", "mcp_router"),
	}
}

// AddRoute registers route. Registering a method twice is an error.
func (r *router) AddRoute(route Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if route.Method == "" {
		return errors.New("cannot register route with empty method name")
	}
	if route.Handler == nil && route.NotificationHandler == nil {
		return errors.Newf("route for method '%s' must have a Handler or a NotificationHandler", route.Method)
	}
	if _, exists := r.routes[route.Method]; exists {
		return errors.Newf("route for method '%s' already registered", route.Method)
	}

	r.routes[route.Method] = route
	r.logger.Debug("Registered route.", "method", route.Method)
	return nil
}

// Route runs the handler registered for method. Unknown methods yield an ErrMethodNotFound
// ProtocolError. A notification sent to a request-only method runs the handler and drops the result.
func (r *router) Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error) {
	r.mu.RLock()
	route, exists := r.routes[method]
	r.mu.RUnlock()

	if !exists {
		r.logger.Debug("Method not found.", "method", method)
		return nil, methodNotFound(method, fmt.Sprintf("Method not found: %s", method))
	}

	if isNotification {
		if route.NotificationHandler != nil {
			return nil, route.NotificationHandler(ctx, params)
		}
		_, err := route.Handler(ctx, params)
		return nil, err
	}

	if route.Handler == nil {
		return nil, methodNotFound(method, fmt.Sprintf("Method '%s' is notification-only", method))
	}
	return route.Handler(ctx, params)
}

func methodNotFound(method, message string) error {
	return mcperrors.NewProtocolError(mcperrors.ErrMethodNotFound, message, nil).WithContext("method", method)
}

// GetRoutes returns the registered method names in sorted order.
func (r *router) GetRoutes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.routes))
	for method := range r.routes {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}
