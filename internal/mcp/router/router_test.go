// file: internal/mcp/router/router_test.go
package router

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMockHandler = errors.New("mock handler error")

func echoHandler(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	return json.RawMessage(`{"echo":` + string(params) + `}`), nil
}

func assertProtocolCode(t *testing.T, expected mcperrors.ErrorCode, err error) {
	t.Helper()
	require.Error(t, err)
	var pe *mcperrors.ProtocolError
	require.True(t, errors.As(err, &pe), "Error should be a ProtocolError. Got: %T", err)
	assert.Equal(t, expected, pe.Code)
}

// TestRouter_AddRoute_Validation covers the registration rules.
func TestRouter_AddRoute_Validation(t *testing.T) {
	r := NewRouter(nil)

	require.NoError(t, r.AddRoute(Route{Method: "ping", Handler: echoHandler}))
	assert.Error(t, r.AddRoute(Route{Method: "ping", Handler: echoHandler}), "Duplicate method should be rejected.")
	assert.Error(t, r.AddRoute(Route{Method: "", Handler: echoHandler}), "Empty method should be rejected.")
	assert.Error(t, r.AddRoute(Route{Method: "nohandler"}), "Route without handlers should be rejected.")
	assert.Equal(t, []string{"ping"}, r.GetRoutes())
}

// TestRouter_Route_Request returns the handler result.
func TestRouter_Route_Request(t *testing.T) {
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{Method: "prompts/get", Handler: echoHandler}))

	res, err := r.Route(context.Background(), "prompts/get", json.RawMessage(`{"name":"x"}`), false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"echo":{"name":"x"}}`, string(res))
}

// TestRouter_Route_HandlerError propagates handler errors untouched.
func TestRouter_Route_HandlerError(t *testing.T) {
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{Method: "fail", Handler: func(context.Context, json.RawMessage) (json.RawMessage, error) {
		return nil, errMockHandler
	}}))

	_, err := r.Route(context.Background(), "fail", nil, false)
	assert.ErrorIs(t, err, errMockHandler)
}

// TestRouter_Route_UnknownMethod yields method-not-found.
func TestRouter_Route_UnknownMethod(t *testing.T) {
	r := NewRouter(nil)
	_, err := r.Route(context.Background(), "tools/list", nil, false)
	assertProtocolCode(t, mcperrors.ErrMethodNotFound, err)
	code, msg, _ := mcperrors.ToJSONRPC(err)
	assert.Equal(t, -32601, code)
	assert.Equal(t, "Method not found: tools/list", msg)
}

// TestRouter_Route_Notifications covers both notification paths.
func TestRouter_Route_Notifications(t *testing.T) {
	var calls atomic.Int32
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{
		Method: "notifications/initialized",
		NotificationHandler: func(context.Context, json.RawMessage) error {
			calls.Add(1)
			return nil
		},
	}))
	require.NoError(t, r.AddRoute(Route{Method: "ping", Handler: echoHandler}))

	res, err := r.Route(context.Background(), "notifications/initialized", nil, true)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, int32(1), calls.Load())

	res, err = r.Route(context.Background(), "ping", json.RawMessage(`{}`), true)
	require.NoError(t, err)
	assert.Nil(t, res, "Results of request handlers are dropped for notifications.")

	_, err = r.Route(context.Background(), "notifications/initialized", nil, false)
	assertProtocolCode(t, mcperrors.ErrMethodNotFound, err)
}
