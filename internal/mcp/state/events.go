// file: internal/mcp/state/events.go
package state

import "github.com/dkoosis/voicestyle/internal/fsm"

// Lifecycle events.
const (
	EventConnect fsm.Event = "connect" // Transport attached.
	EventServe   fsm.Event = "serve"   // Ready for requests (registration done, or initialize received).
	EventClose   fsm.Event = "close"   // Transport ended normally.
	EventFail    fsm.Event = "fail"    // Transport or startup error.
)

// Method names with lifecycle meaning.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodPing        = "ping"
)

// EventForMethod maps an incoming method to the lifecycle event it fires, or "" for none.
func EventForMethod(method string) fsm.Event {
	if method == MethodInitialize {
		return EventServe
	}
	return ""
}
