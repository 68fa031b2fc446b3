// Package state defines the lifecycle shared by the stdio adapters.
// file: internal/mcp/state/states.go
package state

import "github.com/dkoosis/voicestyle/internal/fsm"

// Lifecycle states.
const (
	StateUninitialized fsm.State = "uninitialized" // Adapter built, transport not attached.
	StateConnected     fsm.State = "connected"     // Transport attached, catalogs registered or handshake pending.
	StateServing       fsm.State = "serving"       // Answering requests.
	StateClosed        fsm.State = "closed"        // Transport ended or failed.
)

// IsTerminal reports whether no further transitions can happen from s.
func IsTerminal(s fsm.State) bool {
	return s == StateClosed
}
