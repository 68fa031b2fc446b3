// file: internal/mcp/state/machine.go
package state

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/fsm"
	"github.com/dkoosis/voicestyle/internal/logging"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
)

// Machine tracks one adapter's lifecycle:
// Uninitialized -connect-> Connected -serve-> Serving -close-> Closed, with fail -> Closed
// from any non-terminal state.
type Machine struct {
	fsm.FSM
	logger logging.Logger
}

// NewMachine builds the lifecycle machine.
func NewMachine(logger logging.Logger) (*Machine, error) {
	log := logging.OrNoop(logger).WithField("component", "lifecycle")

	m := fsm.NewFSM(StateUninitialized, log)
	m.AddTransition(fsm.Transition{From: []fsm.State{StateUninitialized}, Event: EventConnect, To: StateConnected})
	m.AddTransition(fsm.Transition{From: []fsm.State{StateConnected}, Event: EventServe, To: StateServing})
	m.AddTransition(fsm.Transition{From: []fsm.State{StateConnected, StateServing}, Event: EventClose, To: StateClosed})
	m.AddTransition(fsm.Transition{
		From:  []fsm.State{StateUninitialized, StateConnected, StateServing},
		Event: EventFail,
		To:    StateClosed,
		Action: func(_ context.Context, _ fsm.Event, data interface{}) error {
			if err, ok := data.(error); ok {
				log.Warn("Lifecycle failed.", "error", err)
			}
			return nil
		},
	})

	if err := m.Build(); err != nil {
		return nil, errors.Wrap(err, "failed to build lifecycle state machine")
	}
	return &Machine{FSM: m, logger: log}, nil
}

// Fire triggers event, logging refusals.
func (m *Machine) Fire(ctx context.Context, event fsm.Event, data interface{}) error {
	if err := m.Transition(ctx, event, data); err != nil {
		m.logger.Warn("Lifecycle event refused.", "event", event, "state", m.CurrentState(), "error", err)
		return err
	}
	return nil
}

// Fail moves the machine to Closed unless it is already there.
func (m *Machine) Fail(ctx context.Context, cause error) {
	if IsTerminal(m.CurrentState()) {
		return
	}
	_ = m.Fire(ctx, EventFail, cause)
}

// ValidateMethod reports whether method may be handled in the current state.
// It returns an ErrRequestSequence ProtocolError when it may not.
func (m *Machine) ValidateMethod(method string) error {
	current := m.CurrentState()

	var allowed bool
	switch {
	case IsTerminal(current):
	case method == MethodPing:
		allowed = current == StateConnected || current == StateServing
	case EventForMethod(method) != "":
		allowed = m.CanTransition(EventForMethod(method))
	default:
		allowed = current == StateServing
	}
	if allowed {
		return nil
	}

	m.logger.Warn("Method received out of sequence.", "method", method, "state", current)
	msg := fmt.Sprintf("Method '%s' not allowed in current state '%s'", method, current)
	if current == StateConnected {
		msg = fmt.Sprintf("Method '%s' not allowed before initialization", method)
	}
	return mcperrors.NewProtocolError(mcperrors.ErrRequestSequence, msg, nil).
		WithContext("method", method).
		WithContext("state", string(current))
}
