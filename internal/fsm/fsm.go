// Package fsm wraps looplab/fsm behind a small typed API with guards and transition actions.
// file: internal/fsm/fsm.go
package fsm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/logging"
	lfsm "github.com/looplab/fsm"
)

// State represents a state in the FSM.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// TransitionAction runs after a transition completes. Errors are logged, not returned,
// because the state change has already happened.
type TransitionAction func(ctx context.Context, event Event, data interface{}) error

// GuardCondition decides whether a transition may happen.
type GuardCondition func(ctx context.Context, event Event, data interface{}) bool

// Transition defines a transition rule between states.
type Transition struct {
	From      []State
	To        State
	Event     Event
	Action    TransitionAction
	Condition GuardCondition
}

// FSM is a finite state machine. Call Build once after all AddTransition calls.
type FSM interface {
	AddTransition(transition Transition) FSM
	Build() error
	CurrentState() State
	Is(state State) bool
	CanTransition(event Event) bool
	Transition(ctx context.Context, event Event, data interface{}) error
	SetState(state State) error
	Reset() error
}

type loopFSM struct {
	initialState State
	logger       logging.Logger
	transitions  []Transition
	fsm          *lfsm.FSM
	buildErr     error
	mu           sync.RWMutex
}

// NewFSM creates an FSM builder starting in initialState.
func NewFSM(initialState State, logger logging.Logger) FSM {
	return &loopFSM{
		initialState: initialState,
		logger:       logging.OrNoop(logger).WithField("component", "fsm"),
	}
}

// AddTransition stores t for Build. Invalid definitions surface as a Build error.
func (l *loopFSM) AddTransition(t Transition) FSM {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case l.fsm != nil:
		l.setBuildErr(errors.New("cannot AddTransition after Build"))
	case len(t.From) == 0:
		l.setBuildErr(errors.Newf("transition for event '%s' has no 'From' states", t.Event))
	default:
		l.transitions = append(l.transitions, t)
	}
	return l
}

func (l *loopFSM) setBuildErr(err error) {
	l.logger.Error("Invalid FSM configuration.", "error", err)
	if l.buildErr == nil {
		l.buildErr = err
	}
}

// Build creates the underlying looplab/fsm instance. An event must always lead to the same
// destination; use separate events for different destinations.
func (l *loopFSM) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm != nil || l.buildErr != nil {
		return l.buildErr
	}

	order := make([]string, 0, len(l.transitions))
	descs := make(map[string]*lfsm.EventDesc)
	byEvent := make(map[string][]Transition)
	for _, t := range l.transitions {
		name := string(t.Event)
		desc, ok := descs[name]
		if !ok {
			desc = &lfsm.EventDesc{Name: name, Dst: string(t.To)}
			descs[name] = desc
			order = append(order, name)
		} else if desc.Dst != string(t.To) {
			l.setBuildErr(errors.Newf("conflicting destinations ('%s' and '%s') for event '%s'", desc.Dst, t.To, name))
			return l.buildErr
		}
		for _, s := range t.From {
			if !contains(desc.Src, string(s)) {
				desc.Src = append(desc.Src, string(s))
			}
		}
		byEvent[name] = append(byEvent[name], t)
	}

	events := make([]lfsm.EventDesc, 0, len(order))
	callbacks := make(lfsm.Callbacks)
	for _, name := range order {
		events = append(events, *descs[name])
		ts := byEvent[name]
		callbacks["before_"+name] = l.guardCallback(ts)
		callbacks["after_"+name] = l.actionCallback(ts)
	}

	l.fsm = lfsm.NewFSM(string(l.initialState), events, callbacks)
	l.logger.Debug("FSM built.", "initialState", l.initialState, "events", order)
	return nil
}

// matching returns the transition in ts that applies from src.
func matching(ts []Transition, src string) *Transition {
	for i := range ts {
		for _, s := range ts[i].From {
			if string(s) == src {
				return &ts[i]
			}
		}
	}
	return nil
}

func eventData(e *lfsm.Event) interface{} {
	if len(e.Args) > 0 {
		return e.Args[0]
	}
	return nil
}

func (l *loopFSM) guardCallback(ts []Transition) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		t := matching(ts, e.Src)
		if t == nil || t.Condition == nil {
			return
		}
		if !t.Condition(ctx, t.Event, eventData(e)) {
			l.logger.Debug("Guard rejected transition.", "event", t.Event, "from", e.Src)
			e.Cancel(errors.Newf("guard condition for event '%s' from state '%s' failed", t.Event, e.Src))
		}
	}
}

func (l *loopFSM) actionCallback(ts []Transition) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		t := matching(ts, e.Src)
		if t == nil || t.Action == nil {
			return
		}
		if err := t.Action(ctx, t.Event, eventData(e)); err != nil {
			l.logger.Error("Transition action failed.", "event", t.Event, "from", e.Src, "to", e.Dst, "error", err)
		}
	}
}

// CurrentState returns the current state, or "" before a successful Build.
func (l *loopFSM) CurrentState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return ""
	}
	return State(l.fsm.Current())
}

// Is reports whether the machine is in state.
func (l *loopFSM) Is(state State) bool {
	return l.CurrentState() == state
}

// CanTransition reports whether event is defined for the current state.
func (l *loopFSM) CanTransition(event Event) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return false
	}
	return l.fsm.Can(string(event))
}

// Transition fires event. looplab/fsm error types (InvalidEventError, CanceledError, ...)
// stay reachable through errors.As.
func (l *loopFSM) Transition(ctx context.Context, event Event, data interface{}) error {
	l.mu.RLock()
	machine := l.fsm
	buildErr := l.buildErr
	l.mu.RUnlock()
	if machine == nil {
		if buildErr != nil {
			return buildErr
		}
		return errors.New("fsm: Transition called before Build")
	}

	from := machine.Current()
	var args []interface{}
	if data != nil {
		args = append(args, data)
	}
	if err := machine.Event(ctx, string(event), args...); err != nil {
		l.logger.Debug("Transition failed.", "event", event, "from", from, "error", err)
		return errors.Wrapf(err, "event '%s' from state '%s'", event, from)
	}
	l.logger.Debug("Transition successful.", "event", event, "from", from, "to", machine.Current())
	return nil
}

// SetState forces the current state without running guards or actions.
func (l *loopFSM) SetState(state State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fsm == nil {
		if l.buildErr != nil {
			return l.buildErr
		}
		return errors.New("fsm: SetState called before Build")
	}
	l.fsm.SetState(string(state))
	return nil
}

// Reset returns the machine to its initial state.
func (l *loopFSM) Reset() error {
	return l.SetState(l.initialState)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
