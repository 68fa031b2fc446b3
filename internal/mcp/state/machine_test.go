package state

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConnectedMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := NewMachine(nil)
	require.NoError(t, err)
	require.NoError(t, m.Fire(context.Background(), EventConnect, nil))
	return m
}

// TestMachine_Lifecycle_HappyPath walks connect, serve and close.
func TestMachine_Lifecycle_HappyPath(t *testing.T) {
	m, err := NewMachine(nil)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, StateUninitialized, m.CurrentState())
	require.NoError(t, m.Fire(ctx, EventConnect, nil))
	assert.Equal(t, StateConnected, m.CurrentState())
	require.NoError(t, m.Fire(ctx, EventServe, nil))
	assert.Equal(t, StateServing, m.CurrentState())
	require.NoError(t, m.Fire(ctx, EventClose, nil))
	assert.True(t, IsTerminal(m.CurrentState()))
}

// TestMachine_Fail_FromAnyNonTerminalState checks fail always reaches Closed.
func TestMachine_Fail_FromAnyNonTerminalState(t *testing.T) {
	m, err := NewMachine(nil)
	require.NoError(t, err)
	m.Fail(context.Background(), errors.New("connect failed"))
	assert.Equal(t, StateClosed, m.CurrentState())

	m = newConnectedMachine(t)
	require.NoError(t, m.Fire(context.Background(), EventServe, nil))
	m.Fail(context.Background(), errors.New("broken pipe"))
	assert.Equal(t, StateClosed, m.CurrentState())

	m.Fail(context.Background(), errors.New("again"))
	assert.Equal(t, StateClosed, m.CurrentState(), "Fail on a closed machine is a no-op.")
}

// TestMachine_ServeBeforeConnect_Refused checks the order of events is enforced.
func TestMachine_ServeBeforeConnect_Refused(t *testing.T) {
	m, err := NewMachine(nil)
	require.NoError(t, err)
	assert.Error(t, m.Fire(context.Background(), EventServe, nil))
	assert.Equal(t, StateUninitialized, m.CurrentState())
}

// TestMachine_ValidateMethod covers the sequencing rules.
func TestMachine_ValidateMethod(t *testing.T) {
	m := newConnectedMachine(t)

	assert.NoError(t, m.ValidateMethod("initialize"))
	assert.NoError(t, m.ValidateMethod("ping"))

	err := m.ValidateMethod("prompts/list")
	require.Error(t, err)
	var pe *mcperrors.ProtocolError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, mcperrors.ErrRequestSequence, pe.Code)
	assert.Contains(t, pe.Message, "before initialization")
	assert.Equal(t, "prompts/list", pe.Context["method"])

	require.NoError(t, m.Fire(context.Background(), EventServe, nil))
	assert.NoError(t, m.ValidateMethod("prompts/list"))
	assert.NoError(t, m.ValidateMethod("notifications/initialized"))
	assert.NoError(t, m.ValidateMethod("ping"))
	assert.Error(t, m.ValidateMethod("initialize"), "A second initialize is out of sequence.")

	require.NoError(t, m.Fire(context.Background(), EventClose, nil))
	assert.Error(t, m.ValidateMethod("ping"))
	assert.Error(t, m.ValidateMethod("prompts/list"))
}
