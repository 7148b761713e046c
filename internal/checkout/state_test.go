package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMachineStartsEditing(t *testing.T) {
	m := NewMachine()
	require.Equal(t, StateEditing, m.Current())
	require.False(t, m.InFlight())

	var zero Machine
	require.Equal(t, StateEditing, zero.Current())
}

func TestMachineHappyPath(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Transition(StateLocating))
	require.NoError(t, m.Transition(StateSubmitting))
	require.True(t, m.InFlight())
	require.NoError(t, m.Transition(StateSucceeded))
	require.False(t, m.InFlight())
}

func TestMachineRejectsDoubleSubmit(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Transition(StateSubmitting))
	require.Error(t, m.Transition(StateSubmitting))
}

func TestMachineFailureAllowsRetry(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Transition(StateSubmitting))
	require.NoError(t, m.Transition(StateFailed))
	require.NoError(t, m.Transition(StateSubmitting))
}

func TestMachineSucceededIsTerminal(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Transition(StateSubmitting))
	require.NoError(t, m.Transition(StateSucceeded))
	require.Error(t, m.Transition(StateEditing))
	require.Error(t, m.Transition(StateSubmitting))
}
