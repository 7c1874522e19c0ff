package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectStateMachine(t *testing.T) {
	sm := NewProjectStateMachine()

	assert.True(t, sm.CanTransition("Draft", "Active"))
	assert.True(t, sm.CanTransition("Active", "Funded"))
	assert.True(t, sm.CanTransition("Funded", "Archived"))
	assert.False(t, sm.CanTransition("Active", "Draft"))
	assert.False(t, sm.CanTransition("Funded", "Active"))
	assert.False(t, sm.CanTransition("Unknown", "Active"))
	assert.True(t, sm.IsTerminal("Archived"))
}

func TestReproducibilityStateMachineNeverReverts(t *testing.T) {
	sm := NewReproducibilityStateMachine()

	assert.True(t, sm.CanTransition("Waiting", "Success"))
	assert.True(t, sm.CanTransition("Waiting", "Disputed"))
	for _, resolved := range []string{"Success", "Disputed"} {
		assert.True(t, sm.IsTerminal(resolved))
		assert.False(t, sm.CanTransition(resolved, "Waiting"))
	}
	assert.Empty(t, sm.GetAllowedTransitions("Missing"))
}
