package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_AtLeast(t *testing.T) {
	assert.True(t, StateResumed.AtLeast(StateResumed))
	assert.True(t, StateResumed.AtLeast(StateCreated))
	assert.False(t, StateStarted.AtLeast(StateResumed))
	assert.False(t, StateDestroyed.AtLeast(StateCreated))
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDestroyed, "destroyed"},
		{StateInitialized, "initialized"},
		{StateCreated, "created"},
		{StateStarted, "started"},
		{StateResumed, "resumed"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}
