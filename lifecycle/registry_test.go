package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddResolveRemove(t *testing.T) {
	reg := NewRegistry()
	owner := newFakeOwner(StateCreated, nil)

	h := reg.Add(owner)
	got, ok := h.Resolve()
	require.True(t, ok)
	assert.Same(t, owner, got)

	reg.Remove(h)
	_, ok = h.Resolve()
	assert.False(t, ok)

	// Removing twice is harmless.
	reg.Remove(h)
}

func TestRegistry_HandlesAreIndependent(t *testing.T) {
	reg := NewRegistry()
	first := reg.Add(newFakeOwner(StateCreated, nil))
	second := reg.Add(newFakeOwner(StateCreated, nil))

	reg.Remove(first)

	_, ok := first.Resolve()
	assert.False(t, ok)
	_, ok = second.Resolve()
	assert.True(t, ok)
}

func TestRegistry_ForeignAndZeroHandles(t *testing.T) {
	reg := NewRegistry()
	other := NewRegistry()
	h := other.Add(newFakeOwner(StateCreated, nil))

	// A handle from another registry must not disturb this one.
	reg.Remove(h)
	_, ok := h.Resolve()
	assert.True(t, ok)

	_, ok = Handle{}.Resolve()
	assert.False(t, ok)
}
