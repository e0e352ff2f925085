package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/lazylifecycle/dispatch"
)

// fakeTickSource is a manually driven observable target.
type fakeTickSource struct {
	mu        sync.Mutex
	listeners []TickListener
}

func (s *fakeTickSource) AddTickListener(l TickListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *fakeTickSource) RemoveTickListener(l TickListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, candidate := range s.listeners {
		if candidate == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *fakeTickSource) Tick() {
	s.mu.Lock()
	listeners := append([]TickListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l.OnTick()
	}
}

func (s *fakeTickSource) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// fakeOwner implements Participant and records its callback sequence.
type fakeOwner struct {
	enabled bool
	state   atomic.Int32
	source  TickSource

	mu    sync.Mutex
	calls []string
}

func newFakeOwner(state State, source TickSource) *fakeOwner {
	o := &fakeOwner{enabled: true, source: source}
	o.state.Store(int32(state))
	return o
}

func (o *fakeOwner) LazyLifecycleEnabled() bool { return o.enabled }
func (o *fakeOwner) LifecycleState() State      { return State(o.state.Load()) }
func (o *fakeOwner) TickSource() TickSource     { return o.source }
func (o *fakeOwner) LazyCreate()                { o.record("create") }
func (o *fakeOwner) LazyStart()                 { o.record("start") }
func (o *fakeOwner) LazyResume()                { o.record("resume") }

func (o *fakeOwner) setState(s State) { o.state.Store(int32(s)) }

func (o *fakeOwner) record(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, name)
}

func (o *fakeOwner) sequence() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.calls...)
}

// fakeViewOwner adds the view-ready callback family.
type fakeViewOwner struct {
	*fakeOwner
	viewAvailable bool
}

func (o *fakeViewOwner) ViewAvailable() bool { return o.viewAvailable }
func (o *fakeViewOwner) LazyViewReady()      { o.record("view_ready") }

// harness bundles the pieces every orchestrator test needs.
type harness struct {
	ctx   context.Context
	queue *dispatch.Serial
	reg   *Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	queue := dispatch.NewSerial()
	queue.Start(ctx)
	return &harness{ctx: ctx, queue: queue, reg: NewRegistry()}
}

func (h *harness) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, h.queue.Flush(h.ctx))
}

func TestNewOrchestrator_Validation(t *testing.T) {
	queue := dispatch.NewSerial()

	tests := []struct {
		name  string
		queue dispatch.Queue
		opts  []Option
	}{
		{name: "nil queue", queue: nil},
		{name: "zero tick count", queue: queue, opts: []Option{WithTickCount(0)}},
		{name: "negative deadline", queue: queue, opts: []Option{WithDeadline(-time.Second)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOrchestrator(tt.queue, tt.opts...)
			require.ErrorIs(t, err, ErrMisconfigured)
			assert.Nil(t, o)
		})
	}
}

func TestOrchestrator_ConditionPath(t *testing.T) {
	h := newHarness(t)
	source := &fakeTickSource{}
	owner := newFakeOwner(StateResumed, source)
	handle := h.reg.Add(owner)

	o, err := NewOrchestrator(h.queue, WithTickCount(2))
	require.NoError(t, err)
	require.NoError(t, o.Activate(handle))
	require.True(t, o.Active())
	require.Equal(t, 1, source.Count())

	source.Tick()
	assert.True(t, o.Active(), "one tick must not fire a two-tick gate")

	source.Tick()
	h.flush(t)

	assert.Equal(t, []string{"create", "start", "resume"}, owner.sequence())
	assert.False(t, o.Active())
	assert.Equal(t, 0, source.Count(), "listener must be removed after fire")
}

func TestOrchestrator_DeadlinePath(t *testing.T) {
	h := newHarness(t)
	source := &fakeTickSource{}
	owner := newFakeOwner(StateResumed, source)
	handle := h.reg.Add(owner)

	o, err := NewOrchestrator(h.queue, WithTickCount(2), WithDeadline(40*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, o.Activate(handle))

	// No ticks at all: the deadline must win and run the same sequence.
	require.Eventually(t, func() bool {
		return len(owner.sequence()) == 3
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"create", "start", "resume"}, owner.sequence())
	assert.False(t, o.Active())
	assert.Equal(t, 0, source.Count())
}

func TestOrchestrator_ActivateWhileActiveIsNoOp(t *testing.T) {
	h := newHarness(t)
	source := &fakeTickSource{}
	owner := newFakeOwner(StateResumed, source)
	handle := h.reg.Add(owner)

	o, err := NewOrchestrator(h.queue, WithTickCount(2))
	require.NoError(t, err)
	require.NoError(t, o.Activate(handle))
	require.NoError(t, o.Activate(handle))

	assert.Equal(t, 1, source.Count(), "double activate must register one listener")

	source.Tick()
	source.Tick()
	source.Tick()
	h.flush(t)

	assert.Equal(t, []string{"create", "start", "resume"}, owner.sequence())
}

func TestOrchestrator_UnsupportedOwnerFailsFast(t *testing.T) {
	h := newHarness(t)
	handle := h.reg.Add("not a participant")

	o, err := NewOrchestrator(h.queue)
	require.NoError(t, err)

	assert.ErrorIs(t, o.Activate(handle), ErrUnsupportedOwner)
	assert.False(t, o.Active())
}

func TestOrchestrator_IneligibleOwnersDegradeSilently(t *testing.T) {
	h := newHarness(t)

	declined := newFakeOwner(StateResumed, &fakeTickSource{})
	declined.enabled = false
	noSource := newFakeOwner(StateResumed, nil)

	unregistered := newFakeOwner(StateResumed, &fakeTickSource{})
	gone := h.reg.Add(unregistered)
	h.reg.Remove(gone)

	tests := []struct {
		name   string
		handle Handle
	}{
		{name: "participation flag false", handle: h.reg.Add(declined)},
		{name: "no tick source", handle: h.reg.Add(noSource)},
		{name: "owner no longer registered", handle: gone},
		{name: "zero handle", handle: Handle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOrchestrator(h.queue)
			require.NoError(t, err)
			assert.NoError(t, o.Activate(tt.handle))
			assert.False(t, o.Active())
		})
	}
}

func TestOrchestrator_StateGatesCondition(t *testing.T) {
	h := newHarness(t)
	source := &fakeTickSource{}
	owner := newFakeOwner(StateStarted, source)
	handle := h.reg.Add(owner)

	o, err := NewOrchestrator(h.queue, WithTickCount(2))
	require.NoError(t, err)
	require.NoError(t, o.Activate(handle))

	// Plenty of ticks, but the owner never reached resumed.
	for i := 0; i < 5; i++ {
		source.Tick()
	}
	h.flush(t)
	assert.True(t, o.Active())
	assert.Empty(t, owner.sequence())

	owner.setState(StateResumed)
	source.Tick()
	h.flush(t)
	assert.Equal(t, []string{"create", "start", "resume"}, owner.sequence())
}

func TestOrchestrator_CreateGuardResetOnIneligibleDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The queue stays stopped until after the gate fires, so eligibility can
	// be revoked between fire and dispatch.
	queue := dispatch.NewSerial()
	reg := NewRegistry()
	source := &fakeTickSource{}
	owner := newFakeOwner(StateResumed, source)
	handle := reg.Add(owner)

	o, err := NewOrchestrator(queue, WithTickCount(1))
	require.NoError(t, err)
	require.NoError(t, o.Activate(handle))
	source.Tick()
	require.False(t, o.Active())

	owner.setState(StateDestroyed)
	queue.Start(ctx)
	require.NoError(t, queue.Flush(ctx))
	assert.Empty(t, owner.sequence(), "no callback may touch a destroyed owner")

	// A fresh explicit cycle is the only retry path, and create runs again
	// because the guard was reset on the skipped dispatch.
	owner.setState(StateResumed)
	require.NoError(t, o.Activate(handle))
	source.Tick()
	require.NoError(t, queue.Flush(ctx))
	assert.Equal(t, []string{"create", "start", "resume"}, owner.sequence())
}

func TestOrchestrator_CreateRunsOncePerInstance(t *testing.T) {
	h := newHarness(t)
	source := &fakeTickSource{}
	owner := newFakeOwner(StateResumed, source)
	handle := h.reg.Add(owner)

	o, err := NewOrchestrator(h.queue, WithTickCount(1))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, o.Activate(handle))
		source.Tick()
		h.flush(t)
	}

	// Start and resume run every cycle; create only on the first.
	assert.Equal(t, []string{"create", "start", "resume", "start", "resume"}, owner.sequence())
}

func TestOrchestrator_ViewParticipant(t *testing.T) {
	h := newHarness(t)
	source := &fakeTickSource{}
	owner := &fakeViewOwner{fakeOwner: newFakeOwner(StateResumed, source), viewAvailable: true}
	handle := h.reg.Add(owner)

	o, err := NewOrchestrator(h.queue, WithTickCount(1))
	require.NoError(t, err)
	require.NoError(t, o.Activate(handle))
	source.Tick()
	h.flush(t)

	assert.Equal(t, []string{"create", "view_ready", "start", "resume"}, owner.sequence())
}

func TestOrchestrator_ViewNotAvailableSkipsViewReady(t *testing.T) {
	h := newHarness(t)
	source := &fakeTickSource{}
	owner := &fakeViewOwner{fakeOwner: newFakeOwner(StateResumed, source), viewAvailable: false}
	handle := h.reg.Add(owner)

	o, err := NewOrchestrator(h.queue, WithTickCount(1))
	require.NoError(t, err)
	require.NoError(t, o.Activate(handle))
	source.Tick()
	h.flush(t)

	assert.Equal(t, []string{"create", "start", "resume"}, owner.sequence())
}

func TestOrchestrator_DeactivateIsNoOp(t *testing.T) {
	h := newHarness(t)
	source := &fakeTickSource{}
	owner := newFakeOwner(StateResumed, source)
	handle := h.reg.Add(owner)

	o, err := NewOrchestrator(h.queue, WithTickCount(1))
	require.NoError(t, err)
	require.NoError(t, o.Activate(handle))

	o.Deactivate(handle)
	assert.True(t, o.Active())

	source.Tick()
	h.flush(t)
	assert.Equal(t, []string{"create", "start", "resume"}, owner.sequence())
}
