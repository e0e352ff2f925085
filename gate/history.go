package gate

import "time"

// DownEvent records a single Down call on a Countdown for postmortem
// diagnostics, whether or not it caused the gate to fire.
type DownEvent struct {
	// Cause is the caller-supplied reason for the trigger.
	Cause string
	// At is when the Down call was recorded.
	At time.Time
	// Remaining is the trigger count left after this call was applied.
	Remaining int
}

// downHistory is a fixed-capacity ring of DownEvents. Keeping the window
// bounded means a long-lived gate under trigger spam cannot grow without
// limit; the most recent events win.
type downHistory struct {
	buf  []DownEvent
	next int
	size int
}

func newDownHistory(capacity int) *downHistory {
	return &downHistory{buf: make([]DownEvent, capacity)}
}

func (h *downHistory) add(e DownEvent) {
	if len(h.buf) == 0 {
		return
	}
	h.buf[h.next] = e
	h.next = (h.next + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// events returns the recorded events, oldest first.
func (h *downHistory) events() []DownEvent {
	out := make([]DownEvent, 0, h.size)
	start := h.next - h.size
	if start < 0 {
		start += len(h.buf)
	}
	for i := 0; i < h.size; i++ {
		out = append(out, h.buf[(start+i)%len(h.buf)])
	}
	return out
}
