package dispatch

import "sync"

var (
	mainMu    sync.RWMutex
	mainQueue Queue
)

// SetMain installs the process-wide main queue. Hosts call this once during
// startup, before any orchestrator is constructed. There is no implicit
// default: components take a Queue by injection and only fall back to Main
// when the host wires them that way.
func SetMain(q Queue) {
	mainMu.Lock()
	defer mainMu.Unlock()
	mainQueue = q
}

// Main returns the process-wide main queue, or nil if SetMain was never
// called.
func Main() Queue {
	mainMu.RLock()
	defer mainMu.RUnlock()
	return mainQueue
}
