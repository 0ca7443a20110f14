package testutil

import (
	"sync"
	"time"
)

// StartBarrier lets a test prove that n goroutines were running at the same
// time: each one calls Arrive, and Arrive only reports success once all n
// have arrived.
type StartBarrier struct {
	n       int
	mu      sync.Mutex
	arrived int
	all     chan struct{}
}

// NewStartBarrier creates a barrier for n participants.
func NewStartBarrier(n int) *StartBarrier {
	return &StartBarrier{n: n, all: make(chan struct{})}
}

// Arrive registers the caller and waits up to timeout for the remaining
// participants. It returns false if the timeout expired first.
func (b *StartBarrier) Arrive(timeout time.Duration) bool {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.n {
		close(b.all)
	}
	b.mu.Unlock()

	select {
	case <-b.all:
		return true
	case <-time.After(timeout):
		return false
	}
}
