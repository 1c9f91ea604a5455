package transfer

import (
	"errors"
	"sync"
)

// ErrCancelled is returned by Wait when done fires before this
// generation's last party arrives: a sibling failed mid-tick and will
// never call Wait, so this party would otherwise block forever (§7:
// "errors detected mid-run on any worker abort globally").
var ErrCancelled = errors.New("transfer: barrier wait cancelled")

// Barrier is a reusable collective synchronization point for exactly
// parties goroutines: every tick, each worker calls Wait once per
// phase boundary, and none proceeds until all have arrived (§4.5 "a
// synchronous collective operation... no worker may begin step 2 until
// every worker has completed its transfers for the tick").
//
// The generation-channel pattern mirrors the teacher's use of a
// buffered channel as a semaphore (websock.readSem/writeSem in
// server/fastview/client.go): arrival and release are both plain
// channel operations, not a condition variable.
type Barrier struct {
	mu        sync.Mutex
	parties   int
	waiting   int
	release   chan struct{}
}

// NewBarrier returns a Barrier for the given number of parties.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		parties = 1
	}
	return &Barrier{parties: parties, release: make(chan struct{})}
}

// Wait blocks until all parties have called Wait for the current
// generation, then returns for everyone at once. If done fires first —
// because a sibling party aborted and will never arrive — Wait returns
// ErrCancelled instead of blocking forever. done may be nil, in which
// case Wait never observes cancellation (used by tests that don't care).
func (b *Barrier) Wait(done <-chan struct{}) error {
	b.mu.Lock()
	gen := b.release
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.release = make(chan struct{})
		close(gen)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()
	select {
	case <-gen:
		return nil
	case <-done:
		return ErrCancelled
	}
}
