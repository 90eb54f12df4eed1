// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package fairrw implements a fair, scalable reader-writer lock as a queue of
// per-goroutine wait nodes linked through atomic operations.
//
// A classic sync.RWMutex admits an unbounded number of readers at any moment
// a writer isn't holding the lock, which means a steady trickle of readers can
// starve a waiting writer indefinitely. FairRWQueue instead grants the lock in
// strict FIFO order of arrival: a writer that arrives behind a run of readers
// will run only after every reader already queued ahead of it has finished,
// and no later reader can cut in front of that writer. Readers queued
// contiguously between two writers do, however, all become active
// concurrently, so the common case of many readers and few writers still
// gets real parallelism.
//
// ## Overview
//
// The lock is a single atomic pointer, tail, into a doubly linked list of
// Waiter nodes. Each caller supplies its own Waiter - there is no pool or
// allocator inside the package - and that Waiter must stay alive and
// goroutine-private from the start of an Acquire call until the matching
// Release call returns. Joining the queue is one atomic pointer swap
// (tail.Swap), so arrival cost does not grow with the number of waiters
// already queued.
//
// A Waiter's mode is one of three states: Writer, ReaderPending or
// ReaderActive. A waiting goroutine spins on its own Waiter.spin field - a
// cache-local cell, not a shared flag - until its predecessor (or, for
// readers, a chain of predecessors) clears it. This is what makes the lock
// scale: contended goroutines never spin on the same cache line.
//
// Releasing a write lock is cheap: at most one successor needs waking, and
// there is at most one writer active at a time, so no further
// synchronization with siblings is required. Releasing a read lock is the
// hard case, because a departing reader may need to unlink itself from the
// middle of the list while its neighbours are concurrently arriving or
// themselves departing; see queue.go for the protocol that makes that safe.
//
// The transition table below summarizes which operations may proceed
// immediately against the lock's current occupancy (anything else queues):
//
//	+----------------+----------+-----------+-----------+
//	|Request/Holding | Unlocked | Active(s) Readers     |  Active Writer
//	+----------------+----------+-----------+-----------+
//	|AcquireWrite    |   Yes    |    No      |    No     |
//	|AcquireRead     |   Yes    |    Yes     |    No     |
//	+----------------+----------+-----------+-----------+
//
// This package offers no try-lock, no timeout, no reentrancy and no
// upgrade/downgrade between read and write modes. A goroutine that already
// holds the lock must not acquire it again, and a Waiter must not be used by
// two concurrent acquisitions. These preconditions are the caller's
// responsibility and are not checked, in any build.
package fairrw

import "sync/atomic"

// mode tags what role a Waiter is playing in the queue. It is read by a
// neighbour while the neighbour decides whether it may skip spinning
// (AcquireRead) or whether it must propagate a wakeup (the activation
// cascade), so it is stored and loaded atomically even though, by protocol,
// at most one goroutine writes it at a time.
type mode uint32

const (
	modeWriter mode = iota
	modeReaderPending
	modeReaderActive
)

func (m mode) String() string {
	switch m {
	case modeWriter:
		return "writer"
	case modeReaderPending:
		return "reader-pending"
	case modeReaderActive:
		return "reader-active"
	default:
		return "unknown"
	}
}

// WaiterState is a diagnostic-only label for where a Waiter sits in its
// lifecycle. Nothing in the acquire/release protocol reads it; it exists so
// logging and tests have something human-readable to report. See DESIGN.md for why it is kept out
// of the hot path's correctness argument.
type WaiterState uint32

const (
	// StateCreated is the zero value: a Waiter that has never been
	// passed to an Acquire call.
	StateCreated WaiterState = iota
	// StateEnqueued is set immediately after the tail exchange, before
	// the caller has possibly started spinning.
	StateEnqueued
	// StateWaiting means the Waiter has a predecessor it is spinning
	// behind.
	StateWaiting
	// StateHoldingWrite means AcquireWrite has returned and the caller
	// owns exclusive access.
	StateHoldingWrite
	// StateHoldingRead means AcquireRead has returned and the caller
	// holds one of possibly several concurrent shared slots.
	StateHoldingRead
	// StateReleased is terminal: the matching Release call has
	// returned.
	StateReleased
)

func (s WaiterState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateEnqueued:
		return "enqueued"
	case StateWaiting:
		return "waiting"
	case StateHoldingWrite:
		return "holding-write"
	case StateHoldingRead:
		return "holding-read"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Waiter is a per-acquisition record: one is needed per outstanding
// AcquireRead/AcquireWrite call. Callers own the Waiter for the duration of
// a single acquire/release pair - the zero value is ready to use, and a
// released Waiter may be reused for a later acquire.
//
// A Waiter must not be copied after first use, and must not be passed to two
// concurrent acquire calls. Its address is what links it into the queue, so
// once Acquire has been called the Waiter must remain at a stable address
// until Release returns.
type Waiter struct {
	_ noCopy

	md    atomic.Uint32 // mode
	spin  atomic.Uint32 // 1 while the owner must wait, 0 once granted
	next  atomic.Pointer[Waiter]
	prev  atomic.Pointer[Waiter]
	state atomic.Uint32 // WaiterState, diagnostic only

	unlinkMu SpinMutex
}

// NewWaiter returns a freshly-initialised Waiter, ready to be passed to
// AcquireRead or AcquireWrite. Using new(Waiter) or a zero-valued Waiter
// field works identically; NewWaiter exists for symmetry with
// NewFairRWQueue and to give callers an obvious spelling.
func NewWaiter() *Waiter {
	return &Waiter{}
}

// State reports the Waiter's diagnostic lifecycle state. It is safe to call
// from any goroutine, but because the field it reads is owned by the
// protocol rather than guarded by a lock of its own, a concurrent call
// racing an Acquire/Release transition may observe either the old or the
// new state.
func (w *Waiter) State() WaiterState {
	return WaiterState(w.state.Load())
}

func (w *Waiter) mode() mode {
	return mode(w.md.Load())
}

func (w *Waiter) setMode(m mode) {
	w.md.Store(uint32(m))
}

// noCopy causes `go vet` to flag accidental copies of a Waiter. See
// sync.noCopy in the standard library for the same trick.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// FairRWQueue is a fair, FIFO reader-writer lock. The zero value is an
// empty queue, ready to use; NewFairRWQueue exists for symmetry with
// NewWaiter and to give callers an obvious spelling.
type FairRWQueue struct {
	tail atomic.Pointer[Waiter]

	stats stats
}

// NewFairRWQueue returns an empty FairRWQueue.
func NewFairRWQueue() *FairRWQueue {
	return &FairRWQueue{}
}
