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

package fairrw

import "runtime"

// AcquireWrite blocks until w is granted exclusive ownership of the queue.
// w must be freshly created or previously released, and must not be reused
// by another goroutine until the matching ReleaseWrite returns.
func (q *FairRWQueue) AcquireWrite(w *Waiter) {
	w.setMode(modeWriter)
	w.spin.Store(1)
	w.next.Store(nil)

	pred := q.tail.Swap(w)
	w.state.Store(uint32(StateEnqueued))
	if pred == nil {
		// Nobody ahead of us: the lock is ours.
		w.state.Store(uint32(StateHoldingWrite))
		q.stats.writeAcquires.Add(1)
		return
	}

	w.state.Store(uint32(StateWaiting))
	pred.next.Store(w)
	for w.spin.Load() != 0 {
		runtime.Gosched()
	}
	w.state.Store(uint32(StateHoldingWrite))
	q.stats.writeAcquires.Add(1)
}

// ReleaseWrite releases the exclusive lock held by w. It must be called by
// the same goroutine that called AcquireWrite(w) and is currently holding
// the lock.
//
// Writers never take a Waiter's unlinkMu: there is at most one writer
// active at a time, and its successor - whatever mode it is in - cannot yet
// be mid-unlink, because it has not yet been granted the lock.
func (q *FairRWQueue) ReleaseWrite(w *Waiter) {
	if w.next.Load() == nil && q.tail.CompareAndSwap(w, nil) {
		// Queue emptied behind us.
		w.state.Store(uint32(StateReleased))
		q.stats.writeReleases.Add(1)
		return
	}

	// A successor has arrived, or is in the middle of tail.Swap and is
	// about to link itself to us: wait for that link to land.
	for w.next.Load() == nil {
		runtime.Gosched()
	}

	next := w.next.Load()
	next.prev.Store(nil)
	next.spin.Store(0)

	w.state.Store(uint32(StateReleased))
	q.stats.writeReleases.Add(1)
}

// AcquireRead blocks until w is granted shared ownership of the queue. w
// must be freshly created or previously released, and must not be reused by
// another goroutine until the matching ReleaseRead returns.
func (q *FairRWQueue) AcquireRead(w *Waiter) {
	w.setMode(modeReaderPending)
	w.spin.Store(1)
	w.next.Store(nil)
	w.prev.Store(nil)

	pred := q.tail.Swap(w)
	w.state.Store(uint32(StateEnqueued))
	if pred != nil {
		w.prev.Store(pred)
		pred.next.Store(w)
		if pred.mode() != modeReaderActive {
			w.state.Store(uint32(StateWaiting))
			for w.spin.Load() != 0 {
				runtime.Gosched()
			}
		}
		// If pred was already an active reader, we may proceed
		// concurrently with it; pred's own AcquireRead already woke
		// us (or will, in the activation cascade below), which is
		// why we don't spin in that case.
	}

	// Activation cascade: if a reader has already queued behind us,
	// wake it now rather than waiting for it to discover we went
	// active on its own. This is what lets a burst of readers queued
	// behind a writer all become active in bounded steps once the
	// writer releases.
	if next := w.next.Load(); next != nil && next.mode() == modeReaderPending {
		next.spin.Store(0)
	}

	w.setMode(modeReaderActive)
	w.state.Store(uint32(StateHoldingRead))
	q.stats.readAcquires.Add(1)
	q.stats.activeReaders.Add(1)
}

// ReleaseRead releases the shared lock held by w. It must be called by the
// same goroutine that called AcquireRead(w) and is currently holding the
// lock.
//
// This is the intricate path: a departing reader must detach itself from a
// doubly linked list whose predecessor (if any) may also be a reader
// departing concurrently, whose successor (if any) may be in any mode, and
// while further arrivals may still be tail-exchanging in behind it.
func (q *FairRWQueue) ReleaseRead(w *Waiter) {
	q.stats.activeReaders.Add(-1)

	prev := w.prev.Load()
	if prev != nil {
		q.releaseReadWithPredecessor(w, prev)
		return
	}
	q.releaseReadAsHead(w)
}

// releaseReadWithPredecessor implements Case A of ReleaseRead: w has (or
// had) a predecessor at entry.
func (q *FairRWQueue) releaseReadWithPredecessor(w, prev *Waiter) {
	prev.unlinkMu.Lock()

	// The predecessor we locked may have since vanished (it finished
	// its own release and either handed the head forward, nulling our
	// prev, or was itself spliced out by a still-earlier predecessor).
	// Re-validate under the lock we hold, and retry against whatever
	// predecessor is current; each retry consumes a predecessor that
	// has since departed for good, so this terminates.
	for w.prev.Load() != prev {
		prev.unlinkMu.Unlock()
		prev = w.prev.Load()
		if prev == nil {
			q.releaseReadAsHead(w)
			return
		}
		prev.unlinkMu.Lock()
	}

	w.unlinkMu.Lock()
	prev.next.Store(nil)

	if w.next.Load() == nil && q.tail.CompareAndSwap(w, prev) {
		// The queue now ends at prev; nothing further to splice.
		w.unlinkMu.Unlock()
		prev.unlinkMu.Unlock()
		w.state.Store(uint32(StateReleased))
		q.stats.readReleases.Add(1)
		return
	}

	// A successor exists, or is about to be linked by a concurrent
	// tail.Swap that has already linearised after us: a failed
	// CompareAndSwap here means tail != w, which can only happen
	// because some arrival's Swap landed after w was published as the
	// tail predecessor, and that arrival must go on to set w.next. So
	// it is always safe to wait for it rather than re-examine tail.
	// Do not restructure this into a retry against tail: the spin on
	// w.next is the whole of the guarantee.
	for w.next.Load() == nil {
		runtime.Gosched()
	}
	next := w.next.Load()
	next.prev.Store(prev)
	prev.next.Store(next)

	w.unlinkMu.Unlock()
	prev.unlinkMu.Unlock()
	w.state.Store(uint32(StateReleased))
	q.stats.readReleases.Add(1)
}

// releaseReadAsHead implements Case B of ReleaseRead: w is the head of the
// queue, either because it had no predecessor at entry or because its
// predecessor vanished out from under it.
func (q *FairRWQueue) releaseReadAsHead(w *Waiter) {
	w.unlinkMu.Lock()

	if w.next.Load() == nil && q.tail.CompareAndSwap(w, nil) {
		w.unlinkMu.Unlock()
		w.state.Store(uint32(StateReleased))
		q.stats.readReleases.Add(1)
		return
	}

	for w.next.Load() == nil {
		runtime.Gosched()
	}
	next := w.next.Load()
	next.spin.Store(0)
	next.prev.Store(nil)

	w.unlinkMu.Unlock()
	w.state.Store(uint32(StateReleased))
	q.stats.readReleases.Add(1)
}
