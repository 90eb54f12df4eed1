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

import "sync/atomic"

// stats holds the lock's contention counters. Every field is an atomic
// added to from the hot path, so contributing to it costs one interlocked
// add and nothing else; it does not change the wait-free/lock-free
// progress bounds of the acquire/release protocol.
type stats struct {
	writeAcquires atomic.Uint64
	readAcquires  atomic.Uint64
	writeReleases atomic.Uint64
	readReleases  atomic.Uint64

	// activeReaders is a best-effort count of readers currently between
	// AcquireRead returning and ReleaseRead being called. It is
	// intentionally not used by the protocol itself: a caller reading
	// it concurrently with other goroutines' acquires/releases will
	// generally observe a value that was momentarily true, not a value
	// guaranteed to still be true by the time it's read.
	activeReaders atomic.Int64
}

// QueueStats is a point-in-time, best-effort snapshot of a FairRWQueue's
// contention counters. It is intended for monitoring and debugging, not for
// making correctness decisions: none of its fields are read atomically with
// respect to one another.
type QueueStats struct {
	WriteAcquires uint64
	ReadAcquires  uint64
	WriteReleases uint64
	ReadReleases  uint64
	ActiveReaders int64
}

// Stats returns a snapshot of q's contention counters. See QueueStats for
// the caveats on what "snapshot" means here.
func (q *FairRWQueue) Stats() QueueStats {
	return QueueStats{
		WriteAcquires: q.stats.writeAcquires.Load(),
		ReadAcquires:  q.stats.readAcquires.Load(),
		WriteReleases: q.stats.writeReleases.Load(),
		ReadReleases:  q.stats.readReleases.Load(),
		ActiveReaders: q.stats.activeReaders.Load(),
	}
}
