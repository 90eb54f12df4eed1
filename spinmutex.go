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

import (
	"runtime"
	"sync/atomic"
)

// SpinMutex is a minimal test-and-set spin lock. It has no fairness and no
// reentrancy, and is only ever held for the handful of pointer fixups that
// make up a reader's unlink step in ReleaseRead, so unbounded spinning is an
// acceptable cost in exchange for never parking the goroutine. Each failed
// attempt yields the processor with runtime.Gosched.
//
// The zero value is an unlocked SpinMutex.
type SpinMutex struct {
	_      noCopy
	locked atomic.Bool
}

// Lock spins until the lock is free, then acquires it.
func (s *SpinMutex) Lock() {
	for !s.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// Unlock releases the lock. It is a caller error to call Unlock on a
// SpinMutex that isn't held; like sync.Mutex, this is not checked.
func (s *SpinMutex) Unlock() {
	s.locked.Store(false)
}
