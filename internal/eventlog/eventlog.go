// Package eventlog records and replays the sequence of enqueue/grant/release
// transitions an instrumented caller observes while driving a
// fairrw.FairRWQueue, so a test can reconstruct the queue's membership
// offline, in FIFO order of the recorded Enqueue events (Testable Property 5
// in SPEC_FULL.md). The replay sees only the recorded events: it does not
// observe any Waiter's next/prev pointers or the queue's tail, so it cannot
// compare the reconstruction against them.
//
// Nothing in package fairrw writes to a Log. Recording happens at the call
// site, in test code that wraps AcquireRead/AcquireWrite/ReleaseRead/
// ReleaseWrite, which keeps the production protocol free of logging
// overhead.
package eventlog

import (
	"fmt"
	"sync"
)

// Kind identifies what a recorded Event represents.
type Kind int

const (
	Enqueue Kind = iota
	Grant
	Release
)

func (k Kind) String() string {
	switch k {
	case Enqueue:
		return "enqueue"
	case Grant:
		return "grant"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// Event is one recorded transition of a waiter, identified by a
// caller-assigned ID (typically a goroutine or iteration index formatted as
// a string), stamped with a monotonically increasing sequence number.
type Event struct {
	Seq  int64
	Kind Kind
	ID   string
}

// Log is an in-memory, goroutine-safe recorder of Events.
type Log struct {
	mu      sync.Mutex
	nextSeq int64
	events  []Event
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Record appends an Event, stamped with the log's next sequence number, to
// the log and returns it.
func (l *Log) Record(kind Kind, id string) Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	ev := Event{Seq: l.nextSeq, Kind: kind, ID: id}
	l.nextSeq++
	l.events = append(l.events, ev)
	return ev
}

// Events returns a copy of the events recorded so far, in recording order.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Snapshot is the queue's reconstructed membership immediately after one
// recorded Event, head (index 0) to tail (last index).
type Snapshot struct {
	Event Event
	Queue []string
}

// Result is the outcome of replaying a Log.
type Result struct {
	Snapshots []Snapshot
}

// FinalQueue returns the queue membership after the last replayed event, or
// nil if no events were replayed.
func (r *Result) FinalQueue() []string {
	if len(r.Snapshots) == 0 {
		return nil
	}
	return r.Snapshots[len(r.Snapshots)-1].Queue
}

// Replay single-threadedly reconstructs FIFO queue membership from a
// recorded sequence of Enqueue/Grant/Release events and returns a Snapshot
// per event. It trusts that every recorded Enqueue for a given ID precedes
// any Grant or Release naming that ID, and that no ID is enqueued twice
// without an intervening release; violating either is reported as an
// error rather than silently misreconstructed, since either would mean the
// instrumentation, not the queue, lost an event.
func Replay(events []Event) (*Result, error) {
	var queue []string
	present := make(map[string]bool, len(events))
	res := &Result{Snapshots: make([]Snapshot, 0, len(events))}

	for _, ev := range events {
		switch ev.Kind {
		case Enqueue:
			if present[ev.ID] {
				return nil, fmt.Errorf("eventlog: replay: %q enqueued while already present in queue", ev.ID)
			}
			queue = append(queue, ev.ID)
			present[ev.ID] = true
		case Grant:
			if !present[ev.ID] {
				return nil, fmt.Errorf("eventlog: replay: %q granted without a matching enqueue", ev.ID)
			}
		case Release:
			if !present[ev.ID] {
				return nil, fmt.Errorf("eventlog: replay: %q released without a matching enqueue", ev.ID)
			}
			queue = removeID(queue, ev.ID)
			delete(present, ev.ID)
		default:
			return nil, fmt.Errorf("eventlog: replay: unknown event kind %d for %q", ev.Kind, ev.ID)
		}

		res.Snapshots = append(res.Snapshots, Snapshot{
			Event: ev,
			Queue: append([]string(nil), queue...),
		})
	}

	return res, nil
}

func removeID(queue []string, id string) []string {
	for i, q := range queue {
		if q == id {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}
