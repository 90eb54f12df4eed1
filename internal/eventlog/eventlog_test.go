package eventlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordAssignsMonotonicSeq(t *testing.T) {
	lg := New()
	a := lg.Record(Enqueue, "x")
	b := lg.Record(Grant, "x")
	c := lg.Record(Release, "x")

	require.Less(t, a.Seq, b.Seq)
	require.Less(t, b.Seq, c.Seq)
}

func TestReplaySimpleLifecycle(t *testing.T) {
	lg := New()
	lg.Record(Enqueue, "a")
	lg.Record(Enqueue, "b")
	lg.Record(Grant, "a")
	lg.Record(Release, "a")
	lg.Record(Grant, "b")
	lg.Record(Release, "b")

	result, err := Replay(lg.Events())
	require.NoError(t, err)
	require.Len(t, result.Snapshots, 6)
	require.Equal(t, []string{"a"}, result.Snapshots[0].Queue)
	require.Equal(t, []string{"a", "b"}, result.Snapshots[1].Queue)
	require.Equal(t, []string{"b"}, result.Snapshots[3].Queue)
	require.Empty(t, result.FinalQueue())
}

func TestReplayDetectsDoubleEnqueue(t *testing.T) {
	events := []Event{
		{Seq: 0, Kind: Enqueue, ID: "a"},
		{Seq: 1, Kind: Enqueue, ID: "a"},
	}
	_, err := Replay(events)
	require.Error(t, err)
}

func TestReplayDetectsReleaseWithoutEnqueue(t *testing.T) {
	events := []Event{
		{Seq: 0, Kind: Release, ID: "a"},
	}
	_, err := Replay(events)
	require.Error(t, err)
}

func TestReplayDetectsGrantWithoutEnqueue(t *testing.T) {
	events := []Event{
		{Seq: 0, Kind: Grant, ID: "a"},
	}
	_, err := Replay(events)
	require.Error(t, err)
}

func TestReplayPreservesFIFOOrderAcrossOverlappingLifetimes(t *testing.T) {
	lg := New()
	lg.Record(Enqueue, "a")
	lg.Record(Enqueue, "b")
	lg.Record(Enqueue, "c")
	lg.Record(Release, "b") // readers may release out of FIFO order
	lg.Record(Release, "a")
	lg.Record(Release, "c")

	result, err := Replay(lg.Events())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, result.Snapshots[3].Queue)
	require.Equal(t, []string{"c"}, result.Snapshots[4].Queue)
	require.Empty(t, result.FinalQueue())
}
