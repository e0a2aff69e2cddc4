package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commit appends intervals directly, bypassing navigation
func commit(t *testing.T, state *State, ivs ...Interval) {
	t.Helper()
	store := NewStore(state)
	for _, iv := range ivs {
		require.NoError(t, store.MarkStart(iv.Start))
		_, err := store.MarkStop(iv.Stop)
		require.NoError(t, err)
	}
}

func TestReconcile_NoOpForward(t *testing.T) {
	state := NewState(20)
	commit(t, state, Interval{10, 15})
	require.NoError(t, NewStore(state).MarkStart(18))

	events := Reconcile(state)

	assert.Empty(t, events)
	assert.Equal(t, []Interval{{10, 15}}, state.Committed)
	start, ok := state.Open()
	assert.True(t, ok)
	assert.Equal(t, 18, start)
}

func TestReconcile_DeletesOpenStart(t *testing.T) {
	state := NewState(0)
	require.NoError(t, NewStore(state).MarkStart(8))
	state.Current = 7

	events := Reconcile(state)

	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: StartDeleted, Frame: 8}, events[0])
	assert.Equal(t, "REWIND: Deleted 'Start' at 8", events[0].Message())
	_, ok := state.Open()
	assert.False(t, ok)
}

func TestReconcile_OpenStartAtCurrentIsKept(t *testing.T) {
	state := NewState(8)
	require.NoError(t, NewStore(state).MarkStart(8))

	assert.Empty(t, Reconcile(state))
	_, ok := state.Open()
	assert.True(t, ok)
}

func TestReconcile_ReopensLastCommitted(t *testing.T) {
	state := NewState(0)
	commit(t, state, Interval{10, 15})
	state.Current = 12

	events := Reconcile(state)

	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: StartReopened, Frame: 10}, events[0])
	assert.Equal(t, "REWIND: Re-opened 'Start' at 10", events[0].Message())
	assert.Empty(t, state.Committed)
	start, ok := state.Open()
	assert.True(t, ok)
	assert.Equal(t, 10, start)
}

func TestReconcile_StopFrameItselfIsKept(t *testing.T) {
	state := NewState(0)
	commit(t, state, Interval{10, 15})
	state.Current = 15

	assert.Empty(t, Reconcile(state))
	assert.Len(t, state.Committed, 1)
}

func TestReconcile_RewindPastWholeIntervalDeletesIt(t *testing.T) {
	state := NewState(0)
	commit(t, state, Interval{10, 15})
	state.Current = 9

	events := Reconcile(state)

	assert.Equal(t, []Event{
		{Kind: StartReopened, Frame: 10},
		{Kind: StartDeleted, Frame: 10},
	}, events)
	assert.Empty(t, state.Committed)
	_, ok := state.Open()
	assert.False(t, ok)
}

func TestReconcile_SpansSeveralIntervals(t *testing.T) {
	state := NewState(0)
	commit(t, state,
		Interval{10, 20},
		Interval{30, 40},
		Interval{50, 60},
		Interval{70, 80},
	)
	require.NoError(t, NewStore(state).MarkStart(90))

	// inside the second interval: the open start and the last two
	// intervals go, the second is reopened
	state.Current = 35
	events := Reconcile(state)

	assert.Equal(t, []Event{
		{Kind: StartDeleted, Frame: 90},
		{Kind: StartReopened, Frame: 70},
		{Kind: StartDeleted, Frame: 70},
		{Kind: StartReopened, Frame: 50},
		{Kind: StartDeleted, Frame: 50},
		{Kind: StartReopened, Frame: 30},
	}, events)
	assert.Equal(t, []Interval{{10, 20}}, state.Committed)
	start, ok := state.Open()
	assert.True(t, ok)
	assert.Equal(t, 30, start)
}

func TestReconcile_RewindToStartClearsEverything(t *testing.T) {
	state := NewState(0)
	commit(t, state, Interval{10, 15}, Interval{20, 25})
	require.NoError(t, NewStore(state).MarkStart(30))
	state.Current = 0

	events := Reconcile(state)

	assert.Len(t, events, 5)
	assert.Empty(t, state.Committed)
	_, ok := state.Open()
	assert.False(t, ok)
}

func TestReconcile_OverlappingHistoryIsPermitted(t *testing.T) {
	state := NewState(0)
	commit(t, state, Interval{10, 50}, Interval{20, 30})
	state.Current = 45

	events := Reconcile(state)

	// (20,30) ends before 45 so nothing fires
	assert.Empty(t, events)
	assert.Len(t, state.Committed, 2)
}

func TestReconcile_Idempotent(t *testing.T) {
	state := NewState(0)
	commit(t, state, Interval{10, 15}, Interval{20, 25})
	state.Current = 22

	first := Reconcile(state)
	require.NotEmpty(t, first)
	snapshot := state.Intervals()
	openStart, hasOpen := state.Open()

	second := Reconcile(state)

	assert.Empty(t, second)
	assert.Equal(t, snapshot, state.Intervals())
	s, ok := state.Open()
	assert.Equal(t, hasOpen, ok)
	assert.Equal(t, openStart, s)
}
