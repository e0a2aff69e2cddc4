package session

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotator/detection"
	"annotator/recording"
	"annotator/types"
)

type fakeSource struct {
	info  types.VideoInfo
	loads []int
}

func (f *fakeSource) Info() types.VideoInfo { return f.info }

func (f *fakeSource) Load(index int) bool {
	f.loads = append(f.loads, index)
	return index < f.info.TotalFrames
}

func (f *fakeSource) Encode() (detection.Request, error) {
	idx := f.loads[len(f.loads)-1]
	return detection.Request{Seq: idx, Width: f.info.Width, Height: f.info.Height}, nil
}

type fakeDisplay struct {
	keys     []int
	views    []View
	panicAt  int
	rendered int
}

func (f *fakeDisplay) Render(v View) error {
	f.rendered++
	if f.panicAt > 0 && f.rendered == f.panicAt {
		panic("render exploded")
	}
	f.views = append(f.views, v)
	return nil
}

func (f *fakeDisplay) WaitKey() int {
	if len(f.keys) == 0 {
		return 'q'
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	return k
}

func (f *fakeDisplay) last() View {
	return f.views[len(f.views)-1]
}

type boxDetector struct {
	seqs []int
}

func (b *boxDetector) Detect(ctx context.Context, req detection.Request) (types.Keypoints, error) {
	b.seqs = append(b.seqs, req.Seq)
	return types.Keypoints{
		types.BackTopLeft:     {X: 100, Y: 100},
		types.BackTopRight:    {X: 300, Y: 100},
		types.BackDividerTop:  {X: 200, Y: 100},
		types.FrontDividerTop: {X: 200, Y: 200},
		types.FrontTopMiddle:  {X: 200, Y: 300},
		types.FrontTopLeft:    {X: 100, Y: 300},
		types.FrontTopRight:   {X: 300, Y: 300},
	}, nil
}

type fakeJournal struct {
	entries []recording.Entry
	ended   bool
	saved   int
}

func (f *fakeJournal) Append(ctx context.Context, sessionID string, e recording.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeJournal) EndSession(ctx context.Context, sessionID string, saved int) error {
	f.ended = true
	f.saved = saved
	return nil
}

type harness struct {
	session  *Session
	source   *fakeSource
	display  *fakeDisplay
	detector *boxDetector
	output   string
	console  *bytes.Buffer
}

func newHarness(t *testing.T, start, total int, keys string, mutate func(*Options)) *harness {
	t.Helper()

	h := &harness{
		source:   &fakeSource{info: types.VideoInfo{FPS: 30, TotalFrames: total, Width: 640, Height: 480}},
		display:  &fakeDisplay{},
		detector: &boxDetector{},
		output:   filepath.Join(t.TempDir(), "out.csv"),
		console:  &bytes.Buffer{},
	}
	for _, k := range keys {
		h.display.keys = append(h.display.keys, int(k))
	}

	opts := Options{
		Handedness: types.Left,
		OutputPath: h.output,
		StartFrame: start,
		Config:     types.DefaultConfig(),
		Console:    h.console,
	}
	if mutate != nil {
		mutate(&opts)
	}

	cache := detection.NewCache(h.detector, opts.Config.Detection.Interval)
	h.session = New(opts, h.source, cache, h.display)
	return h
}

func (h *harness) savedCSV(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(h.output)
	require.NoError(t, err)
	return string(data)
}

func TestRun_MarkAndSave(t *testing.T) {
	h := newHarness(t, 10, 100, "1kkkkk2q", nil)

	require.NoError(t, h.session.Run(context.Background()))

	assert.Equal(t, "Start Frame,End Frame\n10,15\n", h.savedCSV(t))
	assert.Contains(t, h.console.String(), "Saving and Exiting...")
	assert.Contains(t, h.console.String(), "[SUCCESS] Saved 1 annotations")

	last := h.display.last()
	assert.Equal(t, 15, last.Frame)
	assert.True(t, last.HasLast)
	assert.Equal(t, 10, last.Last.Start)
	assert.Equal(t, 15, last.Last.Stop)
	assert.Equal(t, "Sequence Saved", last.Notice)
}

func TestRun_RewindReopensAndNothingIsSaved(t *testing.T) {
	h := newHarness(t, 10, 100, "1kkkkk2jjjq", nil)

	require.NoError(t, h.session.Run(context.Background()))

	state := h.session.State()
	assert.Equal(t, 12, state.Current)
	assert.Empty(t, state.Committed)
	start, ok := state.Open()
	assert.True(t, ok)
	assert.Equal(t, 10, start)

	_, err := os.Stat(h.output)
	assert.True(t, os.IsNotExist(err), "no file for an empty list")
	assert.NotContains(t, h.console.String(), "[SUCCESS]")

	last := h.display.last()
	assert.Equal(t, "REWIND: Re-opened 'Start' at 10", last.Notice)
	assert.True(t, last.HasOpen)
	assert.False(t, last.HasLast)
}

func TestRun_EndOfStreamStopsAdvance(t *testing.T) {
	h := newHarness(t, 2, 3, "kkkq", nil)

	require.NoError(t, h.session.Run(context.Background()))

	assert.Equal(t, 3, h.session.State().Current)
	assert.Equal(t, []int{2, 3, 3, 3}, h.source.loads)

	last := h.display.last()
	assert.True(t, last.Ended)
	assert.Nil(t, last.Contour)
	lines := last.Lines()
	assert.Equal(t, "END OF VIDEO. Press [q] to save.", lines[len(lines)-1].Text)

	// detection never runs on the missing frame
	assert.Equal(t, []int{2}, h.detector.seqs)
}

func TestRun_DetectionCadenceAndOverlay(t *testing.T) {
	h := newHarness(t, 8, 100, "kkkkkq", nil)

	require.NoError(t, h.session.Run(context.Background()))

	assert.Equal(t, []int{8, 10}, h.detector.seqs)
	for _, v := range h.display.views {
		assert.Len(t, v.Contour, 4, "frame %d", v.Frame)
	}
}

func TestRun_NoticeExpiresAfterTurns(t *testing.T) {
	h := newHarness(t, 0, 100, "1kkkq", func(o *Options) {
		o.Config.Feedback.ActionTurns = 2
	})

	require.NoError(t, h.session.Run(context.Background()))

	var notices []string
	for _, v := range h.display.views {
		notices = append(notices, v.Notice)
	}
	assert.Equal(t, []string{"", "Start Marked", "Start Marked", "", ""}, notices)
}

func TestRun_PanicStillSaves(t *testing.T) {
	h := newHarness(t, 0, 100, "1kk2kkk", nil)
	h.display.panicAt = 6

	err := h.session.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "render exploded")
	assert.Equal(t, "Start Frame,End Frame\n0,2\n", h.savedCSV(t))
}

func TestRun_CancelledContextSaves(t *testing.T) {
	h := newHarness(t, 0, 100, "1k2kkkkk", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, h.session.Run(ctx))

	// one turn is always completed before the context is checked
	assert.Len(t, h.display.views, 1)
	_, err := os.Stat(h.output)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_JournalReceivesChanges(t *testing.T) {
	journal := &fakeJournal{}
	h := newHarness(t, 4, 100, "1k2jj1", func(o *Options) {
		o.Journal = journal
		o.SessionID = "s-1"
	})

	require.NoError(t, h.session.Run(context.Background()))

	var kinds []string
	for _, e := range journal.entries {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{
		"start_marked",
		"sequence_saved",
		"start_reopened",
		"start_deleted",
		"start_marked",
	}, kinds)
	assert.Equal(t, recording.Entry{Kind: "sequence_saved", Frame: 5, Start: 4, Stop: 5}, journal.entries[1])
	assert.True(t, journal.ended)
	assert.Equal(t, 0, journal.saved)
}
