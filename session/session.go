package session

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"annotator/annotation"
	"annotator/detection"
	"annotator/feedback"
	"annotator/input"
	"annotator/recording"
	"annotator/types"
	"annotator/utils"
)

// FrameSource decodes frames by index
type FrameSource interface {
	Info() types.VideoInfo
	// Load decodes the frame at index and reports false past the end of the stream
	Load(index int) bool
	// Encode returns the loaded frame as a detection request
	Encode() (detection.Request, error)
}

// Sampler supplies cached landmarks for the loaded frame
type Sampler interface {
	Observe(ctx context.Context, index int, encode detection.FrameEncoder) (types.Keypoints, bool)
	Latest() (types.Keypoints, bool)
}

// Display draws a turn and blocks for the next key press
type Display interface {
	Render(view View) error
	WaitKey() int
}

// Journal receives every accepted state change
type Journal interface {
	Append(ctx context.Context, sessionID string, e recording.Entry) error
	EndSession(ctx context.Context, sessionID string, saved int) error
}

// Options configures a session
type Options struct {
	Handedness types.Handedness
	OutputPath string
	StartFrame int
	Config     types.Config

	// Journal is optional; SessionID must be set when it is
	Journal   Journal
	SessionID string

	// Console receives save results; defaults to stdout
	Console io.Writer
}

// Session is the turn loop of one annotation run
type Session struct {
	opts    Options
	state   *annotation.State
	nav     *annotation.Navigator
	board   *feedback.Board
	interp  *input.Interpreter
	source  FrameSource
	sampler Sampler
	display Display
	turns   int
}

func New(opts Options, source FrameSource, sampler Sampler, display Display) *Session {
	if opts.Console == nil {
		opts.Console = os.Stdout
	}

	state := annotation.NewState(opts.StartFrame)
	nav := annotation.NewNavigator(state)
	board := &feedback.Board{}

	return &Session{
		opts:    opts,
		state:   state,
		nav:     nav,
		board:   board,
		interp:  input.NewInterpreter(state, nav, board, opts.Config.Feedback),
		source:  source,
		sampler: sampler,
		display: display,
	}
}

// State exposes the annotation state, mainly for inspection after Run
func (s *Session) State() *annotation.State {
	return s.state
}

// Run processes turns until the user quits or ctx is cancelled. The
// committed intervals are saved on every exit path, including a panic
// inside a turn.
func (s *Session) Run(ctx context.Context) (err error) {
	slog.Info("annotation session started",
		"start_frame", s.state.Current,
		"total_frames", s.source.Info().TotalFrames,
		"handedness", s.opts.Handedness,
	)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("annotation loop crashed, saving what was recorded", "panic", r, "frame", s.state.Current)
			err = fmt.Errorf("annotation loop crashed: %v", r)
		}
		s.save()
	}()

	for {
		quit := s.turn(ctx)
		if quit {
			fmt.Fprintln(s.opts.Console, "Saving and Exiting...")
			return nil
		}
		if ctx.Err() != nil {
			slog.Info("annotation session interrupted", "frame", s.state.Current)
			return nil
		}
	}
}

// turn renders the current frame, waits for one key and applies it
func (s *Session) turn(ctx context.Context) bool {
	s.turns++
	index := s.state.Current

	ended := !s.source.Load(index)
	s.nav.SetEnded(ended)

	var contour []image.Point
	if !ended {
		if kp, ok := s.sampler.Observe(ctx, index, s.source.Encode); ok {
			if pts, ok := utils.ContourPoints(kp, s.opts.Handedness, s.opts.Config.Overlay.ShrinkFactor); ok {
				contour = pts
			}
		}
	}

	if err := s.display.Render(s.view(ended, contour)); err != nil {
		slog.Warn("failed to render frame", "frame", index, "error", err)
	}
	s.board.Tick()

	quit, changes := s.interp.ProcessKey(s.display.WaitKey())
	s.record(ctx, changes)
	return quit
}

func (s *Session) view(ended bool, contour []image.Point) View {
	v := View{
		Frame:      s.state.Current,
		Video:      s.source.Info(),
		Handedness: s.opts.Handedness,
		Ended:      ended,
		Contour:    contour,
	}
	v.OpenStart, v.HasOpen = s.state.Open()
	v.Last, v.HasLast = s.state.Last()
	if msg, ok := s.board.Current(); ok {
		v.Notice = msg
	}
	return v
}

func (s *Session) record(ctx context.Context, changes []input.Change) {
	if s.opts.Journal == nil {
		return
	}
	for _, c := range changes {
		entry := recording.Entry{Kind: string(c.Kind), Frame: c.Frame, Start: c.Start, Stop: c.Stop}
		if err := s.opts.Journal.Append(ctx, s.opts.SessionID, entry); err != nil {
			slog.Warn("failed to journal change", "kind", c.Kind, "error", err)
		}
	}
}

func (s *Session) save() {
	if start, ok := s.state.Open(); ok {
		slog.Debug("discarding unfinished interval", "start", start)
	}

	intervals := s.state.Intervals()
	if err := recording.Persist(s.opts.OutputPath, intervals, s.opts.Console); err != nil {
		slog.Error("annotations were not saved", "path", s.opts.OutputPath, "error", err)
	}

	if s.opts.Journal != nil {
		// the run context may already be cancelled here
		if err := s.opts.Journal.EndSession(context.Background(), s.opts.SessionID, len(intervals)); err != nil {
			slog.Warn("failed to close journal session", "error", err)
		}
	}

	slog.Info("annotation session finished", "turns", s.turns, "intervals", len(intervals))
}
