package session

import (
	"fmt"
	"image"

	"annotator/annotation"
	"annotator/types"
)

// Tone selects the color of an info line
type Tone int

const (
	ToneNormal Tone = iota
	ToneActive
	ToneWarning
)

// Line is one row of the info panel
type Line struct {
	Text string
	Tone Tone
}

// View is everything a display needs to draw one turn
type View struct {
	Frame      int
	Video      types.VideoInfo
	Handedness types.Handedness
	Ended      bool

	OpenStart int
	HasOpen   bool
	Last      annotation.Interval
	HasLast   bool

	// Contour is nil when no overlay should be drawn
	Contour []image.Point
	Notice  string
}

// Lines builds the info panel rows
func (v View) Lines() []Line {
	lines := []Line{
		{Text: fmt.Sprintf("Frame: %d / %d", v.Frame, v.Video.TotalFrames)},
		{Text: "Time: " + types.FormatTimestamp(v.Frame, v.Video.FPS)},
		{Text: fmt.Sprintf("Handedness: %s (Set at launch)", v.Handedness)},
		{Text: "Controls: [j] Prev, [k] Next"},
	}

	if v.HasOpen {
		lines = append(lines, Line{Text: fmt.Sprintf("STATUS: ATTEMPT STARTED (%d)", v.OpenStart), Tone: ToneActive})
	} else {
		lines = append(lines, Line{Text: "STATUS: WAITING [1]"})
	}

	if v.HasLast {
		lines = append(lines, Line{Text: fmt.Sprintf("Last Saved: %d -> %d", v.Last.Start, v.Last.Stop)})
	}

	if v.Ended {
		lines = append(lines, Line{Text: "END OF VIDEO. Press [q] to save.", Tone: ToneWarning})
	}

	return lines
}
