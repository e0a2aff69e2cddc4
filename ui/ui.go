package ui

import (
	"image"
	"image/color"
	"log"

	"gocv.io/x/gocv"

	"annotator/session"
	"annotator/types"
)

var (
	Green  = color.RGBA{G: 255}
	Red    = color.RGBA{R: 255}
	Orange = color.RGBA{R: 255, G: 165}
	Yellow = color.RGBA{R: 255, G: 255}
	Black  = color.RGBA{}
)

// FrameProvider supplies the frame to draw on
type FrameProvider interface {
	Frame() gocv.Mat
}

// Window is the OpenCV display for an annotation session
type Window struct {
	window *gocv.Window
	frames FrameProvider
	config types.DisplayConfig
}

// NewWindow opens the display window
func NewWindow(frames FrameProvider, config types.DisplayConfig) *Window {
	return &Window{
		window: gocv.NewWindow(config.WindowName),
		frames: frames,
		config: config,
	}
}

// Render draws the overlay, info panel and notice on a copy of the current frame
func (w *Window) Render(view session.View) error {
	canvas := w.frames.Frame().Clone()
	defer canvas.Close()

	if view.Contour != nil && !view.Ended {
		DrawContour(&canvas, view.Contour)
	}

	scale := FontScale(canvas.Cols())
	DrawInfoPanel(&canvas, view.Lines(), scale)
	if view.Notice != "" {
		DrawNotice(&canvas, view.Notice, scale)
	}

	if canvas.Cols() > w.config.MaxWidth {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(canvas, &resized, image.Pt(w.config.ResizeWidth, w.config.ResizeHeight), 0, 0, gocv.InterpolationLinear)
		w.window.IMShow(resized)
		return nil
	}

	w.window.IMShow(canvas)
	return nil
}

// WaitKey blocks until a key is pressed. Closing the window counts as quit.
func (w *Window) WaitKey() int {
	key := w.window.WaitKey(0)
	if key < 0 && !w.window.IsOpen() {
		return 'q'
	}
	return key
}

// Close destroys the window
func (w *Window) Close() error {
	return w.window.Close()
}

// FontScale grows the text with the frame width
func FontScale(width int) float64 {
	return max(0.6, float64(width)/1500)
}

// DrawContour outlines the region of interest and fills it translucently
func DrawContour(frame *gocv.Mat, pts []image.Point) {
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()

	gocv.Polylines(frame, pv, true, Yellow, 2)

	overlay := frame.Clone()
	defer overlay.Close()
	gocv.FillPoly(&overlay, pv, Yellow)
	gocv.AddWeighted(overlay, 0.2, *frame, 0.8, 0, frame)
}

// DrawInfoPanel draws the status lines over a translucent black box
func DrawInfoPanel(frame *gocv.Mat, lines []session.Line, scale float64) {
	spacing := int(40 * scale)

	overlay := frame.Clone()
	defer overlay.Close()
	box := image.Rect(0, 0, int(float64(frame.Cols())*0.45), len(lines)*spacing+40)
	if err := gocv.Rectangle(&overlay, box, Black, -1); err != nil {
		log.Printf("Error drawing info background: %v", err)
	}
	gocv.AddWeighted(overlay, 0.5, *frame, 0.5, 0, frame)

	for i, line := range lines {
		if err := gocv.PutText(frame, line.Text, image.Pt(10, 40+i*spacing), gocv.FontHersheySimplex, scale, toneColor(line.Tone), 1); err != nil {
			log.Printf("Error adding info text: %v", err)
		}
	}
}

// DrawNotice draws the transient notice near the bottom of the frame
func DrawNotice(frame *gocv.Mat, text string, scale float64) {
	if err := gocv.PutText(frame, text, image.Pt(10, frame.Rows()-50), gocv.FontHersheySimplex, scale, Red, 1); err != nil {
		log.Printf("Error adding notice text: %v", err)
	}
}

func toneColor(t session.Tone) color.RGBA {
	switch t {
	case session.ToneActive:
		return Orange
	case session.ToneWarning:
		return Red
	default:
		return Green
	}
}
