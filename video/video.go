package video

import (
	"bytes"
	"fmt"

	"gocv.io/x/gocv"

	"annotator/detection"
	"annotator/types"
)

// Capture serves decoded frames from a video file by index
type Capture struct {
	capture *gocv.VideoCapture
	info    types.VideoInfo

	frame gocv.Mat
	blank gocv.Mat

	index   int
	loaded  bool
	decoded bool
}

// Open opens the video file and reads its stream properties
func Open(path string) (*Capture, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening video file %s: %v", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("error opening video file %s", path)
	}

	info := types.VideoInfo{
		FPS:         capture.Get(gocv.VideoCaptureFPS),
		TotalFrames: int(capture.Get(gocv.VideoCaptureFrameCount)),
		Width:       int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:      int(capture.Get(gocv.VideoCaptureFrameHeight)),
	}

	blank := gocv.NewMatWithSize(max(info.Height, 1), max(info.Width, 1), gocv.MatTypeCV8UC3)
	blank.SetTo(gocv.NewScalar(0, 0, 0, 0))

	return &Capture{
		capture: capture,
		info:    info,
		frame:   gocv.NewMat(),
		blank:   blank,
	}, nil
}

// Info returns the stream properties read at open time
func (c *Capture) Info() types.VideoInfo {
	return c.info
}

// Load decodes the frame at index. Consecutive indices are read without
// seeking; any other jump seeks first. It returns false past the end of the stream.
func (c *Capture) Load(index int) bool {
	if c.loaded && index == c.index {
		return c.decoded
	}

	if !(c.loaded && c.decoded && index == c.index+1) {
		c.capture.Set(gocv.VideoCapturePosFrames, float64(index))
	}

	c.index = index
	c.loaded = true
	c.decoded = c.capture.Read(&c.frame) && !c.frame.Empty()
	return c.decoded
}

// Frame returns the loaded frame, or a black frame past the end of the stream.
// The returned Mat is owned by the capture and must not be modified.
func (c *Capture) Frame() gocv.Mat {
	if c.decoded {
		return c.frame
	}
	return c.blank
}

// Encode returns the loaded frame as a JPEG detection request
func (c *Capture) Encode() (detection.Request, error) {
	if !c.decoded {
		return detection.Request{}, fmt.Errorf("no frame decoded at index %d", c.index)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, c.frame)
	if err != nil {
		return detection.Request{}, fmt.Errorf("could not encode frame %d: %v", c.index, err)
	}
	defer buf.Close()

	return detection.Request{
		Seq:    c.index,
		Width:  c.frame.Cols(),
		Height: c.frame.Rows(),
		JPEG:   bytes.Clone(buf.GetBytes()),
	}, nil
}

// Close releases the capture and its frame buffers
func (c *Capture) Close() error {
	c.frame.Close()
	c.blank.Close()
	return c.capture.Close()
}
