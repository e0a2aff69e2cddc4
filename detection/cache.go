package detection

import (
	"context"
	"errors"
	"log/slog"

	"annotator/types"
)

// FrameEncoder produces the current frame as a detection request
type FrameEncoder func() (Request, error)

// Cache runs the detector on a fixed cadence and keeps the last successful result
type Cache struct {
	detector Detector
	interval int

	latest types.Keypoints
	runs   int
}

func NewCache(detector Detector, interval int) *Cache {
	if interval <= 0 {
		interval = 1
	}
	return &Cache{detector: detector, interval: interval}
}

// Observe is called once per turn for a decoded frame. It runs the detector
// when nothing is cached yet or the index falls on the sampling cadence.
// A failed detection keeps the previous result.
func (c *Cache) Observe(ctx context.Context, index int, encode FrameEncoder) (types.Keypoints, bool) {
	if c.latest == nil || index%c.interval == 0 {
		c.refresh(ctx, index, encode)
	}
	return c.latest, c.latest != nil
}

// Latest returns the cached landmarks without running the detector
func (c *Cache) Latest() (types.Keypoints, bool) {
	return c.latest, c.latest != nil
}

// Runs returns how many times the detector has been invoked
func (c *Cache) Runs() int {
	return c.runs
}

func (c *Cache) refresh(ctx context.Context, index int, encode FrameEncoder) {
	req, err := encode()
	if err != nil {
		slog.Warn("failed to encode frame for detection", "frame", index, "error", err)
		return
	}

	c.runs++
	kp, err := c.detector.Detect(ctx, req)
	if err != nil {
		if !errors.Is(err, ErrNoDetection) {
			slog.Debug("detection failed", "frame", index, "error", err)
		}
		return
	}
	if len(kp) == 0 {
		return
	}
	c.latest = kp
}
