package types

import (
	"fmt"
	"time"
)

// Handedness selects which compartment of the box the overlay outlines
type Handedness string

const (
	Left  Handedness = "Left"
	Right Handedness = "Right"
)

// Point is a landmark position in frame pixels
type Point struct {
	X float64
	Y float64
}

// Keypoints maps landmark names to their detected positions
type Keypoints map[string]Point

// Landmark names reported by the keypoint model
const (
	BackTopLeft     = "Back top left"
	BackTopRight    = "Back top right"
	BackDividerTop  = "Back divider top"
	FrontDividerTop = "Front divider top"
	FrontTopMiddle  = "Front top middle"
	FrontTopLeft    = "Front top left"
	FrontTopRight   = "Front top right"
)

// VideoInfo describes the opened video stream
type VideoInfo struct {
	FPS         float64
	TotalFrames int
	Width       int
	Height      int
}

// DetectionConfig holds keypoint detection settings
type DetectionConfig struct {
	Interval       int           `yaml:"interval"`
	WorkerCommand  []string      `yaml:"worker_command"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultDetectionConfig returns the default detection configuration
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		Interval:       10,
		WorkerCommand:  []string{"python3", "keypoint_worker.py"},
		RequestTimeout: 5 * time.Second,
	}
}

// OverlayConfig holds overlay geometry settings
type OverlayConfig struct {
	ShrinkFactor float64 `yaml:"shrink_factor"`
}

// DefaultOverlayConfig returns the default overlay configuration
func DefaultOverlayConfig() OverlayConfig {
	return OverlayConfig{
		ShrinkFactor: 0.9,
	}
}

// FeedbackConfig holds how many turns each kind of notice stays on screen
type FeedbackConfig struct {
	ActionTurns int `yaml:"action_turns"`
	RewindTurns int `yaml:"rewind_turns"`
}

// DefaultFeedbackConfig returns the default feedback configuration
func DefaultFeedbackConfig() FeedbackConfig {
	return FeedbackConfig{
		ActionTurns: 20,
		RewindTurns: 30,
	}
}

// DisplayConfig holds window settings
type DisplayConfig struct {
	WindowName   string `yaml:"window_name"`
	MaxWidth     int    `yaml:"max_width"`
	ResizeWidth  int    `yaml:"resize_width"`
	ResizeHeight int    `yaml:"resize_height"`
}

// DefaultDisplayConfig returns the default display configuration
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		WindowName:   "Annotator",
		MaxWidth:     1920,
		ResizeWidth:  1280,
		ResizeHeight: 720,
	}
}

// DefaultModelPath is where the keypoint model is expected
const DefaultModelPath = "./keypoint_detector.pt"

// Config is the complete annotator configuration
type Config struct {
	ModelPath string          `yaml:"model_path"`
	Detection DetectionConfig `yaml:"detection"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	Display   DisplayConfig   `yaml:"display"`
}

// DefaultConfig returns the complete default configuration
func DefaultConfig() Config {
	return Config{
		ModelPath: DefaultModelPath,
		Detection: DefaultDetectionConfig(),
		Overlay:   DefaultOverlayConfig(),
		Feedback:  DefaultFeedbackConfig(),
		Display:   DefaultDisplayConfig(),
	}
}

// FormatTimestamp renders a frame position as MM:SS for the given frame rate
func FormatTimestamp(frame int, fps float64) string {
	if fps <= 0 {
		return "00:00"
	}
	seconds := float64(frame) / fps
	m := int(seconds) / 60
	s := int(seconds) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
