// Package detection finds the box landmarks in video frames.
//
// Frames are handed to a keypoint model worker process as JPEG bytes.
// Each request and response is a msgpack map preceded by a 4-byte
// big-endian length:
//
//	request:  {seq, width, height, frame_data}
//	response: {seq, success, keypoints: {name: [x, y]}, error}
//
// The worker is started once with "--model <path>" appended to its command
// line and answers requests strictly in order.
package detection

import (
	"context"
	"errors"

	"annotator/types"
)

// ErrNoDetection is returned when the model ran but found no box
var ErrNoDetection = errors.New("no box detected")

// Request is one frame submitted for detection
type Request struct {
	Seq    int
	Width  int
	Height int
	JPEG   []byte
}

// Detector finds landmarks in a single frame
type Detector interface {
	Detect(ctx context.Context, req Request) (types.Keypoints, error)
}
