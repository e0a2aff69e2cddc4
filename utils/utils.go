package utils

import (
	"image"

	"annotator/types"
)

// ShrinkToCentroid pulls every point toward the polygon centroid by factor.
// A factor of 1 leaves the polygon unchanged.
func ShrinkToCentroid(points []image.Point, factor float64) []image.Point {
	if len(points) == 0 {
		return nil
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += float64(p.X)
		sumY += float64(p.Y)
	}
	cx := sumX / float64(len(points))
	cy := sumY / float64(len(points))

	out := make([]image.Point, len(points))
	for i, p := range points {
		out[i] = image.Pt(
			int(cx+(float64(p.X)-cx)*factor),
			int(cy+(float64(p.Y)-cy)*factor),
		)
	}
	return out
}

// ContourPoints builds the compartment outline for the given handedness from
// the detected box landmarks. It returns false when a required landmark is missing.
func ContourPoints(kp types.Keypoints, hand types.Handedness, shrink float64) ([]image.Point, bool) {
	if kp == nil {
		return nil, false
	}

	required := []string{
		types.BackTopLeft, types.BackTopRight, types.BackDividerTop,
		types.FrontDividerTop, types.FrontTopMiddle,
	}
	if hand == types.Left {
		required = append(required, types.FrontTopLeft)
	} else {
		required = append(required, types.FrontTopRight)
	}
	for _, name := range required {
		if _, ok := kp[name]; !ok {
			return nil, false
		}
	}

	btl := kp[types.BackTopLeft]
	btr := kp[types.BackTopRight]
	bdt := kp[types.BackDividerTop]
	fdt := kp[types.FrontDividerTop]

	// back wall line through the two back corners, evaluated at the divider
	denom := btl.X - btr.X
	if denom == 0 {
		denom = 0.001
	}
	m := (btl.Y - btr.Y) / denom
	c := btl.Y - m*btl.X
	midY := m*bdt.X + c

	var corners []types.Point
	if hand == types.Left {
		corners = []types.Point{
			btl,
			{X: min(bdt.X, fdt.X), Y: midY},
			kp[types.FrontTopMiddle],
			kp[types.FrontTopLeft],
		}
	} else {
		corners = []types.Point{
			{X: max(bdt.X, fdt.X), Y: midY},
			btr,
			kp[types.FrontTopRight],
			kp[types.FrontTopMiddle],
		}
	}

	points := make([]image.Point, len(corners))
	for i, p := range corners {
		points[i] = image.Pt(int(p.X), int(p.Y))
	}
	return ShrinkToCentroid(points, shrink), true
}
