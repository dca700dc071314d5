package edge

import (
	"math"

	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/errors"
)

// Control is a curve control point in edge-relative coordinates.
//
// T is the projection of the control point onto the edge as a fraction of the
// edge length (0 at the start, 1 at the end). H is the perpendicular distance
// from the edge as a fraction of the edge length. H is positive when the
// control point lies to the left of the edge direction, i.e. on the side of
// the perpendicular (-dy, dx).
type Control struct {
	T float64
	H float64
}

// AbsoluteToRelative expresses the world-space control point cp relative to
// the edge start -> end. It fails with DEGENERATE_EDGE for zero-length edges.
func AbsoluteToRelative(start, end, cp curve.Point) (Control, error) {
	ev := end.Sub(start)
	l := ev.Hypot()
	if err := checkEdgeLength(l); err != nil {
		return Control{}, err
	}
	cv := cp.Sub(start)

	t := ev.Dot(cv) / (l * l)
	perp := cv.Sub(ev.Mul(t))
	h := perp.Hypot() / l

	switch cross := ev.Cross(cv); {
	case cross < 0:
		h = -h
	case cross == 0:
		h = 0
	}
	return Control{T: t, H: h}, nil
}

// RelativeToAbsolute is the inverse of [AbsoluteToRelative].
func RelativeToAbsolute(start, end curve.Point, c Control) (curve.Point, error) {
	ev := end.Sub(start)
	if err := checkEdgeLength(ev.Hypot()); err != nil {
		return curve.Point{}, err
	}
	return c.at(start, end), nil
}

// at places c on the edge without validating it. A zero-length edge maps
// every control to start.
func (c Control) at(start, end curve.Point) curve.Point {
	ev := end.Sub(start)
	perp := curve.Vec(-ev.Y, ev.X)
	return start.Translate(ev.Mul(c.T)).Translate(perp.Mul(c.H))
}

// Scale multiplies H by f, keeping the position along the edge.
func (c Control) Scale(f float64) Control {
	return Control{T: c.T, H: c.H * f}
}

// ScaleBoth multiplies T by ft and H by fh.
func (c Control) ScaleBoth(ft, fh float64) Control {
	return Control{T: c.T * ft, H: c.H * fh}
}

// Flipped returns the control describing the same absolute point on the
// reversed edge.
func (c Control) Flipped() Control {
	return Control{T: 1 - c.T, H: -c.H}
}

func checkEdgeLength(l float64) error {
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return errors.New(errors.ErrCodeDegenerateEdge, "edge has degenerate length %g", l)
	}
	return nil
}
