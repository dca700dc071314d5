package panel

import (
	"math"

	"github.com/matzehuels/seamline/pkg/edge"
)

// Interface names a run of a panel's edges that can be stitched to an
// interface of another panel.
type Interface struct {
	Name  string
	Panel *Panel
	Edges *edge.Sequence
}

// Length returns the total straight-line length of the interface edges.
func (in Interface) Length() float64 { return in.Edges.Length() }

// Matches reports whether in and o can be stitched together. Single edges
// must be [edge.Edge.Equal]; longer runs only need the same total length.
func (in Interface) Matches(o Interface) bool {
	if in.Edges.Len() == 1 && o.Edges.Len() == 1 {
		return in.Edges.First().Equal(o.Edges.First())
	}
	l1, l2 := in.Length(), o.Length()
	return math.Abs(l1-l2) <= 1e-9*max(1, l1, l2)
}
