package edge_test

import (
	"fmt"

	"honnef.co/go/curve"

	"github.com/matzehuels/seamline/pkg/edge"
)

func ExampleSimpleLoop() {
	a := edge.NewArena()
	s := edge.SimpleLoop(a, curve.Pt(0, 0), curve.Pt(4, 0), curve.Pt(4, 3))

	fmt.Println("edges:", s.Len())
	fmt.Println("loop:", s.IsLoop())
	fmt.Printf("length: %.1f\n", s.Length())
	// Output:
	// edges: 3
	// loop: true
	// length: 12.0
}

func ExampleAbsoluteToRelative() {
	c, err := edge.AbsoluteToRelative(curve.Pt(0, 0), curve.Pt(10, 0), curve.Pt(5, 2))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("t=%.2f h=%.2f\n", c.T, c.H)
	// Output:
	// t=0.50 h=0.20
}

func ExampleSequence_Copy() {
	a := edge.NewArena()
	orig := edge.SimpleLoop(a, curve.Pt(0, 0), curve.Pt(1, 0), curve.Pt(1, 1))

	cp := orig.Copy().Translate(curve.Vec(5, 0))

	fmt.Println(orig.First())
	fmt.Println(cp.First())
	fmt.Println("copy is loop:", cp.IsLoop())
	// Output:
	// [0.00, 0.00] -> [1.00, 0.00]
	// [5.00, 0.00] -> [6.00, 0.00]
	// copy is loop: true
}
