// Package pattern loads parametrized sewing patterns and deforms them.
//
// # Overview
//
// A pattern spec is a JSON document holding flat panels (vertex and edge
// arrays) and a set of named parameters. Each parameter is either a length
// parameter, which stretches edges or runs of edges (meta-edges) along an
// axis, or a curve parameter, which scales the curvature controls of edges.
// A template is a spec whose parameters are all at their identity value; an
// instance is the result of applying other values to it.
//
// # Loading
//
// [Load] and [Read] validate the document and call [Spec.Normalize], which
// converts absolute curvature controls to edge-relative ones exactly once and
// records that in the properties. Relative controls stay attached to their
// edge when the edge is stretched, which is what makes length parameters
// shape-preserving.
//
// # Deforming
//
// [Spec.ApplyAll] applies the current values in parameter_order.
// [Spec.RestoreTemplate] undoes them by applying the inverse values in exactly
// the reverse order; extensions of overlapping edges do not commute, so the
// order matters. [Spec.Apply] combines both to move between instances:
//
//	s, err := pattern.Load("skirt/specification.json")
//	if err != nil {
//	    return err
//	}
//	err = s.Apply(map[string]pattern.Value{
//	    "length":      pattern.Scalar(1.2),
//	    "waist_curve": pattern.Vector(1, 0.8),
//	})
//
// [Spec.RandomizeParameters] draws values uniformly from the declared ranges
// using the given random source.
//
// The engine mutates the spec in place and is not safe for concurrent use.
package pattern
