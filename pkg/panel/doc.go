// Package panel represents flat garment panels.
//
// A pattern file stores each panel as a [Raw] value: vertex and edge arrays
// that index into each other. That representation is the persistent state and
// is what parameter application edits. [FromRaw] builds a [Panel] view with
// shared vertices on top of a copy of it, which is convenient for procedural
// edits (splitting, darts, mirroring); [Panel.Assemble] projects the result
// back to a [Raw] value.
//
//	p, err := panel.FromRaw("front", raw)
//	if err != nil {
//	    return err
//	}
//	p.Mirror()
//	raw = p.Assemble()
package panel
