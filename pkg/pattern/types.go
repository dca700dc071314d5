package pattern

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/panel"
)

// Spec is a parametrized pattern: panel geometry plus the parameters that
// deform it. The panel arrays are edited in place by the engine methods.
type Spec struct {
	// Name identifies the pattern. It is derived from the file name on
	// [Load] and is not serialized.
	Name string `json:"-"`

	Pattern        Pattern               `json:"pattern"`
	Properties     Properties            `json:"properties"`
	Parameters     map[string]*Parameter `json:"parameters,omitempty"`
	ParameterOrder []string              `json:"parameter_order,omitempty"`
}

// Pattern holds the panels. Stitches are carried through untouched.
type Pattern struct {
	Panels   map[string]*panel.Raw `json:"panels"`
	Stitches json.RawMessage       `json:"stitches,omitempty"`
}

// PanelNames returns the panel names in sorted order.
func (p Pattern) PanelNames() []string {
	names := make([]string, 0, len(p.Panels))
	for name := range p.Panels {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CoordSystem tells how edge curvature is stored.
type CoordSystem string

const (
	// CoordsAbsolute stores control points in panel coordinates.
	CoordsAbsolute CoordSystem = "absolute"
	// CoordsRelative stores control points as [edge.Control] values.
	CoordsRelative CoordSystem = "relative"
)

func (c CoordSystem) validate() error {
	switch c {
	case CoordsAbsolute, CoordsRelative:
		return nil
	case "":
		return errors.New(errors.ErrCodeInvalidSpec, "properties.curvature_coords is required")
	}
	return errors.New(errors.ErrCodeInvalidSpec, "unknown curvature_coords %q", c)
}

// Properties are the pattern-wide flags. Keys other than the ones modelled
// here are preserved across a load/save cycle.
type Properties struct {
	CurvatureCoords           CoordSystem
	NormalizePanelTranslation bool

	extra map[string]json.RawMessage
}

const (
	keyCurvatureCoords = "curvature_coords"
	keyNormalize       = "normalize_panel_translation"
)

func (p Properties) MarshalJSON() ([]byte, error) {
	if err := p.CurvatureCoords.validate(); err != nil {
		return nil, err
	}
	m := make(map[string]any, len(p.extra)+2)
	for k, v := range p.extra {
		m[k] = v
	}
	m[keyCurvatureCoords] = p.CurvatureCoords
	if p.NormalizePanelTranslation {
		m[keyNormalize] = true
	}
	return json.Marshal(m)
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*p = Properties{}
	if raw, ok := m[keyCurvatureCoords]; ok {
		if err := json.Unmarshal(raw, &p.CurvatureCoords); err != nil {
			return err
		}
		delete(m, keyCurvatureCoords)
	}
	if err := p.CurvatureCoords.validate(); err != nil {
		return err
	}
	if raw, ok := m[keyNormalize]; ok {
		if err := json.Unmarshal(raw, &p.NormalizePanelTranslation); err != nil {
			return err
		}
		delete(m, keyNormalize)
	}
	if len(m) > 0 {
		p.extra = m
	}
	return nil
}

// Kind is the type of a parameter.
type Kind int

const (
	// KindLength parameters scale edges or meta-edges along an axis.
	KindLength Kind = iota
	// KindCurve parameters scale curvature controls.
	KindCurve
)

var kindNames = map[Kind]string{
	KindLength: "length",
	KindCurve:  "curve",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind converts "length" or "curve" to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidParameterType,
		"parameter type %q is not supported, allowed are length and curve", s)
}

func (k Kind) MarshalJSON() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidParameterType, "invalid parameter kind %d", int(k))
	}
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Direction selects the fixed point of an edge extension.
type Direction int

const (
	// DirectionBoth keeps the midpoint of the chain's first and last vertex.
	DirectionBoth Direction = iota
	// DirectionStart keeps the last vertex; the start moves.
	DirectionStart
	// DirectionEnd keeps the first vertex; the end moves.
	DirectionEnd
)

var directionNames = map[Direction]string{
	DirectionBoth:  "both",
	DirectionStart: "start",
	DirectionEnd:   "end",
}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return "unknown"
}

// ParseDirection converts "start", "end" or "both" to a Direction. The empty
// string means both.
func ParseDirection(s string) (Direction, error) {
	if s == "" {
		return DirectionBoth, nil
	}
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown direction %q, allowed are start, end and both", s)
}

func (d Direction) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EdgeRef names either a single edge or a meta-edge: an ordered run of edges
// that share vertices and are extended as one.
type EdgeRef struct {
	ids  []int
	meta bool
}

// Single references one edge.
func Single(id int) EdgeRef { return EdgeRef{ids: []int{id}} }

// Meta references an ordered run of edges.
func Meta(ids ...int) EdgeRef { return EdgeRef{ids: slices.Clone(ids), meta: true} }

// IDs returns the referenced edge indices in order.
func (r EdgeRef) IDs() []int { return slices.Clone(r.ids) }

// IsMeta reports whether r was given as a list.
func (r EdgeRef) IsMeta() bool { return r.meta }

func (r EdgeRef) MarshalJSON() ([]byte, error) {
	if r.meta {
		return json.Marshal(r.ids)
	}
	if len(r.ids) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty edge reference")
	}
	return json.Marshal(r.ids[0])
}

func (r *EdgeRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var ids []int
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		if len(ids) == 0 {
			return errors.New(errors.ErrCodeInvalidSpec, "meta-edge must list at least one edge")
		}
		*r = EdgeRef{ids: ids, meta: true}
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*r = Single(id)
	return nil
}

// EdgeInfluence is one entry of an influence's edge list.
type EdgeInfluence struct {
	ID        EdgeRef     `json:"id"`
	Direction Direction   `json:"direction"`
	Along     *[2]float64 `json:"along,omitempty"`

	// plain records that the entry was written as a bare edge id, the form
	// used by curve parameters.
	plain bool
}

type edgeInfluenceJSON struct {
	ID        EdgeRef     `json:"id"`
	Direction *Direction  `json:"direction,omitempty"`
	Along     *[2]float64 `json:"along,omitempty"`
}

func (ei EdgeInfluence) MarshalJSON() ([]byte, error) {
	if ei.plain && !ei.ID.meta && ei.Along == nil {
		return json.Marshal(ei.ID)
	}
	dir := ei.Direction
	return json.Marshal(edgeInfluenceJSON{ID: ei.ID, Direction: &dir, Along: ei.Along})
}

func (ei *EdgeInfluence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var ref EdgeRef
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		*ei = EdgeInfluence{ID: ref, plain: true}
		return nil
	}
	var raw edgeInfluenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID.ids == nil {
		return errors.New(errors.ErrCodeInvalidSpec, "edge influence without id")
	}
	*ei = EdgeInfluence{ID: raw.ID, Along: raw.Along}
	if raw.Direction != nil {
		ei.Direction = *raw.Direction
	}
	return nil
}

// Influence lists the edges of one panel a parameter acts on.
type Influence struct {
	Panel    string          `json:"panel"`
	EdgeList []EdgeInfluence `json:"edge_list"`
}

// Parameter is a named deformation of the pattern.
type Parameter struct {
	Type      Kind        `json:"type"`
	Value     Value       `json:"value"`
	Range     Range       `json:"range"`
	Influence []Influence `json:"influence"`
}

// clone returns a deep copy.
func (p *Parameter) clone() *Parameter {
	out := &Parameter{
		Type:      p.Type,
		Value:     p.Value.clone(),
		Range:     Range{bounds: slices.Clone(p.Range.bounds), perComponent: p.Range.perComponent},
		Influence: make([]Influence, len(p.Influence)),
	}
	for i, in := range p.Influence {
		out.Influence[i] = Influence{Panel: in.Panel, EdgeList: make([]EdgeInfluence, len(in.EdgeList))}
		for j, ei := range in.EdgeList {
			ei.ID = EdgeRef{ids: slices.Clone(ei.ID.ids), meta: ei.ID.meta}
			if ei.Along != nil {
				along := *ei.Along
				ei.Along = &along
			}
			out.Influence[i].EdgeList[j] = ei
		}
	}
	return out
}
