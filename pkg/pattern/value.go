package pattern

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/seamline/pkg/errors"
)

// Value is a parameter value: a scalar, or a vector with one component per
// control coordinate (curve parameters use pairs).
type Value struct {
	components []float64
	vector     bool
}

// Scalar creates a single-number value.
func Scalar(x float64) Value { return Value{components: []float64{x}} }

// Vector creates a list value.
func Vector(xs ...float64) Value { return Value{components: slices.Clone(xs), vector: true} }

// IsVector reports whether the value is a list.
func (v Value) IsVector() bool { return v.vector }

// Len returns the number of components.
func (v Value) Len() int { return len(v.components) }

// Scalar returns the value of a scalar. It returns the first component of a
// vector.
func (v Value) Scalar() float64 {
	if len(v.components) == 0 {
		return 0
	}
	return v.components[0]
}

// Components returns a copy of the components.
func (v Value) Components() []float64 { return slices.Clone(v.components) }

// Inverse returns the multiplicative inverse, element-wise for vectors. Zero
// components cannot be inverted.
func (v Value) Inverse() (Value, error) {
	out := Value{components: make([]float64, len(v.components)), vector: v.vector}
	for i, x := range v.components {
		if x == 0 {
			return Value{}, errors.New(errors.ErrCodeNonInvertibleValue, "zero value cannot be inverted")
		}
		out.components[i] = 1 / x
	}
	return out, nil
}

// Identity returns 1, or a vector of ones of the same length.
func (v Value) Identity() Value {
	out := Value{components: make([]float64, len(v.components)), vector: v.vector}
	for i := range out.components {
		out.components[i] = 1
	}
	if !v.vector && len(out.components) == 0 {
		out.components = []float64{1}
	}
	return out
}

// SameShape reports whether v and o are both scalars or both vectors of the
// same length.
func (v Value) SameShape(o Value) bool {
	return v.vector == o.vector && len(v.components) == len(o.components)
}

// Equal reports whether v and o have the same shape and components.
func (v Value) Equal(o Value) bool {
	return v.SameShape(o) && slices.Equal(v.components, o.components)
}

func (v Value) String() string {
	if !v.vector {
		return strconv.FormatFloat(v.Scalar(), 'g', -1, 64)
	}
	parts := make([]string, len(v.components))
	for i, x := range v.components {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ParseValue parses "1.2" as a scalar and "1.2,0.8" as a vector.
func ParseValue(s string) (Value, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	fields := strings.Split(s, ",")
	xs := make([]float64, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Value{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid value %q", s)
		}
		xs[i] = x
	}
	if len(xs) == 1 {
		return Scalar(xs[0]), nil
	}
	return Vector(xs...), nil
}

func (v Value) clone() Value {
	return Value{components: slices.Clone(v.components), vector: v.vector}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.vector {
		return json.Marshal(v.components)
	}
	return json.Marshal(v.Scalar())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var xs []float64
		if err := json.Unmarshal(data, &xs); err != nil {
			return err
		}
		*v = Value{components: xs, vector: true}
		return nil
	}
	var x float64
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	*v = Scalar(x)
	return nil
}

// Range bounds the values a parameter may take: one [lo, hi] pair for
// scalars, or one pair per component for vectors.
type Range struct {
	bounds       [][2]float64
	perComponent bool
}

// NewRange creates a single-bound range.
func NewRange(lo, hi float64) Range { return Range{bounds: [][2]float64{{lo, hi}}} }

// NewComponentRange creates a range with one bound pair per component.
func NewComponentRange(bounds ...[2]float64) Range {
	return Range{bounds: slices.Clone(bounds), perComponent: true}
}

// PerComponent reports whether the range lists one bound pair per component.
func (r Range) PerComponent() bool { return r.perComponent }

// Len returns the number of bound pairs.
func (r Range) Len() int { return len(r.bounds) }

// Bounds returns bound pair i. A single-bound range returns its only pair
// for every i.
func (r Range) Bounds(i int) ([2]float64, error) {
	if !r.perComponent && len(r.bounds) == 1 {
		return r.bounds[0], nil
	}
	if i < 0 || i >= len(r.bounds) {
		return [2]float64{}, errors.New(errors.ErrCodeInvalidSpec, "range has no bounds for component %d", i)
	}
	return r.bounds[i], nil
}

// Contains reports whether every component of v is inside its bounds.
func (r Range) Contains(v Value) bool {
	for i, x := range v.components {
		b, err := r.Bounds(i)
		if err != nil || x < b[0] || x > b[1] {
			return false
		}
	}
	return true
}

func (r Range) String() string {
	if !r.perComponent && len(r.bounds) == 1 {
		return fmt.Sprintf("[%g, %g]", r.bounds[0][0], r.bounds[0][1])
	}
	parts := make([]string, len(r.bounds))
	for i, b := range r.bounds {
		parts[i] = fmt.Sprintf("[%g, %g]", b[0], b[1])
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r Range) MarshalJSON() ([]byte, error) {
	if r.perComponent {
		return json.Marshal(r.bounds)
	}
	if len(r.bounds) != 1 {
		return json.Marshal(nil)
	}
	return json.Marshal(r.bounds[0])
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if items == nil {
		*r = Range{}
		return nil
	}
	if len(items) > 0 && bytes.HasPrefix(bytes.TrimSpace(items[0]), []byte("[")) {
		var bounds [][2]float64
		if err := json.Unmarshal(data, &bounds); err != nil {
			return err
		}
		*r = Range{bounds: bounds, perComponent: true}
		return nil
	}
	var b [2]float64
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*r = NewRange(b[0], b[1])
	return nil
}
