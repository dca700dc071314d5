package pattern

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/seamline/pkg/errors"
)

func TestLoadNormalizesCurvature(t *testing.T) {
	s := loadSkirt(t)
	if s.Name != "skirt" {
		t.Errorf("Name = %q, want skirt", s.Name)
	}
	if s.Properties.CurvatureCoords != CoordsRelative {
		t.Errorf("curvature_coords = %q, want relative", s.Properties.CurvatureCoords)
	}
	got := *s.Pattern.Panels["front"].Edges[2].Curvature
	want := [2]float64{0.5, -1.0 / 12}
	if diff := cmp.Diff(want, got, within1e6); diff != "" {
		t.Errorf("relative curvature mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	s := loadSkirt(t)
	before := s.Clone()
	if err := s.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if diff := cmp.Diff(before.Pattern.Panels, s.Pattern.Panels); diff != "" {
		t.Errorf("second normalization changed geometry (-before +after):\n%s", diff)
	}
}

func TestNormalizePanelTranslation(t *testing.T) {
	s := stripe()
	s.Properties.NormalizePanelTranslation = true
	if err := s.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.Properties.NormalizePanelTranslation {
		t.Error("normalize_panel_translation not cleared")
	}
	raw := s.Pattern.Panels["p"]
	if raw.Translation != [3]float64{15, 2, 0} {
		t.Errorf("translation = %v, want [15 2 0]", raw.Translation)
	}
	if raw.Vertices[0] != [2]float64{-15, -2} {
		t.Errorf("vertex 0 = %v, want [-15 -2]", raw.Vertices[0])
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := loadSkirt(t)
	if err := s.Apply(map[string]Value{"length": Scalar(1.25), "waist_curve": Vector(1.1, 0.9)}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"curvature_coords": "relative"`, `"units_in_meter": 100`, `"stitches"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}

	var generic map[string]any
	if err := json.Unmarshal(buf.Bytes(), &generic); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	curve := generic["parameters"].(map[string]any)["waist_curve"].(map[string]any)
	edgeList := curve["influence"].([]any)[0].(map[string]any)["edge_list"].([]any)
	if _, ok := edgeList[0].(float64); !ok {
		t.Errorf("plain edge id written as %T, want a number", edgeList[0])
	}

	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(s.Pattern.Panels, back.Pattern.Panels); diff != "" {
		t.Errorf("panels changed across save/load (-saved +loaded):\n%s", diff)
	}
	for name, p := range s.Parameters {
		if !p.Value.Equal(back.Parameters[name].Value) {
			t.Errorf("%s: %s saved, %s loaded", name, p.Value, back.Parameters[name].Value)
		}
	}
	if diff := cmp.Diff(s.ParameterOrder, back.ParameterOrder); diff != "" {
		t.Errorf("parameter order mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestReadErrors(t *testing.T) {
	valid := func(mutate string) string {
		return `{"pattern": {"panels": {"p": {"vertices": [[0,0],[1,0],[0,1]],
			"edges": [{"endpoints": [0,1]}, {"endpoints": [1,2], "curvature": [0.5, 0.1]}, {"endpoints": [2,0]}],
			"translation": [0,0,0]}}},
			"properties": {"curvature_coords": "relative"},` + mutate + `}`
	}
	param := func(body string) string {
		return `"parameters": {"x": ` + body + `}, "parameter_order": ["x"]`
	}

	tests := []struct {
		name string
		doc  string
		want errors.Code
	}{
		{"Syntax", `{"pattern": `, errors.ErrCodeInvalidFormat},
		{"UnknownType", valid(param(`{"type": "width", "value": 1, "range": [0,2], "influence": []}`)), errors.ErrCodeInvalidParameterType},
		{"UnknownDirection", valid(param(`{"type": "length", "value": 1, "range": [0,2],
			"influence": [{"panel": "p", "edge_list": [{"id": 0, "direction": "up"}]}]}`)), errors.ErrCodeInvalidInput},
		{"UnknownPanel", valid(param(`{"type": "length", "value": 1, "range": [0,2],
			"influence": [{"panel": "q", "edge_list": [{"id": 0}]}]}`)), errors.ErrCodeUnknownPanel},
		{"UnknownEdge", valid(param(`{"type": "length", "value": 1, "range": [0,2],
			"influence": [{"panel": "p", "edge_list": [{"id": 7}]}]}`)), errors.ErrCodeUnknownEdge},
		{"CurveOnStraightEdge", valid(param(`{"type": "curve", "value": 1, "range": [0,2],
			"influence": [{"panel": "p", "edge_list": [0]}]}`)), errors.ErrCodeNonCurvedEdge},
		{"VectorLength", valid(param(`{"type": "length", "value": [1, 1], "range": [[0,2],[0,2]],
			"influence": []}`)), errors.ErrCodeInvalidScaleShape},
		{"RangeShape", valid(param(`{"type": "curve", "value": [1, 1], "range": [[0,2]],
			"influence": []}`)), errors.ErrCodeInvalidSpec},
		{"OrderUndefined", valid(`"parameters": {}, "parameter_order": ["x"]`), errors.ErrCodeUnknownParameter},
		{"OrderMissing", valid(`"parameters": {"x": {"type": "length", "value": 1, "range": [0,2], "influence": []}}`), errors.ErrCodeInvalidSpec},
		{"BadCoords", strings.Replace(valid(`"parameter_order": []`), `"relative"`, `"polar"`, 1), errors.ErrCodeInvalidSpec},
		{"MissingProperties", `{"pattern": {"panels": {"p": {"vertices": [[0,0],[1,0],[0,1]],
			"edges": [{"endpoints": [0,1]}, {"endpoints": [1,2]}, {"endpoints": [2,0]}],
			"translation": [0,0,0]}}}}`, errors.ErrCodeInvalidSpec},
		{"EmptyCoords", strings.Replace(valid(`"parameter_order": []`), `"relative"`, `""`, 1), errors.ErrCodeInvalidSpec},
		{"BadVertexIndex", strings.Replace(valid(`"parameter_order": []`), `[2,0]`, `[5,0]`, 1), errors.ErrCodeInvalidSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc))
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestWriteReadInline(t *testing.T) {
	doc := `{"pattern": {"panels": {"p": {"vertices": [[0,0],[4,0],[0,3]],
		"edges": [{"endpoints": [0,1]}, {"endpoints": [1,2], "curvature": [0.5, 0.1]}, {"endpoints": [2,0]}],
		"translation": [0,0,0]}}},
		"properties": {"curvature_coords": "relative"}}`
	s, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read written spec: %v", err)
	}
	if back.Properties.CurvatureCoords != CoordsRelative {
		t.Errorf("curvature_coords = %q, want relative", back.Properties.CurvatureCoords)
	}
	if diff := cmp.Diff(s.Pattern.Panels, back.Pattern.Panels); diff != "" {
		t.Errorf("panels changed (-written +read):\n%s", diff)
	}
}

func TestWriteRejectsUnknownCoords(t *testing.T) {
	s := loadSkirt(t)
	s.Properties.CurvatureCoords = ""
	var buf bytes.Buffer
	if err := Write(s, &buf); err == nil {
		t.Errorf("Write succeeded without curvature_coords:\n%s", buf.String())
	}
	if err := s.Validate(); !errors.Is(err, errors.ErrCodeInvalidSpec) {
		t.Errorf("Validate = %v, want INVALID_SPEC", err)
	}
}

func TestNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"patterns/skirt_2_panels.json", "skirt_2_panels"},
		{"data/tee/specification.json", "tee"},
		{"data/tee/template.json", "tee"},
		{"data/tee/prediction.json", "tee"},
		{"tee_specification.json", "tee_specification"},
	}
	for _, tt := range tests {
		if got := NameFromPath(tt.path); got != tt.want {
			t.Errorf("NameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestExport(t *testing.T) {
	s := loadSkirt(t)
	dir := t.TempDir()

	out, err := Export(s, dir, true)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out != filepath.Join(dir, "skirt") {
		t.Errorf("export dir = %q", out)
	}
	back, err := Load(filepath.Join(out, SpecFileName))
	if err != nil {
		t.Fatalf("Load exported: %v", err)
	}
	if back.Name != "skirt" {
		t.Errorf("reloaded name = %q, want skirt", back.Name)
	}
	if _, err := Export(s, dir, true); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("second export err = %v, want INVALID_PATH", err)
	}

	if _, err := Export(s, dir, false); err != nil {
		t.Fatalf("flat Export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "skirt_specification.json")); err != nil {
		t.Errorf("flat export file missing: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}
