package pattern

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/seamline/pkg/errors"
)

// standardNames are file names that say nothing about the pattern itself;
// such files take the name of their directory instead.
var standardNames = []string{"specification", "template", "prediction"}

// SpecFileName is the file name used by [Export] for subfolder layouts.
const SpecFileName = "specification.json"

// Read decodes a spec from r, validates it and normalizes it. The returned
// spec has no name.
func Read(r io.Reader) (*Spec, error) {
	var s Spec
	dec := json.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode pattern spec")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.Normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads the spec file at path. The spec is named after the file, or
// after its directory when the file has a standard name such as
// specification.json.
func Load(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "pattern spec %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "load %s", path)
	}
	s.Name = NameFromPath(path)
	return s, nil
}

// NameFromPath derives a pattern name from a spec file path.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if slices.Contains(standardNames, name) {
		return filepath.Base(filepath.Dir(filepath.Clean(path)))
	}
	return name
}

// Write encodes s to w as indented JSON. The spec is written as is; it is
// never re-normalized.
func Write(s *Spec, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode pattern spec")
	}
	return nil
}

// Save writes s to path, creating parent directories.
func Save(s *Spec, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := Write(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Export saves s under dir and returns the directory it was written to.
// With subfolder set the file is dir/<name>/specification.json and the new
// folder must not exist yet; otherwise it is dir/<name>_specification.json.
func Export(s *Spec, dir string, subfolder bool) (string, error) {
	if err := errors.ValidateName(s.Name); err != nil {
		return "", err
	}
	if !subfolder {
		return dir, Save(s, filepath.Join(dir, s.Name+"_"+SpecFileName))
	}
	out := filepath.Join(dir, s.Name)
	if _, err := os.Stat(out); err == nil {
		return "", errors.New(errors.ErrCodeInvalidPath, "export directory %s already exists", out)
	}
	return out, Save(s, filepath.Join(out, SpecFileName))
}
