package pipeline

import (
	"bytes"
	"os"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pattern"
)

// defaultName names inline specs that come without one.
const defaultName = "pattern"

// Load reads the template selected by opts and returns it together with its
// serialized form. The returned spec is always a fresh copy; opts.Template is
// never modified.
func Load(opts Options) (*pattern.Spec, []byte, error) {
	var (
		data []byte
		name string
		err  error
	)
	switch {
	case opts.SpecPath != "":
		data, err = os.ReadFile(opts.SpecPath)
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "pattern spec %s", opts.SpecPath)
		}
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", opts.SpecPath)
		}
		name = pattern.NameFromPath(opts.SpecPath)
	case len(opts.Spec) > 0:
		data, name = opts.Spec, defaultName
	case opts.Template != nil:
		var buf bytes.Buffer
		if err := pattern.Write(opts.Template, &buf); err != nil {
			return nil, nil, err
		}
		data, name = buf.Bytes(), opts.Template.Name
	default:
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "nothing to load")
	}

	s, err := pattern.Read(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	s.Name = name
	if opts.Name != "" {
		s.Name = opts.Name
	}
	return s, data, nil
}
