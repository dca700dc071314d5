// Package store persists pattern specs by name.
//
// A [Store] keeps one current revision per pattern name. Every [Store.Put]
// assigns a fresh revision id, so clients can tell whether a spec changed
// since they last read it. [FileStore] keeps specs as JSON files in a
// directory; [MongoStore] keeps them in a MongoDB collection for the preview
// server.
//
// Stored specs are full pattern documents: they are validated and
// normalized on the way in and again on the way out, exactly like files
// loaded with [pattern.Load].
package store

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pattern"
)

// Document is a stored spec with its revision metadata.
type Document struct {
	Name      string
	Revision  string
	UpdatedAt time.Time
	Spec      *pattern.Spec
}

// Summary describes a stored spec without its geometry.
type Summary struct {
	Name       string    `json:"name"`
	Revision   string    `json:"revision"`
	UpdatedAt  time.Time `json:"updated_at"`
	Panels     int       `json:"panels"`
	Parameters int       `json:"parameters"`
}

// Store is a named collection of pattern specs. Implementations are safe for
// concurrent use.
type Store interface {
	// Put stores s under name, replacing any previous revision.
	Put(ctx context.Context, name string, s *pattern.Spec) (Document, error)

	// Get returns the current revision of name, or a NOT_FOUND error.
	Get(ctx context.Context, name string) (Document, error)

	// List returns summaries of all stored specs sorted by name.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes name, or returns a NOT_FOUND error.
	Delete(ctx context.Context, name string) error

	// Close releases the backend.
	Close(ctx context.Context) error
}

func newRevision() string { return uuid.NewString() }

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "pattern %q not found", name)
}

// encodeSpec serializes s in the pattern file format.
func encodeSpec(s *pattern.Spec) ([]byte, error) {
	var buf bytes.Buffer
	if err := pattern.Write(s, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode pattern")
	}
	return buf.Bytes(), nil
}

// decodeSpec parses a stored spec and names it.
func decodeSpec(name string, data []byte) (*pattern.Spec, error) {
	s, err := pattern.Read(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "stored pattern %q", name)
	}
	s.Name = name
	return s, nil
}

// Summarize returns the listing entry for d.
func Summarize(d Document) Summary {
	return Summary{
		Name:       d.Name,
		Revision:   d.Revision,
		UpdatedAt:  d.UpdatedAt,
		Panels:     len(d.Spec.Pattern.Panels),
		Parameters: len(d.Spec.Parameters),
	}
}
