package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pattern"
)

// FileStore keeps each spec as <dir>/<name>.json, wrapped in an envelope
// holding the revision metadata.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

type fileEnvelope struct {
	Revision  string          `json:"revision"`
	UpdatedAt time.Time       `json:"updated_at"`
	Spec      json.RawMessage `json:"spec"`
}

// NewFileStore opens a store in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create store dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Put implements [Store].
func (fs *FileStore) Put(ctx context.Context, name string, s *pattern.Spec) (Document, error) {
	if err := errors.ValidateStoreName(name); err != nil {
		return Document{}, err
	}
	data, err := encodeSpec(s)
	if err != nil {
		return Document{}, err
	}
	doc := Document{Name: name, Revision: newRevision(), UpdatedAt: time.Now().UTC(), Spec: s}
	env, err := json.MarshalIndent(fileEnvelope{Revision: doc.Revision, UpdatedAt: doc.UpdatedAt, Spec: data}, "", "  ")
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInternal, err, "encode envelope")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := writeAtomic(fs.path(name), env); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInternal, err, "write pattern %q", name)
	}
	return doc, nil
}

// Get implements [Store].
func (fs *FileStore) Get(ctx context.Context, name string) (Document, error) {
	if err := errors.ValidateStoreName(name); err != nil {
		return Document{}, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.read(name)
}

// List implements [Store].
func (fs *FileStore) List(ctx context.Context) ([]Summary, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list %s", fs.dir)
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".json"); ok && !e.IsDir() {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	out := make([]Summary, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := fs.read(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Summarize(doc))
	}
	return out, nil
}

// Delete implements [Store].
func (fs *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateStoreName(name); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	err := os.Remove(fs.path(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	return err
}

// Close does nothing for file store.
func (fs *FileStore) Close(context.Context) error { return nil }

func (fs *FileStore) read(name string) (Document, error) {
	data, err := os.ReadFile(fs.path(name))
	if os.IsNotExist(err) {
		return Document{}, notFound(name)
	}
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInternal, err, "read pattern %q", name)
	}
	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "stored pattern %q", name)
	}
	s, err := decodeSpec(name, env.Spec)
	if err != nil {
		return Document{}, err
	}
	return Document{Name: name, Revision: env.Revision, UpdatedAt: env.UpdatedAt, Spec: s}, nil
}

func (fs *FileStore) path(name string) string {
	return filepath.Join(fs.dir, name+".json")
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pattern-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var _ Store = (*FileStore)(nil)
