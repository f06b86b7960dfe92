package watcher

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Mirror keeps the board document in a plain file so it can be edited with
// any editor. It remembers what it last wrote so its own writes are not
// reported back as external edits.
type Mirror struct {
	path string
	mu   sync.Mutex
	last [sha256.Size]byte
	seen bool
}

// NewMirror returns a Mirror for path. Nothing is touched on disk.
func NewMirror(path string) *Mirror {
	return &Mirror{path: path}
}

// Path returns the mirrored file path.
func (m *Mirror) Path() string { return m.path }

// Write replaces the file with doc via a temp file and rename.
func (m *Mirror) Write(doc string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".casefile-doc-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.WriteString(doc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace mirror: %w", err)
	}
	m.last = sha256.Sum256([]byte(doc))
	m.seen = true
	return nil
}

// ReadExternal returns the file contents when they differ from the last
// content written or read. changed is false for the mirror's own writes
// and for a missing file.
func (m *Mirror) ReadExternal() (doc string, changed bool, err error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sum := sha256.Sum256(data)
	if m.seen && sum == m.last {
		return "", false, nil
	}
	m.last = sum
	m.seen = true
	return string(data), true, nil
}

// Watch starts a debounced watcher on the mirror file. onDoc receives each
// external edit; onError receives watcher and read errors.
func (m *Mirror) Watch(onDoc func(string), onError func(error), opts ...WatcherOption) (*Watcher, error) {
	opts = append(opts,
		WithOnChange(func() {
			doc, changed, err := m.ReadExternal()
			if err != nil {
				onError(err)
				return
			}
			if changed {
				onDoc(doc)
			}
		}),
		WithOnError(onError),
	)
	w, err := NewWatcher(m.path, opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}
