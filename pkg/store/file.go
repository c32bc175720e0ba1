package store

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Ensure File implements Store.
var _ Store = (*File)(nil)

// File is a Store backed by a single YAML file. The whole map is
// rewritten on every Put, which is fine for the handful of small keys
// this subsystem persists.
type File struct {
	mu     sync.Mutex
	path   string
	values map[string][]byte
}

// NewFile creates a file-backed store. A missing file is treated as
// an empty store.
func NewFile(path string) (*File, error) {
	f := &File{
		path:   path,
		values: make(map[string][]byte),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if err := yaml.Unmarshal(data, &f.values); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	return f, nil
}

func (f *File) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (f *File) Put(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	f.values[key] = stored

	data, err := yaml.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}
