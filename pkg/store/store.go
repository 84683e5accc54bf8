// Package store persists calibration data in a key-value store with
// file, SQLite, keyring and in-memory backends.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// PointsKey is the key the calibration points are stored under
const PointsKey = "points"

var ErrNotFound = errors.New("key not found")

// Store is a synchronous key-value store
type Store interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
}

// Pather is implemented by stores backed by a file that can be watched
type Pather interface {
	Path(key string) string
}

// Backends lists the supported backend names
var Backends = []string{"file", "sqlite", "keyring", "memory"}

// Open creates the named backend rooted at dir
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "file":
		return NewFileStore(dir)
	case "sqlite":
		return OpenSQLite(filepath.Join(dir, "gocalib.db"))
	case "keyring":
		return NewKeyringStore(), nil
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// Memory is an in-memory store
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append([]byte(nil), v...), nil
}
