package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/medreport/internal/adapters/driven/config/values"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Tests seed it instead of writing
// a config.toml; Save and Load do nothing.
type ConfigStore struct {
	values.Typed

	mu   sync.RWMutex
	data map[string]any
}

// NewConfigStore returns a store holding the union of the given
// dot-notation seeds. Later seeds win on duplicate keys.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{data: make(map[string]any)}
	for _, m := range seed {
		maps.Copy(s.data, m)
	}
	s.Typed = values.Typed{Lookup: s.Get}
	return s
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

// Path reports ":memory:" since nothing is written to disk.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
