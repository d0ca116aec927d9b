package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/medreport/internal/adapters/driven/config/values"
	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// EnvBinding maps an environment variable onto config keys.
type EnvBinding struct {
	Env  string
	Keys []string
}

// DefaultEnvBindings returns the API key variables read on load.
// Environment values are never written back to the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
func DefaultEnvBindings() []EnvBinding {
	return []EnvBinding{
		{Env: "GEMINI_API_KEY", Keys: []string{"keys.gemini"}},
		{Env: "OPENAI_API_KEY", Keys: []string{"keys.openai"}},
		{Env: "ANTHROPIC_API_KEY", Keys: []string{"keys.anthropic"}},
		{Env: "MEDREPORT_LLM_API_KEY", Keys: []string{"analysis.api_key", "simplify.api_key"}},
		{Env: "MEDREPORT_ANALYSIS_API_KEY", Keys: []string{"analysis.api_key"}},
		{Env: "MEDREPORT_SIMPLIFY_API_KEY", Keys: []string{"simplify.api_key"}},
		{Env: "MEDREPORT_EMBEDDING_API_KEY", Keys: []string{"embedding.api_key"}},
		{Env: "GITHUB_TOKEN", Keys: []string{"keys.github"}},
	}
}

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Configuration is stored in a TOML file within the medreport config directory.
// Values bound from the environment take precedence over the file.
type ConfigStore struct {
	values.Typed

	mu       sync.RWMutex
	filePath string
	data     map[string]any
	env      map[string]any
	bindings []EnvBinding
	getenv   func(string) string
}

// Option configures a ConfigStore.
type Option func(*ConfigStore)

// WithEnvBindings replaces the default environment bindings.
func WithEnvBindings(bindings []EnvBinding) Option {
	return func(s *ConfigStore) { s.bindings = bindings }
}

// WithGetenv replaces os.Getenv, mainly for tests.
func WithGetenv(getenv func(string) string) Option {
	return func(s *ConfigStore) { s.getenv = getenv }
}

// DefaultDir returns ~/.medreport.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".medreport"), nil
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.medreport/config.toml.
func NewConfigStore(configDir string, opts ...Option) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
		env:      make(map[string]any),
		bindings: DefaultEnvBindings(),
		getenv:   os.Getenv,
	}
	s.Typed = values.Typed{Lookup: s.Get}
	for _, opt := range opts {
		opt(s)
	}

	// Load existing data if file exists
	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if val, ok := s.env[key]; ok {
		return val, true
	}
	val, ok := s.data[key]
	return val, ok
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	delete(s.env, key)
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
// Dotted keys are written back as nested tables.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(unflattenMap(s.data))
	if err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file yet - that's fine, start empty
			s.data = make(map[string]any)
			s.loadEnv()
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}

	if loaded == nil {
		loaded = make(map[string]any)
	}

	// Flatten nested maps into dot-notation keys for easier access
	s.data = flattenMap(loaded, "")
	s.loadEnv()
	return nil
}

// loadEnv applies the environment bindings (caller must hold lock).
// Later bindings win, so specific variables override shared ones.
func (s *ConfigStore) loadEnv() {
	s.env = make(map[string]any)
	for _, b := range s.bindings {
		val := strings.TrimSpace(s.getenv(b.Env))
		if val == "" {
			continue
		}
		for _, key := range b.Keys {
			s.env[key] = val
		}
	}
}

// FlattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			// Recursively flatten nested maps
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// unflattenMap converts dot-notation keys back to nested maps.
func unflattenMap(m map[string]any) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}

	return result
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
