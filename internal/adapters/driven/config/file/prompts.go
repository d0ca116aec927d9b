package file

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/medreport/internal/core/ports/driven"
	"github.com/custodia-labs/medreport/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults/*.txt
var defaultsFS embed.FS

// defaultPrompts holds the built-in prompt for every name in
// driven.PromptNames, keyed by name.
var defaultPrompts = mustLoadDefaults(defaultsFS)

func mustLoadDefaults(fsys fs.FS) map[string]string {
	out := make(map[string]string)
	for _, name := range driven.PromptNames() {
		data, err := fs.ReadFile(fsys, "defaults/"+name+".txt")
		if err != nil {
			panic(fmt.Sprintf("built-in prompt %s missing: %v", name, err))
		}
		out[name] = strings.TrimSpace(string(data))
	}
	return out
}

// PromptStore serves prompts from <dir>/<name>.txt, seeded with the
// built-in prompts on first use. Files that are missing, unreadable or
// have the wrong number of %s placeholders fall back to the built-in text.
type PromptStore struct {
	dir string

	setup    sync.Once
	setupErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore returns a store rooted at promptDir, or ~/.medreport/prompts
// when empty. Nothing is written until the first Load or Watch.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, "prompts")
	}
	return &PromptStore{dir: promptDir, cache: make(map[string]string)}, nil
}

// Load returns the prompt template called name.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, known := defaultPrompts[name]

	s.setup.Do(s.seed)
	if s.setupErr != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.setupErr)
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	prompt := strings.TrimSpace(string(data))

	if known && placeholders(prompt) != placeholders(builtin) {
		logger.Warn("prompt %s.txt has %d placeholders, expected %d; using the built-in prompt",
			name, placeholders(prompt), placeholders(builtin))
		prompt = builtin
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// Watch reloads the cache whenever a prompt file changes, until ctx is done.
// The returned channel receives the name of each reloaded prompt and is
// closed when watching stops.
func (s *PromptStore) Watch(ctx context.Context) (<-chan string, error) {
	s.setup.Do(s.seed)
	if s.setupErr != nil {
		return nil, s.setupErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create prompt watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}

	reloaded := make(chan string, 1)
	go func() {
		defer close(reloaded)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, changed := promptEvent(event)
				if !changed {
					continue
				}
				s.Reload()
				logger.Debug("prompt %s changed, cache cleared", name)
				select {
				case reloaded <- name:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("prompt watcher: %v", err)
			}
		}
	}()

	return reloaded, nil
}

// promptEvent reports which prompt a filesystem event touched.
// Only writes, creates, removes and renames of *.txt files count.
func promptEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != ".txt" {
		return "", false
	}
	return strings.TrimSuffix(base, ".txt"), true
}

// seed creates the directory, writes any missing built-in prompts and
// the README. Existing files are left alone.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.setupErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	for _, name := range driven.PromptNames() {
		if err := writeIfMissing(s.path(name), defaultPrompts[name]); err != nil {
			s.setupErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}
	s.setupErr = writeIfMissing(filepath.Join(s.dir, "README.md"), readme())
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0600)
}

func placeholders(prompt string) int {
	return strings.Count(prompt, "%s")
}

func readme() string {
	var b strings.Builder
	b.WriteString("# MedReport Prompts\n\n")
	b.WriteString("These files hold the prompts sent to the analysis and simplify models.\n\n")
	b.WriteString("## Files\n\n")
	for _, name := range driven.PromptNames() {
		fmt.Fprintf(&b, "- `%s.txt` (%d placeholder(s))\n", name, placeholders(defaultPrompts[name]))
	}
	b.WriteString(`
## Customisation

Edit a file to change how reports are read or explained. ` + "`medreport mcp serve`" + `
picks up edits immediately; other commands read them on the next run.

Keep every ` + "`%s`" + ` placeholder. A file with the wrong number of
placeholders is ignored and the built-in prompt is used instead.
Delete a file to restore its default.
`)
	return b.String()
}
