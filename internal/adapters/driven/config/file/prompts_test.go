package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medreport/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestDefaultPrompts(t *testing.T) {
	tests := []struct {
		name         string
		placeholders int
		contains     string
	}{
		{driven.PromptTextAnalysisSystem, 0, `"report_type"`},
		{driven.PromptTextAnalysisUser, 1, "---BEGIN REPORT---"},
		{driven.PromptImageAnalysisSystem, 0, `"image_quality_notes"`},
		{driven.PromptImageAnalysisUser, 0, "image"},
		{driven.PromptSimplifySystem, 0, `"followup_questions"`},
		{driven.PromptSimplifyUser, 2, "DETAILED FINDINGS:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, ok := defaultPrompts[tt.name]
			require.True(t, ok)
			assert.Equal(t, tt.placeholders, placeholders(prompt))
			assert.Contains(t, prompt, tt.contains)
			assert.NotContains(t, prompt, "%!")
		})
	}

	assert.Len(t, defaultPrompts, len(driven.PromptNames()))
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptTextAnalysisUser)
	require.NoError(t, err)

	for _, name := range driven.PromptNames() {
		_, err := os.Stat(filepath.Join(dir, name+".txt"))
		assert.NoError(t, err, "expected %s.txt to exist", name)
	}
	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "simplify_user.txt` (2 placeholder(s))")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "Read this lab report carefully:\n%s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptTextAnalysisUser+".txt"), []byte(custom+"\n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptTextAnalysisUser)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)

	// Existing files are not overwritten by initialisation.
	data, err := os.ReadFile(filepath.Join(dir, driven.PromptTextAnalysisUser+".txt"))
	require.NoError(t, err)
	assert.Equal(t, custom+"\n\n", string(data))
}

func TestPromptStore_Load_WrongPlaceholderCount(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptSimplifyUser+".txt"), []byte("only %s"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSimplifyUser)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptSimplifyUser], prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptSimplifySystem)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, driven.PromptImageAnalysisUser+".txt")))

	prompt, err := store.Load(driven.PromptImageAnalysisUser)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptImageAnalysisUser], prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("does_not_exist")
	assert.Error(t, err)
}

func TestPromptStore_Load_InitFailureUsesDefaults(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts")
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptTextAnalysisUser)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptTextAnalysisUser], prompt)

	_, err = store.Load("does_not_exist")
	assert.Error(t, err)
}

func TestPromptStore_Reload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, driven.PromptImageAnalysisUser+".txt")
	_, err = store.Load(driven.PromptImageAnalysisUser)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("Describe the scan."), 0600))

	cached, err := store.Load(driven.PromptImageAnalysisUser)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptImageAnalysisUser], cached)

	store.Reload()

	fresh, err := store.Load(driven.PromptImageAnalysisUser)
	require.NoError(t, err)
	assert.Equal(t, "Describe the scan.", fresh)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range driven.PromptNames() {
				_, err := store.Load(name)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestPromptEvent(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		name  string
		ok    bool
	}{
		{fsnotify.Event{Name: "/p/simplify_user.txt", Op: fsnotify.Write}, "simplify_user", true},
		{fsnotify.Event{Name: "/p/simplify_user.txt", Op: fsnotify.Create}, "simplify_user", true},
		{fsnotify.Event{Name: "/p/simplify_user.txt", Op: fsnotify.Remove}, "simplify_user", true},
		{fsnotify.Event{Name: "/p/simplify_user.txt", Op: fsnotify.Write | fsnotify.Chmod}, "simplify_user", true},
		{fsnotify.Event{Name: "/p/simplify_user.txt", Op: fsnotify.Chmod}, "", false},
		{fsnotify.Event{Name: "/p/README.md", Op: fsnotify.Write}, "", false},
		{fsnotify.Event{Name: "/p/.simplify_user.txt.swp", Op: fsnotify.Write}, "", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.event.Name, tt.event.Op), func(t *testing.T) {
			name, ok := promptEvent(tt.event)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestPromptStore_Watch(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded, err := store.Watch(ctx)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptImageAnalysisUser)
	require.NoError(t, err)

	path := filepath.Join(dir, driven.PromptImageAnalysisUser+".txt")
	require.NoError(t, os.WriteFile(path, []byte("Read the scanned page."), 0600))

	select {
	case name := <-reloaded:
		assert.Equal(t, driven.PromptImageAnalysisUser, name)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for prompt reload")
	}

	assert.Eventually(t, func() bool {
		prompt, err := store.Load(driven.PromptImageAnalysisUser)
		return err == nil && prompt == "Read the scanned page."
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-reloaded
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}
