// Package store persists prompts as markdown files next to a JSON index and a
// JSON settings record. The index is reloaded and reconciled with the
// filesystem on every call, so edits made outside the program are picked up.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	promptsDirName   = "prompts"
	indexFileName    = "index.json"
	settingsFileName = "settings.json"
)

// Paths locates every file the store owns.
type Paths struct {
	Root         string
	PromptsDir   string
	IndexPath    string
	SettingsPath string
}

// NewPaths derives the layout under root.
func NewPaths(root string) Paths {
	return Paths{
		Root:         root,
		PromptsDir:   filepath.Join(root, promptsDirName),
		IndexPath:    filepath.Join(root, indexFileName),
		SettingsPath: filepath.Join(root, settingsFileName),
	}
}

// DefaultRoot returns ~/.tmux-prompts.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".tmux-prompts"), nil
}

// Store serialises all access to one storage root.
type Store struct {
	paths Paths

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides prompt id allocation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Open prepares the storage directories under root.
func Open(root string, opts ...Option) (*Store, error) {
	s := &Store{
		paths: NewPaths(root),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(s.paths.PromptsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create prompts directory: %w", err)
	}
	return s, nil
}

// Paths returns the storage layout.
func (s *Store) Paths() Paths {
	return s.paths
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *Store) promptPath(folder, filename string) string {
	if folder == "" {
		return filepath.Join(s.paths.PromptsDir, filename)
	}
	return filepath.Join(s.paths.PromptsDir, filepath.FromSlash(folder), filename)
}

func (s *Store) folderDir(folder string) string {
	if folder == "" {
		return s.paths.PromptsDir
	}
	return filepath.Join(s.paths.PromptsDir, filepath.FromSlash(folder))
}

// writeFileAtomic writes data to a sibling temp file and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
