package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tmux-prompts/internal/boundary"
	"github.com/atomicstack/tmux-prompts/internal/model"
	"github.com/atomicstack/tmux-prompts/internal/session"
	"github.com/atomicstack/tmux-prompts/internal/store"
	"github.com/atomicstack/tmux-prompts/internal/theme"
)

// recordingHost stands in for tmux.
type recordingHost struct {
	mu sync.Mutex

	pasted      []string
	copied      []string
	dismissals  int
	editorOpens []string
	pauses      int
	resumes     int
	registered  []string
	alwaysOnTop []bool
	autoLaunch  bool
	quits       int
}

func (h *recordingHost) PasteAndDismiss(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pasted = append(h.pasted, text)
	return nil
}

func (h *recordingHost) Dismiss(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dismissals++
	return nil
}

func (h *recordingHost) CopyToClipboard(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.copied = append(h.copied, text)
	return nil
}

func (h *recordingHost) OpenEditor(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.editorOpens = append(h.editorOpens, id)
	return nil
}

func (h *recordingHost) PauseHotkey(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pauses++
	return nil
}

func (h *recordingHost) ResumeHotkey(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resumes++
	return nil
}

func (h *recordingHost) RegisterHotkey(_ context.Context, combo string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registered = append(h.registered, combo)
	return nil
}

func (h *recordingHost) SetAlwaysOnTop(_ context.Context, enabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alwaysOnTop = append(h.alwaysOnTop, enabled)
	return nil
}

func (h *recordingHost) AutoLaunchEnabled(context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.autoLaunch, nil
}

func (h *recordingHost) SetAutoLaunch(_ context.Context, enabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.autoLaunch = enabled
	return nil
}

func (h *recordingHost) Quit(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.quits++
	return nil
}

func openStore(t *testing.T, seed bool) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	if seed {
		_, err := s.SeedIfNeeded()
		require.NoError(t, err)
	}
	return s
}

func newLocalFor(t *testing.T, s *store.Store) *boundary.Local {
	t.Helper()
	return boundary.NewLocal(s)
}

func savePrompt(t *testing.T, local *boundary.Local, name, folder, content string) model.PromptMetadata {
	t.Helper()
	p := model.NewDraft(folder, time.Now())
	p.Name = name
	p.Content = content
	meta, err := local.SavePrompt(context.Background(), p)
	require.NoError(t, err)
	return meta
}

func newLauncherSession(cmds boundary.Commands, host *recordingHost) *session.Launcher {
	return session.NewLauncher(cmds, host, time.Second)
}

func newLauncherHarness(t *testing.T, s *store.Store) (*Harness, *recordingHost, *session.Launcher) {
	t.Helper()
	host := &recordingHost{}
	sess := newLauncherSession(boundary.NewLocal(s), host)
	h := NewHarness(NewLauncher(sess, LauncherOptions{Width: 80, Height: 20, Debounce: time.Millisecond}))
	h.Init()
	return h, host, sess
}

type editorFixture struct {
	h        *Harness
	host     *recordingHost
	store    *store.Store
	editor   *session.Editor
	settings *session.Settings
	hotkey   *session.Hotkey
}

func (f *editorFixture) model() *EditorModel {
	return f.h.Model().(*EditorModel)
}

func newEditorFixture(t *testing.T, seed bool, opts EditorOptions) *editorFixture {
	t.Helper()
	return newEditorFixtureWithStore(t, openStore(t, seed), opts)
}

func newEditorFixtureWithStore(t *testing.T, s *store.Store, opts EditorOptions) *editorFixture {
	t.Helper()
	t.Cleanup(func() { theme.Apply(model.DefaultSettings().Appearance) })
	host := &recordingHost{}
	cmds := boundary.NewLocal(s)
	editor := session.NewEditor(cmds,
		session.WithEditorTimeout(time.Second),
		session.WithAutosaveDelays(time.Millisecond, time.Millisecond),
	)
	settings := session.NewSettings(cmds, host, theme.Apply, time.Second)
	hotkey := session.NewHotkey(host, settings, time.Second)
	if opts.Width == 0 {
		opts.Width, opts.Height = 100, 30
	}
	h := NewHarness(NewEditor(editor, settings, hotkey, opts))
	h.Init()
	return &editorFixture{h: h, host: host, store: s, editor: editor, settings: settings, hotkey: hotkey}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
