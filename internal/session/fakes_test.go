package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/model"
)

// fakeCommands is an in-memory boundary.
type fakeCommands struct {
	mu       sync.Mutex
	prompts  map[string]model.Prompt
	folders  []string
	settings model.AppSettings
	nextID   int

	saveErr         error
	indexErr        error
	deleteErr       error
	usageErr        error
	saveSettingsErr error

	saves         []model.Prompt
	usage         []string
	settingsSaves []model.AppSettings
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{
		prompts:  map[string]model.Prompt{},
		settings: model.DefaultSettings(),
	}
}

func (f *fakeCommands) add(name, folder, content string) model.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := model.Prompt{Content: content}
	p.ID = fmt.Sprintf("p%d", f.nextID)
	p.Name = name
	p.Folder = folder
	p.Filename = p.ID + ".md"
	f.prompts[p.ID] = p
	return p
}

func (f *fakeCommands) indexLocked() model.PromptIndex {
	idx := model.PromptIndex{Folders: append([]string(nil), f.folders...)}
	ids := make([]string, 0, len(f.prompts))
	for id := range f.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		idx.Prompts = append(idx.Prompts, f.prompts[id].PromptMetadata)
	}
	return idx
}

func (f *fakeCommands) GetIndex(context.Context) (model.PromptIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexErr != nil {
		return model.PromptIndex{}, f.indexErr
	}
	return f.indexLocked(), nil
}

func (f *fakeCommands) GetFolders(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.folders...), nil
}

func (f *fakeCommands) GetPrompt(_ context.Context, id string) (model.Prompt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prompts[id]
	if !ok {
		return model.Prompt{}, apperror.NotFound("prompt", id)
	}
	return p, nil
}

func (f *fakeCommands) SavePrompt(_ context.Context, p model.Prompt) (model.PromptMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, p)
	if f.saveErr != nil {
		return model.PromptMetadata{}, f.saveErr
	}
	if p.ID == "" {
		f.nextID++
		p.ID = fmt.Sprintf("p%d", f.nextID)
		p.Filename = p.ID + ".md"
	}
	f.prompts[p.ID] = p
	return p.PromptMetadata, nil
}

func (f *fakeCommands) DeletePrompt(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.prompts[id]; !ok {
		return apperror.NotFound("prompt", id)
	}
	delete(f.prompts, id)
	return nil
}

func (f *fakeCommands) AddFolder(_ context.Context, name string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders = append(f.folders, name)
	return append([]string(nil), f.folders...), nil
}

func (f *fakeCommands) RenameFolder(_ context.Context, oldName, newName string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, name := range f.folders {
		if name == oldName {
			f.folders[i] = newName
		}
	}
	for id, p := range f.prompts {
		if p.Folder == oldName {
			p.Folder = newName
			f.prompts[id] = p
		}
	}
	return append([]string(nil), f.folders...), nil
}

func (f *fakeCommands) DeleteFolder(_ context.Context, name string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.folders[:0]
	for _, n := range f.folders {
		if n != name {
			kept = append(kept, n)
		}
	}
	f.folders = kept
	for id, p := range f.prompts {
		if p.Folder == name {
			p.Folder = ""
			f.prompts[id] = p
		}
	}
	return append([]string(nil), f.folders...), nil
}

func (f *fakeCommands) SearchPrompts(_ context.Context, query string) ([]model.PromptMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PromptMetadata
	for _, p := range f.indexLocked().Prompts {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCommands) RecordUsage(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage = append(f.usage, id)
	return f.usageErr
}

func (f *fakeCommands) GetSettings(context.Context) (model.AppSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings, nil
}

func (f *fakeCommands) SaveSettings(_ context.Context, s model.AppSettings) (model.AppSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveSettingsErr != nil {
		return model.AppSettings{}, f.saveSettingsErr
	}
	f.settings = s
	f.settingsSaves = append(f.settingsSaves, s)
	return s, nil
}

// fakeHost implements every host interface and records the calls.
type fakeHost struct {
	mu sync.Mutex

	pasted      []string
	copied      []string
	dismissals  int
	editorOpens []string

	pauses     int
	resumes    int
	registered []string

	alwaysOnTop []bool
	quits       int

	pasteErr     error
	pauseErr     error
	registerErr  error
	effectErr    error
	quitErr      error
	autoLaunchOn bool
}

func (h *fakeHost) PasteAndDismiss(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pasteErr != nil {
		return h.pasteErr
	}
	h.pasted = append(h.pasted, text)
	return nil
}

func (h *fakeHost) Dismiss(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dismissals++
	return nil
}

func (h *fakeHost) CopyToClipboard(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.copied = append(h.copied, text)
	return nil
}

func (h *fakeHost) OpenEditor(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.editorOpens = append(h.editorOpens, id)
	return nil
}

func (h *fakeHost) PauseHotkey(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pauseErr != nil {
		return h.pauseErr
	}
	h.pauses++
	return nil
}

func (h *fakeHost) ResumeHotkey(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resumes++
	return nil
}

func (h *fakeHost) RegisterHotkey(_ context.Context, combo string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registered = append(h.registered, combo)
	return h.registerErr
}

func (h *fakeHost) SetAlwaysOnTop(_ context.Context, enabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.effectErr != nil {
		return h.effectErr
	}
	h.alwaysOnTop = append(h.alwaysOnTop, enabled)
	return nil
}

func (h *fakeHost) AutoLaunchEnabled(context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.autoLaunchOn, nil
}

func (h *fakeHost) SetAutoLaunch(_ context.Context, enabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.effectErr != nil {
		return h.effectErr
	}
	h.autoLaunchOn = enabled
	return nil
}

func (h *fakeHost) Quit(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.quits++
	return h.quitErr
}

type msgHandler interface {
	HandleMsg(tea.Msg) (tea.Cmd, bool)
}

// step runs cmd and feeds its message to h, returning the follow-up command.
func step(t *testing.T, h msgHandler, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	next, handled := h.HandleMsg(cmd())
	require.True(t, handled)
	return next
}

// settle keeps stepping until no follow-up remains or a message is not
// handled, and returns that unhandled message.
func settle(t *testing.T, h msgHandler, cmd tea.Cmd) tea.Msg {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 50, "command chain did not settle")
		msg := cmd()
		next, handled := h.HandleMsg(msg)
		if !handled {
			return msg
		}
		cmd = next
	}
	return nil
}
