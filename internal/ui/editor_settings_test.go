package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tmux-prompts/internal/model"
)

func (f *editorFixture) openSettingsRow(row settingsRow) {
	f.h.Send(tea.KeyMsg{Type: tea.KeyCtrlT})
	for i := 0; i < int(row); i++ {
		f.h.Key(tea.KeyDown)
	}
}

func (f *editorFixture) storedSettings(t *testing.T) model.AppSettings {
	t.Helper()
	s, err := f.store.LoadSettings()
	require.NoError(t, err)
	return s
}

func TestSettingsPanelShowsCurrentValues(t *testing.T) {
	f := newEditorFixture(t, true, EditorOptions{})
	f.openSettingsRow(rowHotkey)
	view := f.h.View()
	assert.Contains(t, view, "Launcher hotkey")
	assert.Contains(t, view, model.DefaultHotkey)
	assert.Contains(t, view, "dark")
}

func TestSettingsPanelCyclesTheme(t *testing.T) {
	f := newEditorFixture(t, true, EditorOptions{})
	f.openSettingsRow(rowTheme)
	f.h.Key(tea.KeyEnter)
	assert.Equal(t, model.ThemeLight, f.storedSettings(t).Appearance.Theme)

	f.h.Key(tea.KeyLeft)
	f.h.Key(tea.KeyLeft)
	assert.Equal(t, model.ThemeAuto, f.storedSettings(t).Appearance.Theme)
}

func TestSettingsPanelCyclesAccent(t *testing.T) {
	f := newEditorFixture(t, true, EditorOptions{})
	f.openSettingsRow(rowAccent)
	f.h.Key(tea.KeyRight)
	assert.NotEqual(t, "avocado", f.storedSettings(t).Appearance.AccentColor)
}

func TestSettingsPanelTogglesAlwaysOnTop(t *testing.T) {
	f := newEditorFixture(t, true, EditorOptions{})
	f.openSettingsRow(rowAlwaysOnTop)
	f.h.Key(tea.KeyEnter)
	assert.Equal(t, []bool{false}, f.host.alwaysOnTop)
	assert.False(t, f.storedSettings(t).General.EditorAlwaysOnTop)
}

func TestSettingsPanelTogglesAutoLaunch(t *testing.T) {
	f := newEditorFixture(t, true, EditorOptions{})
	f.openSettingsRow(rowAutoLaunch)
	f.h.Key(tea.KeyEnter)
	assert.True(t, f.host.autoLaunch)
	assert.True(t, f.storedSettings(t).General.AutoLaunch)
}

func TestSettingsPanelRecordsHotkey(t *testing.T) {
	f := newEditorFixture(t, true, EditorOptions{})
	f.openSettingsRow(rowHotkey)
	f.h.Key(tea.KeyEnter)
	require.True(t, f.hotkey.Recording())
	assert.Equal(t, 1, f.host.pauses)

	// enter before any combination is captured, not saved
	f.h.Key(tea.KeyEnter)
	require.True(t, f.hotkey.Recording())
	assert.Equal(t, "Enter", f.hotkey.Combo())

	f.h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o"), Alt: true})
	assert.Contains(t, f.h.View(), "Alt+O")

	f.h.Key(tea.KeyEnter)

	assert.False(t, f.hotkey.Recording())
	assert.Equal(t, []string{"Alt+O"}, f.host.registered)
	assert.Equal(t, 1, f.host.resumes)
	assert.Equal(t, "Alt+O", f.storedSettings(t).General.Hotkey)
}

func TestSettingsPanelEscapeCancelsRecording(t *testing.T) {
	f := newEditorFixture(t, true, EditorOptions{})
	f.openSettingsRow(rowHotkey)
	f.h.Key(tea.KeyEnter)
	require.True(t, f.hotkey.Recording())

	f.h.Key(tea.KeyEsc)
	assert.False(t, f.hotkey.Recording())
	assert.Equal(t, 1, f.host.resumes)
	assert.Equal(t, focusSettings, f.model().focus)

	f.h.Key(tea.KeyEsc)
	assert.Equal(t, focusSidebar, f.model().focus)
	assert.Empty(t, f.host.registered)
}

func TestSettingsPanelQuit(t *testing.T) {
	f := newEditorFixture(t, true, EditorOptions{})
	f.openSettingsRow(rowQuit)
	f.h.Key(tea.KeyEnter)
	assert.Equal(t, 1, f.host.quits)
	assert.True(t, f.h.Quit())
}

func TestWelcomeBannerDismissed(t *testing.T) {
	f := newEditorFixture(t, true, EditorOptions{})
	require.Contains(t, f.h.View(), "Welcome to tmux-prompts")

	f.h.Send(tea.KeyMsg{Type: tea.KeyCtrlW})

	assert.NotContains(t, f.h.View(), "Welcome to tmux-prompts")
	assert.True(t, f.storedSettings(t).General.WelcomeScreenDismissed)
}

func TestCycle(t *testing.T) {
	opts := []string{"a", "b", "c"}
	tests := []struct {
		current string
		delta   int
		want    string
	}{
		{"a", 1, "b"},
		{"c", 1, "a"},
		{"a", -1, "c"},
		{"b", -4, "a"},
		{"zzz", 1, "a"},
	}
	for _, tt := range tests {
		if got := cycle(opts, tt.current, tt.delta); got != tt.want {
			t.Fatalf("cycle(%q, %d) = %q, want %q", tt.current, tt.delta, got, tt.want)
		}
	}
	if got := cycle(nil, "x", 1); got != "x" {
		t.Fatalf("expected unchanged value for no options, got %q", got)
	}
}
