package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-prompts/internal/model"
	"github.com/atomicstack/tmux-prompts/internal/theme"
)

type settingsRow int

const (
	rowHotkey settingsRow = iota
	rowTheme
	rowAccent
	rowAlwaysOnTop
	rowAutoLaunch
	rowQuit
	rowCount
)

var themeOrder = []string{model.ThemeDark, model.ThemeLight, model.ThemeAuto}

// handleRecordingKey routes every key to the hotkey session. Enter stores a
// captured combination; a plain enter can never be a launcher key.
func (m *EditorModel) handleRecordingKey(key tea.KeyMsg) tea.Cmd {
	if key.Type == tea.KeyEnter && m.hotkey.Combo() != "" {
		return m.hotkey.SaveHotkey()
	}
	cmd, _ := m.hotkey.HandleKey(key)
	return cmd
}

func (m *EditorModel) handleSettingsKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc", "q":
		return m.closeSettings()
	case "up", "k":
		m.settingsCursor = max(m.settingsCursor-1, 0)
		return nil
	case "down", "j":
		m.settingsCursor = min(m.settingsCursor+1, int(rowCount)-1)
		return nil
	case "enter", " ", "right", "l":
		return m.activateSetting(1)
	case "left", "h":
		return m.activateSetting(-1)
	}
	return nil
}

func (m *EditorModel) closeSettings() tea.Cmd {
	m.releaseHotkey()
	m.setFocus(focusSidebar)
	return nil
}

func (m *EditorModel) activateSetting(delta int) tea.Cmd {
	current, ok := m.settings.Current()
	row := settingsRow(m.settingsCursor)
	if !ok && row != rowQuit {
		return nil
	}
	switch row {
	case rowHotkey:
		if m.hotkey.Busy() {
			return nil
		}
		return m.hotkey.StartRecording()
	case rowTheme:
		return m.settings.SetTheme(cycle(themeOrder, current.Appearance.Theme, delta))
	case rowAccent:
		return m.settings.SetAccent(cycle(theme.AccentNames(), current.Appearance.AccentColor, delta))
	case rowAlwaysOnTop:
		return m.settings.SetAlwaysOnTop(!current.General.EditorAlwaysOnTop)
	case rowAutoLaunch:
		return m.settings.SetAutoLaunch(!current.General.AutoLaunch)
	case rowQuit:
		if delta < 0 {
			return nil
		}
		m.releaseHotkey()
		return m.settings.QuitApp()
	}
	return nil
}

// cycle returns the option delta steps away from current, wrapping around.
// An unknown current value starts from the first option.
func cycle(options []string, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	idx := -1
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return options[0]
	}
	n := len(options)
	return options[((idx+delta)%n+n)%n]
}
