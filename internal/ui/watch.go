package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-prompts/internal/backend"
)

// changeSource is the part of backend.Watcher the editor listens to.
type changeSource interface {
	Events() <-chan backend.Event
}

func waitForChange(w changeSource) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return watchDoneMsg{}
		}
		return watchEventMsg{event: evt}
	}
}

type watchEventMsg struct {
	event backend.Event
}

type watchDoneMsg struct{}

func (m *EditorModel) handleWatchEventMsg(msg tea.Msg) tea.Cmd {
	evt := msg.(watchEventMsg).event
	var cmd tea.Cmd
	if evt.Err != nil {
		m.watchErr = evt.Err
	} else {
		m.watchErr = nil
		cmd = m.editor.ExternalChange()
	}
	if m.watcher == nil {
		return cmd
	}
	return tea.Batch(cmd, waitForChange(m.watcher))
}

func (m *EditorModel) handleWatchDoneMsg(tea.Msg) tea.Cmd {
	m.watcher = nil
	return nil
}
