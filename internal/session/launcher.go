package session

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-prompts/internal/boundary"
	"github.com/atomicstack/tmux-prompts/internal/logging/events"
	"github.com/atomicstack/tmux-prompts/internal/model"
)

// Launcher is the search-and-paste session behind the popup.
type Launcher struct {
	cmds    boundary.Commands
	host    PasteHost
	timeout time.Duration

	query    string
	results  []model.PromptMetadata
	selected int
	loading  bool
	busy     bool
	notice   string
	lastErr  error

	issued    uint64
	dismissed bool
}

// NewLauncher returns a launcher session with empty results.
func NewLauncher(cmds boundary.Commands, host PasteHost, timeout time.Duration) *Launcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Launcher{cmds: cmds, host: host, timeout: timeout}
}

type (
	searchResultMsg struct {
		seq     uint64
		query   string
		results []model.PromptMetadata
		err     error
	}
	pasteResultMsg struct {
		err error
	}
	copyResultMsg struct {
		err error
	}
	editorOpenedMsg struct {
		err error
	}
	// DismissedMsg is emitted once the host has hidden the launcher.
	DismissedMsg struct {
		Err error
	}
)

// Query is the text of the most recent search.
func (l *Launcher) Query() string { return l.query }

// Results are the hits of the latest applied search.
func (l *Launcher) Results() []model.PromptMetadata { return l.results }

// SelectedIndex is the highlighted row.
func (l *Launcher) SelectedIndex() int { return l.selected }

// Loading reports whether a search is outstanding.
func (l *Launcher) Loading() bool { return l.loading }

// Busy reports whether a paste or copy is in flight.
func (l *Launcher) Busy() bool { return l.busy }

// Notice is a transient status line such as "Copied to clipboard".
func (l *Launcher) Notice() string { return l.notice }

// LastError is the most recent failure, cleared by the next success.
func (l *Launcher) LastError() error { return l.lastErr }

// Dismissed reports whether the launcher has been hidden since the last query.
func (l *Launcher) Dismissed() bool { return l.dismissed }

// Selected returns the highlighted result.
func (l *Launcher) Selected() (model.PromptMetadata, bool) {
	if l.selected < 0 || l.selected >= len(l.results) {
		return model.PromptMetadata{}, false
	}
	return l.results[l.selected], true
}

func (l *Launcher) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), l.timeout)
}

// SetQuery issues a search for q. Only the response to the most recently
// issued search is applied.
func (l *Launcher) SetQuery(q string) tea.Cmd {
	l.query = q
	l.loading = true
	l.dismissed = false
	l.issued++
	seq := l.issued
	cmds := l.cmds
	events.Launcher.Query(seq, q)
	return func() tea.Msg {
		ctx, cancel := l.context()
		defer cancel()
		results, err := cmds.SearchPrompts(ctx, q)
		return searchResultMsg{seq: seq, query: q, results: results, err: err}
	}
}

// Refresh re-runs the current query.
func (l *Launcher) Refresh() tea.Cmd {
	return l.SetQuery(l.query)
}

// MoveSelection moves the highlight by delta, clamped to the result list.
func (l *Launcher) MoveSelection(delta int) {
	n := len(l.results)
	if n == 0 {
		return
	}
	next := l.selected + delta
	if next < 0 {
		next = 0
	}
	if next > n-1 {
		next = n - 1
	}
	if next != l.selected {
		l.selected = next
		events.Launcher.Cursor(next)
	}
}

func (l *Launcher) reset() {
	l.query = ""
	l.results = nil
	l.selected = 0
	l.notice = ""
}

// PasteSelected pastes the highlighted prompt into the target pane and
// dismisses the launcher. Nothing is dismissed if any step before the paste
// fails.
func (l *Launcher) PasteSelected() tea.Cmd {
	sel, ok := l.Selected()
	if !ok || l.busy {
		return nil
	}
	l.busy = true
	l.lastErr = nil
	cmds, host := l.cmds, l.host
	events.Launcher.Paste(sel.ID)
	return func() tea.Msg {
		ctx, cancel := l.context()
		defer cancel()
		p, err := cmds.GetPrompt(ctx, sel.ID)
		if err != nil {
			return pasteResultMsg{err: err}
		}
		if err := cmds.RecordUsage(ctx, sel.ID); err != nil {
			events.Launcher.Error("record-usage", err)
		}
		return pasteResultMsg{err: host.PasteAndDismiss(ctx, p.Content)}
	}
}

// CopySelected copies the highlighted prompt to the clipboard.
func (l *Launcher) CopySelected() tea.Cmd {
	sel, ok := l.Selected()
	if !ok || l.busy {
		return nil
	}
	l.busy = true
	l.lastErr = nil
	cmds, host := l.cmds, l.host
	events.Launcher.Copy(sel.ID)
	return func() tea.Msg {
		ctx, cancel := l.context()
		defer cancel()
		p, err := cmds.GetPrompt(ctx, sel.ID)
		if err != nil {
			return copyResultMsg{err: err}
		}
		return copyResultMsg{err: host.CopyToClipboard(ctx, p.Content)}
	}
}

// Dismiss clears local state and asks the host to hide the launcher. Every
// call issues its own hide request.
func (l *Launcher) Dismiss() tea.Cmd {
	l.reset()
	l.dismissed = true
	host := l.host
	events.Launcher.Dismiss()
	return func() tea.Msg {
		ctx, cancel := l.context()
		defer cancel()
		return DismissedMsg{Err: host.Dismiss(ctx)}
	}
}

// OpenInEditor opens the editor on the highlighted prompt, or on nothing
// when the list is empty, then dismisses the launcher.
func (l *Launcher) OpenInEditor() tea.Cmd {
	id := ""
	if sel, ok := l.Selected(); ok {
		id = sel.ID
	}
	host := l.host
	events.Launcher.OpenEditor(id)
	return func() tea.Msg {
		ctx, cancel := l.context()
		defer cancel()
		return editorOpenedMsg{err: host.OpenEditor(ctx, id)}
	}
}

// HandleMsg applies results of commands this session issued.
func (l *Launcher) HandleMsg(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case searchResultMsg:
		if msg.seq != l.issued {
			events.Launcher.Stale(msg.seq, l.issued)
			return nil, true
		}
		l.loading = false
		if msg.err != nil {
			l.lastErr = msg.err
			events.Launcher.Error("search", msg.err)
			return nil, true
		}
		l.lastErr = nil
		l.results = msg.results
		l.selected = 0
		events.Launcher.Results(msg.seq, len(msg.results))
		return nil, true
	case pasteResultMsg:
		l.busy = false
		if msg.err != nil {
			l.lastErr = msg.err
			events.Launcher.Error("paste", msg.err)
			return nil, true
		}
		l.reset()
		l.dismissed = true
		return func() tea.Msg { return DismissedMsg{} }, true
	case copyResultMsg:
		l.busy = false
		if msg.err != nil {
			l.lastErr = msg.err
			events.Launcher.Error("copy", msg.err)
			return nil, true
		}
		l.notice = "Copied to clipboard"
		return nil, true
	case editorOpenedMsg:
		if msg.err != nil {
			l.lastErr = msg.err
			events.Launcher.Error("open-editor", msg.err)
			return nil, true
		}
		return l.Dismiss(), true
	}
	return nil, false
}
