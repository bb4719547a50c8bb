package ui

import (
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-prompts/internal/session"
)

// DefaultQueryDebounce is how long typing must pause before a search runs.
const DefaultQueryDebounce = 150 * time.Millisecond

type msgHandler func(tea.Msg) tea.Cmd

// LauncherOptions configures the popup launcher.
type LauncherOptions struct {
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	Debounce   time.Duration
}

// LauncherModel is the search popup. It forwards everything except layout to
// a session.Launcher.
type LauncherModel struct {
	session *session.Launcher

	input    textinput.Model
	inputGen uint64
	debounce time.Duration

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	verbose     bool
	offset      int

	handlers map[reflect.Type]msgHandler
}

type queryDebounceMsg struct {
	gen   uint64
	query string
}

// NewLauncher builds the popup model around s.
func NewLauncher(s *session.Launcher, opts LauncherOptions) *LauncherModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Search prompts"
	ti.Cursor.SetMode(cursor.CursorStatic)
	st := styles()
	if st.FilterPrompt != nil {
		ti.PromptStyle = *st.FilterPrompt
	}
	if st.Filter != nil {
		ti.TextStyle = *st.Filter
	}
	if st.FilterPlaceholder != nil {
		ti.PlaceholderStyle = *st.FilterPlaceholder
	}
	ti.Focus()

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultQueryDebounce
	}
	m := &LauncherModel{
		session:    s,
		input:      ti,
		debounce:   debounce,
		showFooter: opts.ShowFooter,
		verbose:    opts.Verbose,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.registerHandlers()
	return m
}

func (m *LauncherModel) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):           m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):    m.handleWindowSizeMsg,
		reflect.TypeOf(queryDebounceMsg{}):     m.handleQueryDebounceMsg,
		reflect.TypeOf(session.DismissedMsg{}): m.handleDismissedMsg,
	}
}

// Init issues the empty query so the list shows the most used prompts.
func (m *LauncherModel) Init() tea.Cmd {
	return m.session.SetQuery("")
}

// Update responds to Bubble Tea messages.
func (m *LauncherModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := handlerFor(m.handlers, msg); handler != nil {
		return m, handler(msg)
	}
	if cmd, ok := m.session.HandleMsg(msg); ok {
		m.clampViewport()
		return m, cmd
	}
	return m, nil
}

func handlerFor(handlers map[reflect.Type]msgHandler, msg tea.Msg) msgHandler {
	if msg == nil || handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *LauncherModel) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key := msg.(tea.KeyMsg)
	switch key.String() {
	case "esc", "ctrl+c":
		return m.session.Dismiss()
	case "enter":
		return m.session.PasteSelected()
	case "ctrl+y":
		return m.session.CopySelected()
	case "ctrl+e":
		return m.session.OpenInEditor()
	case "up", "ctrl+p", "ctrl+k":
		m.session.MoveSelection(-1)
	case "down", "ctrl+n", "ctrl+j":
		m.session.MoveSelection(1)
	case "pgup":
		m.session.MoveSelection(-m.maxVisibleItems())
	case "pgdown":
		m.session.MoveSelection(m.maxVisibleItems())
	case "home":
		m.session.MoveSelection(-len(m.session.Results()))
	case "end":
		m.session.MoveSelection(len(m.session.Results()))
	default:
		return m.updateInput(key)
	}
	m.clampViewport()
	return nil
}

// updateInput feeds the text field and schedules a search when the value
// changed. Each keystroke supersedes the previous timer.
func (m *LauncherModel) updateInput(msg tea.KeyMsg) tea.Cmd {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	value := m.input.Value()
	if value == before {
		return cmd
	}
	m.inputGen++
	gen := m.inputGen
	tick := tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return queryDebounceMsg{gen: gen, query: value}
	})
	return tea.Batch(cmd, tick)
}

func (m *LauncherModel) handleQueryDebounceMsg(msg tea.Msg) tea.Cmd {
	q := msg.(queryDebounceMsg)
	if q.gen != m.inputGen {
		return nil
	}
	m.offset = 0
	return m.session.SetQuery(q.query)
}

// handleDismissedMsg exits even when hiding failed; the popup closes with the
// process.
func (m *LauncherModel) handleDismissedMsg(tea.Msg) tea.Cmd {
	return tea.Quit
}

func (m *LauncherModel) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize := msg.(tea.WindowSizeMsg)
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.clampViewport()
	return nil
}

func (m *LauncherModel) maxVisibleItems() int {
	if m.height <= 0 {
		return len(m.session.Results())
	}
	used := 2 // filter prompt + status line
	if m.showFooter {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *LauncherModel) clampViewport() {
	n := len(m.session.Results())
	visible := m.maxVisibleItems()
	sel := m.session.SelectedIndex()
	if n == 0 || visible <= 0 {
		m.offset = 0
		return
	}
	if sel < m.offset {
		m.offset = sel
	}
	if sel >= m.offset+visible {
		m.offset = sel - visible + 1
	}
	if maxOffset := n - visible; m.offset > maxOffset {
		m.offset = max(maxOffset, 0)
	}
}

// Query returns the text currently in the search field.
func (m *LauncherModel) Query() string {
	return m.input.Value()
}
