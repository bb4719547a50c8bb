package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-prompts/internal/logging/events"
	"github.com/atomicstack/tmux-prompts/internal/session"
)

type focusArea int

const (
	focusSidebar focusArea = iota
	focusForm
	focusSettings
)

type formField int

const (
	fieldName formField = iota
	fieldFolder
	fieldDescription
	fieldContent
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Folder", "Description", "Content"}

type promptKind int

const (
	promptNone promptKind = iota
	promptAddFolder
	promptRenameFolder
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeletePrompt
	confirmDeleteFolder
	confirmQuitDirty
)

const sidebarWidth = 28

// EditorOptions configures the full-screen editor.
type EditorOptions struct {
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	// SelectID is opened once the catalogue has loaded.
	SelectID string
	// Watcher reports changes made to the prompts directory by other
	// processes. It may be nil.
	Watcher changeSource
	Timeout time.Duration
}

// EditorModel is the prompt library editor with its settings panel.
type EditorModel struct {
	editor   *session.Editor
	settings *session.Settings
	hotkey   *session.Hotkey
	watcher  changeSource
	watchErr error
	timeout  time.Duration

	selectID  string
	loadedSeq uint64

	focus  focusArea
	field  formField
	inputs [fieldContent]textinput.Model
	body   textarea.Model

	cursor int
	offset int

	prompt      promptKind
	promptInput textinput.Model
	promptOld   string
	confirm     confirmKind

	settingsCursor int

	quitAfterSave bool
	quitting      bool

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	verbose     bool

	handlers map[reflect.Type]msgHandler
}

// NewEditor builds the editor model around the three sessions.
func NewEditor(editor *session.Editor, settings *session.Settings, hotkey *session.Hotkey, opts EditorOptions) *EditorModel {
	m := &EditorModel{
		editor:     editor,
		settings:   settings,
		hotkey:     hotkey,
		watcher:    opts.Watcher,
		timeout:    opts.Timeout,
		selectID:   opts.SelectID,
		showFooter: opts.ShowFooter,
		verbose:    opts.Verbose,
	}
	if m.timeout <= 0 {
		m.timeout = session.DefaultTimeout
	}
	for i := range m.inputs {
		m.inputs[i] = newField(fieldLabels[i])
	}
	m.body = textarea.New()
	m.body.ShowLineNumbers = false
	m.body.CharLimit = 0
	m.body.MaxHeight = 0
	m.body.Placeholder = "Prompt text (markdown)"
	m.body.Cursor.SetMode(cursor.CursorStatic)
	m.promptInput = newField("Folder")
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.layout()
	m.registerHandlers()
	return m
}

func newField(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Placeholder = placeholder
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func (m *EditorModel) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(watchEventMsg{}):     m.handleWatchEventMsg,
		reflect.TypeOf(watchDoneMsg{}):      m.handleWatchDoneMsg,
		reflect.TypeOf(session.QuitMsg{}):   m.handleQuitMsg,
	}
}

// Init loads the catalogue and settings and starts listening for changes.
func (m *EditorModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.editor.LoadInitial(), m.settings.Load()}
	if m.watcher != nil {
		cmds = append(cmds, waitForChange(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 2)
	if handler := handlerFor(m.handlers, msg); handler != nil {
		cmds = append(cmds, handler(msg))
	} else {
		cmds = append(cmds, m.routeSessionMsg(msg))
	}
	return m, m.finishUpdate(cmds)
}

func (m *EditorModel) routeSessionMsg(msg tea.Msg) tea.Cmd {
	if cmd, ok := m.editor.HandleMsg(msg); ok {
		return tea.Batch(cmd, m.afterCatalogueChange())
	}
	if cmd, ok := m.hotkey.HandleMsg(msg); ok {
		return cmd
	}
	if cmd, ok := m.settings.HandleMsg(msg); ok {
		return cmd
	}
	return nil
}

// afterCatalogueChange opens the prompt requested on the command line once
// the first index arrives.
func (m *EditorModel) afterCatalogueChange() tea.Cmd {
	m.clampSidebar()
	if m.selectID == "" || len(m.editor.Index().Prompts) == 0 {
		return nil
	}
	id := m.selectID
	m.selectID = ""
	if _, ok := m.editor.Index().Find(id); !ok {
		return nil
	}
	m.moveCursorTo(id)
	m.setFocus(focusForm)
	return m.editor.Select(id)
}

// finishUpdate keeps the form in step with the session and completes a
// pending quit once the last save settles.
func (m *EditorModel) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	m.syncForm()
	if m.quitAfterSave && !m.editor.Saving() {
		switch {
		case !m.editor.Dirty():
			m.quitAfterSave = false
			m.quitting = true
			cmds = append(cmds, tea.Quit)
		case m.editor.Status() == session.SaveError:
			m.quitAfterSave = false
			m.confirm = confirmQuitDirty
		}
	}
	return tea.Batch(cmds...)
}

// syncForm reloads the fields when a different draft became active, and
// picks up folder renames applied by the session.
func (m *EditorModel) syncForm() {
	p, ok := m.editor.Active()
	if seq := m.editor.DraftSeq(); seq != m.loadedSeq {
		m.loadedSeq = seq
		if !ok {
			for i := range m.inputs {
				m.inputs[i].SetValue("")
			}
			m.body.SetValue("")
			if m.focus == focusForm {
				m.setFocus(focusSidebar)
			}
			return
		}
		m.inputs[fieldName].SetValue(p.Name)
		m.inputs[fieldFolder].SetValue(p.Folder)
		m.inputs[fieldDescription].SetValue(p.Description)
		m.body.SetValue(p.Content)
		return
	}
	if ok && !(m.focus == focusForm && m.field == fieldFolder) && m.inputs[fieldFolder].Value() != p.Folder {
		m.inputs[fieldFolder].SetValue(p.Folder)
	}
}

func (m *EditorModel) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key := msg.(tea.KeyMsg)
	if m.focus == focusSettings && m.hotkey.Intercepting() {
		return m.handleRecordingKey(key)
	}
	if m.confirm != confirmNone {
		return m.handleConfirmKey(key)
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(key)
	}
	switch key.String() {
	case "ctrl+c", "ctrl+q":
		return m.requestQuit()
	case "ctrl+s":
		return m.editor.Save()
	case "ctrl+n":
		return m.newDraft()
	case "ctrl+t":
		if m.focus == focusSettings {
			return m.closeSettings()
		}
		m.setFocus(focusSettings)
		return nil
	case "ctrl+w":
		if m.showWelcome() {
			return m.settings.DismissWelcome()
		}
	}
	switch m.focus {
	case focusForm:
		return m.handleFormKey(key)
	case focusSettings:
		return m.handleSettingsKey(key)
	default:
		return m.handleSidebarKey(key)
	}
}

func (m *EditorModel) handleSidebarKey(key tea.KeyMsg) tea.Cmd {
	visible := m.editor.VisiblePrompts()
	switch key.String() {
	case "esc", "q":
		return m.requestQuit()
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "home", "g":
		m.moveCursor(-len(visible))
	case "end", "G":
		m.moveCursor(len(visible))
	case "enter", "tab", "e":
		if m.cursor >= len(visible) {
			return nil
		}
		id := visible[m.cursor].ID
		m.setFocus(focusForm)
		if id == m.editor.ActiveID() {
			return nil
		}
		return m.editor.Select(id)
	case "n":
		return m.newDraft()
	case "d":
		if _, ok := m.editor.Active(); ok {
			m.confirm = confirmDeletePrompt
		}
	case "left", "h", "[":
		m.cycleFolderFilter(-1)
	case "right", "l", "]":
		m.cycleFolderFilter(1)
	case "a":
		m.openPrompt(promptAddFolder, "")
	case "r":
		if folder, ok := m.editor.FolderFilter(); ok && folder != "" {
			m.openPrompt(promptRenameFolder, folder)
		}
	case "x":
		if folder, ok := m.editor.FolderFilter(); ok && folder != "" {
			m.confirm = confirmDeleteFolder
		}
	case "s":
		m.setFocus(focusSettings)
	}
	return nil
}

func (m *EditorModel) handleFormKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc":
		m.setFocus(focusSidebar)
		return nil
	case "tab":
		m.setField((m.field + 1) % fieldCount)
		return nil
	case "shift+tab":
		m.setField((m.field + fieldCount - 1) % fieldCount)
		return nil
	}
	if _, ok := m.editor.Active(); !ok {
		return nil
	}
	if m.field == fieldContent {
		before := m.body.Value()
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(key)
		if value := m.body.Value(); value != before {
			return tea.Batch(cmd, m.editor.Update(session.Patch{Content: session.Str(value)}))
		}
		return cmd
	}
	input := &m.inputs[m.field]
	before := input.Value()
	var cmd tea.Cmd
	*input, cmd = input.Update(key)
	value := input.Value()
	if value == before {
		return cmd
	}
	var patch session.Patch
	switch m.field {
	case fieldName:
		patch.Name = session.Str(value)
	case fieldFolder:
		patch.Folder = session.Str(value)
	case fieldDescription:
		patch.Description = session.Str(value)
	}
	return tea.Batch(cmd, m.editor.Update(patch))
}

func (m *EditorModel) handleConfirmKey(key tea.KeyMsg) tea.Cmd {
	kind := m.confirm
	m.confirm = confirmNone
	if key.String() != "y" && key.String() != "Y" {
		return nil
	}
	switch kind {
	case confirmDeletePrompt:
		if p, ok := m.editor.Active(); ok && !p.Persisted() {
			m.editor.Discard()
			return nil
		}
		return m.editor.Delete()
	case confirmDeleteFolder:
		if folder, ok := m.editor.FolderFilter(); ok {
			return m.editor.DeleteFolder(folder)
		}
	case confirmQuitDirty:
		m.quitting = true
		return tea.Quit
	}
	return nil
}

func (m *EditorModel) openPrompt(kind promptKind, old string) {
	m.prompt = kind
	m.promptOld = old
	m.promptInput.SetValue(old)
	m.promptInput.CursorEnd()
	m.promptInput.Focus()
}

func (m *EditorModel) handlePromptKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc":
		m.prompt = promptNone
		m.promptInput.Blur()
		return nil
	case "enter":
		kind, value := m.prompt, m.promptInput.Value()
		m.prompt = promptNone
		m.promptInput.Blur()
		if kind == promptRenameFolder {
			return m.editor.RenameFolder(m.promptOld, value)
		}
		return m.editor.AddFolder(value)
	}
	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(key)
	return cmd
}

func (m *EditorModel) newDraft() tea.Cmd {
	folder, _ := m.editor.FolderFilter()
	cmd := m.editor.CreateDraft(folder)
	m.setFocus(focusForm)
	m.setField(fieldName)
	return cmd
}

// cycleFolderFilter steps through all prompts, the uncategorised root and
// each folder in order.
func (m *EditorModel) cycleFolderFilter(delta int) {
	folders := m.editor.Folders()
	options := len(folders) + 2
	current := 0
	if folder, ok := m.editor.FolderFilter(); ok {
		current = 1
		for i, f := range folders {
			if f == folder {
				current = i + 2
			}
		}
	}
	next := ((current+delta)%options + options) % options
	switch next {
	case 0:
		m.editor.ClearFolderFilter()
	case 1:
		m.editor.SetFolderFilter("")
	default:
		m.editor.SetFolderFilter(folders[next-2])
	}
	m.cursor = 0
	m.offset = 0
}

func (m *EditorModel) moveCursor(delta int) {
	n := len(m.editor.VisiblePrompts())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	m.clampSidebar()
}

func (m *EditorModel) moveCursorTo(id string) {
	for i, p := range m.editor.VisiblePrompts() {
		if p.ID == id {
			m.cursor = i
			m.clampSidebar()
			return
		}
	}
}

func (m *EditorModel) clampSidebar() {
	n := len(m.editor.VisiblePrompts())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	visible := m.sidebarRows()
	if visible <= 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m *EditorModel) setFocus(f focusArea) {
	m.focus = f
	if f == focusForm {
		m.setField(m.field)
		return
	}
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.body.Blur()
}

func (m *EditorModel) setField(f formField) {
	m.field = f
	for i := range m.inputs {
		if formField(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	if f == fieldContent {
		m.body.Focus()
	} else {
		m.body.Blur()
	}
}

// requestQuit closes the editor, saving a dirty draft first. A hotkey
// recording is abandoned synchronously so the binding comes back.
func (m *EditorModel) requestQuit() tea.Cmd {
	if m.quitting {
		return nil
	}
	m.releaseHotkey()
	if m.editor.Dirty() {
		m.quitAfterSave = true
		return m.editor.Save()
	}
	m.quitting = true
	return tea.Quit
}

func (m *EditorModel) releaseHotkey() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.hotkey.Release(ctx); err != nil {
		events.Hotkey.Error("release", err)
	}
}

func (m *EditorModel) handleQuitMsg(msg tea.Msg) tea.Cmd {
	cmd, _ := m.settings.HandleMsg(msg)
	if msg.(session.QuitMsg).Err != nil {
		return cmd
	}
	m.quitting = true
	return tea.Quit
}

func (m *EditorModel) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize := msg.(tea.WindowSizeMsg)
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.layout()
	m.clampSidebar()
	return nil
}

func (m *EditorModel) layout() {
	w := m.formWidth()
	for i := range m.inputs {
		m.inputs[i].Width = max(w-2, 1)
	}
	m.promptInput.Width = max(w-2, 1)
	m.body.SetWidth(max(w, 10))
	m.body.SetHeight(max(m.height-m.chromeRows()-int(fieldCount), 3))
}

func (m *EditorModel) formWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width-sidebarWidth-3, 20)
}

// chromeRows counts the lines used outside the two columns.
func (m *EditorModel) chromeRows() int {
	rows := 2 // title + status
	if m.showFooter {
		rows += 2
	}
	if m.showWelcome() {
		rows += 3 // bordered banner
	}
	return rows
}

func (m *EditorModel) sidebarRows() int {
	if m.height <= 0 {
		return len(m.editor.VisiblePrompts())
	}
	return max(m.height-m.chromeRows()-2, 1)
}

func (m *EditorModel) showWelcome() bool {
	s, ok := m.settings.Current()
	return ok && !s.General.WelcomeScreenDismissed
}

// Quitting reports whether the editor has asked to exit.
func (m *EditorModel) Quitting() bool {
	return m.quitting
}
