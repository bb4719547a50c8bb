package session

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/boundary"
	"github.com/atomicstack/tmux-prompts/internal/logging/events"
	"github.com/atomicstack/tmux-prompts/internal/model"
)

const (
	// AutosaveDelay is the quiet period after an edit before the draft is saved.
	AutosaveDelay = 500 * time.Millisecond
	// SavedResetDelay is how long the "saved" status stays visible.
	SavedResetDelay = 2 * time.Second
)

// SaveStatus is the editor's persistence indicator.
type SaveStatus int

const (
	SaveIdle SaveStatus = iota
	SaveSaving
	SaveSaved
	SaveError
)

func (s SaveStatus) String() string {
	switch s {
	case SaveSaving:
		return "saving"
	case SaveSaved:
		return "saved"
	case SaveError:
		return "error"
	default:
		return "idle"
	}
}

// Patch carries the fields an edit changes. Nil fields are left alone; an
// empty Icon or Color clears it.
type Patch struct {
	Name        *string
	Folder      *string
	Description *string
	Content     *string
	Icon        *string
	Color       *string
}

// Str is a helper for building patches.
func Str(s string) *string { return &s }

type navKind int

const (
	navSelect navKind = iota
	navCreate
)

type navigation struct {
	kind   navKind
	id     string
	folder string
}

// Editor owns the draft being edited and the cached catalogue.
type Editor struct {
	cmds    boundary.Commands
	timeout time.Duration
	now     func() time.Time

	autosaveDelay   time.Duration
	savedResetDelay time.Duration

	index        model.PromptIndex
	active       *model.Prompt
	dirty        bool
	status       SaveStatus
	folderFilter *string
	lastErr      error

	draftSeq uint64
	revision uint64

	autosaveGen   uint64
	autosaveArmed bool

	saveGen         uint64
	saving          bool
	resave          bool
	deleting        bool
	deleteAfterSave bool

	loadSeq uint64
	pending *navigation
}

// EditorOption customises an Editor.
type EditorOption func(*Editor)

// WithEditorClock overrides the time source used for draft timestamps.
func WithEditorClock(now func() time.Time) EditorOption {
	return func(e *Editor) { e.now = now }
}

// WithEditorTimeout overrides the per-call timeout.
func WithEditorTimeout(d time.Duration) EditorOption {
	return func(e *Editor) { e.timeout = d }
}

// WithAutosaveDelays overrides the autosave debounce and the saved-status decay.
func WithAutosaveDelays(autosave, savedReset time.Duration) EditorOption {
	return func(e *Editor) {
		e.autosaveDelay = autosave
		e.savedResetDelay = savedReset
	}
}

// NewEditor returns an editor session with no active draft.
func NewEditor(cmds boundary.Commands, opts ...EditorOption) *Editor {
	e := &Editor{
		cmds:            cmds,
		timeout:         DefaultTimeout,
		now:             time.Now,
		autosaveDelay:   AutosaveDelay,
		savedResetDelay: SavedResetDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type (
	indexLoadedMsg struct {
		index model.PromptIndex
		err   error
	}
	promptLoadedMsg struct {
		seq    uint64
		prompt model.Prompt
		err    error
	}
	autosaveMsg struct {
		gen uint64
	}
	saveResultMsg struct {
		gen      uint64
		draftSeq uint64
		revision uint64
		meta     model.PromptMetadata
		index    *model.PromptIndex
		err      error
		indexErr error
	}
	savedResetMsg struct {
		saveGen uint64
	}
	deleteResultMsg struct {
		draftSeq uint64
		index    *model.PromptIndex
		err      error
		indexErr error
	}
	folderResultMsg struct {
		op       string
		oldName  string
		newName  string
		index    *model.PromptIndex
		err      error
		indexErr error
	}
)

// Active returns a copy of the draft, if any.
func (e *Editor) Active() (model.Prompt, bool) {
	if e.active == nil {
		return model.Prompt{}, false
	}
	return *e.active, true
}

// ActiveID returns the backend id of the draft, or "" for none or unsaved.
func (e *Editor) ActiveID() string {
	if e.active == nil {
		return ""
	}
	return e.active.ID
}

// DraftSeq changes whenever a different draft becomes active.
func (e *Editor) DraftSeq() uint64 {
	return e.draftSeq
}

// Dirty reports unsaved edits.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// Status is the autosave indicator for the open draft.
func (e *Editor) Status() SaveStatus {
	return e.status
}

// Index is the last catalogue received from the boundary.
func (e *Editor) Index() model.PromptIndex {
	return e.index
}

// Folders lists the known folders, including empty ones.
func (e *Editor) Folders() []string {
	return e.index.Folders
}

// LastError is the most recent boundary failure.
func (e *Editor) LastError() error {
	return e.lastErr
}

// Saving reports whether a save is in flight.
func (e *Editor) Saving() bool {
	return e.saving
}

// PendingAutosave reports whether an autosave timer is live.
func (e *Editor) PendingAutosave() bool { return e.autosaveArmed }

// ClearError drops the last reported error.
func (e *Editor) ClearError() { e.lastErr = nil }

// FolderFilter returns the catalogue filter, if set.
func (e *Editor) FolderFilter() (string, bool) {
	if e.folderFilter == nil {
		return "", false
	}
	return *e.folderFilter, true
}

// SetFolderFilter restricts VisiblePrompts to folder ("" is uncategorised).
func (e *Editor) SetFolderFilter(folder string) {
	e.folderFilter = &folder
}

// ClearFolderFilter shows every prompt.
func (e *Editor) ClearFolderFilter() {
	e.folderFilter = nil
}

// VisiblePrompts is the catalogue under the current filter.
func (e *Editor) VisiblePrompts() []model.PromptMetadata {
	if e.folderFilter == nil {
		out := make([]model.PromptMetadata, len(e.index.Prompts))
		copy(out, e.index.Prompts)
		return out
	}
	return e.index.InFolder(*e.folderFilter)
}

func (e *Editor) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.timeout)
}

func (e *Editor) fail(op string, err error) {
	e.lastErr = err
	events.Editor.Error(op, err)
}

// LoadInitial fetches the catalogue.
func (e *Editor) LoadInitial() tea.Cmd {
	return e.fetchIndex()
}

// ExternalChange reloads the catalogue after the prompts directory changed on
// disk. The draft is not touched.
func (e *Editor) ExternalChange() tea.Cmd {
	events.Editor.ExternalChange()
	return e.fetchIndex()
}

func (e *Editor) fetchIndex() tea.Cmd {
	cmds := e.cmds
	return func() tea.Msg {
		ctx, cancel := e.context()
		defer cancel()
		idx, err := cmds.GetIndex(ctx)
		return indexLoadedMsg{index: idx, err: err}
	}
}

// Select switches to the prompt id, saving the current draft first when it
// has unsaved edits.
func (e *Editor) Select(id string) tea.Cmd {
	return e.navigate(navigation{kind: navSelect, id: id})
}

// CreateDraft starts a new unsaved prompt in folder.
func (e *Editor) CreateDraft(folder string) tea.Cmd {
	return e.navigate(navigation{kind: navCreate, folder: folder})
}

func (e *Editor) navigate(nav navigation) tea.Cmd {
	e.cancelAutosave()
	if e.active != nil && e.dirty {
		e.pending = &nav
		events.Editor.FlushBeforeNavigate(e.active.ID, nav.id)
		if e.saving {
			e.resave = true
			return nil
		}
		return e.startSave()
	}
	return e.perform(nav)
}

func (e *Editor) perform(nav navigation) tea.Cmd {
	e.pending = nil
	switch nav.kind {
	case navCreate:
		draft := model.NewDraft(nav.folder, e.now())
		e.setActive(&draft)
		e.dirty = true
		events.Editor.Draft(nav.folder)
		return nil
	default:
		return e.loadPrompt(nav.id)
	}
}

func (e *Editor) setActive(p *model.Prompt) {
	e.active = p
	e.draftSeq++
	e.dirty = false
	e.status = SaveIdle
	e.resave = false
}

func (e *Editor) loadPrompt(id string) tea.Cmd {
	e.loadSeq++
	seq := e.loadSeq
	cmds := e.cmds
	events.Editor.Select(id)
	return func() tea.Msg {
		ctx, cancel := e.context()
		defer cancel()
		p, err := cmds.GetPrompt(ctx, id)
		return promptLoadedMsg{seq: seq, prompt: p, err: err}
	}
}

// Update merges patch into the draft and re-arms the autosave timer.
func (e *Editor) Update(patch Patch) tea.Cmd {
	if e.active == nil {
		return nil
	}
	p := e.active
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Folder != nil {
		p.Folder = *patch.Folder
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Icon != nil {
		p.Icon = optional(*patch.Icon)
	}
	if patch.Color != nil {
		p.Color = optional(*patch.Color)
	}
	p.Updated = e.now()
	e.dirty = true
	e.status = SaveIdle
	e.revision++
	return e.scheduleAutosave()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (e *Editor) scheduleAutosave() tea.Cmd {
	e.autosaveGen++
	e.autosaveArmed = true
	gen := e.autosaveGen
	return tea.Tick(e.autosaveDelay, func(time.Time) tea.Msg {
		return autosaveMsg{gen: gen}
	})
}

func (e *Editor) cancelAutosave() {
	if e.autosaveArmed {
		events.Editor.AutosaveCancelled(e.autosaveGen)
	}
	e.autosaveArmed = false
	e.autosaveGen++
}

// Save persists the draft now. A save requested while another is in flight
// runs once that one completes.
func (e *Editor) Save() tea.Cmd {
	e.cancelAutosave()
	if e.active == nil || e.deleting {
		return nil
	}
	if e.saving {
		e.resave = true
		return nil
	}
	return e.startSave()
}

func (e *Editor) startSave() tea.Cmd {
	e.saving = true
	e.resave = false
	e.saveGen++
	e.status = SaveSaving
	draft := *e.active
	gen, seq, rev := e.saveGen, e.draftSeq, e.revision
	cmds := e.cmds
	events.Editor.Save(draft.ID, gen)
	return func() tea.Msg {
		ctx, cancel := e.context()
		defer cancel()
		msg := saveResultMsg{gen: gen, draftSeq: seq, revision: rev}
		meta, err := cmds.SavePrompt(ctx, draft)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.meta = meta
		idx, err := cmds.GetIndex(ctx)
		if err != nil {
			msg.indexErr = err
			return msg
		}
		msg.index = &idx
		return msg
	}
}

// Delete removes the persisted draft.
func (e *Editor) Delete() tea.Cmd {
	if e.active == nil || e.deleting {
		return nil
	}
	if e.saving {
		e.cancelAutosave()
		e.deleteAfterSave = true
		return nil
	}
	if e.active.ID == "" {
		return nil
	}
	e.cancelAutosave()
	e.deleting = true
	id, seq := e.active.ID, e.draftSeq
	cmds := e.cmds
	events.Editor.Delete(id)
	return func() tea.Msg {
		ctx, cancel := e.context()
		defer cancel()
		msg := deleteResultMsg{draftSeq: seq}
		if err := cmds.DeletePrompt(ctx, id); err != nil {
			msg.err = err
			return msg
		}
		idx, err := cmds.GetIndex(ctx)
		if err != nil {
			msg.indexErr = err
			return msg
		}
		msg.index = &idx
		return msg
	}
}

// Discard drops an unsaved draft without contacting the boundary.
func (e *Editor) Discard() {
	if e.active == nil || e.active.ID != "" {
		return
	}
	e.cancelAutosave()
	e.active = nil
	e.draftSeq++
	e.dirty = false
	e.status = SaveIdle
}

// AddFolder creates an empty folder.
func (e *Editor) AddFolder(name string) tea.Cmd {
	name = strings.TrimSpace(name)
	if name == "" {
		e.fail("add-folder", apperror.ValidationFailed("name", "folder name cannot be empty"))
		return nil
	}
	return e.folderCmd("add", "", name, func(ctx context.Context) ([]string, error) {
		return e.cmds.AddFolder(ctx, name)
	})
}

// RenameFolder renames a folder and every prompt in it.
func (e *Editor) RenameFolder(oldName, newName string) tea.Cmd {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		e.fail("rename-folder", apperror.ValidationFailed("name", "new folder name cannot be empty"))
		return nil
	}
	if oldName == newName {
		return nil
	}
	return e.folderCmd("rename", oldName, newName, func(ctx context.Context) ([]string, error) {
		return e.cmds.RenameFolder(ctx, oldName, newName)
	})
}

// DeleteFolder removes a folder, moving its prompts to the root.
func (e *Editor) DeleteFolder(name string) tea.Cmd {
	if strings.TrimSpace(name) == "" {
		e.fail("delete-folder", apperror.ValidationFailed("name", "the root folder cannot be deleted"))
		return nil
	}
	return e.folderCmd("delete", name, "", func(ctx context.Context) ([]string, error) {
		return e.cmds.DeleteFolder(ctx, name)
	})
}

func (e *Editor) folderCmd(op, oldName, newName string, call func(context.Context) ([]string, error)) tea.Cmd {
	cmds := e.cmds
	events.Editor.Folder(op, oldName, newName)
	return func() tea.Msg {
		ctx, cancel := e.context()
		defer cancel()
		msg := folderResultMsg{op: op, oldName: oldName, newName: newName}
		if _, err := call(ctx); err != nil {
			msg.err = err
			return msg
		}
		idx, err := cmds.GetIndex(ctx)
		if err != nil {
			msg.indexErr = err
			return msg
		}
		msg.index = &idx
		return msg
	}
}

// HandleMsg applies results of commands this session issued. It reports
// whether msg belonged to the session.
func (e *Editor) HandleMsg(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case indexLoadedMsg:
		if msg.err != nil {
			e.fail("index", msg.err)
			return nil, true
		}
		e.index = msg.index
		return nil, true
	case promptLoadedMsg:
		return e.handlePromptLoaded(msg), true
	case autosaveMsg:
		if !e.autosaveArmed || msg.gen != e.autosaveGen {
			events.Editor.StaleTimer("autosave", msg.gen)
			return nil, true
		}
		e.autosaveArmed = false
		events.Editor.AutosaveFired(msg.gen)
		return e.Save(), true
	case saveResultMsg:
		return e.handleSaveResult(msg), true
	case savedResetMsg:
		if msg.saveGen == e.saveGen && e.status == SaveSaved {
			e.status = SaveIdle
		}
		return nil, true
	case deleteResultMsg:
		return e.handleDeleteResult(msg), true
	case folderResultMsg:
		e.handleFolderResult(msg)
		return nil, true
	}
	return nil, false
}

func (e *Editor) handlePromptLoaded(msg promptLoadedMsg) tea.Cmd {
	if msg.seq != e.loadSeq {
		return nil
	}
	if msg.err != nil {
		e.fail("select", msg.err)
		return nil
	}
	p := msg.prompt
	e.setActive(&p)
	return nil
}

func (e *Editor) handleSaveResult(msg saveResultMsg) tea.Cmd {
	if msg.gen != e.saveGen {
		return nil
	}
	e.saving = false
	sameDraft := e.active != nil && msg.draftSeq == e.draftSeq

	if msg.err != nil {
		e.status = SaveError
		e.deleteAfterSave = false
		e.fail("save", msg.err)
		if e.pending != nil {
			events.Editor.NavigationAborted(e.pending.id)
			e.pending = nil
		}
		e.resave = false
		return nil
	}

	if sameDraft && e.active.ID == "" {
		e.active.ID = msg.meta.ID
	}
	if sameDraft {
		e.active.Filename = msg.meta.Filename
		e.active.Created = msg.meta.Created
		e.active.UseCount = msg.meta.UseCount
		e.active.LastUsed = msg.meta.LastUsed
	}
	if msg.index != nil {
		e.index = *msg.index
	}

	if e.deleteAfterSave {
		e.deleteAfterSave = false
		e.resave = false
		e.pending = nil
		e.dirty = false
		e.status = SaveIdle
		return e.Delete()
	}

	if msg.indexErr != nil {
		// the body is stored but the catalogue is stale; stay dirty so the next
		// save refreshes it
		e.status = SaveError
		e.fail("save-index", msg.indexErr)
		if e.pending != nil {
			events.Editor.NavigationAborted(e.pending.id)
			e.pending = nil
		}
		e.resave = false
		return nil
	}

	if sameDraft && msg.revision == e.revision {
		e.dirty = false
	}

	if e.resave && e.active != nil {
		return e.startSave()
	}
	if e.pending != nil {
		if e.dirty {
			e.cancelAutosave()
			return e.startSave()
		}
		nav := *e.pending
		return e.perform(nav)
	}

	if e.dirty {
		e.status = SaveIdle
		return nil
	}
	e.status = SaveSaved
	gen := e.saveGen
	return tea.Tick(e.savedResetDelay, func(time.Time) tea.Msg {
		return savedResetMsg{saveGen: gen}
	})
}

func (e *Editor) handleDeleteResult(msg deleteResultMsg) tea.Cmd {
	e.deleting = false
	if msg.err != nil {
		e.fail("delete", msg.err)
		if e.dirty && e.active != nil {
			return e.scheduleAutosave()
		}
		return nil
	}
	if msg.draftSeq == e.draftSeq {
		e.cancelAutosave()
		e.active = nil
		e.draftSeq++
		e.dirty = false
		e.status = SaveIdle
	}
	if msg.indexErr != nil {
		e.fail("delete-index", msg.indexErr)
		return nil
	}
	e.index = *msg.index
	return nil
}

func (e *Editor) handleFolderResult(msg folderResultMsg) {
	if msg.err != nil {
		e.fail(msg.op+"-folder", msg.err)
		return
	}
	switch msg.op {
	case "rename":
		if e.active != nil && e.active.Folder == msg.oldName {
			e.active.Folder = msg.newName
		}
		if e.folderFilter != nil && *e.folderFilter == msg.oldName {
			e.SetFolderFilter(msg.newName)
		}
	case "delete":
		if e.active != nil && e.active.Folder == msg.oldName {
			e.active.Folder = ""
		}
		if e.folderFilter != nil && *e.folderFilter == msg.oldName {
			e.ClearFolderFilter()
		}
	}
	if msg.indexErr != nil {
		e.fail(msg.op+"-folder-index", msg.indexErr)
		return
	}
	e.index = *msg.index
}
