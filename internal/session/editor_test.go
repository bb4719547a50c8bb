package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
)

func newTestEditor(f *fakeCommands) *Editor {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewEditor(f,
		WithEditorClock(func() time.Time { return clock }),
		WithAutosaveDelays(time.Millisecond, time.Millisecond),
	)
}

func TestEditorDraftSaveAssignsID(t *testing.T) {
	f := newFakeCommands()
	e := newTestEditor(f)

	require.Nil(t, e.CreateDraft("Work"))
	draft, ok := e.Active()
	require.True(t, ok)
	assert.Equal(t, "", draft.ID)
	assert.Equal(t, "Work", draft.Folder)
	assert.True(t, e.Dirty())

	require.NotNil(t, e.Update(Patch{Name: Str("Greeting"), Content: Str("hello")}))
	assert.True(t, e.PendingAutosave())

	reset := step(t, e, e.Save())
	assert.False(t, e.PendingAutosave())
	assert.Equal(t, "p1", e.ActiveID())
	assert.False(t, e.Dirty())
	assert.Equal(t, SaveSaved, e.Status())
	require.Len(t, e.Index().Prompts, 1)
	assert.Equal(t, "Greeting", e.Index().Prompts[0].Name)

	assert.Nil(t, step(t, e, reset))
	assert.Equal(t, SaveIdle, e.Status())
}

func TestEditorAutosaveKeepsOneTimer(t *testing.T) {
	f := newFakeCommands()
	e := newTestEditor(f)
	e.CreateDraft("")

	first := e.Update(Patch{Content: Str("a")})
	second := e.Update(Patch{Content: Str("ab")})

	assert.Nil(t, step(t, e, first), "superseded timer must not save")
	assert.Empty(t, f.saves)

	save := step(t, e, second)
	require.NotNil(t, save)
	settle(t, e, save)
	require.Len(t, f.saves, 1)
	assert.Equal(t, "ab", f.saves[0].Content)
}

func TestEditorSavedResetIgnoresOlderSave(t *testing.T) {
	f := newFakeCommands()
	e := newTestEditor(f)
	e.CreateDraft("")
	e.Update(Patch{Content: Str("a")})
	oldReset := step(t, e, e.Save())

	e.Update(Patch{Content: Str("b")})
	newReset := step(t, e, e.Save())
	assert.Equal(t, SaveSaved, e.Status())

	step(t, e, oldReset)
	assert.Equal(t, SaveSaved, e.Status())
	step(t, e, newReset)
	assert.Equal(t, SaveIdle, e.Status())
}

func TestEditorEditDuringSaveStaysDirty(t *testing.T) {
	f := newFakeCommands()
	e := newTestEditor(f)
	e.CreateDraft("")
	e.Update(Patch{Content: Str("first")})
	save := e.Save()

	e.Update(Patch{Content: Str("second")})
	assert.Nil(t, step(t, e, save))

	assert.Equal(t, "p1", e.ActiveID())
	assert.True(t, e.Dirty())
	assert.True(t, e.PendingAutosave())
	draft, _ := e.Active()
	assert.Equal(t, "second", draft.Content)
}

func TestEditorSaveWhileSavingRunsAgain(t *testing.T) {
	f := newFakeCommands()
	e := newTestEditor(f)
	e.CreateDraft("")
	e.Update(Patch{Content: Str("x")})

	first := e.Save()
	require.NotNil(t, first)
	assert.Nil(t, e.Save())
	assert.True(t, e.Saving())

	again := step(t, e, first)
	require.NotNil(t, again)
	step(t, e, again)

	require.Len(t, f.saves, 2)
	assert.Equal(t, "", f.saves[0].ID)
	assert.Equal(t, "p1", f.saves[1].ID, "second save must update, not create")
	assert.False(t, e.Saving())
}

func TestEditorSelectFlushesDirtyDraft(t *testing.T) {
	f := newFakeCommands()
	other := f.add("Other", "", "other body")
	e := newTestEditor(f)
	e.CreateDraft("")
	e.Update(Patch{Name: Str("Mine")})

	flush := e.Select(other.ID)
	require.NotNil(t, flush)
	assert.False(t, e.PendingAutosave())

	load := step(t, e, flush)
	require.NotNil(t, load)
	assert.Nil(t, step(t, e, load))

	require.Len(t, f.saves, 1)
	assert.Equal(t, "Mine", f.saves[0].Name)
	assert.Equal(t, other.ID, e.ActiveID())
	assert.False(t, e.Dirty())
}

func TestEditorFlushFailureAbortsNavigation(t *testing.T) {
	f := newFakeCommands()
	other := f.add("Other", "", "")
	f.saveErr = errors.New("disk full")
	e := newTestEditor(f)
	e.CreateDraft("")
	e.Update(Patch{Name: Str("Mine")})

	assert.Nil(t, step(t, e, e.Select(other.ID)))

	draft, ok := e.Active()
	require.True(t, ok)
	assert.Equal(t, "Mine", draft.Name)
	assert.True(t, e.Dirty())
	assert.Equal(t, SaveError, e.Status())
	assert.ErrorContains(t, e.LastError(), "disk full")
}

func TestEditorIndexFailureAfterSaveStaysDirty(t *testing.T) {
	f := newFakeCommands()
	f.indexErr = errors.New("index unreadable")
	e := newTestEditor(f)
	e.CreateDraft("")
	e.Update(Patch{Content: Str("body")})

	assert.Nil(t, step(t, e, e.Save()))
	assert.Equal(t, "p1", e.ActiveID())
	assert.True(t, e.Dirty())
	assert.Equal(t, SaveError, e.Status())
	assert.Error(t, e.LastError())
}

func TestEditorStalePromptLoadIgnored(t *testing.T) {
	f := newFakeCommands()
	a := f.add("A", "", "")
	b := f.add("B", "", "")
	e := newTestEditor(f)

	loadA := e.Select(a.ID)
	loadB := e.Select(b.ID)
	step(t, e, loadB)
	step(t, e, loadA)
	assert.Equal(t, b.ID, e.ActiveID())
}

func TestEditorDeleteDuringSaveWaits(t *testing.T) {
	f := newFakeCommands()
	e := newTestEditor(f)
	e.CreateDraft("")
	e.Update(Patch{Content: Str("doomed")})

	save := e.Save()
	assert.Nil(t, e.Delete())

	del := step(t, e, save)
	require.NotNil(t, del)
	assert.Nil(t, step(t, e, del))

	_, ok := e.Active()
	assert.False(t, ok)
	assert.Empty(t, f.prompts)
	assert.Empty(t, e.Index().Prompts)
}

func TestEditorDeleteFailureKeepsDraft(t *testing.T) {
	f := newFakeCommands()
	p := f.add("Keep", "", "")
	e := newTestEditor(f)
	step(t, e, e.Select(p.ID))
	f.deleteErr = errors.New("busy")

	assert.Nil(t, step(t, e, e.Delete()))
	assert.Equal(t, p.ID, e.ActiveID())
	assert.ErrorContains(t, e.LastError(), "busy")
}

func TestEditorDeleteUnsavedDraftIsNoop(t *testing.T) {
	e := newTestEditor(newFakeCommands())
	e.CreateDraft("")
	assert.Nil(t, e.Delete())
}

func TestEditorDiscardDropsUnsavedDraft(t *testing.T) {
	f := newFakeCommands()
	p := f.add("Saved", "", "")
	e := newTestEditor(f)

	e.CreateDraft("")
	e.Update(Patch{Content: Str("scratch")})
	e.Discard()
	_, ok := e.Active()
	assert.False(t, ok)
	assert.False(t, e.Dirty())
	assert.False(t, e.PendingAutosave())

	step(t, e, e.Select(p.ID))
	e.Discard()
	assert.Equal(t, p.ID, e.ActiveID(), "persisted prompts are not discarded")
}

func TestEditorRenameFolderFollowsDraftAndFilter(t *testing.T) {
	f := newFakeCommands()
	f.folders = []string{"Work"}
	p := f.add("In work", "Work", "")
	e := newTestEditor(f)
	step(t, e, e.Select(p.ID))
	e.SetFolderFilter("Work")

	assert.Nil(t, step(t, e, e.RenameFolder("Work", "Job")))

	draft, _ := e.Active()
	assert.Equal(t, "Job", draft.Folder)
	filter, ok := e.FolderFilter()
	require.True(t, ok)
	assert.Equal(t, "Job", filter)
	assert.Equal(t, []string{"Job"}, e.Folders())
	assert.Len(t, e.VisiblePrompts(), 1)
}

func TestEditorDeleteFolderClearsFilter(t *testing.T) {
	f := newFakeCommands()
	f.folders = []string{"Work"}
	p := f.add("In work", "Work", "")
	e := newTestEditor(f)
	step(t, e, e.Select(p.ID))
	e.SetFolderFilter("Work")

	step(t, e, e.DeleteFolder("Work"))

	draft, _ := e.Active()
	assert.Equal(t, "", draft.Folder)
	_, ok := e.FolderFilter()
	assert.False(t, ok)
	assert.Empty(t, e.Folders())
}

func TestEditorFolderValidation(t *testing.T) {
	e := newTestEditor(newFakeCommands())

	assert.Nil(t, e.AddFolder("   "))
	assert.ErrorIs(t, e.LastError(), apperror.ErrValidation)

	e.ClearError()
	assert.Nil(t, e.DeleteFolder(""))
	assert.ErrorIs(t, e.LastError(), apperror.ErrValidation)

	e.ClearError()
	assert.Nil(t, e.RenameFolder("Same", "Same"))
	assert.NoError(t, e.LastError())
}

func TestEditorExternalChangeReloadsIndexOnly(t *testing.T) {
	f := newFakeCommands()
	e := newTestEditor(f)
	e.CreateDraft("")
	e.Update(Patch{Content: Str("local")})

	f.add("From disk", "", "")
	assert.Nil(t, step(t, e, e.ExternalChange()))

	assert.Len(t, e.Index().Prompts, 1)
	draft, _ := e.Active()
	assert.Equal(t, "local", draft.Content)
	assert.True(t, e.Dirty())
}

func TestSaveStatusString(t *testing.T) {
	assert.Equal(t, "idle", SaveIdle.String())
	assert.Equal(t, "saving", SaveSaving.String())
	assert.Equal(t, "saved", SaveSaved.String())
	assert.Equal(t, "error", SaveError.String())
}
