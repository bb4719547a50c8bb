package events

import "github.com/atomicstack/tmux-prompts/internal/logging"

type EditorTracer struct{}

var Editor = EditorTracer{}

func (EditorTracer) Select(id string) {
	logging.Trace("editor.select", map[string]interface{}{"id": id})
}

func (EditorTracer) Draft(folder string) {
	logging.Trace("editor.draft", map[string]interface{}{"folder": folder})
}

func (EditorTracer) FlushBeforeNavigate(fromID, toID string) {
	logging.Trace("editor.flush", map[string]interface{}{"from": fromID, "to": toID})
}

func (EditorTracer) NavigationAborted(toID string) {
	logging.Trace("editor.navigation-aborted", map[string]interface{}{"to": toID})
}

func (EditorTracer) AutosaveFired(gen uint64) {
	logging.Trace("editor.autosave", map[string]interface{}{"gen": gen})
}

func (EditorTracer) AutosaveCancelled(gen uint64) {
	logging.Trace("editor.autosave-cancel", map[string]interface{}{"gen": gen})
}

func (EditorTracer) StaleTimer(kind string, gen uint64) {
	logging.Trace("editor.stale-timer", map[string]interface{}{"kind": kind, "gen": gen})
}

func (EditorTracer) Save(id string, gen uint64) {
	logging.Trace("editor.save", map[string]interface{}{"id": id, "gen": gen})
}

func (EditorTracer) Delete(id string) {
	logging.Trace("editor.delete", map[string]interface{}{"id": id})
}

func (EditorTracer) Folder(op, oldName, newName string) {
	logging.Trace("editor.folder", map[string]interface{}{"op": op, "old": oldName, "new": newName})
}

func (EditorTracer) ExternalChange() {
	logging.Trace("editor.external-change", nil)
}

func (EditorTracer) Error(op string, err error) {
	logError("editor", op, err)
}
