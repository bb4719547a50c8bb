package events

import "github.com/atomicstack/tmux-prompts/internal/logging"

type LauncherTracer struct{}

var Launcher = LauncherTracer{}

func (LauncherTracer) Query(seq uint64, query string) {
	logging.Trace("launcher.query", map[string]interface{}{"seq": seq, "query": query})
}

func (LauncherTracer) Results(seq uint64, count int) {
	logging.Trace("launcher.results", map[string]interface{}{"seq": seq, "count": count})
}

func (LauncherTracer) Stale(seq, latest uint64) {
	logging.Trace("launcher.stale", map[string]interface{}{"seq": seq, "latest": latest})
}

func (LauncherTracer) Cursor(index int) {
	logging.Trace("launcher.cursor", map[string]interface{}{"index": index})
}

func (LauncherTracer) Paste(id string) {
	logging.Trace("launcher.paste", map[string]interface{}{"id": id})
}

func (LauncherTracer) Copy(id string) {
	logging.Trace("launcher.copy", map[string]interface{}{"id": id})
}

func (LauncherTracer) OpenEditor(id string) {
	logging.Trace("launcher.open-editor", map[string]interface{}{"id": id})
}

func (LauncherTracer) Dismiss() {
	logging.Trace("launcher.dismiss", nil)
}

func (LauncherTracer) Error(op string, err error) {
	logError("launcher", op, err)
}
