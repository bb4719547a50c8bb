package events

import "github.com/atomicstack/tmux-prompts/internal/logging"

type AppTracer struct{}

type DaemonTracer struct{}

var (
	App    = AppTracer{}
	Daemon = DaemonTracer{}
)

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Mode(mode, backend string) {
	logging.Trace("app.mode", map[string]interface{}{"mode": mode, "backend": backend})
}

func (DaemonTracer) Listen(socket string) {
	l := logging.Logger()
	l.Info().Str("socket", socket).Msg("daemon listening")
}

func (DaemonTracer) Stop(reason string) {
	l := logging.Logger()
	l.Info().Str("reason", reason).Msg("daemon stopped")
}

func (DaemonTracer) Watch(path, op string) {
	logging.Trace("daemon.watch", map[string]interface{}{"path": path, "op": op})
}

// logError records a failure whether or not tracing is on.
func logError(scope, op string, err error) {
	if err == nil {
		return
	}
	l := logging.Logger()
	l.Warn().Err(err).Str("scope", scope).Str("op", op).Msg("operation failed")
	logging.Trace(scope+".error", map[string]interface{}{"op": op, "error": err.Error()})
}
