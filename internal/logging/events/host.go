package events

import "github.com/atomicstack/tmux-prompts/internal/logging"

type HostTracer struct{}

var Host = HostTracer{}

func (HostTracer) Command(args []string) {
	logging.Trace("host.tmux", map[string]interface{}{"args": args})
}

func (HostTracer) Hotkey(action, key string) {
	logging.Trace("host.hotkey", map[string]interface{}{"action": action, "key": key})
}

func (HostTracer) Error(op string, err error) {
	logError("host", op, err)
}
