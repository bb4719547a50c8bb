package events

import "github.com/atomicstack/tmux-prompts/internal/logging"

type HotkeyTracer struct{}

var Hotkey = HotkeyTracer{}

func (HotkeyTracer) Pause() {
	logging.Trace("hotkey.pause", nil)
}

func (HotkeyTracer) Recording() {
	logging.Trace("hotkey.recording", nil)
}

func (HotkeyTracer) Captured(combo string) {
	logging.Trace("hotkey.captured", map[string]interface{}{"combo": combo})
}

func (HotkeyTracer) Cancel() {
	logging.Trace("hotkey.cancel", nil)
}

func (HotkeyTracer) Save(combo string) {
	logging.Trace("hotkey.save", map[string]interface{}{"combo": combo})
}

func (HotkeyTracer) Release() {
	logging.Trace("hotkey.release", nil)
}

func (HotkeyTracer) Error(op string, err error) {
	logError("hotkey", op, err)
}
