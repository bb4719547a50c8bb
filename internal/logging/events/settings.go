package events

import "github.com/atomicstack/tmux-prompts/internal/logging"

type SettingsTracer struct{}

var Settings = SettingsTracer{}

func (SettingsTracer) Loaded() {
	logging.Trace("settings.loaded", nil)
}

func (SettingsTracer) AutoLaunchSynced(enabled bool) {
	logging.Trace("settings.auto-launch-sync", map[string]interface{}{"enabled": enabled})
}

func (SettingsTracer) Change(field string) {
	logging.Trace("settings.change", map[string]interface{}{"field": field})
}

func (SettingsTracer) Quit() {
	logging.Trace("settings.quit", nil)
}

func (SettingsTracer) Error(op string, err error) {
	logError("settings", op, err)
}
