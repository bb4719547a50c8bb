package session

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-prompts/internal/boundary"
	"github.com/atomicstack/tmux-prompts/internal/logging/events"
	"github.com/atomicstack/tmux-prompts/internal/model"
)

// ThemeFunc applies an appearance locally.
type ThemeFunc func(model.AppearanceSettings)

// Settings caches the settings record and applies changes to it. Each change
// runs its host side effect first, then persists the full record, and only
// then updates the cache. Changes are applied one at a time.
type Settings struct {
	cmds       boundary.Commands
	host       SettingsHost
	applyTheme ThemeFunc
	timeout    time.Duration

	settings *model.AppSettings
	loading  bool
	loaded   bool
	quitting bool
	lastErr  error

	busy  bool
	queue []func(model.AppSettings) tea.Cmd
}

// NewSettings returns an empty settings session. applyTheme may be nil.
func NewSettings(cmds boundary.Commands, host SettingsHost, applyTheme ThemeFunc, timeout time.Duration) *Settings {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if applyTheme == nil {
		applyTheme = func(model.AppearanceSettings) {}
	}
	return &Settings{cmds: cmds, host: host, applyTheme: applyTheme, timeout: timeout}
}

type (
	settingsLoadedMsg struct {
		settings model.AppSettings
		err      error
	}
	autoLaunchSyncedMsg struct {
		settings *model.AppSettings
		err      error
	}
	settingsSavedMsg struct {
		field    string
		settings model.AppSettings
		err      error
	}
	// QuitMsg reports the outcome of a quit request.
	QuitMsg struct {
		Err error
	}
)

// Current returns the cached record.
func (s *Settings) Current() (model.AppSettings, bool) {
	if s.settings == nil {
		return model.AppSettings{}, false
	}
	return *s.settings, true
}

// Loading reports whether the initial fetch is outstanding.
func (s *Settings) Loading() bool {
	return s.loading
}

func (s *Settings) Loaded() bool {
	return s.loaded
}

func (s *Settings) Quitting() bool {
	return s.quitting
}

// LastError is the most recent load, change or quit failure.
func (s *Settings) LastError() error {
	return s.lastErr
}

// Busy reports whether a change is being applied.
func (s *Settings) Busy() bool {
	return s.busy
}

func (s *Settings) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Load fetches the record once; later calls are no-ops.
func (s *Settings) Load() tea.Cmd {
	if s.loaded || s.loading {
		return nil
	}
	s.loading = true
	cmds := s.cmds
	return func() tea.Msg {
		ctx, cancel := s.context()
		defer cancel()
		settings, err := cmds.GetSettings(ctx)
		return settingsLoadedMsg{settings: settings, err: err}
	}
}

// syncAutoLaunch corrects the persisted flag when the host disagrees. It is
// queued like any other change so later edits build on its result.
func (s *Settings) syncAutoLaunch() tea.Cmd {
	host, cmds := s.host, s.cmds
	return s.enqueue(func(current model.AppSettings) tea.Cmd {
		return func() tea.Msg {
			ctx, cancel := s.context()
			defer cancel()
			enabled, err := host.AutoLaunchEnabled(ctx)
			if err != nil {
				return autoLaunchSyncedMsg{err: err}
			}
			if enabled == current.General.AutoLaunch {
				return autoLaunchSyncedMsg{}
			}
			next := current
			next.General.AutoLaunch = enabled
			saved, err := cmds.SaveSettings(ctx, next)
			if err != nil {
				return autoLaunchSyncedMsg{err: err}
			}
			return autoLaunchSyncedMsg{settings: &saved}
		}
	})
}

func (s *Settings) enqueue(change func(model.AppSettings) tea.Cmd) tea.Cmd {
	if s.settings == nil {
		return nil
	}
	if s.busy {
		s.queue = append(s.queue, change)
		return nil
	}
	s.busy = true
	return change(*s.settings)
}

func (s *Settings) next() tea.Cmd {
	s.busy = false
	if len(s.queue) == 0 || s.settings == nil {
		s.queue = nil
		return nil
	}
	change := s.queue[0]
	s.queue = s.queue[1:]
	s.busy = true
	return change(*s.settings)
}

func (s *Settings) persist(field string, next model.AppSettings, effect func(context.Context) error) tea.Cmd {
	cmds := s.cmds
	events.Settings.Change(field)
	return func() tea.Msg {
		ctx, cancel := s.context()
		defer cancel()
		if effect != nil {
			if err := effect(ctx); err != nil {
				return settingsSavedMsg{field: field, err: err}
			}
		}
		saved, err := cmds.SaveSettings(ctx, next)
		return settingsSavedMsg{field: field, settings: saved, err: err}
	}
}

// SetTheme applies theme to the UI and persists it.
func (s *Settings) SetTheme(theme string) tea.Cmd {
	return s.enqueue(func(current model.AppSettings) tea.Cmd {
		next := current
		next.Appearance.Theme = theme
		s.applyTheme(next.Appearance)
		return s.persist("theme", next, nil)
	})
}

// SetAccent applies an accent colour and persists it.
func (s *Settings) SetAccent(accent string) tea.Cmd {
	return s.enqueue(func(current model.AppSettings) tea.Cmd {
		next := current
		next.Appearance.AccentColor = accent
		s.applyTheme(next.Appearance)
		return s.persist("accent", next, nil)
	})
}

// SetAlwaysOnTop changes how the editor window is opened.
func (s *Settings) SetAlwaysOnTop(enabled bool) tea.Cmd {
	host := s.host
	return s.enqueue(func(current model.AppSettings) tea.Cmd {
		next := current
		next.General.EditorAlwaysOnTop = enabled
		return s.persist("alwaysOnTop", next, func(ctx context.Context) error {
			return host.SetAlwaysOnTop(ctx, enabled)
		})
	})
}

// SetAutoLaunch installs or removes the login entry.
func (s *Settings) SetAutoLaunch(enabled bool) tea.Cmd {
	host := s.host
	return s.enqueue(func(current model.AppSettings) tea.Cmd {
		next := current
		next.General.AutoLaunch = enabled
		return s.persist("autoLaunch", next, func(ctx context.Context) error {
			return host.SetAutoLaunch(ctx, enabled)
		})
	})
}

// DismissWelcome hides the first-run banner for good.
func (s *Settings) DismissWelcome() tea.Cmd {
	return s.enqueue(func(current model.AppSettings) tea.Cmd {
		next := current
		next.General.WelcomeScreenDismissed = true
		return s.persist("welcome", next, nil)
	})
}

// QuitApp stops the whole application.
func (s *Settings) QuitApp() tea.Cmd {
	if s.quitting {
		return nil
	}
	s.quitting = true
	host := s.host
	events.Settings.Quit()
	return func() tea.Msg {
		ctx, cancel := s.context()
		defer cancel()
		return QuitMsg{Err: host.Quit(ctx)}
	}
}

func (s *Settings) apply(settings model.AppSettings) {
	s.settings = &settings
}

// HandleMsg applies results of commands this session issued.
func (s *Settings) HandleMsg(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.lastErr = msg.err
			events.Settings.Error("load", msg.err)
			return nil, true
		}
		s.loaded = true
		s.apply(msg.settings)
		s.applyTheme(msg.settings.Appearance)
		events.Settings.Loaded()
		return s.syncAutoLaunch(), true
	case autoLaunchSyncedMsg:
		if msg.err != nil {
			events.Settings.Error("auto-launch-sync", msg.err)
			return s.next(), true
		}
		if msg.settings != nil {
			s.apply(*msg.settings)
			events.Settings.AutoLaunchSynced(msg.settings.General.AutoLaunch)
		}
		return s.next(), true
	case settingsSavedMsg:
		if msg.err != nil {
			s.lastErr = msg.err
			events.Settings.Error(msg.field, msg.err)
			if s.settings != nil && (msg.field == "theme" || msg.field == "accent") {
				s.applyTheme(s.settings.Appearance)
			}
			return s.next(), true
		}
		s.lastErr = nil
		s.apply(msg.settings)
		return s.next(), true
	case QuitMsg:
		if msg.Err != nil {
			s.quitting = false
			s.lastErr = msg.Err
			events.Settings.Error("quit", msg.Err)
		}
		return nil, true
	}
	return nil, false
}
