package session

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-prompts/internal/logging/events"
	"github.com/atomicstack/tmux-prompts/internal/model"
)

// KeyEvent is a platform-neutral key press.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool
}

var modifierNames = map[string]struct{}{
	"ctrl": {}, "control": {}, "shift": {}, "alt": {}, "meta": {}, "cmd": {}, "super": {}, "option": {},
}

var namedKeys = map[string]string{
	" ":         "Space",
	"space":     "Space",
	"esc":       "Esc",
	"escape":    "Esc",
	"enter":     "Enter",
	"tab":       "Tab",
	"backspace": "Backspace",
	"delete":    "Delete",
	"insert":    "Insert",
	"home":      "Home",
	"end":       "End",
	"pgup":      "PageUp",
	"pgdown":    "PageDown",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
}

// Normalize renders ev as an accelerator string such as "Ctrl+Shift+P".
// Modifiers come in a fixed order and Ctrl and Meta collapse into one primary
// modifier. A bare modifier press yields "".
func Normalize(ev KeyEvent) string {
	key := ev.Key
	if key == "" {
		return ""
	}
	if _, ok := modifierNames[strings.ToLower(key)]; ok {
		return ""
	}
	parts := make([]string, 0, 4)
	if ev.Ctrl || ev.Meta {
		parts = append(parts, "Ctrl")
	}
	if ev.Shift {
		parts = append(parts, "Shift")
	}
	if ev.Alt {
		parts = append(parts, "Alt")
	}
	return strings.Join(append(parts, canonicalKey(key)), "+")
}

func canonicalKey(key string) string {
	if name, ok := namedKeys[strings.ToLower(key)]; ok {
		return name
	}
	if utf8.RuneCountInString(key) == 1 {
		return strings.ToUpper(key)
	}
	lower := strings.ToLower(key)
	if len(lower) >= 2 && lower[0] == 'f' && strings.Trim(lower[1:], "0123456789") == "" {
		return strings.ToUpper(lower)
	}
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// KeyEventFromTea converts a Bubble Tea key message. Terminals cannot report
// bare modifier presses, so the result always has a main key.
func KeyEventFromTea(msg tea.KeyMsg) KeyEvent {
	s := msg.String()
	var ev KeyEvent
	for {
		switch {
		case strings.HasPrefix(s, "ctrl+") && len(s) > len("ctrl+"):
			ev.Ctrl = true
			s = s[len("ctrl+"):]
			continue
		case strings.HasPrefix(s, "alt+") && len(s) > len("alt+"):
			ev.Alt = true
			s = s[len("alt+"):]
			continue
		case strings.HasPrefix(s, "shift+") && len(s) > len("shift+"):
			ev.Shift = true
			s = s[len("shift+"):]
			continue
		}
		break
	}
	ev.Key = s
	return ev
}

// Interceptor captures every key press while a hotkey is being recorded.
// It is acquired on entering Recording and released on every exit.
type Interceptor struct {
	released bool
}

// Active reports whether the interceptor still owns key input.
func (i *Interceptor) Active() bool {
	return i != nil && !i.released
}

func (i *Interceptor) release() {
	if i != nil {
		i.released = true
	}
}

type hotkeyPhase int

const (
	hotkeyIdle hotkeyPhase = iota
	hotkeyPausing
	hotkeyRecording
	hotkeySaving
)

// Hotkey records a new launcher key combination.
type Hotkey struct {
	host     ShortcutHost
	settings *Settings
	timeout  time.Duration

	phase       hotkeyPhase
	combo       string
	interceptor *Interceptor
	lastErr     error
	released    bool
}

// NewHotkey returns an idle capture session that persists through settings.
func NewHotkey(host ShortcutHost, settings *Settings, timeout time.Duration) *Hotkey {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Hotkey{host: host, settings: settings, timeout: timeout}
}

type (
	pauseResultMsg struct {
		err error
	}
	resumeResultMsg struct {
		err error
	}
	hotkeySavedMsg struct {
		combo     string
		settings  model.AppSettings
		err       error
		resumeErr error
	}
)

// Recording reports whether key presses are being captured.
func (h *Hotkey) Recording() bool {
	return h.phase == hotkeyRecording
}

// Busy reports whether a pause or save is in flight.
func (h *Hotkey) Busy() bool {
	return h.phase == hotkeyPausing || h.phase == hotkeySaving
}

// Combo is the combination captured so far.
func (h *Hotkey) Combo() string {
	return h.combo
}

// LastError is the most recent pause, resume or save failure.
func (h *Hotkey) LastError() error {
	return h.lastErr
}

// Intercepting reports whether key input must be routed to HandleKey.
func (h *Hotkey) Intercepting() bool {
	return h.interceptor.Active()
}

func (h *Hotkey) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.timeout)
}

// StartRecording pauses the live binding and, once that succeeds, begins
// capturing key presses. If the pause fails the session stays idle.
func (h *Hotkey) StartRecording() tea.Cmd {
	if h.phase != hotkeyIdle {
		return nil
	}
	h.phase = hotkeyPausing
	h.lastErr = nil
	h.released = false
	host := h.host
	events.Hotkey.Pause()
	return func() tea.Msg {
		ctx, cancel := h.context()
		defer cancel()
		return pauseResultMsg{err: host.PauseHotkey(ctx)}
	}
}

// HandleKey consumes msg while recording. Escape cancels the recording.
func (h *Hotkey) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if !h.Intercepting() {
		return nil, false
	}
	if msg.Type == tea.KeyEsc {
		return h.CancelRecording(), true
	}
	if combo := Normalize(KeyEventFromTea(msg)); combo != "" {
		h.combo = combo
		events.Hotkey.Captured(combo)
	}
	return nil, true
}

// CancelRecording abandons the capture and restores the previous binding.
func (h *Hotkey) CancelRecording() tea.Cmd {
	if h.phase != hotkeyRecording {
		return nil
	}
	h.exitRecording()
	events.Hotkey.Cancel()
	return h.resume()
}

func (h *Hotkey) exitRecording() {
	h.phase = hotkeyIdle
	h.combo = ""
	h.interceptor.release()
	h.interceptor = nil
}

func (h *Hotkey) resume() tea.Cmd {
	host := h.host
	return func() tea.Msg {
		ctx, cancel := h.context()
		defer cancel()
		return resumeResultMsg{err: host.ResumeHotkey(ctx)}
	}
}

// SaveHotkey registers the captured combination, persists it, then resumes
// the binding. The resume is attempted even when an earlier step fails.
func (h *Hotkey) SaveHotkey() tea.Cmd {
	if h.phase != hotkeyRecording || h.combo == "" {
		return nil
	}
	if _, ok := h.settings.Current(); !ok {
		h.lastErr = errors.New("settings are not loaded yet")
		return nil
	}
	combo := h.combo
	h.phase = hotkeySaving
	h.interceptor.release()
	h.interceptor = nil
	host, cmds := h.host, h.settings.cmds
	events.Hotkey.Save(combo)
	return h.settings.enqueue(func(current model.AppSettings) tea.Cmd {
		return func() tea.Msg {
			ctx, cancel := h.context()
			defer cancel()
			msg := hotkeySavedMsg{combo: combo}
			if err := host.RegisterHotkey(ctx, combo); err != nil {
				msg.err = err
			} else {
				next := current
				next.General.Hotkey = combo
				msg.settings, msg.err = cmds.SaveSettings(ctx, next)
				if msg.err != nil {
					// keep the binding in line with the stored record
					if rerr := host.RegisterHotkey(ctx, current.General.Hotkey); rerr != nil {
						events.Hotkey.Error("restore", rerr)
					}
				}
			}
			msg.resumeErr = host.ResumeHotkey(ctx)
			return msg
		}
	})
}

// Release ends a recording when the surrounding UI goes away and resumes the
// binding synchronously. A pause or save still in flight may never report
// back, so those phases resume here too; binding the key twice is harmless.
// Calling Release again does nothing.
func (h *Hotkey) Release(ctx context.Context) error {
	switch h.phase {
	case hotkeyRecording:
		h.exitRecording()
	case hotkeyPausing, hotkeySaving:
		if h.released {
			return nil
		}
		h.released = true
	default:
		return nil
	}
	events.Hotkey.Release()
	return h.host.ResumeHotkey(ctx)
}

// HandleMsg applies results of commands this session issued.
func (h *Hotkey) HandleMsg(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case pauseResultMsg:
		if h.phase != hotkeyPausing {
			return nil, true
		}
		if msg.err != nil {
			h.phase = hotkeyIdle
			h.lastErr = msg.err
			events.Hotkey.Error("pause", msg.err)
			return nil, true
		}
		if h.released {
			h.phase = hotkeyIdle
			return h.resume(), true
		}
		h.phase = hotkeyRecording
		h.combo = ""
		h.interceptor = &Interceptor{}
		events.Hotkey.Recording()
		return nil, true
	case resumeResultMsg:
		if msg.err != nil {
			h.lastErr = msg.err
			events.Hotkey.Error("resume", msg.err)
		}
		return nil, true
	case hotkeySavedMsg:
		h.phase = hotkeyIdle
		h.combo = ""
		if msg.resumeErr != nil {
			events.Hotkey.Error("resume", msg.resumeErr)
		}
		if msg.err != nil {
			h.lastErr = msg.err
			events.Hotkey.Error("save", msg.err)
			return h.settings.next(), true
		}
		h.lastErr = nil
		h.settings.apply(msg.settings)
		return h.settings.next(), true
	}
	return nil, false
}
