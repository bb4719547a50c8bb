package tmux

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/logging/events"
)

const (
	// EditorWindowName names the window the editor runs in.
	EditorWindowName = "prompts-editor"

	optHotkey      = "@tmux-prompts-hotkey"
	optKey         = "@tmux-prompts-key"
	optEditorPopup = "@tmux-prompts-editor-popup"
	pasteBuffer    = "tmux-prompts"

	// the launcher popup has to close before another popup can open on the
	// same client
	popupHandoff = 150 * time.Millisecond
)

// Options configures a Host.
type Options struct {
	Socket      string // tmux server socket
	KeyTable    string // table the launcher key is bound in; "root" uses -n
	TargetPane  string // pane prompts are pasted into
	Executable  string // path of the tmux-prompts binary
	PopupWidth  string
	PopupHeight string
	// ExtraArgs are appended to every spawned tmux-prompts command line.
	ExtraArgs []string
	// AutostartDir holds the login entry; empty uses the XDG default.
	AutostartDir string
	// Shutdown asks the daemon to stop; nil skips it.
	Shutdown func(context.Context) error
}

// Host drives a tmux server on behalf of the sessions. The live binding is
// recorded in tmux user options so every process sharing the server sees the
// same state.
type Host struct {
	opts Options
	mu   sync.Mutex
}

// New returns a host for opts.
func New(opts Options) *Host {
	if opts.KeyTable == "" {
		opts.KeyTable = "root"
	}
	if opts.Executable == "" {
		opts.Executable = "tmux-prompts"
	}
	if opts.PopupWidth == "" {
		opts.PopupWidth = "60%"
	}
	if opts.PopupHeight == "" {
		opts.PopupHeight = "50%"
	}
	return &Host{opts: opts}
}

func (h *Host) run(ctx context.Context, args ...string) (string, error) {
	return run(ctx, h.opts.Socket, args...)
}

func (h *Host) command(args ...string) string {
	full := append([]string{h.opts.Executable}, args...)
	return shellQuote(append(full, h.opts.ExtraArgs...)...)
}

func hostErr(op string, err error) error {
	if err == nil {
		return nil
	}
	events.Host.Error(op, err)
	return apperror.Host(op, err)
}

func (h *Host) target() (string, error) {
	if strings.TrimSpace(h.opts.TargetPane) == "" {
		return "", errors.New("no target pane")
	}
	return h.opts.TargetPane, nil
}

// PasteAndDismiss pastes text into the target pane and focuses it.
func (h *Host) PasteAndDismiss(ctx context.Context, text string) error {
	target, err := h.target()
	if err != nil {
		return hostErr("paste", err)
	}
	if _, err := h.run(ctx, "set-buffer", "-b", pasteBuffer, "--", text); err != nil {
		return hostErr("paste", err)
	}
	if _, err := h.run(ctx, "paste-buffer", "-p", "-d", "-b", pasteBuffer, "-t", target); err != nil {
		return hostErr("paste", err)
	}
	return h.Dismiss(ctx)
}

// Dismiss returns focus to the target pane. The launcher program exits
// afterwards, which closes its popup.
func (h *Host) Dismiss(ctx context.Context) error {
	if strings.TrimSpace(h.opts.TargetPane) == "" {
		return nil
	}
	_, err := h.run(ctx, "select-pane", "-t", h.opts.TargetPane)
	return hostErr("dismiss", err)
}

// CopyToClipboard puts text on the system clipboard, falling back to the
// tmux clipboard integration when no clipboard tool is available.
func (h *Host) CopyToClipboard(ctx context.Context, text string) error {
	err := writeClipboard(text)
	if err == nil {
		return nil
	}
	events.Host.Error("clipboard", err)
	_, err = h.run(ctx, "set-buffer", "-w", "--", text)
	return hostErr("copy", err)
}

func (h *Host) editorWindow(ctx context.Context) (string, error) {
	out, err := h.run(ctx, "list-windows", "-a", "-F", "#{window_id}\t#{window_name}")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		id, name, ok := strings.Cut(line, "\t")
		if ok && name == EditorWindowName {
			return id, nil
		}
	}
	return "", nil
}

func (h *Host) editorPopup(ctx context.Context) bool {
	v, err := showOption(ctx, h.opts.Socket, optEditorPopup)
	return err == nil && v == "on"
}

// OpenEditor shows the editor, selecting selectID when it is started. An
// already running editor window is focused as it is.
func (h *Host) OpenEditor(ctx context.Context, selectID string) error {
	args := []string{"editor"}
	if selectID != "" {
		args = append(args, "--select", selectID)
	}
	cmdline := h.command(args...)

	if h.editorPopup(ctx) {
		popup := []string{"display-popup", "-E", "-w", "90%", "-h", "90%"}
		if client := CurrentClientName(h.opts.Socket); client != "" {
			popup = append(popup, "-c", client)
		}
		popup = append(popup, cmdline)
		script := fmt.Sprintf("sleep %.2f; tmux %s", popupHandoff.Seconds(), shellQuote(append(baseArgs(h.opts.Socket), popup...)...))
		_, err := h.run(ctx, "run-shell", "-b", script)
		return hostErr("open-editor", err)
	}

	id, err := h.editorWindow(ctx)
	if err != nil {
		return hostErr("open-editor", err)
	}
	if id != "" {
		_, err = h.run(ctx, "select-window", "-t", id)
		return hostErr("open-editor", err)
	}
	_, err = h.run(ctx, "new-window", "-n", EditorWindowName, cmdline)
	return hostErr("open-editor", err)
}

// CloseEditor kills the editor window if one is open.
func (h *Host) CloseEditor(ctx context.Context) error {
	id, err := h.editorWindow(ctx)
	if err != nil || id == "" {
		return hostErr("close-editor", err)
	}
	_, err = h.run(ctx, "kill-window", "-t", id)
	return hostErr("close-editor", err)
}

// Quit removes the binding, closes the editor and stops the daemon. Every
// step runs; the first failure is reported.
func (h *Host) Quit(ctx context.Context) error {
	var errs []error
	if err := h.Unbind(ctx); err != nil {
		errs = append(errs, err)
	}
	if h.opts.Shutdown != nil {
		if err := h.opts.Shutdown(ctx); err != nil {
			errs = append(errs, hostErr("shutdown", err))
		}
	}
	if err := h.CloseEditor(ctx); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// SetAlwaysOnTop chooses between a popup and a window for the editor.
func (h *Host) SetAlwaysOnTop(ctx context.Context, enabled bool) error {
	value := "off"
	if enabled {
		value = "on"
	}
	return hostErr("always-on-top", setOption(ctx, h.opts.Socket, optEditorPopup, value))
}

func (h *Host) tableArgs() []string {
	if h.opts.KeyTable == "root" {
		return []string{"-n"}
	}
	return []string{"-T", h.opts.KeyTable}
}

func (h *Host) launcherBinding(key string) []string {
	args := append([]string{"bind-key"}, h.tableArgs()...)
	return append(args, key,
		"display-popup", "-E", "-w", h.opts.PopupWidth, "-h", h.opts.PopupHeight,
		h.command("launcher", "--target-pane", "#{pane_id}"))
}

func (h *Host) unbindKey(ctx context.Context, key string) error {
	args := append([]string{"unbind-key"}, h.tableArgs()...)
	_, err := h.run(ctx, append(args, key)...)
	return err
}

func (h *Host) boundKey(ctx context.Context) (string, error) {
	return showOption(ctx, h.opts.Socket, optKey)
}

// CurrentHotkey returns the accelerator currently registered, if any.
func (h *Host) CurrentHotkey(ctx context.Context) (string, error) {
	combo, err := showOption(ctx, h.opts.Socket, optHotkey)
	return combo, hostErr("current-hotkey", err)
}

// RegisterHotkey binds combo to the launcher, replacing the previous key.
func (h *Host) RegisterHotkey(ctx context.Context, combo string) error {
	key, err := KeyName(combo)
	if err == nil && h.opts.KeyTable == "root" && !hasModifier(key) {
		err = apperror.ValidationFailed("hotkey", fmt.Sprintf("%s needs Ctrl or Alt in the root key table", combo))
	}
	if err != nil {
		// stays ErrValidation, not ErrHost
		events.Host.Error("register-hotkey", err)
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	old, err := h.boundKey(ctx)
	if err != nil {
		return hostErr("register-hotkey", err)
	}
	if old != "" && old != key {
		if err := h.unbindKey(ctx, old); err != nil {
			events.Host.Error("unbind-previous", err)
		}
	}
	if _, err := h.run(ctx, h.launcherBinding(key)...); err != nil {
		return hostErr("register-hotkey", err)
	}
	if err := setOption(ctx, h.opts.Socket, optKey, key); err != nil {
		return hostErr("register-hotkey", err)
	}
	events.Host.Hotkey("register", key)
	return hostErr("register-hotkey", setOption(ctx, h.opts.Socket, optHotkey, combo))
}

// PauseHotkey removes the binding without forgetting it.
func (h *Host) PauseHotkey(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	key, err := h.boundKey(ctx)
	if err != nil || key == "" {
		return hostErr("pause-hotkey", err)
	}
	events.Host.Hotkey("pause", key)
	return hostErr("pause-hotkey", h.unbindKey(ctx, key))
}

// ResumeHotkey re-installs the remembered binding.
func (h *Host) ResumeHotkey(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	key, err := h.boundKey(ctx)
	if err != nil || key == "" {
		return hostErr("resume-hotkey", err)
	}
	events.Host.Hotkey("resume", key)
	_, err = h.run(ctx, h.launcherBinding(key)...)
	return hostErr("resume-hotkey", err)
}

// Unbind removes the binding and forgets it.
func (h *Host) Unbind(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	key, err := h.boundKey(ctx)
	if err != nil || key == "" {
		return hostErr("unbind", err)
	}
	if err := h.unbindKey(ctx, key); err != nil {
		events.Host.Error("unbind", err)
	}
	_ = unsetOption(ctx, h.opts.Socket, optHotkey)
	events.Host.Hotkey("unbind", key)
	return hostErr("unbind", unsetOption(ctx, h.opts.Socket, optKey))
}
