// Package app wires configuration, the command boundary, the tmux host and
// the UI programs together for each subcommand.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-prompts/internal/backend"
	"github.com/atomicstack/tmux-prompts/internal/boundary"
	"github.com/atomicstack/tmux-prompts/internal/client"
	"github.com/atomicstack/tmux-prompts/internal/config"
	"github.com/atomicstack/tmux-prompts/internal/logging"
	"github.com/atomicstack/tmux-prompts/internal/logging/events"
	"github.com/atomicstack/tmux-prompts/internal/session"
	"github.com/atomicstack/tmux-prompts/internal/store"
	"github.com/atomicstack/tmux-prompts/internal/theme"
	"github.com/atomicstack/tmux-prompts/internal/tmux"
	"github.com/atomicstack/tmux-prompts/internal/ui"
)

const pingTimeout = 300 * time.Millisecond

// openCommands prefers a running daemon and falls back to opening the store
// in-process. The returned client is nil in local mode.
func openCommands(ctx context.Context, cfg config.Config) (boundary.Commands, *client.Client, error) {
	cl := client.New(cfg.Daemon.Socket)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := cl.Ping(pingCtx)
	cancel()
	if err == nil {
		return cl, cl, nil
	}
	st, err := store.Open(cfg.Storage.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := st.SeedIfNeeded(); err != nil {
		logging.Error(fmt.Errorf("seed prompts: %w", err))
	}
	return boundary.NewLocal(st), nil, nil
}

func backendName(cl *client.Client) string {
	if cl != nil {
		return "daemon"
	}
	return "local"
}

// newHost builds the tmux host. Spawned launcher and editor processes get the
// same storage, tmux and daemon locations as this one.
func newHost(cfg config.Config, targetPane string) (*tmux.Host, error) {
	socket, err := tmux.ResolveSocketPath(cfg.Tmux.Socket)
	if err != nil {
		return nil, fmt.Errorf("resolve socket path: %w", err)
	}
	exe, err := os.Executable()
	if err != nil {
		exe = "tmux-prompts"
	}
	extra := []string{
		"--" + config.FlagRoot, cfg.Storage.Root,
		"--" + config.FlagDaemon, cfg.Daemon.Socket,
	}
	if socket != "" {
		extra = append(extra, "--"+config.FlagTmuxSocket, socket)
	}
	if cfg.File != "" {
		extra = append(extra, "--"+config.FlagConfig, cfg.File)
	}
	daemonSocket := cfg.Daemon.Socket
	return tmux.New(tmux.Options{
		Socket:      socket,
		KeyTable:    cfg.Tmux.KeyTable,
		TargetPane:  targetPane,
		Executable:  exe,
		PopupWidth:  cfg.Tmux.PopupWidth,
		PopupHeight: cfg.Tmux.PopupHeight,
		ExtraArgs:   extra,
		Shutdown: func(ctx context.Context) error {
			return stopDaemon(ctx, daemonSocket)
		},
	}), nil
}

// stopDaemon asks a daemon listening on socket to exit. No daemon is not an
// error.
func stopDaemon(ctx context.Context, socket string) error {
	cl := client.New(socket)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := cl.Ping(pingCtx)
	cancel()
	if err != nil {
		return nil
	}
	return cl.Shutdown(ctx)
}

// applyStoredTheme styles the UI before the first frame.
func applyStoredTheme(ctx context.Context, cmds boundary.Commands) {
	settings, err := cmds.GetSettings(ctx)
	if err != nil {
		logging.Error(err)
		return
	}
	theme.Apply(settings.Appearance)
}

// RunLauncher runs the search popup for targetPane. An empty target means
// the pane the process runs in.
func RunLauncher(ctx context.Context, cfg config.Config, targetPane string) error {
	cmds, daemon, err := openCommands(ctx, cfg)
	if err != nil {
		return err
	}
	if targetPane == "" {
		socket, _ := tmux.ResolveSocketPath(cfg.Tmux.Socket)
		targetPane = tmux.CurrentPaneID(socket)
	}
	host, err := newHost(cfg, targetPane)
	if err != nil {
		return err
	}
	events.App.Mode("launcher", backendName(daemon))
	applyStoredTheme(ctx, cmds)

	sess := session.NewLauncher(cmds, host, cfg.Daemon.Timeout)
	model := ui.NewLauncher(sess, ui.LauncherOptions{
		Width:      cfg.UI.Width,
		Height:     cfg.UI.Height,
		ShowFooter: cfg.UI.ShowFooter,
		Verbose:    cfg.UI.Verbose,
	})
	return runProgram(ctx, model)
}

// RunEditor runs the library editor, opening selectID once loaded.
func RunEditor(ctx context.Context, cfg config.Config, selectID string) error {
	cmds, daemon, err := openCommands(ctx, cfg)
	if err != nil {
		return err
	}
	host, err := newHost(cfg, "")
	if err != nil {
		return err
	}
	events.App.Mode("editor", backendName(daemon))
	applyStoredTheme(ctx, cmds)

	opts := ui.EditorOptions{
		Width:      cfg.UI.Width,
		Height:     cfg.UI.Height,
		ShowFooter: cfg.UI.ShowFooter,
		Verbose:    cfg.UI.Verbose,
		SelectID:   selectID,
		Timeout:    cfg.Daemon.Timeout,
	}
	if w, err := backend.NewWatcher(cfg.Storage.Root, backend.DefaultQuiet); err != nil {
		logging.Error(fmt.Errorf("watch prompts: %w", err))
	} else {
		defer w.Stop()
		opts.Watcher = w
	}

	editor := session.NewEditor(cmds, session.WithEditorTimeout(cfg.Daemon.Timeout))
	settings := session.NewSettings(cmds, host, theme.Apply, cfg.Daemon.Timeout)
	hotkey := session.NewHotkey(host, settings, cfg.Daemon.Timeout)
	defer releaseHotkey(hotkey, cfg.Daemon.Timeout)
	return runProgram(ctx, ui.NewEditor(editor, settings, hotkey, opts))
}

// releaseHotkey resumes a binding the editor left paused, including when the
// program was killed mid-recording.
func releaseHotkey(hotkey *session.Hotkey, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := hotkey.Release(ctx); err != nil {
		logging.Error(fmt.Errorf("release hotkey: %w", err))
	}
}

func runProgram(ctx context.Context, model tea.Model) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
