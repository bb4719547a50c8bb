package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/tmux-prompts/internal/backend"
	"github.com/atomicstack/tmux-prompts/internal/boundary"
	"github.com/atomicstack/tmux-prompts/internal/config"
	"github.com/atomicstack/tmux-prompts/internal/logging"
	"github.com/atomicstack/tmux-prompts/internal/logging/events"
	"github.com/atomicstack/tmux-prompts/internal/server"
	"github.com/atomicstack/tmux-prompts/internal/store"
)

// hotkeyHost is the part of the tmux host the daemon drives at startup.
type hotkeyHost interface {
	RegisterHotkey(ctx context.Context, combo string) error
	SetAlwaysOnTop(ctx context.Context, enabled bool) error
}

// Serve runs the daemon until ctx is cancelled or a client asks it to stop.
func Serve(ctx context.Context, cfg config.Config) error {
	st, err := store.Open(cfg.Storage.Root)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if _, err := st.SeedIfNeeded(); err != nil {
		logging.Error(fmt.Errorf("seed prompts: %w", err))
	}
	local := boundary.NewLocal(st)

	ln, err := server.ListenUnix(cfg.Daemon.Socket)
	if err != nil {
		return err
	}
	defer os.Remove(cfg.Daemon.Socket)
	events.Daemon.Listen(cfg.Daemon.Socket)

	host, err := newHost(cfg, "")
	if err != nil {
		ln.Close()
		return err
	}
	installFromSettings(ctx, local, host, cfg.Daemon.Timeout)

	srv := server.New(local, logging.Logger())
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer stop()
		return srv.Serve(gctx, ln)
	})

	if w, err := backend.NewWatcher(cfg.Storage.Root, backend.DefaultQuiet); err != nil {
		logging.Error(fmt.Errorf("watch prompts: %w", err))
	} else {
		g.Go(func() error {
			traceChanges(gctx, w)
			return nil
		})
	}

	err = g.Wait()
	reason := "shutdown requested"
	switch {
	case err != nil:
		reason = err.Error()
	case ctx.Err() != nil:
		reason = ctx.Err().Error()
	}
	events.Daemon.Stop(reason)
	return err
}

// traceChanges logs library changes made behind the daemon's back until ctx
// ends.
func traceChanges(ctx context.Context, w *backend.Watcher) {
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			if ev.Err != nil {
				logging.Error(fmt.Errorf("watch prompts: %w", ev.Err))
				continue
			}
			events.Daemon.Watch(ev.Path, "burst")
		}
	}
}

// installFromSettings applies the stored hotkey and window settings to tmux.
// Failures are logged and leave the daemon running.
func installFromSettings(ctx context.Context, cmds boundary.Commands, host hotkeyHost, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	settings, err := cmds.GetSettings(ctx)
	if err != nil {
		logging.Error(fmt.Errorf("load settings: %w", err))
		return
	}
	if err := host.RegisterHotkey(ctx, settings.General.Hotkey); err != nil {
		logging.Error(fmt.Errorf("register hotkey %q: %w", settings.General.Hotkey, err))
	}
	if err := host.SetAlwaysOnTop(ctx, settings.General.EditorAlwaysOnTop); err != nil {
		logging.Error(fmt.Errorf("set always on top: %w", err))
	}
}

// Bind installs the hotkey stored in settings without starting a daemon.
func Bind(ctx context.Context, cfg config.Config) error {
	cmds, _, err := openCommands(ctx, cfg)
	if err != nil {
		return err
	}
	host, err := newHost(cfg, "")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Daemon.Timeout)
	defer cancel()
	settings, err := cmds.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := host.RegisterHotkey(ctx, settings.General.Hotkey); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "bound %s\n", settings.General.Hotkey)
	return nil
}

// Unbind removes the launcher hotkey.
func Unbind(ctx context.Context, cfg config.Config) error {
	host, err := newHost(cfg, "")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Daemon.Timeout)
	defer cancel()
	return host.Unbind(ctx)
}
