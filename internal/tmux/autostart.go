package tmux

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const autostartFile = "tmux-prompts.desktop"

func (h *Host) autostartPath() (string, error) {
	dir := h.opts.AutostartDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "autostart")
	}
	return filepath.Join(dir, autostartFile), nil
}

// AutoLaunchEnabled reports whether the login entry exists.
func (h *Host) AutoLaunchEnabled(context.Context) (bool, error) {
	path, err := h.autostartPath()
	if err != nil {
		return false, hostErr("auto-launch", err)
	}
	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, hostErr("auto-launch", err)
}

// SetAutoLaunch installs or removes the login entry that starts the daemon.
func (h *Host) SetAutoLaunch(_ context.Context, enabled bool) error {
	path, err := h.autostartPath()
	if err != nil {
		return hostErr("auto-launch", err)
	}
	if !enabled {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return hostErr("auto-launch", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return hostErr("auto-launch", err)
	}
	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=tmux-prompts
Comment=Prompt launcher daemon for tmux
Exec=%s
Terminal=false
X-GNOME-Autostart-enabled=true
`, h.command("serve"))
	return hostErr("auto-launch", os.WriteFile(path, []byte(entry), 0o644))
}
