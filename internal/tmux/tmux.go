// Package tmux implements the host integration on top of a tmux server: the
// launcher key binding, pasting into the pane that opened the launcher, the
// editor window and the login entry.
package tmux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/atomicstack/tmux-prompts/internal/logging/events"
)

func baseArgs(socketPath string) []string {
	if strings.TrimSpace(socketPath) == "" {
		return []string{}
	}
	return []string{"-S", socketPath}
}

// ResolveSocketPath picks the tmux server socket: the flag, then
// TMUX_PROMPTS_TMUX_SOCKET, then $TMUX, then the default server socket.
func ResolveSocketPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if envSocket := os.Getenv("TMUX_PROMPTS_TMUX_SOCKET"); envSocket != "" {
		return envSocket, nil
	}
	if tmuxEnv := os.Getenv("TMUX"); tmuxEnv != "" {
		parts := strings.Split(tmuxEnv, ",")
		if len(parts) > 0 && parts[0] != "" {
			return parts[0], nil
		}
	}
	baseDir := os.Getenv("TMUX_TMPDIR")
	if baseDir == "" {
		baseDir = "/tmp"
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, fmt.Sprintf("tmux-%s", u.Uid), "default"), nil
}

// run executes one tmux command and returns its trimmed stdout.
func run(ctx context.Context, socketPath string, args ...string) (string, error) {
	full := append(baseArgs(socketPath), args...)
	events.Host.Command(full)
	out, err := runExecCommand(ctx, "tmux", full...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("tmux %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

func showOption(ctx context.Context, socketPath, name string) (string, error) {
	return run(ctx, socketPath, "show-option", "-gqv", name)
}

func setOption(ctx context.Context, socketPath, name, value string) error {
	_, err := run(ctx, socketPath, "set-option", "-g", name, value)
	return err
}

func unsetOption(ctx context.Context, socketPath, name string) error {
	_, err := run(ctx, socketPath, "set-option", "-gu", name)
	return err
}

// shellQuote joins args into a /bin/sh command line.
func shellQuote(args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a != "" && strings.Trim(a, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./=:%#{}") == "" {
			quoted[i] = a
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
