package tmux

import (
	"context"
	"os/exec"

	"github.com/atotto/clipboard"
	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

type tmuxClient interface {
	DisplayMessage(target, format string) (string, error)
	Close() error
}

type commander interface {
	Run() error
	Output() ([]byte, error)
}

var (
	newTmux = func(socketPath string) (tmuxClient, error) {
		if socketPath != "" {
			return gotmux.NewTmux(socketPath)
		}
		return gotmux.DefaultTmux()
	}

	runExecCommand = func(ctx context.Context, name string, args ...string) commander {
		return realCommander{cmd: exec.CommandContext(ctx, name, args...)}
	}

	writeClipboard = clipboard.WriteAll
)

type realCommander struct {
	cmd *exec.Cmd
}

func (r realCommander) Run() error {
	_, err := r.Output()
	return err
}

func (r realCommander) Output() ([]byte, error) {
	return r.cmd.Output()
}
