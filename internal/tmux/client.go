package tmux

import (
	"os"
	"strings"
)

// CurrentClientName returns the tmux client that launched the program so
// popups can be opened on the visible client instead of the control-mode
// connection.
func CurrentClientName(socketPath string) string {
	return displayMessage(socketPath, "#{client_name}")
}

// CurrentPaneID returns the pane the program runs in, if any.
func CurrentPaneID(socketPath string) string {
	if pane := strings.TrimSpace(os.Getenv("TMUX_PANE")); pane != "" {
		return pane
	}
	return displayMessage(socketPath, "#{pane_id}")
}

func displayMessage(socketPath, format string) string {
	client, err := newTmux(socketPath)
	if err != nil {
		return ""
	}
	defer client.Close()
	target := strings.TrimSpace(os.Getenv("TMUX_PANE"))
	out, err := client.DisplayMessage(target, format)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
