package tmux

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
)

type stubCommander struct {
	out []byte
	err error
}

func (s stubCommander) Run() error              { return s.err }
func (s stubCommander) Output() ([]byte, error) { return s.out, s.err }

type stubClient struct{}

func (stubClient) DisplayMessage(string, string) (string, error) { return "client0", nil }
func (stubClient) Close() error                                  { return nil }

// fakeServer emulates the handful of tmux commands the host issues.
type fakeServer struct {
	mu      sync.Mutex
	calls   [][]string
	options map[string]string
	windows string
	fail    map[string]error
}

func withFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{options: map[string]string{}, fail: map[string]error{}}
	prevRun, prevTmux, prevClip := runExecCommand, newTmux, writeClipboard
	runExecCommand = func(_ context.Context, _ string, args ...string) commander {
		return f.exec(args)
	}
	newTmux = func(string) (tmuxClient, error) { return stubClient{}, nil }
	writeClipboard = func(string) error { return nil }
	t.Cleanup(func() {
		runExecCommand, newTmux, writeClipboard = prevRun, prevTmux, prevClip
	})
	return f
}

func (f *fakeServer) exec(args []string) commander {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(args) >= 2 && args[0] == "-S" {
		args = args[2:]
	}
	f.calls = append(f.calls, append([]string(nil), args...))
	if err := f.fail[args[0]]; err != nil {
		return stubCommander{err: err}
	}
	switch args[0] {
	case "show-option":
		return stubCommander{out: []byte(f.options[args[len(args)-1]] + "\n")}
	case "set-option":
		if args[1] == "-gu" {
			delete(f.options, args[2])
		} else {
			f.options[args[2]] = args[3]
		}
	case "list-windows":
		return stubCommander{out: []byte(f.windows)}
	}
	return stubCommander{}
}

// commands returns the calls whose subcommand is name.
func (f *fakeServer) commands(name string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, c := range f.calls {
		if c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

func TestKeyName(t *testing.T) {
	tests := map[string]string{
		"Alt+P":          "M-p",
		"Ctrl+Shift+K":   "C-S-k",
		"Shift+Alt+P":    "M-P",
		"Ctrl+Space":     "C-Space",
		"Alt+PageUp":     "M-PPage",
		"Ctrl+Backspace": "C-BSpace",
		"F5":             "F5",
		"Ctrl+Alt+1":     "C-M-1",
		"Ctrl++":         "C-+",
	}
	for combo, want := range tests {
		got, err := KeyName(combo)
		require.NoError(t, err, combo)
		assert.Equal(t, want, got, combo)
	}

	for _, bad := range []string{"", "Hyper+X", "Ctrl+Banana"} {
		_, err := KeyName(bad)
		assert.ErrorIs(t, err, apperror.ErrValidation, bad)
	}
}

func TestRegisterHotkeyBindsLauncher(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{Socket: "/tmp/sock"})

	require.NoError(t, h.RegisterHotkey(context.Background(), "Alt+P"))

	binds := f.commands("bind-key")
	require.Len(t, binds, 1)
	assert.Equal(t, []string{"bind-key", "-n", "M-p", "display-popup", "-E", "-w", "60%", "-h", "50%",
		"tmux-prompts launcher --target-pane #{pane_id}"}, binds[0])
	assert.Equal(t, "M-p", f.options[optKey])
	assert.Equal(t, "Alt+P", f.options[optHotkey])

	combo, err := h.CurrentHotkey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alt+P", combo)
}

func TestRegisterHotkeyReplacesPreviousKey(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{KeyTable: "prompts"})
	ctx := context.Background()

	require.NoError(t, h.RegisterHotkey(ctx, "Alt+P"))
	require.NoError(t, h.RegisterHotkey(ctx, "Ctrl+O"))

	unbinds := f.commands("unbind-key")
	require.Len(t, unbinds, 1)
	assert.Equal(t, []string{"unbind-key", "-T", "prompts", "M-p"}, unbinds[0])
	assert.Equal(t, "C-o", f.options[optKey])
}

func TestRegisterHotkeyRejectsBareKeyInRootTable(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{})
	err := h.RegisterHotkey(context.Background(), "P")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, f.commands("bind-key"))

	require.NoError(t, New(Options{KeyTable: "prompts"}).RegisterHotkey(context.Background(), "P"))
}

func TestRegisterHotkeyRejectsMalformedCombo(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{KeyTable: "prompts"})
	for _, bad := range []string{"", "Hyper+X", "Ctrl+Banana"} {
		err := h.RegisterHotkey(context.Background(), bad)
		assert.ErrorIs(t, err, apperror.ErrValidation, bad)
		assert.NotErrorIs(t, err, apperror.ErrHost, bad)
	}
	assert.Empty(t, f.commands("bind-key"))
	assert.Empty(t, f.options[optHotkey])
}

func TestPauseAndResumeHotkey(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{})
	ctx := context.Background()

	require.NoError(t, h.PauseHotkey(ctx))
	require.NoError(t, h.ResumeHotkey(ctx))
	assert.Empty(t, f.commands("unbind-key"), "nothing bound yet")
	assert.Empty(t, f.commands("bind-key"))

	require.NoError(t, h.RegisterHotkey(ctx, "Alt+P"))
	require.NoError(t, h.PauseHotkey(ctx))
	assert.Equal(t, [][]string{{"unbind-key", "-n", "M-p"}}, f.commands("unbind-key"))
	assert.Equal(t, "M-p", f.options[optKey], "pausing keeps the key")

	require.NoError(t, h.ResumeHotkey(ctx))
	assert.Len(t, f.commands("bind-key"), 2)
}

func TestPauseHotkeyFailureIsHostError(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{})
	require.NoError(t, h.RegisterHotkey(context.Background(), "Alt+P"))
	f.fail["unbind-key"] = errors.New("server exited")

	err := h.PauseHotkey(context.Background())
	assert.ErrorIs(t, err, apperror.ErrHost)
}

func TestPasteAndDismiss(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{TargetPane: "%3"})

	require.NoError(t, h.PasteAndDismiss(context.Background(), "hello\nworld"))
	assert.Equal(t, [][]string{{"set-buffer", "-b", pasteBuffer, "--", "hello\nworld"}}, f.commands("set-buffer"))
	assert.Equal(t, [][]string{{"paste-buffer", "-p", "-d", "-b", pasteBuffer, "-t", "%3"}}, f.commands("paste-buffer"))
	assert.Equal(t, [][]string{{"select-pane", "-t", "%3"}}, f.commands("select-pane"))
}

func TestPasteWithoutTargetFails(t *testing.T) {
	f := withFakeServer(t)
	err := New(Options{}).PasteAndDismiss(context.Background(), "x")
	assert.ErrorIs(t, err, apperror.ErrHost)
	assert.Empty(t, f.calls)
}

func TestPasteFailureDoesNotDismiss(t *testing.T) {
	f := withFakeServer(t)
	f.fail["paste-buffer"] = errors.New("pane is dead")
	err := New(Options{TargetPane: "%3"}).PasteAndDismiss(context.Background(), "x")
	assert.ErrorContains(t, err, "pane is dead")
	assert.Empty(t, f.commands("select-pane"))
}

func TestCopyFallsBackToTmuxClipboard(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{})
	require.NoError(t, h.CopyToClipboard(context.Background(), "a"))
	assert.Empty(t, f.calls)

	writeClipboard = func(string) error { return errors.New("no xclip") }
	require.NoError(t, h.CopyToClipboard(context.Background(), "b"))
	assert.Equal(t, [][]string{{"set-buffer", "-w", "--", "b"}}, f.commands("set-buffer"))
}

func TestOpenEditorWindow(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{Executable: "/usr/bin/tmux-prompts"})
	ctx := context.Background()

	require.NoError(t, h.OpenEditor(ctx, "p1"))
	assert.Equal(t, [][]string{{"new-window", "-n", EditorWindowName, "/usr/bin/tmux-prompts editor --select p1"}},
		f.commands("new-window"))

	f.windows = "@1\tzsh\n@4\t" + EditorWindowName + "\n"
	require.NoError(t, h.OpenEditor(ctx, ""))
	assert.Equal(t, [][]string{{"select-window", "-t", "@4"}}, f.commands("select-window"))
	assert.Len(t, f.commands("new-window"), 1)
}

func TestOpenEditorPopup(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{})
	ctx := context.Background()
	require.NoError(t, h.SetAlwaysOnTop(ctx, true))
	assert.Equal(t, "on", f.options[optEditorPopup])

	require.NoError(t, h.OpenEditor(ctx, ""))
	runs := f.commands("run-shell")
	require.Len(t, runs, 1)
	script := runs[0][2]
	assert.Contains(t, script, "display-popup")
	assert.Contains(t, script, "-c client0")
	assert.Contains(t, script, "'tmux-prompts editor'")
	assert.Empty(t, f.commands("new-window"))
}

func TestQuitUnbindsStopsDaemonAndClosesEditor(t *testing.T) {
	f := withFakeServer(t)
	stopped := false
	h := New(Options{Shutdown: func(context.Context) error {
		stopped = true
		return nil
	}})
	ctx := context.Background()
	require.NoError(t, h.RegisterHotkey(ctx, "Alt+P"))
	f.windows = "@4\t" + EditorWindowName

	require.NoError(t, h.Quit(ctx))
	assert.True(t, stopped)
	assert.Equal(t, [][]string{{"kill-window", "-t", "@4"}}, f.commands("kill-window"))
	assert.NotContains(t, f.options, optKey)
	assert.NotContains(t, f.options, optHotkey)
}

func TestQuitReportsFirstFailureButRunsEverything(t *testing.T) {
	f := withFakeServer(t)
	h := New(Options{Shutdown: func(context.Context) error { return errors.New("daemon gone") }})
	f.windows = "@4\t" + EditorWindowName

	err := h.Quit(context.Background())
	assert.ErrorContains(t, err, "daemon gone")
	assert.Len(t, f.commands("kill-window"), 1)
}

func TestAutoLaunchEntry(t *testing.T) {
	withFakeServer(t)
	dir := filepath.Join(t.TempDir(), "autostart")
	h := New(Options{AutostartDir: dir, Executable: "/opt/tmux-prompts"})
	ctx := context.Background()

	on, err := h.AutoLaunchEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, h.SetAutoLaunch(ctx, true))
	data, err := os.ReadFile(filepath.Join(dir, autostartFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Exec=/opt/tmux-prompts serve")
	on, _ = h.AutoLaunchEnabled(ctx)
	assert.True(t, on)

	require.NoError(t, h.SetAutoLaunch(ctx, false))
	require.NoError(t, h.SetAutoLaunch(ctx, false))
	on, _ = h.AutoLaunchEnabled(ctx)
	assert.False(t, on)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "tmux-prompts editor", shellQuote("tmux-prompts", "editor"))
	assert.Equal(t, `'it'\''s' ''`, shellQuote("it's", ""))
	assert.True(t, strings.HasPrefix(shellQuote("a b"), "'"))
}

func TestResolveSocketPath(t *testing.T) {
	got, err := ResolveSocketPath("/flag.sock")
	require.NoError(t, err)
	assert.Equal(t, "/flag.sock", got)

	t.Setenv("TMUX_PROMPTS_TMUX_SOCKET", "/env.sock")
	got, _ = ResolveSocketPath("")
	assert.Equal(t, "/env.sock", got)

	t.Setenv("TMUX_PROMPTS_TMUX_SOCKET", "")
	t.Setenv("TMUX", "/tmp/tmux-1000/work,123,0")
	got, _ = ResolveSocketPath("")
	assert.Equal(t, "/tmp/tmux-1000/work", got)
}

func TestCurrentPaneIDPrefersEnvironment(t *testing.T) {
	withFakeServer(t)
	t.Setenv("TMUX_PANE", "%9")
	assert.Equal(t, "%9", CurrentPaneID(""))
	assert.Equal(t, "client0", CurrentClientName(""))
}
