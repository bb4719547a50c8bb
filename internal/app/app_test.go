package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tmux-prompts/internal/boundary"
	"github.com/atomicstack/tmux-prompts/internal/client"
	"github.com/atomicstack/tmux-prompts/internal/config"
	"github.com/atomicstack/tmux-prompts/internal/model"
	"github.com/atomicstack/tmux-prompts/internal/server"
	"github.com/atomicstack/tmux-prompts/internal/session"
	"github.com/atomicstack/tmux-prompts/internal/store"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	dir := t.TempDir()
	cfg.Storage.Root = filepath.Join(dir, "prompts")
	cfg.Daemon.Socket = filepath.Join(dir, "d.sock")
	cfg.Tmux.Socket = filepath.Join(dir, "tmux.sock")
	cfg.Daemon.Timeout = 2 * time.Second
	return cfg
}

func startDaemon(t *testing.T, cfg config.Config) *server.Server {
	t.Helper()
	st, err := store.Open(cfg.Storage.Root)
	require.NoError(t, err)
	srv := server.New(boundary.NewLocal(st), zerolog.Nop())
	ln, err := server.ListenUnix(cfg.Daemon.Socket)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return srv
}

func TestOpenCommandsFallsBackToLocal(t *testing.T) {
	cfg := testConfig(t)
	cmds, daemon, err := openCommands(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, daemon)
	assert.IsType(t, &boundary.Local{}, cmds)
	assert.Equal(t, "local", backendName(daemon))

	idx, err := cmds.GetIndex(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, idx.Prompts, "first open seeds the library")
}

func TestOpenCommandsPrefersDaemon(t *testing.T) {
	cfg := testConfig(t)
	startDaemon(t, cfg)

	cmds, daemon, err := openCommands(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, daemon)
	assert.IsType(t, &client.Client{}, cmds)
	assert.Equal(t, "daemon", backendName(daemon))
}

func TestStopDaemonWithoutDaemon(t *testing.T) {
	cfg := testConfig(t)
	assert.NoError(t, stopDaemon(context.Background(), cfg.Daemon.Socket))
}

func TestStopDaemonRequestsShutdown(t *testing.T) {
	cfg := testConfig(t)
	srv := startDaemon(t, cfg)

	require.NoError(t, stopDaemon(context.Background(), cfg.Daemon.Socket))
	select {
	case <-srv.ShutdownRequested():
	case <-time.After(time.Second):
		t.Fatal("daemon was not asked to stop")
	}
}

type fakeHotkeyHost struct {
	registered  []string
	alwaysOnTop []bool
	err         error
}

func (f *fakeHotkeyHost) RegisterHotkey(_ context.Context, combo string) error {
	f.registered = append(f.registered, combo)
	return f.err
}

func (f *fakeHotkeyHost) SetAlwaysOnTop(_ context.Context, enabled bool) error {
	f.alwaysOnTop = append(f.alwaysOnTop, enabled)
	return f.err
}

func TestInstallFromSettings(t *testing.T) {
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	settings := model.DefaultSettings()
	settings.General.Hotkey = "Alt+K"
	settings.General.EditorAlwaysOnTop = false
	_, err = st.SaveSettings(settings)
	require.NoError(t, err)

	host := &fakeHotkeyHost{}
	installFromSettings(context.Background(), boundary.NewLocal(st), host, time.Second)

	assert.Equal(t, []string{"Alt+K"}, host.registered)
	assert.Equal(t, []bool{false}, host.alwaysOnTop)
}

func TestInstallFromSettingsKeepsGoingOnHostErrors(t *testing.T) {
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	host := &fakeHotkeyHost{err: errors.New("no server running")}
	installFromSettings(context.Background(), boundary.NewLocal(st), host, time.Second)

	assert.Equal(t, []string{model.DefaultHotkey}, host.registered)
	assert.Len(t, host.alwaysOnTop, 1)
}

func TestServeStopsOnShutdownRequest(t *testing.T) {
	cfg := testConfig(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Serve(context.Background(), cfg)
	}()

	cl := client.New(cfg.Daemon.Socket)
	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		return cl.Ping(ctx) == nil
	}, 5*time.Second, 20*time.Millisecond)

	folders, err := cl.GetFolders(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, folders)

	require.NoError(t, cl.Shutdown(context.Background()))
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.NoFileExists(t, cfg.Daemon.Socket)
}

func TestNewHostResolvesExplicitSocket(t *testing.T) {
	cfg := testConfig(t)
	host, err := newHost(cfg, "%1")
	require.NoError(t, err)
	assert.NotNil(t, host)
}

type fakeShortcutHost struct {
	pauses, resumes int
}

func (f *fakeShortcutHost) PauseHotkey(context.Context) error {
	f.pauses++
	return nil
}

func (f *fakeShortcutHost) ResumeHotkey(context.Context) error {
	f.resumes++
	return nil
}

func (f *fakeShortcutHost) RegisterHotkey(context.Context, string) error { return nil }

func TestReleaseHotkeyAfterKilledRecording(t *testing.T) {
	host := &fakeShortcutHost{}
	hk := session.NewHotkey(host, nil, time.Second)
	pause := hk.StartRecording()
	require.NotNil(t, pause)
	_, handled := hk.HandleMsg(pause())
	require.True(t, handled)
	require.True(t, hk.Recording())

	releaseHotkey(hk, time.Second)
	assert.Equal(t, 1, host.pauses)
	assert.Equal(t, 1, host.resumes)
	assert.False(t, hk.Intercepting())
}

func TestReleaseHotkeyWhenIdle(t *testing.T) {
	host := &fakeShortcutHost{}
	releaseHotkey(session.NewHotkey(host, nil, time.Second), time.Second)
	assert.Equal(t, 0, host.resumes)
}
