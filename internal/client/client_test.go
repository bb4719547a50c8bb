package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/boundary"
	"github.com/atomicstack/tmux-prompts/internal/model"
	"github.com/atomicstack/tmux-prompts/internal/server"
	"github.com/atomicstack/tmux-prompts/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	srv := server.New(boundary.NewLocal(s), zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return NewWithHTTP(ts.Client(), ts.URL)
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	draft := model.NewDraft("Work", time.Now())
	draft.Name = "Standup"
	draft.Content = "yesterday / today"
	meta, err := c.SavePrompt(ctx, draft)
	require.NoError(t, err)
	require.NotEmpty(t, meta.ID)

	got, err := c.GetPrompt(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "yesterday / today", got.Content)

	idx, err := c.GetIndex(ctx)
	require.NoError(t, err)
	assert.Len(t, idx.Prompts, 1)

	results, err := c.SearchPrompts(ctx, "stand")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, meta.ID, results[0].ID)

	require.NoError(t, c.RecordUsage(ctx, meta.ID))
	folders, err := c.AddFolder(ctx, "Personal")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Work", "Personal"}, folders)

	folders, err = c.RenameFolder(ctx, "Personal", "Home")
	require.NoError(t, err)
	assert.Contains(t, folders, "Home")

	folders, err = c.DeleteFolder(ctx, "Home")
	require.NoError(t, err)
	assert.NotContains(t, folders, "Home")

	fetched, err := c.GetFolders(ctx)
	require.NoError(t, err)
	assert.Equal(t, folders, fetched)

	require.NoError(t, c.DeletePrompt(ctx, meta.ID))
	_, err = c.GetPrompt(ctx, meta.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestClientErrorKinds(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.AddFolder(ctx, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = c.AddFolder(ctx, "Dup")
	require.NoError(t, err)
	_, err = c.AddFolder(ctx, "Dup")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestClientSettings(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	settings, err := c.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)

	settings.General.AutoLaunch = true
	saved, err := c.SaveSettings(ctx, settings)
	require.NoError(t, err)
	assert.True(t, saved.General.AutoLaunch)
}

func TestClientUnreachableIsBoundaryFailure(t *testing.T) {
	c := New(t.TempDir() + "/missing.sock")
	_, err := c.GetIndex(context.Background())
	assert.ErrorIs(t, err, apperror.ErrBoundary)
	assert.Error(t, c.Ping(context.Background()))
}
