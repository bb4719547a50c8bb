package session

import (
	"context"
	"time"
)

// PasteHost is what the launcher needs from the host.
type PasteHost interface {
	PasteAndDismiss(ctx context.Context, text string) error
	Dismiss(ctx context.Context) error
	CopyToClipboard(ctx context.Context, text string) error
	OpenEditor(ctx context.Context, selectID string) error
}

// ShortcutHost controls the global launcher binding.
type ShortcutHost interface {
	PauseHotkey(ctx context.Context) error
	ResumeHotkey(ctx context.Context) error
	RegisterHotkey(ctx context.Context, combo string) error
}

// SettingsHost applies settings side effects.
type SettingsHost interface {
	SetAlwaysOnTop(ctx context.Context, enabled bool) error
	AutoLaunchEnabled(ctx context.Context) (bool, error)
	SetAutoLaunch(ctx context.Context, enabled bool) error
	Quit(ctx context.Context) error
}

// DefaultTimeout bounds every boundary and host call.
const DefaultTimeout = 5 * time.Second
