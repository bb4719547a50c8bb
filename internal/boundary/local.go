package boundary

import (
	"context"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/model"
	"github.com/atomicstack/tmux-prompts/internal/search"
	"github.com/atomicstack/tmux-prompts/internal/store"
)

// Local serves commands directly from a store.
type Local struct {
	store *store.Store
}

// NewLocal wraps s.
func NewLocal(s *store.Store) *Local {
	return &Local{store: s}
}

var _ Commands = (*Local)(nil)

func (l *Local) GetIndex(ctx context.Context) (model.PromptIndex, error) {
	if err := ctx.Err(); err != nil {
		return model.PromptIndex{}, apperror.Boundary(CmdGetIndex, err)
	}
	idx, err := l.store.LoadIndex()
	return idx, apperror.Boundary(CmdGetIndex, err)
}

func (l *Local) GetFolders(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.Boundary(CmdGetFolders, err)
	}
	folders, err := l.store.Folders()
	return folders, apperror.Boundary(CmdGetFolders, err)
}

func (l *Local) GetPrompt(ctx context.Context, id string) (model.Prompt, error) {
	if err := ctx.Err(); err != nil {
		return model.Prompt{}, apperror.Boundary(CmdGetPrompt, err)
	}
	p, err := l.store.GetPrompt(id)
	return p, apperror.Boundary(CmdGetPrompt, err)
}

func (l *Local) SavePrompt(ctx context.Context, prompt model.Prompt) (model.PromptMetadata, error) {
	if err := ctx.Err(); err != nil {
		return model.PromptMetadata{}, apperror.Boundary(CmdSavePrompt, err)
	}
	meta, err := l.store.SavePrompt(prompt)
	return meta, apperror.Boundary(CmdSavePrompt, err)
}

func (l *Local) DeletePrompt(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return apperror.Boundary(CmdDeletePrompt, err)
	}
	return apperror.Boundary(CmdDeletePrompt, l.store.DeletePrompt(id))
}

func (l *Local) AddFolder(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.Boundary(CmdAddFolder, err)
	}
	folders, err := l.store.AddFolder(name)
	return folders, apperror.Boundary(CmdAddFolder, err)
}

func (l *Local) RenameFolder(ctx context.Context, oldName, newName string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.Boundary(CmdRenameFolder, err)
	}
	folders, err := l.store.RenameFolder(oldName, newName)
	return folders, apperror.Boundary(CmdRenameFolder, err)
}

func (l *Local) DeleteFolder(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.Boundary(CmdDeleteFolder, err)
	}
	folders, err := l.store.DeleteFolder(name)
	return folders, apperror.Boundary(CmdDeleteFolder, err)
}

func (l *Local) SearchPrompts(ctx context.Context, query string) ([]model.PromptMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.Boundary(CmdSearchPrompts, err)
	}
	idx, err := l.store.LoadIndex()
	if err != nil {
		return nil, apperror.Boundary(CmdSearchPrompts, err)
	}
	return search.Prompts(idx.Prompts, query), nil
}

func (l *Local) RecordUsage(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return apperror.Boundary(CmdRecordUsage, err)
	}
	return apperror.Boundary(CmdRecordUsage, l.store.RecordUsage(id))
}

func (l *Local) GetSettings(ctx context.Context) (model.AppSettings, error) {
	if err := ctx.Err(); err != nil {
		return model.AppSettings{}, apperror.Boundary(CmdGetSettings, err)
	}
	settings, err := l.store.LoadSettings()
	return settings, apperror.Boundary(CmdGetSettings, err)
}

func (l *Local) SaveSettings(ctx context.Context, settings model.AppSettings) (model.AppSettings, error) {
	if err := ctx.Err(); err != nil {
		return model.AppSettings{}, apperror.Boundary(CmdSaveSettings, err)
	}
	saved, err := l.store.SaveSettings(settings)
	return saved, apperror.Boundary(CmdSaveSettings, err)
}
