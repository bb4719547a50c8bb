package server

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/boundary"
)

func decode[T any](body []byte) (T, error) {
	var args T
	if len(body) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(body, &args); err != nil {
		return args, apperror.ValidationFailed("body", fmt.Sprintf("decode arguments: %v", err))
	}
	return args, nil
}

func commandTable(c boundary.Commands) map[string]commandFunc {
	return map[string]commandFunc{
		boundary.CmdGetIndex: func(ctx context.Context, _ []byte) (any, error) {
			return c.GetIndex(ctx)
		},
		boundary.CmdGetFolders: func(ctx context.Context, _ []byte) (any, error) {
			return c.GetFolders(ctx)
		},
		boundary.CmdGetPrompt: func(ctx context.Context, body []byte) (any, error) {
			args, err := decode[boundary.IDArgs](body)
			if err != nil {
				return nil, err
			}
			return c.GetPrompt(ctx, args.ID)
		},
		boundary.CmdSavePrompt: func(ctx context.Context, body []byte) (any, error) {
			args, err := decode[boundary.PromptArgs](body)
			if err != nil {
				return nil, err
			}
			return c.SavePrompt(ctx, args.Prompt)
		},
		boundary.CmdDeletePrompt: func(ctx context.Context, body []byte) (any, error) {
			args, err := decode[boundary.IDArgs](body)
			if err != nil {
				return nil, err
			}
			return nil, c.DeletePrompt(ctx, args.ID)
		},
		boundary.CmdAddFolder: func(ctx context.Context, body []byte) (any, error) {
			args, err := decode[boundary.NameArgs](body)
			if err != nil {
				return nil, err
			}
			return c.AddFolder(ctx, args.Name)
		},
		boundary.CmdRenameFolder: func(ctx context.Context, body []byte) (any, error) {
			args, err := decode[boundary.RenameArgs](body)
			if err != nil {
				return nil, err
			}
			return c.RenameFolder(ctx, args.Old, args.New)
		},
		boundary.CmdDeleteFolder: func(ctx context.Context, body []byte) (any, error) {
			args, err := decode[boundary.NameArgs](body)
			if err != nil {
				return nil, err
			}
			return c.DeleteFolder(ctx, args.Name)
		},
		boundary.CmdSearchPrompts: func(ctx context.Context, body []byte) (any, error) {
			args, err := decode[boundary.QueryArgs](body)
			if err != nil {
				return nil, err
			}
			return c.SearchPrompts(ctx, args.Query)
		},
		boundary.CmdRecordUsage: func(ctx context.Context, body []byte) (any, error) {
			args, err := decode[boundary.IDArgs](body)
			if err != nil {
				return nil, err
			}
			return nil, c.RecordUsage(ctx, args.ID)
		},
		boundary.CmdGetSettings: func(ctx context.Context, _ []byte) (any, error) {
			return c.GetSettings(ctx)
		},
		boundary.CmdSaveSettings: func(ctx context.Context, body []byte) (any, error) {
			args, err := decode[boundary.SettingsArgs](body)
			if err != nil {
				return nil, err
			}
			return c.SaveSettings(ctx, args.Settings)
		},
	}
}
