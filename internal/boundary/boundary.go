// Package boundary defines the command boundary the sessions talk to: an
// asynchronous request/response surface over the prompt catalogue and the
// settings record.
package boundary

import (
	"context"

	"github.com/atomicstack/tmux-prompts/internal/model"
)

// Commands is implemented in-process by Local and remotely by client.Client.
type Commands interface {
	GetIndex(ctx context.Context) (model.PromptIndex, error)
	GetFolders(ctx context.Context) ([]string, error)
	GetPrompt(ctx context.Context, id string) (model.Prompt, error)
	SavePrompt(ctx context.Context, prompt model.Prompt) (model.PromptMetadata, error)
	DeletePrompt(ctx context.Context, id string) error
	AddFolder(ctx context.Context, name string) ([]string, error)
	RenameFolder(ctx context.Context, oldName, newName string) ([]string, error)
	DeleteFolder(ctx context.Context, name string) ([]string, error)
	SearchPrompts(ctx context.Context, query string) ([]model.PromptMetadata, error)
	RecordUsage(ctx context.Context, id string) error
	GetSettings(ctx context.Context) (model.AppSettings, error)
	SaveSettings(ctx context.Context, settings model.AppSettings) (model.AppSettings, error)
}

// Command names shared by the daemon router and the client.
const (
	CmdGetIndex      = "get_index"
	CmdGetFolders    = "get_folders"
	CmdGetPrompt     = "get_prompt"
	CmdSavePrompt    = "save_prompt"
	CmdDeletePrompt  = "delete_prompt"
	CmdAddFolder     = "add_folder"
	CmdRenameFolder  = "rename_folder"
	CmdDeleteFolder  = "delete_folder"
	CmdSearchPrompts = "search_prompts"
	CmdRecordUsage   = "record_usage"
	CmdGetSettings   = "get_settings"
	CmdSaveSettings  = "save_settings"
)

// Wire argument shapes.
type (
	IDArgs struct {
		ID string `json:"id"`
	}
	NameArgs struct {
		Name string `json:"name"`
	}
	RenameArgs struct {
		Old string `json:"old"`
		New string `json:"new"`
	}
	QueryArgs struct {
		Query string `json:"query"`
	}
	PromptArgs struct {
		Prompt model.Prompt `json:"prompt"`
	}
	SettingsArgs struct {
		Settings model.AppSettings `json:"settings"`
	}
)
