// Package client implements boundary.Commands against a running daemon.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/boundary"
	"github.com/atomicstack/tmux-prompts/internal/model"
)

const baseURL = "http://tmux-prompts"

// Client talks to the daemon socket.
type Client struct {
	http *http.Client
	base string
}

var _ boundary.Commands = (*Client)(nil)

// New returns a client dialling the unix socket at path.
func New(path string) *Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", path)
		},
		MaxIdleConns:    4,
		IdleConnTimeout: 30 * time.Second,
	}
	return &Client{http: &http.Client{Transport: transport}, base: baseURL}
}

// NewWithHTTP uses an existing HTTP client and base URL.
func NewWithHTTP(hc *http.Client, base string) *Client {
	return &Client{http: hc, base: base}
}

// Ping reports whether the daemon answers.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %s", resp.Status)
	}
	return nil
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/shutdown", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.Boundary("shutdown", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) call(ctx context.Context, name string, args, out any) error {
	var body io.Reader
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return apperror.Boundary(name, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/commands/"+name, body)
	if err != nil {
		return apperror.Boundary(name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.Boundary(name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if derr := json.NewDecoder(resp.Body).Decode(&e); derr != nil {
			return apperror.Boundary(name, fmt.Errorf("status %s", resp.Status))
		}
		return apperror.FromKind(e.Error, e.Message)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Boundary(name, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) GetIndex(ctx context.Context) (model.PromptIndex, error) {
	var idx model.PromptIndex
	err := c.call(ctx, boundary.CmdGetIndex, nil, &idx)
	return idx, err
}

func (c *Client) GetFolders(ctx context.Context) ([]string, error) {
	var folders []string
	err := c.call(ctx, boundary.CmdGetFolders, nil, &folders)
	return folders, err
}

func (c *Client) GetPrompt(ctx context.Context, id string) (model.Prompt, error) {
	var p model.Prompt
	err := c.call(ctx, boundary.CmdGetPrompt, boundary.IDArgs{ID: id}, &p)
	return p, err
}

func (c *Client) SavePrompt(ctx context.Context, prompt model.Prompt) (model.PromptMetadata, error) {
	var meta model.PromptMetadata
	err := c.call(ctx, boundary.CmdSavePrompt, boundary.PromptArgs{Prompt: prompt}, &meta)
	return meta, err
}

func (c *Client) DeletePrompt(ctx context.Context, id string) error {
	return c.call(ctx, boundary.CmdDeletePrompt, boundary.IDArgs{ID: id}, nil)
}

func (c *Client) AddFolder(ctx context.Context, name string) ([]string, error) {
	var folders []string
	err := c.call(ctx, boundary.CmdAddFolder, boundary.NameArgs{Name: name}, &folders)
	return folders, err
}

func (c *Client) RenameFolder(ctx context.Context, oldName, newName string) ([]string, error) {
	var folders []string
	err := c.call(ctx, boundary.CmdRenameFolder, boundary.RenameArgs{Old: oldName, New: newName}, &folders)
	return folders, err
}

func (c *Client) DeleteFolder(ctx context.Context, name string) ([]string, error) {
	var folders []string
	err := c.call(ctx, boundary.CmdDeleteFolder, boundary.NameArgs{Name: name}, &folders)
	return folders, err
}

func (c *Client) SearchPrompts(ctx context.Context, query string) ([]model.PromptMetadata, error) {
	var results []model.PromptMetadata
	err := c.call(ctx, boundary.CmdSearchPrompts, boundary.QueryArgs{Query: query}, &results)
	return results, err
}

func (c *Client) RecordUsage(ctx context.Context, id string) error {
	return c.call(ctx, boundary.CmdRecordUsage, boundary.IDArgs{ID: id}, nil)
}

func (c *Client) GetSettings(ctx context.Context) (model.AppSettings, error) {
	var settings model.AppSettings
	err := c.call(ctx, boundary.CmdGetSettings, nil, &settings)
	return settings, err
}

func (c *Client) SaveSettings(ctx context.Context, settings model.AppSettings) (model.AppSettings, error) {
	var saved model.AppSettings
	err := c.call(ctx, boundary.CmdSaveSettings, boundary.SettingsArgs{Settings: settings}, &saved)
	return saved, err
}
