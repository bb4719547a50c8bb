package model

import "time"

// DefaultPromptName is the name given to a freshly created draft.
const DefaultPromptName = "New Prompt"

// PromptMetadata describes a stored prompt without its body.
type PromptMetadata struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Folder      string     `json:"folder"`
	Description string     `json:"description"`
	Filename    string     `json:"filename"`
	UseCount    uint64     `json:"useCount"`
	LastUsed    *time.Time `json:"lastUsed"`
	Created     time.Time  `json:"created"`
	Updated     time.Time  `json:"updated"`
	Icon        *string    `json:"icon,omitempty"`
	Color       *string    `json:"color,omitempty"`
}

// Persisted reports whether the backend has assigned an id.
func (m PromptMetadata) Persisted() bool {
	return m.ID != ""
}

// Prompt is metadata plus the markdown body.
type Prompt struct {
	PromptMetadata
	Content string `json:"content"`
}

// NewDraft returns an unsaved prompt in folder.
func NewDraft(folder string, now time.Time) Prompt {
	return Prompt{
		PromptMetadata: PromptMetadata{
			Name:    DefaultPromptName,
			Folder:  folder,
			Created: now,
			Updated: now,
		},
	}
}

// FolderMeta carries optional decoration for a folder.
type FolderMeta struct {
	Name  string  `json:"name"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

// PromptIndex is the authoritative catalogue snapshot.
type PromptIndex struct {
	Prompts    []PromptMetadata      `json:"prompts"`
	Folders    []string              `json:"folders"`
	FolderMeta map[string]FolderMeta `json:"folderMeta,omitempty"`
	Seeded     bool                  `json:"seeded"`
}

// Find returns the metadata for id.
func (idx PromptIndex) Find(id string) (PromptMetadata, bool) {
	for _, p := range idx.Prompts {
		if p.ID == id {
			return p, true
		}
	}
	return PromptMetadata{}, false
}

// HasFolder reports whether name is a known folder.
func (idx PromptIndex) HasFolder(name string) bool {
	for _, f := range idx.Folders {
		if f == name {
			return true
		}
	}
	return false
}

// InFolder returns the prompts whose folder equals folder, in index order.
func (idx PromptIndex) InFolder(folder string) []PromptMetadata {
	out := make([]PromptMetadata, 0, len(idx.Prompts))
	for _, p := range idx.Prompts {
		if p.Folder == folder {
			out = append(out, p)
		}
	}
	return out
}
