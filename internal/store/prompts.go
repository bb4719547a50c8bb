package store

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/model"
)

const maxFilenameRunes = 200

var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeFilename turns a prompt name into a portable file stem.
func SanitizeFilename(input string) string {
	var b strings.Builder
	for _, r := range input {
		if strings.ContainsRune(`<>:"/\|?*`, r) || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimRight(b.String(), ". ")
	if out == "" {
		return "untitled"
	}
	stem, _, _ := strings.Cut(out, ".")
	if _, reserved := reservedNames[strings.ToUpper(stem)]; reserved {
		out = "_" + out
	}
	if runes := []rune(out); len(runes) > maxFilenameRunes {
		out = string(runes[:maxFilenameRunes])
	}
	return out
}

// uniqueFilename picks a free "<name>.md" in folder, appending -N on collision.
func (s *Store) uniqueFilename(folder, name string) string {
	base := SanitizeFilename(name)
	candidate := base + ".md"
	if !exists(s.promptPath(folder, candidate)) {
		return candidate
	}
	for i := 1; i < 1000; i++ {
		candidate = fmt.Sprintf("%s-%d.md", base, i)
		if !exists(s.promptPath(folder, candidate)) {
			return candidate
		}
	}
	return fmt.Sprintf("%s-%s.md", base, s.newID())
}

// GetPrompt loads metadata and body for id.
func (s *Store) GetPrompt(id string) (model.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.loadIndex()
	if err != nil {
		return model.Prompt{}, err
	}
	meta, ok := idx.Find(id)
	if !ok {
		return model.Prompt{}, apperror.NotFound("prompt", id)
	}
	content, err := os.ReadFile(s.promptPath(meta.Folder, meta.Filename))
	if err != nil {
		return model.Prompt{}, fmt.Errorf("read prompt %s: %w", id, err)
	}
	return model.Prompt{PromptMetadata: meta, Content: string(content)}, nil
}

// SavePrompt creates or updates a prompt. The body is written before the
// index so a crash can only leave an orphan file behind.
func (s *Store) SavePrompt(p model.Prompt) (model.PromptMetadata, error) {
	if strings.TrimSpace(p.Name) == "" {
		return model.PromptMetadata{}, apperror.ValidationFailed("name", "prompt name is required")
	}
	folder, err := cleanFolder(p.Folder)
	if err != nil {
		return model.PromptMetadata{}, err
	}
	p.Folder = folder

	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.loadIndex()
	if err != nil {
		return model.PromptMetadata{}, err
	}
	now := s.timestamp()

	for i := range idx.Prompts {
		existing := &idx.Prompts[i]
		if p.ID == "" || existing.ID != p.ID {
			continue
		}
		oldPath := s.promptPath(existing.Folder, existing.Filename)
		if existing.Folder != p.Folder {
			filename := s.uniqueFilename(p.Folder, p.Name)
			if err := os.MkdirAll(s.folderDir(p.Folder), 0o755); err != nil {
				return model.PromptMetadata{}, fmt.Errorf("create folder %q: %w", p.Folder, err)
			}
			if err := writeFileAtomic(s.promptPath(p.Folder, filename), []byte(p.Content)); err != nil {
				return model.PromptMetadata{}, err
			}
			_ = os.Remove(oldPath)
			existing.Filename = filename
		} else if err := writeFileAtomic(oldPath, []byte(p.Content)); err != nil {
			return model.PromptMetadata{}, err
		}
		existing.Name = p.Name
		existing.Folder = p.Folder
		existing.Description = p.Description
		existing.Icon = p.Icon
		existing.Color = p.Color
		existing.Updated = now
		if p.Folder != "" && !idx.HasFolder(p.Folder) {
			idx.Folders = append(idx.Folders, p.Folder)
		}
		if err := s.saveIndex(idx); err != nil {
			return model.PromptMetadata{}, err
		}
		return *existing, nil
	}

	id := p.ID
	if id == "" {
		id = s.newID()
	}
	if err := os.MkdirAll(s.folderDir(p.Folder), 0o755); err != nil {
		return model.PromptMetadata{}, fmt.Errorf("create folder %q: %w", p.Folder, err)
	}
	filename := s.uniqueFilename(p.Folder, p.Name)
	if err := writeFileAtomic(s.promptPath(p.Folder, filename), []byte(p.Content)); err != nil {
		return model.PromptMetadata{}, err
	}
	if p.Folder != "" && !idx.HasFolder(p.Folder) {
		idx.Folders = append(idx.Folders, p.Folder)
	}
	meta := model.PromptMetadata{
		ID:          id,
		Name:        p.Name,
		Folder:      p.Folder,
		Description: p.Description,
		Filename:    filename,
		Created:     now,
		Updated:     now,
		Icon:        p.Icon,
		Color:       p.Color,
	}
	idx.Prompts = append(idx.Prompts, meta)
	if err := s.saveIndex(idx); err != nil {
		return model.PromptMetadata{}, err
	}
	return meta, nil
}

// DeletePrompt removes id from the index, then its file.
func (s *Store) DeletePrompt(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}
	meta, ok := idx.Find(id)
	if !ok {
		return apperror.NotFound("prompt", id)
	}
	kept := idx.Prompts[:0]
	for _, p := range idx.Prompts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	idx.Prompts = kept
	if err := s.saveIndex(idx); err != nil {
		return err
	}
	_ = os.Remove(s.promptPath(meta.Folder, meta.Filename))
	return nil
}

// RecordUsage bumps the use counter and last-used time of id.
func (s *Store) RecordUsage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}
	for i := range idx.Prompts {
		if idx.Prompts[i].ID == id {
			now := s.timestamp()
			idx.Prompts[i].UseCount++
			idx.Prompts[i].LastUsed = &now
			return s.saveIndex(idx)
		}
	}
	return apperror.NotFound("prompt", id)
}
