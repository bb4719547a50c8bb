package store

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
)

// cleanFolder normalises a folder name and rejects names escaping the
// prompts directory.
func cleanFolder(name string) (string, error) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return "", nil
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.Contains(name, `\`) {
		return "", apperror.ValidationFailed("folder", fmt.Sprintf("invalid folder name %q", name))
	}
	return cleaned, nil
}

// AddFolder registers an empty folder and returns the folder list.
func (s *Store) AddFolder(name string) ([]string, error) {
	name, err := cleanFolder(name)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperror.ValidationFailed("name", "folder name cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	if idx.HasFolder(name) {
		return nil, apperror.Conflict("folder", name)
	}
	if err := os.MkdirAll(s.folderDir(name), 0o755); err != nil {
		return nil, fmt.Errorf("create folder %q: %w", name, err)
	}
	idx.Folders = append(idx.Folders, name)
	if err := s.saveIndex(idx); err != nil {
		return nil, err
	}
	return idx.Folders, nil
}

// RenameFolder moves the folder directory and every prompt in it.
func (s *Store) RenameFolder(oldName, newName string) ([]string, error) {
	oldName, err := cleanFolder(oldName)
	if err != nil {
		return nil, err
	}
	newName, err = cleanFolder(newName)
	if err != nil {
		return nil, err
	}
	if newName == "" {
		return nil, apperror.ValidationFailed("name", "new folder name cannot be empty")
	}
	if oldName == "" {
		return nil, apperror.ValidationFailed("name", "the root folder cannot be renamed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	if oldName == newName {
		return idx.Folders, nil
	}
	if !idx.HasFolder(oldName) {
		return nil, apperror.NotFound("folder", oldName)
	}
	if idx.HasFolder(newName) {
		return nil, apperror.Conflict("folder", newName)
	}

	oldDir, newDir := s.folderDir(oldName), s.folderDir(newName)
	if exists(oldDir) {
		if exists(newDir) {
			return nil, apperror.Conflict("folder", newName)
		}
		if err := os.MkdirAll(filepath.Dir(newDir), 0o755); err != nil {
			return nil, fmt.Errorf("create parent of %q: %w", newName, err)
		}
		if err := os.Rename(oldDir, newDir); err != nil {
			return nil, fmt.Errorf("rename folder %q: %w", oldName, err)
		}
	} else if err := os.MkdirAll(newDir, 0o755); err != nil {
		return nil, fmt.Errorf("create folder %q: %w", newName, err)
	}

	now := s.timestamp()
	for i := range idx.Prompts {
		if idx.Prompts[i].Folder == oldName {
			idx.Prompts[i].Folder = newName
			idx.Prompts[i].Updated = now
		}
	}
	for i, f := range idx.Folders {
		if f == oldName {
			idx.Folders[i] = newName
		}
	}
	if meta, ok := idx.FolderMeta[oldName]; ok {
		delete(idx.FolderMeta, oldName)
		meta.Name = newName
		idx.FolderMeta[newName] = meta
	}
	if err := s.saveIndex(idx); err != nil {
		return nil, err
	}
	return idx.Folders, nil
}

// DeleteFolder moves the folder's prompts to the root and drops the folder.
func (s *Store) DeleteFolder(name string) ([]string, error) {
	name, err := cleanFolder(name)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperror.ValidationFailed("name", "the root folder cannot be deleted")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	now := s.timestamp()
	for i := range idx.Prompts {
		p := &idx.Prompts[i]
		if p.Folder != name {
			continue
		}
		target := p.Filename
		if exists(s.promptPath("", p.Filename)) {
			target = s.uniqueFilename("", p.Name)
		}
		oldPath := s.promptPath(p.Folder, p.Filename)
		if exists(oldPath) {
			if err := os.Rename(oldPath, s.promptPath("", target)); err != nil {
				return nil, fmt.Errorf("move prompt %s to root: %w", p.ID, err)
			}
		}
		p.Folder = ""
		p.Filename = target
		p.Updated = now
	}

	dir := s.folderDir(name)
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if err := os.Remove(dir); err != nil {
			return nil, fmt.Errorf("remove folder %q: %w", name, err)
		}
	}

	kept := idx.Folders[:0]
	for _, f := range idx.Folders {
		if f != name {
			kept = append(kept, f)
		}
	}
	idx.Folders = kept
	delete(idx.FolderMeta, name)
	if err := s.saveIndex(idx); err != nil {
		return nil, err
	}
	return idx.Folders, nil
}
