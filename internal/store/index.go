package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/atomicstack/tmux-prompts/internal/model"
)

// LoadIndex returns the catalogue after reconciling it with the files on disk.
func (s *Store) LoadIndex() (model.PromptIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadIndex()
}

// Folders returns the folder list of the current index.
func (s *Store) Folders() ([]string, error) {
	idx, err := s.LoadIndex()
	if err != nil {
		return nil, err
	}
	return idx.Folders, nil
}

func (s *Store) loadIndex() (model.PromptIndex, error) {
	idx := model.PromptIndex{}
	missing := false
	data, err := os.ReadFile(s.paths.IndexPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		missing = true
	case err != nil:
		return idx, fmt.Errorf("read index: %w", err)
	default:
		if uerr := json.Unmarshal(data, &idx); uerr != nil {
			corrupt := fmt.Sprintf("%s.corrupt.%s", strings.TrimSuffix(s.paths.IndexPath, filepath.Ext(s.paths.IndexPath)), s.now().UTC().Format("20060102150405"))
			if rerr := os.Rename(s.paths.IndexPath, corrupt); rerr != nil {
				log.Warn().Err(rerr).Str("path", s.paths.IndexPath).Msg("store: could not move corrupt index aside")
			}
			log.Warn().Err(uerr).Str("moved_to", corrupt).Msg("store: corrupt index replaced")
			idx = model.PromptIndex{}
			missing = true
		}
	}

	changed, err := s.syncWithFilesystem(&idx)
	if err != nil {
		return idx, err
	}
	if changed || missing {
		if err := s.saveIndex(idx); err != nil {
			return idx, err
		}
	}
	return idx, nil
}

func (s *Store) saveIndex(idx model.PromptIndex) error {
	if idx.Prompts == nil {
		idx.Prompts = []model.PromptMetadata{}
	}
	if idx.Folders == nil {
		idx.Folders = []string{}
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return writeFileAtomic(s.paths.IndexPath, data)
}

type promptFile struct {
	folder   string
	filename string
	path     string
}

type fileKey struct {
	folder   string
	filename string
}

// syncWithFilesystem rebuilds idx.Prompts from the markdown files present,
// keeping metadata for files it already knows and adopting new ones.
func (s *Store) syncWithFilesystem(idx *model.PromptIndex) (bool, error) {
	changed := false
	known := make(map[fileKey]model.PromptMetadata, len(idx.Prompts))
	for _, meta := range idx.Prompts {
		known[fileKey{meta.Folder, meta.Filename}] = meta
	}
	before := len(idx.Prompts)

	files, err := s.scanPromptFiles()
	if err != nil {
		return false, err
	}
	rebuilt := make([]model.PromptMetadata, 0, len(files))
	for _, file := range files {
		key := fileKey{file.folder, file.filename}
		mtime, hasTime := modTime(file.path)
		if meta, ok := known[key]; ok {
			delete(known, key)
			if hasTime && !meta.Updated.Equal(mtime) {
				meta.Updated = mtime
				changed = true
			}
			rebuilt = append(rebuilt, meta)
			continue
		}
		changed = true
		ts := s.timestamp()
		if hasTime {
			ts = mtime
		}
		rebuilt = append(rebuilt, model.PromptMetadata{
			ID:       s.newID(),
			Name:     titleFromFilename(file.filename),
			Folder:   file.folder,
			Filename: file.filename,
			Created:  ts,
			Updated:  ts,
		})
	}
	if len(known) > 0 || len(rebuilt) != before {
		changed = true
	}
	idx.Prompts = rebuilt

	seen := make(map[string]struct{}, len(idx.Folders))
	folders := make([]string, 0, len(idx.Folders))
	for _, f := range idx.Folders {
		if _, dup := seen[f]; dup {
			changed = true
			continue
		}
		seen[f] = struct{}{}
		folders = append(folders, f)
	}
	for _, p := range idx.Prompts {
		if p.Folder == "" {
			continue
		}
		if _, ok := seen[p.Folder]; !ok {
			seen[p.Folder] = struct{}{}
			folders = append(folders, p.Folder)
			changed = true
		}
	}
	idx.Folders = folders
	return changed, nil
}

func (s *Store) scanPromptFiles() ([]promptFile, error) {
	root := s.paths.PromptsDir
	var files []promptFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		folder := ""
		if rel != "." {
			folder = filepath.ToSlash(rel)
		}
		files = append(files, promptFile{folder: folder, filename: d.Name(), path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan prompts: %w", err)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].folder+"/"+files[i].filename < files[j].folder+"/"+files[j].filename
	})
	return files, nil
}

func modTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	mt := info.ModTime()
	if mt.Before(time.Unix(0, 0)) {
		return time.Time{}, false
	}
	return mt.UTC().Truncate(time.Second), true
}

func titleFromFilename(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	if strings.TrimSpace(cleaned) == "" {
		return "Untitled"
	}
	return cleaned
}
