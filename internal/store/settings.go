package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/model"
)

// LoadSettings reads the settings record. A missing or unreadable record is
// replaced by the defaults.
func (s *Store) LoadSettings() (model.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.paths.SettingsPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return model.AppSettings{}, fmt.Errorf("read settings: %w", err)
	}
	if err == nil {
		var settings model.AppSettings
		uerr := json.Unmarshal(data, &settings)
		if uerr == nil {
			return settings, nil
		}
		log.Warn().Err(uerr).Msg("store: settings unreadable, restoring defaults")
	}
	settings := model.DefaultSettings()
	if err := s.saveSettings(settings); err != nil {
		return model.AppSettings{}, err
	}
	return settings, nil
}

// SaveSettings replaces the settings record and returns what was stored.
func (s *Store) SaveSettings(settings model.AppSettings) (model.AppSettings, error) {
	if !model.ValidTheme(settings.Appearance.Theme) {
		return model.AppSettings{}, apperror.ValidationFailed("theme", fmt.Sprintf("unknown theme %q", settings.Appearance.Theme))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveSettings(settings); err != nil {
		return model.AppSettings{}, err
	}
	return settings, nil
}

func (s *Store) saveSettings(settings model.AppSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return writeFileAtomic(s.paths.SettingsPath, data)
}
