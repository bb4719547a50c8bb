package model

// Theme names accepted by AppearanceSettings.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeAuto  = "auto"
)

// DefaultHotkey is bound on first run.
const DefaultHotkey = "Alt+P"

// GeneralSettings groups behavioural preferences.
type GeneralSettings struct {
	AutoLaunch             bool   `json:"autoLaunch"`
	Hotkey                 string `json:"hotkey"`
	EditorAlwaysOnTop      bool   `json:"editorAlwaysOnTop"`
	WelcomeScreenDismissed bool   `json:"welcomeScreenDismissed"`
}

// AppearanceSettings groups visual preferences.
type AppearanceSettings struct {
	Theme       string `json:"theme"`
	AccentColor string `json:"accentColor"`
}

// AppSettings is persisted and sent as a whole record.
type AppSettings struct {
	General    GeneralSettings    `json:"general"`
	Appearance AppearanceSettings `json:"appearance"`
}

// DefaultSettings returns the first-run settings record.
func DefaultSettings() AppSettings {
	return AppSettings{
		General: GeneralSettings{
			Hotkey:            DefaultHotkey,
			EditorAlwaysOnTop: true,
		},
		Appearance: AppearanceSettings{
			Theme:       ThemeDark,
			AccentColor: "avocado",
		},
	}
}

// ValidTheme reports whether name is one of the supported themes.
func ValidTheme(name string) bool {
	switch name {
	case ThemeDark, ThemeLight, ThemeAuto:
		return true
	}
	return false
}
