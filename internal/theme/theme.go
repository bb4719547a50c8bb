// Package theme builds the Lip Gloss styles shared by the launcher and the
// editor from the persisted appearance settings.
package theme

import (
	"sort"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"

	"github.com/atomicstack/tmux-prompts/internal/model"
)

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Loading               *lipgloss.Style
	Item                  *lipgloss.Style
	ItemMeta              *lipgloss.Style
	ItemIndicator         *lipgloss.Style
	SelectedItemIndicator *lipgloss.Style
	SelectedItem          *lipgloss.Style
	Error                 *lipgloss.Style
	Info                  *lipgloss.Style
	Notice                *lipgloss.Style
	Header                *lipgloss.Style
	Footer                *lipgloss.Style
	Filter                *lipgloss.Style
	FilterPrompt          *lipgloss.Style
	FilterPlaceholder     *lipgloss.Style
	Cursor                *lipgloss.Style
	Label                 *lipgloss.Style
	Focused               *lipgloss.Style
	Sidebar               *lipgloss.Style
	Folder                *lipgloss.Style
	Status                *lipgloss.Style
	Banner                *lipgloss.Style
}

type palette struct {
	text, muted, faint, selection, cursorText, err string
}

var (
	dark  = palette{text: "252", muted: "245", faint: "238", selection: "238", cursorText: "0", err: "196"}
	light = palette{text: "235", muted: "242", faint: "250", selection: "254", cursorText: "255", err: "160"}
)

// Accents maps accent names to ANSI 256 colours.
var Accents = map[string]string{
	"avocado": "106",
	"ocean":   "33",
	"plum":    "133",
	"ember":   "202",
	"slate":   "67",
}

// DefaultAccent is used for unknown accent names.
const DefaultAccent = "avocado"

// AccentNames lists the accents in a stable order.
func AccentNames() []string {
	names := make([]string, 0, len(Accents))
	for name := range Accents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the style set for appearance.
func New(appearance model.AppearanceSettings) *Styles {
	p := dark
	switch appearance.Theme {
	case model.ThemeLight:
		p = light
	case model.ThemeAuto:
		if !lipgloss.HasDarkBackground() {
			p = light
		}
	}
	accent, ok := Accents[appearance.AccentColor]
	if !ok {
		accent = Accents[DefaultAccent]
	}
	a := lipgloss.Color(accent)
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }

	return &Styles{
		Loading:               ptr(lipgloss.NewStyle().Foreground(a).Italic(true)),
		Item:                  ptr(lipgloss.NewStyle().Foreground(c(p.text))),
		ItemMeta:              ptr(lipgloss.NewStyle().Foreground(c(p.muted))),
		ItemIndicator:         ptr(lipgloss.NewStyle().Foreground(c(p.faint))),
		SelectedItemIndicator: ptr(lipgloss.NewStyle().Foreground(a).Background(c(p.selection))),
		SelectedItem:          ptr(lipgloss.NewStyle().Foreground(c(p.text)).Background(c(p.selection)).Bold(true)),
		Error:                 ptr(lipgloss.NewStyle().Foreground(c(p.err)).Bold(true)),
		Info:                  ptr(lipgloss.NewStyle().Foreground(c(p.muted))),
		Notice:                ptr(lipgloss.NewStyle().Foreground(a)),
		Header:                ptr(lipgloss.NewStyle().Foreground(c(p.muted)).Bold(true)),
		Footer:                ptr(lipgloss.NewStyle().Foreground(c(p.muted))),
		Filter:                ptr(lipgloss.NewStyle().Foreground(c(p.text))),
		FilterPrompt:          ptr(lipgloss.NewStyle().Foreground(a).Bold(true)),
		FilterPlaceholder:     ptr(lipgloss.NewStyle().Foreground(c(p.muted))),
		Cursor:                ptr(lipgloss.NewStyle().Foreground(c(p.cursorText)).Background(a)),
		Label:                 ptr(lipgloss.NewStyle().Foreground(c(p.muted)).Width(13)),
		Focused:               ptr(lipgloss.NewStyle().Foreground(a).Bold(true)),
		Sidebar:               ptr(lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderRight(true).BorderForeground(c(p.faint)).PaddingRight(1)),
		Folder:                ptr(lipgloss.NewStyle().Foreground(a).Bold(true)),
		Status:                ptr(lipgloss.NewStyle().Foreground(c(p.muted)).Italic(true)),
		Banner:                ptr(lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(a).Padding(0, 1)),
	}
}

var current atomic.Pointer[Styles]

func init() {
	current.Store(New(model.DefaultSettings().Appearance))
}

// Apply replaces the active style set.
func Apply(appearance model.AppearanceSettings) {
	current.Store(New(appearance))
}

// Default exposes the active style set.
func Default() *Styles {
	return current.Load()
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
