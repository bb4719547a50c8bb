package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atomicstack/tmux-prompts/internal/session"
)

const (
	editorFooter   = "n new · d delete · ←/→ folder · a add folder · r rename · x remove · s settings · ctrl+s save · q quit"
	formFooter     = "tab next field · esc back · ctrl+s save · ctrl+n new"
	settingsFooter = "↑/↓ move · enter change · esc back"
	welcomeText    = "Welcome to tmux-prompts. Press the launcher hotkey in any pane to paste a prompt. ctrl+w hides this."
)

// View implements tea.Model.
func (m *EditorModel) View() string {
	st := styles()
	sections := make([]string, 0, 6)
	sections = append(sections, renderLines(applyWidth([]styledLine{m.titleLine()}, m.width)))
	if m.showWelcome() {
		text := welcomeText
		if m.width > 4 {
			text = truncateText(text, m.width-4)
		}
		sections = append(sections, st.Banner.Render(text))
	}

	left := m.sidebarView()
	var right string
	if m.focus == focusSettings {
		right = m.settingsView()
	} else {
		right = m.formView()
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, st.Sidebar.Render(left), " ", right))

	footer := editorFooter
	switch m.focus {
	case focusForm:
		footer = formFooter
	case focusSettings:
		footer = settingsFooter
	}
	bottom := []styledLine{m.statusLine()}
	if m.showFooter {
		bottom = append(bottom, plainLine(""), styledLine{text: footer, style: st.Footer})
	}
	sections = append(sections, renderLines(applyWidth(bottom, m.width)))
	return strings.Join(sections, "\n")
}

func (m *EditorModel) titleLine() styledLine {
	st := styles()
	label := "All prompts"
	if folder, ok := m.editor.FolderFilter(); ok {
		label = folderLabel(folder)
	}
	return styledLine{text: st.Header.Render("tmux-prompts · ") + st.Folder.Render(label), raw: true}
}

func folderLabel(folder string) string {
	if folder == "" {
		return "Uncategorised"
	}
	return folder + "/"
}

func (m *EditorModel) sidebarView() string {
	st := styles()
	visible := m.editor.VisiblePrompts()
	rows := m.sidebarRows()
	lines := make([]styledLine, 0, rows)
	if len(visible) == 0 {
		lines = append(lines, styledLine{text: "No prompts", style: st.Info})
	}
	end := min(m.offset+rows, len(visible))
	activeID := m.editor.ActiveID()
	for i := m.offset; i < end; i++ {
		p := visible[i]
		marker := "  "
		if p.ID == activeID {
			marker = "● "
			if m.editor.Dirty() {
				marker = "* "
			}
		}
		style := st.Item
		if i == m.cursor && m.focus == focusSidebar {
			style = st.SelectedItem
		}
		text := marker + p.Name
		if _, filtered := m.editor.FolderFilter(); !filtered && p.Folder != "" {
			text += " (" + p.Folder + ")"
		}
		lines = append(lines, styledLine{text: padRight(truncateText(text, sidebarWidth), sidebarWidth), style: style})
	}
	if p, ok := m.editor.Active(); ok && !p.Persisted() {
		lines = append(lines, styledLine{text: padRight(truncateText("* "+p.Name+" (unsaved)", sidebarWidth), sidebarWidth), style: st.ItemMeta})
	}
	for len(lines) < rows {
		lines = append(lines, plainLine(strings.Repeat(" ", sidebarWidth)))
	}
	return renderLines(lines)
}

func (m *EditorModel) formView() string {
	st := styles()
	if _, ok := m.editor.Active(); !ok {
		return st.Info.Render("Select a prompt or press n to create one.")
	}
	parts := make([]string, 0, int(fieldCount)+1)
	for i := range m.inputs {
		parts = append(parts, m.fieldLabel(formField(i))+m.inputs[i].View())
	}
	parts = append(parts, m.fieldLabel(fieldContent), m.body.View())
	return strings.Join(parts, "\n")
}

func (m *EditorModel) fieldLabel(f formField) string {
	st := styles()
	if m.focus == focusForm && m.field == f {
		return st.Focused.Render(fieldLabels[f])
	}
	return st.Label.Render(fieldLabels[f])
}

func (m *EditorModel) settingsView() string {
	st := styles()
	current, ok := m.settings.Current()
	if !ok {
		if m.settings.Loading() {
			return st.Loading.Render("Loading settings…")
		}
		return st.Info.Render("Settings unavailable")
	}
	values := [rowCount]string{
		rowHotkey:      current.General.Hotkey,
		rowTheme:       current.Appearance.Theme,
		rowAccent:      current.Appearance.AccentColor,
		rowAlwaysOnTop: onOff(current.General.EditorAlwaysOnTop),
		rowAutoLaunch:  onOff(current.General.AutoLaunch),
		rowQuit:        "",
	}
	labels := [rowCount]string{
		rowHotkey:      "Launcher hotkey",
		rowTheme:       "Theme",
		rowAccent:      "Accent colour",
		rowAlwaysOnTop: "Open editor in popup",
		rowAutoLaunch:  "Start daemon at login",
		rowQuit:        "Quit tmux-prompts",
	}
	switch {
	case m.hotkey.Recording():
		combo := m.hotkey.Combo()
		if combo == "" {
			combo = "press a key combination…"
		}
		values[rowHotkey] = combo + "  (enter save, esc cancel)"
	case m.hotkey.Busy():
		values[rowHotkey] = current.General.Hotkey + "  …"
	}
	lines := make([]string, 0, int(rowCount))
	for i := range labels {
		text := labels[i]
		if values[i] != "" {
			text = fmt.Sprintf("%-22s %s", labels[i], values[i])
		}
		if i == m.settingsCursor {
			lines = append(lines, st.SelectedItem.Render("▌ "+text))
			continue
		}
		lines = append(lines, st.Item.Render("  "+text))
	}
	return strings.Join(lines, "\n")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (m *EditorModel) statusLine() styledLine {
	st := styles()
	switch m.confirm {
	case confirmDeletePrompt:
		name := ""
		if p, ok := m.editor.Active(); ok {
			name = p.Name
		}
		return styledLine{text: fmt.Sprintf("Delete %q? y/n", name), style: st.Notice}
	case confirmDeleteFolder:
		folder, _ := m.editor.FolderFilter()
		return styledLine{text: fmt.Sprintf("Remove folder %q? Its prompts move to the top level. y/n", folder), style: st.Notice}
	case confirmQuitDirty:
		return styledLine{text: "Saving failed. Quit and lose changes? y/n", style: st.Error}
	}
	if m.prompt != promptNone {
		label := "New folder: "
		if m.prompt == promptRenameFolder {
			label = "Rename folder: "
		}
		return styledLine{text: label + m.promptInput.View(), raw: true}
	}
	for _, err := range []error{m.editor.LastError(), m.hotkey.LastError(), m.settings.LastError(), m.watchErr} {
		if err != nil {
			return styledLine{text: errorText(err, m.verbose), style: st.Error}
		}
	}
	if _, ok := m.editor.Active(); !ok {
		return plainLine("")
	}
	switch status := m.editor.Status(); {
	case status == session.SaveIdle && m.editor.Dirty():
		return styledLine{text: "unsaved changes", style: st.Status}
	case status == session.SaveIdle:
		return plainLine("")
	default:
		return styledLine{text: status.String(), style: st.Status}
	}
}
