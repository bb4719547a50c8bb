package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
	"github.com/atomicstack/tmux-prompts/internal/model"
)

const launcherFooter = "enter paste · ctrl+y copy · ctrl+e editor · esc close"

// View implements tea.Model.
func (m *LauncherModel) View() string {
	st := styles()
	lines := make([]styledLine, 0, 16)
	lines = append(lines, styledLine{text: m.input.View(), raw: true})

	results := m.session.Results()
	switch {
	case len(results) == 0 && m.session.Loading():
		lines = append(lines, styledLine{text: "Loading…", style: st.Loading})
	case len(results) == 0 && strings.TrimSpace(m.session.Query()) == "":
		lines = append(lines, styledLine{text: "No prompts yet. Press ctrl+e to open the editor.", style: st.Info})
	case len(results) == 0:
		lines = append(lines, styledLine{text: fmt.Sprintf("No matches for %q", m.session.Query()), style: st.Info})
	default:
		visible := m.maxVisibleItems()
		end := min(m.offset+visible, len(results))
		for i := m.offset; i < end; i++ {
			lines = append(lines, m.resultLine(results[i], i == m.session.SelectedIndex()))
		}
	}

	lines = append(lines, m.statusLine())
	if m.showFooter {
		lines = append(lines, plainLine(""), styledLine{text: launcherFooter, style: st.Footer})
	}
	lines = applyWidth(lines, m.width)
	lines = limitHeight(lines, m.height, m.width)
	return renderLines(lines)
}

func (m *LauncherModel) resultLine(p model.PromptMetadata, selected bool) styledLine {
	st := styles()
	indicator := "  "
	style := st.Item
	if selected {
		indicator = "▌ "
		style = st.SelectedItem
	}
	text := indicator + p.Name
	if p.Folder != "" {
		text += "  " + p.Folder + "/"
	}
	if desc := firstLine(p.Description); desc != "" {
		text += " · " + desc
	}
	if m.width > 0 {
		text = padRight(truncateText(text, m.width), m.width)
	}
	return styledLine{text: text, style: style}
}

func (m *LauncherModel) statusLine() styledLine {
	st := styles()
	if err := m.session.LastError(); err != nil {
		return styledLine{text: errorText(err, m.verbose), style: st.Error}
	}
	if notice := m.session.Notice(); notice != "" {
		return styledLine{text: notice, style: st.Notice}
	}
	if n := len(m.session.Results()); n > 0 {
		return styledLine{text: fmt.Sprintf("%d/%d", m.session.SelectedIndex()+1, n), style: st.Status}
	}
	return plainLine("")
}

func errorText(err error, verbose bool) string {
	if verbose {
		return fmt.Sprintf("[%s] %v", apperror.Kind(err), err)
	}
	return err.Error()
}
