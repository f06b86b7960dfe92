package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/casefile/pkg/board"
)

type helpSection struct {
	title string
	keys  [][2]string
}

func helpSections() []helpSection {
	add := make([][2]string, 0, 6)
	for i, t := range board.AllNodeTypes() {
		add = append(add, [2]string{fmt.Sprint(i + 1), "add " + strings.ToLower(t.Label())})
	}
	return []helpSection{
		{"Add", add},
		{"Canvas", [][2]string{
			{"drag", "move node / pan"},
			{"wheel + -", "zoom"},
			{"arrows", "pan"},
			{"0", "reset view"},
			{"double-click", "focus node or link"},
			{"right-click m", "node menu"},
			{"tab", "select next"},
			{"esc", "cancel / exit focus"},
		}},
		{"Node", [][2]string{
			{"e enter", "edit text"},
			{"x", "toggle complete"},
			{"L", "toggle lock"},
			{"l", "start link"},
			{"v", "cycle link color"},
			{"i t", "connected idea / task"},
			{"w", "linked task wizard"},
			{"f", "focus"},
			{"d del", "delete"},
		}},
		{"Board", [][2]string{
			{"T", "rename board"},
			{"D", "document pane"},
			{"s", "summarize into document"},
			{"I", "import document"},
			{"y", "copy document"},
			{"p", "save snapshot"},
			{"C", "clear board"},
			{"R", "reset to defaults"},
			{"q", "quit"},
		}},
		{"Document", [][2]string{
			{"alt+t o g i", "insert TASK OBJECTIVE GOAL IDEA"},
			{"alt+f", "insert FINISHED"},
			{"alt+p", "toggle preview"},
			{"ctrl+s", "save"},
		}},
	}
}

// helpView renders the key reference in two columns.
func (m Model) helpView() string {
	keyStyle := m.theme.Base.Foreground(m.theme.Primary).Bold(true)
	textStyle := m.theme.Status
	titleStyle := m.theme.Base.Bold(true).Underline(true)

	render := func(sections []helpSection) string {
		var b strings.Builder
		for i, sec := range sections {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(titleStyle.Render(sec.title) + "\n")
			for _, kv := range sec.keys {
				b.WriteString(keyStyle.Render(padRight(kv[0], 14)) + textStyle.Render(kv[1]) + "\n")
			}
		}
		return strings.TrimRight(b.String(), "\n")
	}

	secs := helpSections()
	half := (len(secs) + 1) / 2
	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		render(secs[:half]),
		strings.Repeat(" ", SpaceMD),
		render(secs[half:]),
	)
	return m.theme.PanelActive.Padding(0, SpaceXS).Render(cols)
}
