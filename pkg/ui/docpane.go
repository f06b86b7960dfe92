package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/docbridge"
)

// docTags maps document pane shortcuts to the tag they insert.
var docTags = map[string]string{
	"alt+t": board.TypeSticky.Tag(),
	"alt+o": board.TypeObjective.Tag(),
	"alt+g": board.TypeGoal.Tag(),
	"alt+i": board.TypeIdeaStrip.Tag(),
	"alt+f": board.FinishedTag,
}

// focusDoc moves the keyboard into the document pane.
func (m *Model) focusDoc() tea.Cmd {
	if !m.docOpen {
		m.docOpen = true
		m.layout()
	}
	m.area = areaDoc
	m.docPreview = false
	return m.doc.Focus()
}

// blurDoc returns the keyboard to the canvas and saves the document.
func (m *Model) blurDoc() {
	m.doc.Blur()
	m.area = areaCanvas
	m.persist.doc = true
	if m.mirror != nil {
		if err := m.mirror.Write(m.doc.Value()); err != nil {
			m.setError("Document mirror: %v", err)
		}
	}
}

func (m *Model) handleDocKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if tag, ok := docTags[key]; ok {
		m.insertTag(tag)
		return nil
	}
	switch key {
	case "esc":
		m.blurDoc()
		return nil
	case "ctrl+c":
		return tea.Quit
	case "ctrl+s":
		m.persist.doc = true
		if m.mirror != nil {
			if err := m.mirror.Write(m.doc.Value()); err != nil {
				m.setError("Document mirror: %v", err)
				return nil
			}
		}
		m.setStatus("Document saved")
		return nil
	case "alt+p":
		m.docPreview = !m.docPreview
		return nil
	case "alt+s":
		return m.summarize()
	case "alt+m":
		return m.confirmImport()
	case "alt+y":
		return m.copyDocument()
	}
	if m.docPreview {
		return nil
	}
	var cmd tea.Cmd
	m.doc, cmd = m.doc.Update(msg)
	return cmd
}

// insertTag puts a [TAG] token at the cursor, on a line of its own.
func (m *Model) insertTag(tag string) {
	if m.docPreview {
		m.docPreview = false
	}
	value := m.doc.Value()
	offset := cursorOffset(value, m.doc.Line(), m.doc.LineInfo().StartColumn+m.doc.LineInfo().ColumnOffset)
	text, cursor := docbridge.InsertTag(value, offset, tag)
	m.doc.InsertString(text[offset:cursor])
}

// cursorOffset converts a row and rune column into a byte offset in text.
func cursorOffset(text string, row, col int) int {
	lines := strings.Split(text, "\n")
	row = max(0, min(row, len(lines)-1))
	offset := 0
	for _, l := range lines[:row] {
		offset += len(l) + 1
	}
	runes := []rune(lines[row])
	col = max(0, min(col, len(runes)))
	return offset + len(string(runes[:col]))
}

// docView renders the document pane.
func (m Model) docView(w, h int) string {
	panel := m.theme.Panel
	if m.area == areaDoc {
		panel = m.theme.PanelActive
	}
	innerW, innerH := max(1, w-2), max(1, h-2)

	provider := "no collaborator"
	if m.bridge != nil {
		provider = string(m.bridge.Provider())
	}
	title := m.theme.Base.Bold(true).Render("Document") + " " + m.theme.Status.Render("· "+provider)
	if m.docPreview {
		title += m.theme.Status.Render(" · preview")
	}

	var body string
	if m.docPreview {
		body = m.renderMarkdown(m.doc.Value())
	} else {
		body = m.doc.View()
	}
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", body)
	content = lipgloss.NewStyle().MaxWidth(innerW).MaxHeight(innerH).Render(content)
	return panel.Width(innerW).Height(innerH).Render(content)
}

// renderMarkdown renders doc with glamour, falling back to plain text.
func (m Model) renderMarkdown(doc string) string {
	if strings.TrimSpace(doc) == "" {
		return m.theme.Status.Render("(empty)")
	}
	if m.md == nil {
		return doc
	}
	out, err := m.md.Render(doc)
	if err != nil {
		return doc
	}
	return strings.TrimSpace(out)
}
