package ui

import (
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/geometry"
	"github.com/vanderheijden86/casefile/pkg/interact"
	"github.com/vanderheijden86/casefile/pkg/planner"
)

// Keyboard pan steps in cells.
const (
	panCols = 4
	panRows = 2
)

// handleKey routes a key press to the area that owns the keyboard.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.area {
	case areaEditor:
		return m.handleEditorKey(msg)
	case areaDoc:
		return m.handleDocKey(msg)
	case areaHelp:
		switch msg.String() {
		case "ctrl+c":
			return tea.Quit
		case "esc", "?", "q", "enter":
			m.area = areaCanvas
		}
		return nil
	}
	return m.handleCanvasKey(msg)
}

func (m *Model) handleCanvasKey(msg tea.KeyMsg) tea.Cmd {
	s := m.session
	st := s.State()
	key := msg.String()

	if types := board.AllNodeTypes(); len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(types) {
		return m.createNode(types[key[0]-'1'])
	}

	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "?":
		m.area = areaHelp
		return nil

	case "up", "down", "left", "right":
		if st.Focused() {
			m.setStatus("Focus mode: esc to exit before panning")
			return nil
		}
		m.interruptTween()
		dx, dy := 0.0, 0.0
		switch key {
		case "up":
			dy = panRows * CellH
		case "down":
			dy = -panRows * CellH
		case "left":
			dx = panCols * CellW
		case "right":
			dx = -panCols * CellW
		}
		s.SetCamera(s.Camera().Panned(dx, dy))
		return nil
	case "+", "=":
		return m.zoomBy(-wheelNotch)
	case "-", "_":
		return m.zoomBy(wheelNotch)
	case "0":
		if st.Focused() {
			return nil
		}
		before := s.Camera()
		s.ResetCamera()
		return m.animateFrom(before)

	case "tab":
		return m.cycleSelection(1)
	case "shift+tab":
		return m.cycleSelection(-1)

	case "enter":
		if st.LinkPending() {
			return m.commitLinkTo(st.SelectedID)
		}
		return m.runNodeAction("e", st.SelectedID)
	case "esc":
		m.interruptTween()
		m.statusMsg = ""
		s.Dispatch(interact.Escape{})
		return nil
	case "m":
		if st.SelectedID == "" {
			m.setError("Select a node first")
			return nil
		}
		if st.OpenMenuID == st.SelectedID {
			s.Dispatch(interact.CloseMenu{})
			return nil
		}
		n, ok := s.Board().FindNode(st.SelectedID)
		if !ok {
			return nil
		}
		s.Dispatch(interact.SecondaryDown{
			Hit: geometry.Hit{Kind: geometry.HitNode, ID: n.ID, Locked: n.IsLocked},
			Pos: geometry.CenterOf(*n),
		})
		return nil

	case "T":
		m.editTarget = ""
		m.editor.SetValue(s.Board().Title)
		m.editor.CursorEnd()
		m.area = areaEditor
		return m.editor.Focus()
	case "C":
		return m.confirmClear()
	case "R":
		return m.confirmReset()
	case "D":
		if m.docOpen {
			m.docOpen = false
			m.layout()
			return nil
		}
		m.docOpen = true
		m.layout()
		return m.focusDoc()
	case "s":
		return m.summarize()
	case "I":
		return m.confirmImport()
	case "p":
		return m.snapshot()
	case "y":
		return m.copyDocument()

	case "delete", "backspace":
		return m.runNodeAction("d", st.SelectedID)
	}

	for _, it := range nodeMenu {
		if it.key == key {
			return m.runNodeAction(key, st.SelectedID)
		}
	}
	return nil
}

// runNodeAction applies a per-node menu entry to node id.
func (m *Model) runNodeAction(key, id string) tea.Cmd {
	s := m.session
	s.Dispatch(interact.CloseMenu{})
	st := s.State()

	// Link-level actions when a link is focused.
	if st.Focus.Kind == interact.FocusLink && st.Focus.ID != "" {
		switch key {
		case "v":
			e, ok := s.Board().FindEdge(st.Focus.ID)
			if !ok {
				return nil
			}
			next := nextVariant(e.Variant)
			if err := s.UpdateEdgeVariant(e.ID, next); err != nil {
				m.setError("%v", err)
				return nil
			}
			m.setStatus("Link is now %s", next)
			return nil
		case "d":
			if err := s.DeleteEdge(st.Focus.ID); err != nil {
				m.setError("%v", err)
				return nil
			}
			m.setStatus("Link deleted")
			return nil
		}
	}

	switch key {
	case "v":
		m.variant = nextVariant(m.variant)
		m.setStatus("New links: %s", m.variant)
		return nil
	case "w":
		return m.openWizard(id)
	}

	n, ok := s.Board().FindNode(id)
	if !ok {
		m.setError("Select a node first")
		return nil
	}
	before := s.Camera()
	var err error
	switch key {
	case "e":
		return m.startEdit(n.ID)
	case "x":
		if !n.Type.Completable() {
			m.setError("%s items cannot be completed", n.Type.Label())
			return nil
		}
		err = s.ToggleCompleted(n.ID)
	case "L":
		err = s.ToggleLocked(n.ID)
	case "l":
		s.Dispatch(interact.StartLink{From: n.ID, Variant: m.variant})
		m.setStatus("Linking (%s): click a target, or tab to it and press enter; esc cancels", m.variant)
		return nil
	case "i":
		_, _, err = s.CreateConnectedIdea(n.ID)
	case "t":
		_, _, err = s.CreateConnectedTask(n.ID, m.variant)
	case "f":
		s.Focus(interact.Focus{ID: n.ID, Kind: interact.FocusNode})
		return m.animateFrom(before)
	case "d":
		m.interruptTween()
		err = s.DeleteNode(n.ID)
		if err == nil {
			m.setStatus("Deleted %s", strings.ToLower(n.Type.Label()))
		}
	}
	if err != nil {
		m.setError("%v", err)
		return nil
	}
	return m.animateFrom(before)
}

// createNode adds a node of type t at the viewport center.
func (m *Model) createNode(t board.NodeType) tea.Cmd {
	before := m.session.Camera()
	n, err := m.session.CreateNode(t)
	if err != nil {
		m.setError("Add %s: %v", strings.ToLower(t.Label()), err)
		return nil
	}
	m.setStatus("Added %s", strings.ToLower(n.Type.Label()))
	return m.animateFrom(before)
}

// commitLinkTo finishes a pending link on node id, as a click on it would.
func (m *Model) commitLinkTo(id string) tea.Cmd {
	n, ok := m.session.Board().FindNode(id)
	if !ok {
		m.setError("Tab to a target node first")
		return nil
	}
	before := len(m.session.Board().Edges)
	m.session.Dispatch(interact.PointerDown{
		Hit: geometry.Hit{Kind: geometry.HitNode, ID: n.ID, Locked: n.IsLocked},
		Pos: geometry.CenterOf(*n),
	})
	m.session.Dispatch(interact.PointerUp{})
	if len(m.session.Board().Edges) > before {
		m.setStatus("Linked")
	} else {
		m.setStatus("Link cancelled")
	}
	return nil
}

// cycleSelection moves the selection through the board in insertion order and
// brings the new selection into view.
func (m *Model) cycleSelection(dir int) tea.Cmd {
	s := m.session
	nodes := s.Board().Nodes
	if len(nodes) == 0 {
		return nil
	}
	idx := -1
	for i, n := range nodes {
		if n.ID == s.State().SelectedID {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && dir < 0:
		idx = len(nodes) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + dir + len(nodes)) % len(nodes)
	}
	n := nodes[idx]
	s.Select(n.ID)
	if s.State().Focused() || m.visible(n) {
		return nil
	}
	before := s.Camera()
	s.SetCamera(geometry.FocusOn(geometry.CenterOf(n), s.Viewport(), before.Scale))
	return m.animateFrom(before)
}

// visible reports whether n's center is on screen.
func (m *Model) visible(n board.Node) bool {
	cw, bh := m.canvasSize()
	x, y := cellOf(m.session.Camera(), geometry.CenterOf(n))
	return x >= 0 && y >= 0 && x < cw && y < bh
}

func nextVariant(v board.LinkVariant) board.LinkVariant {
	all := board.AllVariants()
	for i, o := range all {
		if o == v {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// startEdit opens the inline editor on a node's content.
func (m *Model) startEdit(id string) tea.Cmd {
	n, ok := m.session.Board().FindNode(id)
	if !ok {
		return nil
	}
	m.editTarget = id
	m.editor.SetValue(strings.Join(strings.Fields(n.Content), " "))
	m.editor.CursorEnd()
	m.area = areaEditor
	return m.editor.Focus()
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.editor.Blur()
		m.area = areaCanvas
		return nil
	case "enter":
		m.commitEdit()
		return nil
	case "ctrl+c":
		return tea.Quit
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

func (m *Model) commitEdit() {
	v := strings.TrimSpace(m.editor.Value())
	m.editor.Blur()
	m.area = areaCanvas
	if m.editTarget == "" {
		if v == "" {
			m.setError("The title cannot be empty")
			return
		}
		m.session.SetTitle(v)
		return
	}
	if err := m.session.UpdateNode(m.editTarget, planner.NodePatch{Content: &v}); err != nil {
		m.setError("%v", err)
	}
}

// copyDocument puts the document text on the system clipboard.
func (m *Model) copyDocument() tea.Cmd {
	doc := m.doc.Value()
	if strings.TrimSpace(doc) == "" {
		m.setError("The document is empty")
		return nil
	}
	if err := clipboard.WriteAll(doc); err != nil {
		m.setError("Clipboard error: %v", err)
		return nil
	}
	m.setStatus("Copied document to clipboard (%d lines)", strings.Count(doc, "\n")+1)
	return nil
}
