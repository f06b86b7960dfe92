// Package ui is the terminal surface of the planning board: a bubbletea
// program that draws the canvas on a cell grid, turns mouse and keyboard
// input into board operations, and hosts the document pane and the
// collaborator round trips.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/casefile/internal/store"
	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/config"
	"github.com/vanderheijden86/casefile/pkg/debug"
	"github.com/vanderheijden86/casefile/pkg/docbridge"
	"github.com/vanderheijden86/casefile/pkg/geometry"
	"github.com/vanderheijden86/casefile/pkg/planner"
	"github.com/vanderheijden86/casefile/pkg/watcher"
)

// area is the part of the screen that receives keys.
type area int

const (
	areaCanvas area = iota
	areaEditor
	areaDoc
	areaForm
	areaHelp
)

// Rows taken by the header and status line.
const (
	headerRows = 1
	footerRows = 1
)

// Options wires a Model to its collaborators. Every field is optional.
type Options struct {
	Store       *store.Store
	Bridge      *docbridge.Bridge
	Config      config.Config
	Document    string
	Mirror      *watcher.Mirror
	SnapshotDir string
	Now         func() time.Time

	// HooksDir holds hooks.yaml for snapshots; empty runs no hooks.
	HooksDir string
}

// persistState collects change flags between frames. It lives behind a
// pointer because the session hook outlives each Model copy.
type persistState struct {
	pending planner.Change
	doc     bool
}

// mirrorWatch holds the running mirror watcher so Close can stop it.
type mirrorWatch struct {
	w *watcher.Watcher
}

// Model is the bubbletea model of one board view.
type Model struct {
	session *planner.Session
	store   *store.Store
	bridge  *docbridge.Bridge
	cfg     config.Config
	theme   Theme
	persist *persistState
	now     func() time.Time

	width, height int
	area          area
	prevArea      area
	variant       board.LinkVariant
	pointer       pointerState
	tween         *geometry.Tween
	ticking       bool

	// Content and title editor
	editor     textinput.Model
	editTarget string // node id, or "" for the board title

	// Document pane
	doc        textarea.Model
	docOpen    bool
	docPreview bool
	md         *glamour.TermRenderer
	mirror     *watcher.Mirror
	mirrorCh   chan tea.Msg
	watch      *mirrorWatch

	// Embedded huh form
	form     *huh.Form
	onSubmit func(m *Model) tea.Cmd

	spinner     spinner.Model
	busy        string
	snapshotDir string
	hooksDir    string

	statusMsg     string
	statusIsError bool
}

// NewModel builds a Model around s.
func NewModel(s *planner.Session, opts Options) Model {
	cfg := opts.Config
	if cfg.Canvas.Theme == "" {
		cfg = config.DefaultConfig()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	persist := &persistState{}
	s.OnChange(func(c planner.Change) { persist.pending |= c })

	ed := textinput.New()
	ed.CharLimit = 500
	ed.Prompt = "› "

	doc := textarea.New()
	doc.Placeholder = "Summarize the board or write [TASK] lines here…"
	doc.ShowLineNumbers = false
	doc.CharLimit = 0
	doc.SetValue(opts.Document)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Initialize markdown renderer for the document preview.
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(60),
	)
	if err != nil {
		debug.Log("ui: glamour renderer: %v", err)
		md = nil
	}

	snapDir := opts.SnapshotDir
	if snapDir == "" {
		snapDir = "."
	}

	m := Model{
		session:     s,
		store:       opts.Store,
		bridge:      opts.Bridge,
		cfg:         cfg,
		theme:       DefaultTheme(lipgloss.NewRenderer(os.Stdout), cfg.Canvas.Theme),
		persist:     persist,
		now:         now,
		variant:     cfg.Variant(),
		editor:      ed,
		doc:         doc,
		md:          md,
		mirror:      opts.Mirror,
		spinner:     sp,
		snapshotDir: snapDir,
		hooksDir:    opts.HooksDir,
	}
	if m.mirror != nil {
		m.mirrorCh = make(chan tea.Msg, 1)
		m.watch = &mirrorWatch{}
	}
	return m
}

// Session returns the board session driven by this model.
func (m Model) Session() *planner.Session { return m.session }

// Document returns the current document text.
func (m Model) Document() string { return m.doc.Value() }

// Status returns the status line message and whether it is an error.
func (m Model) Status() (string, bool) { return m.statusMsg, m.statusIsError }

// Close stops background watchers. Call it after the program exits.
func (m Model) Close() {
	if m.watch != nil && m.watch.w != nil {
		m.watch.w.Stop()
		m.watch.w = nil
	}
}

// Init starts the mirror watcher when one is configured.
func (m Model) Init() tea.Cmd {
	if m.mirror == nil {
		return nil
	}
	return tea.Batch(startMirrorCmd(m.mirror, m.mirrorCh), waitMirrorCmd(m.mirrorCh))
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// huh.Form needs to receive ALL message types for its internal
	// navigation, so it is fed before the type switch.
	if m.area == areaForm && m.form != nil {
		if _, ok := msg.(tea.WindowSizeMsg); !ok && !isBackgroundMsg(msg) {
			cmds = append(cmds, m.updateForm(msg))
			m.flush()
			return m, tea.Batch(cmds...)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		if m.form != nil {
			m.form = m.form.WithWidth(min(60, m.width-4))
		}

	case tweenTickMsg:
		cmds = append(cmds, m.stepTween(msg.at))

	case spinner.TickMsg:
		if m.busy != "" {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case summarizeDoneMsg:
		cmds = append(cmds, m.applySummary(msg))

	case importDoneMsg:
		m.applyImport(msg)

	case snapshotDoneMsg:
		m.busy = ""
		switch {
		case msg.err != nil && len(msg.paths) > 0:
			m.setError("Saved %s; %v", strings.Join(msg.paths, ", "), msg.err)
		case msg.err != nil:
			m.setError("Snapshot failed: %v", msg.err)
		case msg.hooks != "":
			m.setStatus("Saved %s (%s)", strings.Join(msg.paths, ", "), msg.hooks)
		default:
			m.setStatus("Saved %s", strings.Join(msg.paths, ", "))
		}

	case mirrorStartedMsg:
		if msg.err != nil {
			m.setError("Document mirror: %v", msg.err)
		} else if m.watch != nil {
			m.watch.w = msg.w
		}

	case mirrorDocMsg:
		m.applyMirror(msg)
		cmds = append(cmds, waitMirrorCmd(m.mirrorCh))

	case mirrorErrMsg:
		m.setError("Document mirror: %v", msg.err)
		cmds = append(cmds, waitMirrorCmd(m.mirrorCh))

	case tea.MouseMsg:
		if m.area == areaCanvas || m.area == areaDoc {
			cmds = append(cmds, m.handleMouse(msg))
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	default:
		switch m.area {
		case areaEditor:
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			cmds = append(cmds, cmd)
		case areaDoc:
			var cmd tea.Cmd
			m.doc, cmd = m.doc.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.flush()
	return m, tea.Batch(cmds...)
}

// isBackgroundMsg reports results that must reach the model even while a
// form is open.
func isBackgroundMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case tweenTickMsg, spinner.TickMsg, summarizeDoneMsg, importDoneMsg, snapshotDoneMsg, mirrorStartedMsg, mirrorDocMsg, mirrorErrMsg:
		return true
	}
	return false
}

// layout sizes the canvas and document pane to the window.
func (m *Model) layout() {
	cw, bh := m.canvasSize()
	m.session.SetViewport(float64(cw)*CellW, float64(bh)*CellH)
	if dw := m.docWidth(); dw > 0 {
		m.doc.SetWidth(max(10, dw-4))
		m.doc.SetHeight(max(3, bh-4))
	}
	m.editor.Width = max(10, m.width-20)
}

func (m Model) bodyHeight() int {
	return max(0, m.height-headerRows-footerRows)
}

func (m Model) docWidth() int {
	if !m.docOpen || m.width <= 0 {
		return 0
	}
	return max(30, m.width*2/5)
}

func (m Model) canvasSize() (int, int) {
	return max(0, m.width-m.docWidth()), m.bodyHeight()
}

// flush persists whatever changed since the last frame. Saves are held back
// while a node is being dragged.
func (m *Model) flush() {
	if m.store == nil {
		m.persist.pending = 0
		m.persist.doc = false
		return
	}
	ctx := m.ctx()
	if c := m.persist.pending; c != 0 && !m.session.State().Dragging() {
		m.persist.pending = 0
		if err := m.store.SaveChange(ctx, m.session.Board(), c); err != nil {
			m.setError("Save failed: %v", err)
		}
	}
	if m.persist.doc {
		m.persist.doc = false
		if err := m.store.SaveDocument(ctx, m.doc.Value()); err != nil {
			m.setError("Save document failed: %v", err)
		}
	}
}

func (m *Model) ctx() context.Context { return context.Background() }

// setDocument replaces the document text, persists it and mirrors it.
func (m *Model) setDocument(doc string) {
	m.doc.SetValue(doc)
	m.persist.doc = true
	if m.mirror != nil {
		if err := m.mirror.Write(doc); err != nil {
			m.setError("Document mirror: %v", err)
		}
	}
}

func (m *Model) setStatus(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusIsError = false
}

func (m *Model) setError(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusIsError = true
	debug.Log("ui: %s", m.statusMsg)
}

// View renders the whole screen.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Loading…"
	}
	cw, bh := m.canvasSize()

	var body string
	switch {
	case m.area == areaForm && m.form != nil:
		panel := m.theme.PanelActive.Padding(0, 1).Render(m.form.View())
		body = lipgloss.Place(m.width, bh, lipgloss.Center, lipgloss.Center, panel)
	case m.area == areaHelp:
		body = lipgloss.Place(m.width, bh, lipgloss.Center, lipgloss.Center, m.helpView())
	default:
		body = renderCanvas(m.session, m.theme, cw, bh)
		if m.docOpen {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.docView(m.docWidth(), bh))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.footerView())
}

func (m Model) headerView() string {
	bd := m.session.Board()
	st := m.session.State()
	title := m.theme.Header.Render(" " + truncate(bd.Title, max(10, m.width/3)) + " ")
	parts := []string{
		fmt.Sprintf("%d items · %d links", len(bd.Nodes), len(bd.LiveEdges())),
		"zoom " + zoomLabel(st.Camera.Scale),
		RenderVariantBadge(m.variant),
	}
	if st.LinkPending() {
		parts = append(parts, "linking from "+truncate(nodeLabel(bd, st.LinkFrom), 20))
	}
	if st.Focused() {
		parts = append(parts, "focus "+st.Focus.Kind.String())
	}
	if m.busy != "" {
		parts = append(parts, m.spinner.View()+" "+m.busy)
	}
	line := title + " " + m.theme.Status.Render(strings.Join(parts, "  "))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) footerView() string {
	if m.area == areaEditor {
		label := "Edit"
		if m.editTarget == "" {
			label = "Title"
		}
		return m.theme.MenuKey.Render(" "+label+" ") + " " + m.editor.View()
	}
	if m.statusMsg != "" {
		style := m.theme.Status
		if m.statusIsError {
			style = m.theme.StatusError
		}
		return style.Render(" " + truncate(m.statusMsg, max(1, m.width-2)))
	}
	switch m.area {
	case areaDoc:
		return " " + RenderKeyHint("esc", "board", "alt+t/o/g/i/f", "tags", "alt+p", "preview", "alt+s", "summarize", "alt+m", "import")
	case areaForm:
		return " " + RenderKeyHint("enter", "next", "esc", "cancel")
	}
	return " " + RenderKeyHint("1-6", "add", "l", "link", "D", "doc", "s", "summarize", "?", "help", "q", "quit")
}

// nodeLabel returns a short description of node id for prompts.
func nodeLabel(bd *board.Board, id string) string {
	n, ok := bd.FindNode(id)
	if !ok {
		return id
	}
	return n.Type.Label() + ": " + strings.Join(strings.Fields(n.Content), " ")
}
