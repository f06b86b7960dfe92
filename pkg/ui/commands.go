package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/docbridge"
	"github.com/vanderheijden86/casefile/pkg/export"
	"github.com/vanderheijden86/casefile/pkg/watcher"
)

// tweenFrame is the camera animation tick interval.
const tweenFrame = 16 * time.Millisecond

type tweenTickMsg struct{ at time.Time }

type summarizeDoneMsg struct {
	doc string
	err error
}

type importDoneMsg struct {
	nodes []board.Node
	err   error
}

type snapshotDoneMsg struct {
	paths []string
	hooks string // first line of the hook summary
	err   error
}

// mirrorDocMsg carries an external edit of the mirrored document.
type mirrorDocMsg struct{ doc string }

type mirrorErrMsg struct{ err error }

// mirrorStartedMsg reports the mirror watcher coming up.
type mirrorStartedMsg struct {
	w   *watcher.Watcher
	err error
}

func tweenTick() tea.Cmd {
	return tea.Tick(tweenFrame, func(t time.Time) tea.Msg { return tweenTickMsg{at: t} })
}

// summarizeCmd runs the summarize round trip on a snapshot of the board.
func summarizeCmd(br *docbridge.Bridge, bd *board.Board) tea.Cmd {
	return func() tea.Msg {
		doc, err := br.Summarize(context.Background(), bd)
		return summarizeDoneMsg{doc: doc, err: err}
	}
}

// importCmd runs extraction and layout on doc.
func importCmd(br *docbridge.Bridge, doc string) tea.Cmd {
	return func() tea.Msg {
		nodes, err := br.Import(context.Background(), doc)
		return importDoneMsg{nodes: nodes, err: err}
	}
}

// snapshotCmd writes SVG and PNG snapshots of bd into dir, running the
// snapshot hooks from hooksDir around the write.
func snapshotCmd(bd *board.Board, dir, hooksDir, theme string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		base := filepath.Join(dir, "casefile-"+now.Format("20060102-150405"))
		paths, summary, err := export.SaveHooked(context.Background(), bd, base, theme, hooksDir)
		head, _, _ := strings.Cut(summary, "\n")
		return snapshotDoneMsg{paths: paths, hooks: head, err: err}
	}
}

// startMirrorCmd starts watching the mirror file. Events are delivered on ch.
func startMirrorCmd(mr *watcher.Mirror, ch chan<- tea.Msg) tea.Cmd {
	return func() tea.Msg {
		send := func(msg tea.Msg) {
			select {
			case ch <- msg:
			default:
				// Drop when the model has not drained the last event yet;
				// the next change will be read in full anyway.
			}
		}
		w, err := mr.Watch(
			func(doc string) { send(mirrorDocMsg{doc: doc}) },
			func(err error) { send(mirrorErrMsg{err: err}) },
		)
		return mirrorStartedMsg{w: w, err: err}
	}
}

// waitMirrorCmd blocks until the mirror watcher reports something.
func waitMirrorCmd(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// bridgeError turns a bridge failure into a status line message.
func bridgeError(action string, err error) string {
	if errors.Is(err, docbridge.ErrBusy) {
		return "The collaborator is still working on the last request"
	}
	return fmt.Sprintf("%s failed: %v", action, err)
}

// summarize starts a summarize round trip unless one is already running.
func (m *Model) summarize() tea.Cmd {
	if m.bridge == nil {
		m.setError("No collaborator configured")
		return nil
	}
	if m.busy != "" || m.bridge.Pending() {
		m.setError("%s", bridgeError("Summarize", docbridge.ErrBusy))
		return nil
	}
	m.busy = "summarizing"
	m.setStatus("Summarizing %d items with %s…", len(m.session.Board().Nodes), m.bridge.Provider())
	return tea.Batch(summarizeCmd(m.bridge, m.session.Board().Clone()), m.spinner.Tick)
}

// importDocument starts an extraction round trip on the current document.
func (m *Model) importDocument() tea.Cmd {
	if m.bridge == nil {
		m.setError("No collaborator configured")
		return nil
	}
	if m.busy != "" || m.bridge.Pending() {
		m.setError("%s", bridgeError("Import", docbridge.ErrBusy))
		return nil
	}
	m.busy = "importing"
	m.setStatus("Extracting items with %s…", m.bridge.Provider())
	return tea.Batch(importCmd(m.bridge, m.doc.Value()), m.spinner.Tick)
}

func (m *Model) applySummary(msg summarizeDoneMsg) tea.Cmd {
	m.busy = ""
	if msg.err != nil {
		m.setError("%s", bridgeError("Summarize", msg.err))
		return nil
	}
	m.setDocument(msg.doc)
	m.setStatus("Document updated from the board")
	if !m.docOpen {
		m.docOpen = true
		m.layout()
	}
	return nil
}

func (m *Model) applyImport(msg importDoneMsg) {
	m.busy = ""
	if msg.err != nil {
		m.setError("%s", bridgeError("Import", msg.err))
		return
	}
	m.interruptTween()
	m.session.ReplaceNodes(msg.nodes)
	m.setStatus("Imported %d items from the document; links were cleared", len(msg.nodes))
}

func (m *Model) applyMirror(msg mirrorDocMsg) {
	if msg.doc == m.doc.Value() {
		return
	}
	m.doc.SetValue(msg.doc)
	m.persist.doc = true
	m.setStatus("Document reloaded from %s", m.mirror.Path())
}

// snapshot saves the board as SVG and PNG in the snapshot directory.
func (m *Model) snapshot() tea.Cmd {
	if len(m.session.Board().Nodes) == 0 {
		m.setError("Nothing to snapshot: the board is empty")
		return nil
	}
	m.busy = "saving snapshot"
	return tea.Batch(snapshotCmd(m.session.Board().Clone(), m.snapshotDir, m.hooksDir, m.cfg.Canvas.Theme, m.now()), m.spinner.Tick)
}
