package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/planner"
)

// isTerminal checks if stdin is a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Confirm asks a yes/no question outside the board view, for the CLI.
func Confirm(title, description string) (bool, error) {
	var ok bool
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

// openForm embeds f in the board view. onSubmit runs once the form completes.
func (m *Model) openForm(f *huh.Form, onSubmit func(m *Model) tea.Cmd) tea.Cmd {
	if m.area != areaForm {
		m.prevArea = m.area
	}
	m.form = f.WithShowHelp(false).WithWidth(min(60, max(20, m.width-4)))
	m.onSubmit = onSubmit
	m.area = areaForm
	m.statusMsg = ""
	return m.form.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.onSubmit = nil
	m.area = m.prevArea
	if m.area == areaForm {
		m.area = areaCanvas
	}
}

// updateForm feeds one message to the open form and applies it on completion.
func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.closeForm()
		m.setStatus("Cancelled")
		return nil
	}
	f, cmd := m.form.Update(msg)
	if ff, ok := f.(*huh.Form); ok {
		m.form = ff
	}
	switch m.form.State {
	case huh.StateCompleted:
		submit := m.onSubmit
		m.closeForm()
		if submit != nil {
			return submit(m)
		}
		return nil
	case huh.StateAborted:
		m.closeForm()
		m.setStatus("Cancelled")
		return nil
	}
	return cmd
}

// confirm opens a yes/no form and runs apply when the answer is yes.
func (m *Model) confirm(title, description string, apply func(m *Model) tea.Cmd) tea.Cmd {
	ok := new(bool)
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(ok),
		),
	)
	return m.openForm(form, func(m *Model) tea.Cmd {
		if !*ok {
			m.setStatus("Cancelled")
			return nil
		}
		return apply(m)
	})
}

// wizardInput is bound to the linked-task form fields.
type wizardInput struct {
	req      planner.LinkedTaskRequest
	anchor   bool
	sourceID string
}

// openWizard asks for a task name and a goal, then adds the linked task.
func (m *Model) openWizard(sourceID string) tea.Cmd {
	bd := m.session.Board()
	in := &wizardInput{sourceID: sourceID, anchor: sourceID != ""}

	goals := bd.NodesByType(board.TypeGoal)
	opts := make([]huh.Option[string], 0, len(goals)+1)
	for _, g := range goals {
		opts = append(opts, huh.NewOption(truncate(strings.Join(strings.Fields(g.Content), " "), 40), g.ID))
	}
	opts = append(opts, huh.NewOption("+ New goal…", planner.NewGoal))
	in.req.Target = opts[0].Value

	fields := []huh.Field{
		huh.NewInput().
			Title("Task").
			Placeholder("What needs doing?").
			Value(&in.req.Name).
			Validate(required("task name")),
		huh.NewSelect[string]().
			Title("Goal").
			Options(opts...).
			Value(&in.req.Target),
	}
	if sourceID != "" {
		fields = append(fields, huh.NewConfirm().
			Title("Link from "+truncate(nodeLabel(bd, sourceID), 30)+"?").
			Description("Adds a critical link from the selected node").
			Value(&in.anchor))
	}

	form := newForm(
		huh.NewGroup(fields...).Title("Linked task"),
		huh.NewGroup(
			huh.NewInput().
				Title("New goal").
				Placeholder("Goal name").
				Value(&in.req.NewGoalName).
				Validate(required("goal name")),
		).WithHideFunc(func() bool { return in.req.Target != planner.NewGoal }),
	)
	return m.openForm(form, func(m *Model) tea.Cmd { return m.applyWizard(in) })
}

func (m *Model) applyWizard(in *wizardInput) tea.Cmd {
	req := in.req
	if in.anchor {
		req.SourceID = in.sourceID
	}
	res, err := m.session.CreateLinkedTask(req)
	var verr *planner.ValidationError
	switch {
	case errors.As(err, &verr):
		m.setError("%v", verr)
		return nil
	case err != nil:
		m.setError("Linked task failed: %v", err)
		return nil
	}
	goal := "existing goal"
	if res.Goal != nil {
		goal = "new goal " + truncate(res.Goal.Content, 30)
	}
	m.setStatus("Added task %q linked to %s (%d links)", truncate(res.Task.Content, 30), goal, len(res.Edges))
	return nil
}

func (m *Model) confirmClear() tea.Cmd {
	bd := m.session.Board()
	return m.confirm("Clear the board?",
		fmt.Sprintf("Removes all %d items and %d links. This cannot be undone.", len(bd.Nodes), len(bd.Edges)),
		(*Model).clearBoard)
}

func (m *Model) clearBoard() tea.Cmd {
	m.interruptTween()
	m.session.ClearBoard()
	m.setStatus("Board cleared")
	return nil
}

func (m *Model) confirmReset() tea.Cmd {
	return m.confirm("Reset to the default board?",
		"Replaces the title, items, links and document with the starter case file.",
		(*Model).resetBoard)
}

// resetBoard drops everything persisted and reloads the starter dataset.
func (m *Model) resetBoard() tea.Cmd {
	ds := board.DefaultDataset{}
	if m.store != nil {
		if err := m.store.Reset(m.ctx()); err != nil {
			m.setError("Reset failed: %v", err)
			return nil
		}
	}
	m.interruptTween()
	m.session.Reset(ds)
	m.setDocument(ds.Document())
	m.setStatus("Board reset to defaults")
	return nil
}

func (m *Model) confirmImport() tea.Cmd {
	if strings.TrimSpace(m.doc.Value()) == "" {
		m.setError("The document is empty; write or summarize something first")
		return nil
	}
	bd := m.session.Board()
	return m.confirm("Import items from the document?",
		fmt.Sprintf("Replaces all %d items; the %d links are dropped.", len(bd.Nodes), len(bd.Edges)),
		(*Model).importDocument)
}
