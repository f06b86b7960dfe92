package planner

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/debug"
	"github.com/vanderheijden86/casefile/pkg/geometry"
)

// NewGoal is the LinkedTaskRequest.Target value that asks the wizard to create
// a fresh goal.
const NewGoal = "new"

// LinkedTaskRequest is the linked-task wizard's input.
type LinkedTaskRequest struct {
	// Name is the task's content.
	Name string `json:"name" validate:"required,max=500"`
	// Target is an existing goal id, or NewGoal.
	Target string `json:"target" validate:"required"`
	// NewGoalName names the goal created when Target is NewGoal.
	NewGoalName string `json:"newGoalName" validate:"required_if=Target new,max=500"`
	// SourceID optionally anchors the task below an existing node with a
	// critical link.
	SourceID string `json:"sourceId"`
}

// LinkedTaskResult lists what the wizard added.
type LinkedTaskResult struct {
	Task  board.Node
	Goal  *board.Node
	Edges []board.Edge
}

// ValidationError reports rejected wizard input. Nothing has been created when
// it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range []string{"name", "target", "newGoalName", "sourceId"} {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, f+": "+msg)
		}
	}
	return "invalid linked task: " + strings.Join(parts, "; ")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateLinkedTask checks the request shape, then that every referenced id
// resolves.
func (s *Session) validateLinkedTask(req LinkedTaskRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.NewGoalName = strings.TrimSpace(req.NewGoalName)

	verr := &ValidationError{Fields: map[string]string{}}
	if err := requestValidator().Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate linked task: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Fields[fe.Field()] = describe(fe)
		}
	}
	if req.Target != "" && req.Target != NewGoal {
		if g, ok := s.board.FindNode(req.Target); !ok {
			verr.Fields["target"] = "goal does not exist"
		} else if g.Type != board.TypeGoal {
			verr.Fields["target"] = "not a goal"
		}
	}
	if req.SourceID != "" {
		if _, ok := s.board.FindNode(req.SourceID); !ok {
			verr.Fields["sourceId"] = "node does not exist"
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "max":
		return "is too long"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// CreateLinkedTask runs the linked-task wizard: a sticky task, an optional
// critical link from the source, an optional new goal below the task, and a
// positive link from the task to the goal. The request is validated before
// anything is added, and all additions land together.
func (s *Session) CreateLinkedTask(req LinkedTaskRequest) (LinkedTaskResult, error) {
	if err := s.validateLinkedTask(req); err != nil {
		return LinkedTaskResult{}, err
	}

	// Stage on a scratch slice so placement sees earlier additions without
	// the board seeing any of them.
	staged := append([]board.Node(nil), s.board.Nodes...)

	var (
		task board.Node
		err  error
	)
	if src, ok := s.board.FindNode(req.SourceID); ok && req.SourceID != "" {
		task, err = s.newNodeAmong(staged, board.TypeSticky, geometry.Vec{X: src.X, Y: src.Y}, geometry.GridBelow)
	} else {
		d := board.TypeSticky.Dimensions()
		c := s.ViewportCenter()
		task, err = s.newNodeAmong(staged, board.TypeSticky, geometry.Vec{X: c.X - d.W/2, Y: c.Y - d.H/2}, geometry.Spiral)
	}
	if err != nil {
		return LinkedTaskResult{}, err
	}
	task.Content = strings.TrimSpace(req.Name)
	staged = append(staged, task)

	res := LinkedTaskResult{Task: task}
	if req.SourceID != "" {
		res.Edges = append(res.Edges, board.Edge{ID: board.NewID(), FromID: req.SourceID, ToID: task.ID, Variant: board.VariantCritical})
	}

	goalID := req.Target
	if req.Target == NewGoal {
		goal, err := s.newNodeAmong(staged, board.TypeGoal, geometry.Vec{X: task.X, Y: task.Y}, geometry.GridBelow)
		if err != nil {
			return LinkedTaskResult{}, err
		}
		goal.Content = strings.TrimSpace(req.NewGoalName)
		staged = append(staged, goal)
		res.Goal = &goal
		goalID = goal.ID
	}
	res.Edges = append(res.Edges, board.Edge{ID: board.NewID(), FromID: task.ID, ToID: goalID, Variant: board.VariantPositive})

	s.board.Nodes = staged
	s.board.Edges = append(s.board.Edges, res.Edges...)
	s.state.SelectedID = task.ID
	debug.Log("planner: linked task %s -> goal %s (%d edges)", task.ID, goalID, len(res.Edges))
	s.changed(ChangeNodes | ChangeEdges)
	return res, nil
}
