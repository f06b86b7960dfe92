package planner

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/geometry"
	"github.com/vanderheijden86/casefile/pkg/interact"
	"github.com/vanderheijden86/casefile/pkg/testutil"
)

func TestScenarioGoalTaskDelete(t *testing.T) {
	s := New(&board.Board{})

	g1, err := s.CreateNodeAt(board.TypeGoal, geometry.Vec{}, geometry.Spiral)
	if err != nil {
		t.Fatal(err)
	}
	if g1.X != 0 || g1.Y != 0 {
		t.Errorf("first node on empty board should land on the reference, got (%v, %v)", g1.X, g1.Y)
	}

	res, err := s.CreateLinkedTask(LinkedTaskRequest{Name: "Secure Funding", Target: g1.ID})
	if err != nil {
		t.Fatal(err)
	}
	if res.Task.Type != board.TypeSticky || res.Task.Content != "Secure Funding" || res.Goal != nil {
		t.Errorf("result = %+v", res)
	}
	testutil.AssertCounts(t, s.Board(), 2, 1)
	testutil.AssertEdgeExists(t, s.Board(), res.Task.ID, g1.ID, board.VariantPositive)

	if err := s.DeleteNode(g1.ID); err != nil {
		t.Fatal(err)
	}
	testutil.AssertCounts(t, s.Board(), 1, 0)
	if s.Board().Nodes[0].ID != res.Task.ID {
		t.Errorf("remaining node = %s, want task", s.Board().Nodes[0].ID)
	}
}

func TestCreateNodeSelectsAndAvoidsOverlap(t *testing.T) {
	s := New(&board.Board{})
	s.SetViewport(800, 600)

	var last board.Node
	for i := 0; i < 10; i++ {
		n, err := s.CreateNode(board.TypeSticky)
		if err != nil {
			t.Fatal(err)
		}
		last = n
	}
	if s.State().SelectedID != last.ID {
		t.Errorf("selected %q, want newest node", s.State().SelectedID)
	}
	testutil.AssertNoOverlap(t, s.Board().Nodes)
	testutil.AssertNoDuplicateIDs(t, s.Board())
}

func TestCreateNodeDefaults(t *testing.T) {
	for _, typ := range board.AllNodeTypes() {
		t.Run(string(typ), func(t *testing.T) {
			s := New(&board.Board{})
			n, err := s.CreateNode(typ)
			if err != nil {
				t.Fatal(err)
			}
			if n.Content != typ.DefaultContent() || n.Color != typ.DefaultColor() {
				t.Errorf("node = %+v", n)
			}
		})
	}
}

func TestCreateObjectiveEntersFocus(t *testing.T) {
	s := New(&board.Board{})
	s.SetViewport(1000, 800)
	n, err := s.CreateNode(board.TypeObjective)
	if err != nil {
		t.Fatal(err)
	}
	st := s.State()
	if st.Focus.ID != n.ID || st.Focus.Kind != interact.FocusNode {
		t.Fatalf("focus = %+v", st.Focus)
	}
	screen := s.Camera().CanvasToScreen(geometry.CenterOf(n))
	if diff := screen.X - 500; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("objective not centered: %+v", screen)
	}
	if s.Camera().Scale != geometry.FocusScale {
		t.Errorf("scale = %v", s.Camera().Scale)
	}
}

func TestCreateNodeRejectsUnknownType(t *testing.T) {
	s := New(&board.Board{})
	if _, err := s.CreateNode("banner"); err == nil {
		t.Fatal("expected error")
	}
	if s.Revision() != 0 {
		t.Error("failed create must not count as a mutation")
	}
}

func TestUpdateNodeMergesFields(t *testing.T) {
	s := New(board.FromDataset(board.DefaultDataset{}))
	content := "Renamed"
	done := true
	if err := s.UpdateNode("2", NodePatch{Content: &content, IsCompleted: &done}); err != nil {
		t.Fatal(err)
	}
	n, _ := s.Board().FindNode("2")
	if n.Content != "Renamed" || !n.IsCompleted || n.Color != "yellow" || n.X != 600 {
		t.Errorf("node = %+v", n)
	}

	if err := s.UpdateNode("nope", NodePatch{}); !errors.Is(err, board.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestToggles(t *testing.T) {
	s := New(&board.Board{Nodes: []board.Node{
		{ID: "a", Type: board.TypeGoal},
		{ID: "img", Type: board.TypeImage},
	}})
	if err := s.ToggleCompleted("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleLocked("a"); err != nil {
		t.Fatal(err)
	}
	n, _ := s.Board().FindNode("a")
	if !n.IsCompleted || !n.IsLocked {
		t.Errorf("node = %+v", n)
	}
	if err := s.ToggleCompleted("img"); err == nil {
		t.Error("image nodes should not take a stamp")
	}
	if err := s.MoveNodeBy("a", 10, 10); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Board().FindNode("a"); n.X != 0 {
		t.Error("locked node moved")
	}
}

func TestDeleteNodeCascadesAndClearsState(t *testing.T) {
	s := New(board.FromDataset(board.DefaultDataset{}))
	s.Select("2")
	s.Dispatch(interact.SecondaryDown{Hit: geometry.Hit{Kind: geometry.HitNode, ID: "2"}})
	s.Focus(interact.Focus{ID: "l1", Kind: interact.FocusLink})

	if err := s.DeleteNode("2"); err != nil {
		t.Fatal(err)
	}
	testutil.AssertNotReferenced(t, s.Board(), "2")
	testutil.AssertNoDanglingEdges(t, s.Board())
	testutil.AssertCounts(t, s.Board(), 4, 0)

	if st := s.State(); st.References("2") || st.References("l1") {
		t.Errorf("state still references deleted ids: %+v", st)
	}
}

func TestDeleteNodeCascadeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(2, 12).Draw(t, "size")
		cfg := testutil.DefaultConfig()
		cfg.Seed = rapid.Int64Range(1, 1<<30).Draw(t, "seed")
		g := testutil.New(cfg)
		s := New(g.Random(size, 0.3))

		victim := g.NodeID(rapid.IntRange(0, size-1).Draw(t, "victim"))
		if err := s.DeleteNode(victim); err != nil {
			t.Fatal(err)
		}
		for _, e := range s.Board().Edges {
			if e.FromID == victim || e.ToID == victim {
				t.Fatalf("edge %s survived deletion of %s", e.ID, victim)
			}
		}
		if len(s.Board().Nodes) != size-1 {
			t.Fatalf("nodes = %d", len(s.Board().Nodes))
		}
	})
}

func TestDeleteMissingNode(t *testing.T) {
	s := New(&board.Board{})
	if err := s.DeleteNode("x"); !errors.Is(err, board.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestCreateEdgeAllowsParallel(t *testing.T) {
	s := New(testutil.NewDefault().Chain(2))
	for i := 0; i < 3; i++ {
		if _, err := s.CreateEdge("n0", "n1", board.VariantAlternative); err != nil {
			t.Fatal(err)
		}
	}
	testutil.AssertCounts(t, s.Board(), 2, 4)

	tests := []struct {
		name     string
		from, to string
		variant  board.LinkVariant
		wantErr  error
	}{
		{"self link", "n0", "n0", board.VariantNeutral, ErrSelfLink},
		{"missing source", "zz", "n1", board.VariantNeutral, board.ErrNotFound},
		{"missing target", "n0", "zz", board.VariantNeutral, board.ErrNotFound},
		{"bad variant", "n0", "n1", "purple", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateEdge(tt.from, tt.to, tt.variant)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateAndDeleteEdge(t *testing.T) {
	s := New(board.FromDataset(board.DefaultDataset{}))
	if err := s.UpdateEdgeVariant("l2", board.VariantCritical); err != nil {
		t.Fatal(err)
	}
	e, _ := s.Board().FindEdge("l2")
	if e.Variant != board.VariantCritical || e.FromID != "3" {
		t.Errorf("edge = %+v", e)
	}

	s.Focus(interact.Focus{ID: "l2", Kind: interact.FocusLink})
	if err := s.DeleteEdge("l2"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Board().FindEdge("l2"); ok {
		t.Error("edge still present")
	}
	if s.State().Focused() {
		t.Error("deleting the focused link should exit focus")
	}
	if err := s.DeleteEdge("l2"); !errors.Is(err, board.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestConnectedHelpers(t *testing.T) {
	s := New(board.FromDataset(board.DefaultDataset{}))

	idea, e, err := s.CreateConnectedIdea("5")
	if err != nil {
		t.Fatal(err)
	}
	if idea.Type != board.TypeIdeaStrip || e.Variant != board.VariantNeutral || e.FromID != "5" || e.ToID != idea.ID {
		t.Errorf("idea=%+v edge=%+v", idea, e)
	}
	if idea.Y <= 600 {
		t.Errorf("idea should sit below its source, y=%v", idea.Y)
	}

	task, e2, err := s.CreateConnectedTask("5", board.VariantAlternative)
	if err != nil {
		t.Fatal(err)
	}
	if task.Type != board.TypeSticky || e2.Variant != board.VariantAlternative {
		t.Errorf("task=%+v edge=%+v", task, e2)
	}
	testutil.AssertNoOverlap(t, s.Board().Nodes[len(s.Board().Nodes)-2:])

	if _, _, err := s.CreateConnectedTask("missing", board.VariantCritical); !errors.Is(err, board.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestClearReplaceReset(t *testing.T) {
	s := New(board.FromDataset(board.DefaultDataset{}))
	s.Select("1")

	s.ClearBoard()
	testutil.AssertCounts(t, s.Board(), 0, 0)
	if s.State().SelectedID != "" {
		t.Error("clear should drop selection")
	}

	s.ReplaceNodes([]board.Node{{ID: "x", Type: board.TypeGoal}})
	testutil.AssertCounts(t, s.Board(), 1, 0)

	s.Reset(board.DefaultDataset{})
	testutil.AssertCounts(t, s.Board(), 5, 4)
	if s.Board().Title != "Case File: #8841" {
		t.Errorf("title = %q", s.Board().Title)
	}
}

func TestOnChangeReportsCollections(t *testing.T) {
	s := New(board.FromDataset(board.DefaultDataset{}))
	var got []Change
	s.OnChange(func(c Change) { got = append(got, c) })

	s.SetTitle("Operation Nightjar")
	s.SetTitle("Operation Nightjar")
	_ = s.UpdateEdgeVariant("l1", board.VariantNeutral)
	_ = s.DeleteNode("1")

	if len(got) != 3 {
		t.Fatalf("changes = %v", got)
	}
	if got[0] != ChangeTitle || got[1] != ChangeEdges || !got[2].Has(ChangeNodes|ChangeEdges) {
		t.Errorf("changes = %v", got)
	}
	if s.Revision() != 3 {
		t.Errorf("revision = %d", s.Revision())
	}
}

func TestDispatchDragAndLink(t *testing.T) {
	s := New(board.FromDataset(board.DefaultDataset{}))
	s.SetCamera(geometry.Camera{Scale: 2})

	// Node 3 spans canvas (250..506, 300..364); at scale 2 its screen box
	// starts at (500, 600).
	press := geometry.Vec{X: 520, Y: 620}
	hit := s.HitAt(press)
	if hit.Kind != geometry.HitNode || hit.ID != "3" {
		t.Fatalf("hit = %+v", hit)
	}
	s.Dispatch(interact.PointerDown{Hit: hit})
	s.Dispatch(interact.PointerMove{Delta: geometry.Vec{X: 40, Y: -20}})
	s.Dispatch(interact.PointerUp{})

	n, _ := s.Board().FindNode("3")
	if n.X != 270 || n.Y != 290 {
		t.Errorf("node 3 at (%v, %v), want (270, 290)", n.X, n.Y)
	}

	s.Dispatch(interact.StartLink{From: "3", Variant: board.VariantAlternative})
	acts := s.Dispatch(interact.PointerDown{Hit: geometry.Hit{Kind: geometry.HitNode, ID: "5"}})
	if len(acts) != 1 {
		t.Fatalf("actions = %v", acts)
	}
	testutil.AssertEdgeExists(t, s.Board(), "3", "5", board.VariantAlternative)
}

func TestDispatchDoubleClickEdgeFocusesMidpoint(t *testing.T) {
	s := New(board.FromDataset(board.DefaultDataset{}))
	s.SetViewport(1000, 800)

	s.Dispatch(interact.DoubleClick{Hit: geometry.Hit{Kind: geometry.HitEdge, ID: "l4"}})
	if !s.State().Focused() {
		t.Fatal("expected focus mode")
	}
	var mid geometry.Vec
	for _, r := range s.Routes() {
		if r.EdgeID == "l4" {
			mid = r.Midpoint()
		}
	}
	got := s.Camera().CanvasToScreen(mid)
	if d := geometry.Distance(got, geometry.Vec{X: 500, Y: 400}); d > 1e-6 {
		t.Errorf("midpoint lands at %+v", got)
	}

	s.ExitFocus()
	if s.State().Focused() {
		t.Error("exit focus failed")
	}
}
