package board

// Dataset supplies the board a fresh install starts with, and the fallback used
// when persisted state is missing or unreadable.
type Dataset interface {
	Title() string
	Nodes() []Node
	Edges() []Edge
	Document() string
}

// DefaultDataset is the built-in seed board.
type DefaultDataset struct{}

func (DefaultDataset) Title() string { return "Case File: #8841" }

func (DefaultDataset) Nodes() []Node {
	return []Node{
		{ID: "1", Type: TypeObjective, Content: "Mission: Alpha Launch", X: 550, Y: 50},
		{ID: "2", Type: TypeSticky, Content: "Core Task: Develop MVP", X: 600, Y: 300, Color: "yellow"},
		{ID: "3", Type: TypeIdeaStrip, Content: "User Auth Flow", X: 250, Y: 300},
		{ID: "4", Type: TypeIdeaStrip, Content: "Payment Gateway", X: 950, Y: 300},
		{ID: "5", Type: TypeGoal, Content: "Public Release", X: 630, Y: 600},
	}
}

func (DefaultDataset) Edges() []Edge {
	return []Edge{
		{ID: "l1", FromID: "1", ToID: "2", Variant: VariantCritical},
		{ID: "l2", FromID: "3", ToID: "2", Variant: VariantNeutral},
		{ID: "l3", FromID: "4", ToID: "2", Variant: VariantNeutral},
		{ID: "l4", FromID: "2", ToID: "5", Variant: VariantPositive},
	}
}

func (DefaultDataset) Document() string { return "" }

// FromDataset builds a board from a dataset provider.
func FromDataset(d Dataset) *Board {
	return &Board{Title: d.Title(), Nodes: d.Nodes(), Edges: d.Edges()}
}

// EmptyDataset starts from a blank board.
type EmptyDataset struct{}

func (EmptyDataset) Title() string    { return "" }
func (EmptyDataset) Nodes() []Node    { return nil }
func (EmptyDataset) Edges() []Edge    { return nil }
func (EmptyDataset) Document() string { return "" }
