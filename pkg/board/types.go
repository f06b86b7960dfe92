package board

import (
	"fmt"
	"strings"
)

// NodeType is the closed set of things that can be pinned to the board.
type NodeType string

const (
	TypeSticky    NodeType = "sticky"
	TypeText      NodeType = "text"
	TypeImage     NodeType = "image"
	TypeObjective NodeType = "objective"
	TypeIdeaStrip NodeType = "idea-strip"
	TypeGoal      NodeType = "goal"
)

// AllNodeTypes lists every node type in toolbar order.
func AllNodeTypes() []NodeType {
	return []NodeType{TypeObjective, TypeSticky, TypeIdeaStrip, TypeGoal, TypeText, TypeImage}
}

// Size is a width/height pair in canvas units.
type Size struct {
	W float64
	H float64
}

// nodeSpec is the single dispatch table for per-type behaviour. Adding a node
// type means adding one entry here.
type nodeSpec struct {
	size        Size
	content     string
	color       string
	stamp       string
	completable bool
	label       string
	tag         string
}

var nodeSpecs = map[NodeType]nodeSpec{
	TypeSticky:    {size: Size{160, 160}, content: "Note", color: "yellow", stamp: "SOLVED", completable: true, label: "Task", tag: "TASK"},
	TypeText:      {size: Size{180, 60}, content: "Card", stamp: "VERIFIED", completable: true, label: "Card"},
	TypeImage:     {size: Size{256, 200}, content: "https://picsum.photos/300/200", label: "Evidence"},
	TypeObjective: {size: Size{256, 140}, content: "New Objective", stamp: "COMPLETED", completable: true, label: "Objective", tag: "OBJECTIVE"},
	TypeIdeaStrip: {size: Size{256, 64}, content: "New Idea Strip", stamp: "DONE", completable: true, label: "Idea", tag: "IDEA"},
	TypeGoal:      {size: Size{160, 160}, content: "New Goal", stamp: "WIN", completable: true, label: "Goal", tag: "GOAL"},
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	_, ok := nodeSpecs[t]
	return ok
}

// Dimensions returns the fixed footprint of a node type. Placement and edge
// routing both read this table so their centers agree.
func (t NodeType) Dimensions() Size {
	if s, ok := nodeSpecs[t]; ok {
		return s.size
	}
	return nodeSpecs[TypeSticky].size
}

// DefaultContent is the text a freshly created node starts with.
func (t NodeType) DefaultContent() string {
	return nodeSpecs[t].content
}

// DefaultColor is the rendering hint for new nodes ("" when the type has none).
func (t NodeType) DefaultColor() string {
	return nodeSpecs[t].color
}

// StampLabel is the overlay shown on completed nodes.
func (t NodeType) StampLabel() string {
	return nodeSpecs[t].stamp
}

// Completable reports whether the completion stamp applies to this type.
func (t NodeType) Completable() bool {
	return nodeSpecs[t].completable
}

// Label is the human-facing name used in menus and prompts.
func (t NodeType) Label() string {
	if s, ok := nodeSpecs[t]; ok {
		return s.label
	}
	return string(t)
}

// Tag is the bracketed document marker for this type, without brackets.
// Text cards and images have none and are not carried through documents.
func (t NodeType) Tag() string {
	return nodeSpecs[t].tag
}

// FinishedTag marks a completed item in a document.
const FinishedTag = "FINISHED"

// TypeForTag maps a document marker (with or without brackets, any case) back
// to its node type.
func TypeForTag(tag string) (NodeType, bool) {
	tag = strings.ToUpper(strings.Trim(strings.TrimSpace(tag), "[]"))
	if tag == "" {
		return "", false
	}
	for t, s := range nodeSpecs {
		if s.tag == tag {
			return t, true
		}
	}
	return "", false
}

// ParseNodeType converts a string to a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown node type %q", s)
	}
	return t, nil
}

// LinkVariant tags an edge with a color and meaning. It has no behavioural effect.
type LinkVariant string

const (
	VariantCritical    LinkVariant = "critical"
	VariantPositive    LinkVariant = "positive"
	VariantAlternative LinkVariant = "alternative"
	VariantNeutral     LinkVariant = "neutral"
)

// AllVariants lists the link variants in legend order.
func AllVariants() []LinkVariant {
	return []LinkVariant{VariantCritical, VariantPositive, VariantAlternative, VariantNeutral}
}

// Valid reports whether v is a known variant.
func (v LinkVariant) Valid() bool {
	switch v {
	case VariantCritical, VariantPositive, VariantAlternative, VariantNeutral:
		return true
	default:
		return false
	}
}

// Color returns the hex stroke color for the variant.
func (v LinkVariant) Color() string {
	switch v {
	case VariantCritical:
		return "#ef4444"
	case VariantPositive:
		return "#22c55e"
	case VariantAlternative:
		return "#3b82f6"
	default:
		return "#9ca3af"
	}
}

// ParseVariant converts a string to a LinkVariant.
func ParseVariant(s string) (LinkVariant, error) {
	v := LinkVariant(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown link variant %q", s)
	}
	return v, nil
}
