package docbridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/debug"
	"github.com/vanderheijden86/casefile/pkg/genai"
	"github.com/vanderheijden86/casefile/pkg/metrics"
)

const extractInstructions = `Read the planning document below and list every tagged item.
Tags map to item types: [TASK] is "sticky", [OBJECTIVE] is "objective",
[IDEA] is "idea-strip", [GOAL] is "goal". An item tagged [FINISHED] is
completed. Use the text after the tags as the item content. Ignore untagged
lines. Do not invent items and do not infer relationships.`

// Item is one extracted record.
type Item struct {
	Type        board.NodeType
	Content     string
	IsCompleted bool
}

// ExtractionSchema constrains the structured response to a typed item list.
func ExtractionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"items": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type": {
							Type: genai.TypeString,
							Enum: []string{
								string(board.TypeSticky), string(board.TypeObjective),
								string(board.TypeIdeaStrip), string(board.TypeGoal),
							},
						},
						"content":     {Type: genai.TypeString},
						"isCompleted": {Type: genai.TypeBoolean},
					},
					Required: []string{"type", "content", "isCompleted"},
				},
			},
		},
		Required: []string{"items"},
	}
}

// Extract asks the collaborator for the typed items in doc. Records with
// types outside the tag vocabulary are dropped.
func (b *Bridge) Extract(ctx context.Context, doc string) ([]Item, error) {
	return guard(ctx, b, func(ctx context.Context) ([]Item, error) {
		return b.extract(ctx, doc)
	})
}

func (b *Bridge) extract(ctx context.Context, doc string) ([]Item, error) {
	defer metrics.TimerWithCallback(metrics.BridgeExtract, func(d time.Duration) {
		debug.LogTiming("docbridge: extract", d)
	})()

	raw, err := b.gen.GenerateStructured(ctx, genai.WrapPayload(extractInstructions, doc), ExtractionSchema())
	if err != nil {
		return nil, fmt.Errorf("extract document: %w", err)
	}
	return ParseExtraction(raw)
}

// ParseExtraction decodes a structured response.
func ParseExtraction(raw []byte) ([]Item, error) {
	var out genai.Extraction
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	items := make([]Item, 0, len(out.Items))
	for _, r := range out.Items {
		t := board.NodeType(strings.TrimSpace(r.Type))
		if t.Tag() == "" {
			debug.Log("docbridge: skipping item of type %q", r.Type)
			continue
		}
		items = append(items, Item{Type: t, Content: strings.TrimSpace(r.Content), IsCompleted: r.IsCompleted})
	}
	return items, nil
}

// Import rows and spacing.
const (
	LayoutStartX = 100.0
	LayoutStepX  = 300.0
)

// LayoutRows is the fixed row Y per type, top to bottom.
var LayoutRows = map[board.NodeType]float64{
	board.TypeGoal:      100,
	board.TypeObjective: 350,
	board.TypeSticky:    650,
	board.TypeIdeaStrip: 900,
}

// Layout turns items into fresh nodes. Each type gets its own row; within a
// row items keep document order left to right.
func Layout(items []Item) []board.Node {
	col := make(map[board.NodeType]int, len(LayoutRows))
	nodes := make([]board.Node, 0, len(items))
	for _, it := range items {
		y, ok := LayoutRows[it.Type]
		if !ok {
			continue
		}
		i := col[it.Type]
		col[it.Type]++
		nodes = append(nodes, board.Node{
			ID:          board.NewID(),
			Type:        it.Type,
			Content:     it.Content,
			X:           LayoutStartX + float64(i)*LayoutStepX,
			Y:           y,
			Color:       it.Type.DefaultColor(),
			IsCompleted: it.IsCompleted && it.Type.Completable(),
		})
	}
	return nodes
}

// Import extracts items from doc and lays them out. The caller replaces the
// whole node set with the result and drops every link; nothing is merged.
func (b *Bridge) Import(ctx context.Context, doc string) ([]board.Node, error) {
	return guard(ctx, b, func(ctx context.Context) ([]board.Node, error) {
		items, err := b.extract(ctx, doc)
		if err != nil {
			return nil, err
		}
		return Layout(items), nil
	})
}
