package docbridge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/debug"
	"github.com/vanderheijden86/casefile/pkg/genai"
	"github.com/vanderheijden86/casefile/pkg/metrics"
)

const summarizeInstructions = `You are the analyst for a planning board. Write a structured planning
document from the board below. Use these sections, in order, as markdown
headings: Summary, Goals, Objectives, Action Items, Concepts.

Write every goal, objective, task and idea on its own line, prefixed with its
tag: [GOAL], [OBJECTIVE], [TASK] or [IDEA]. Add [FINISHED] after the tag for
completed items. Links describe how items depend on each other; clusters are
groups of items connected by links and usually belong to one workstream.
Keep the tone concise and professional.`

// Summarize asks the collaborator to describe the board as a document. The
// result is returned verbatim.
func (b *Bridge) Summarize(ctx context.Context, bd *board.Board) (string, error) {
	return guard(ctx, b, func(ctx context.Context) (string, error) {
		defer metrics.TimerWithCallback(metrics.BridgeSummarize, func(d time.Duration) {
			debug.LogTiming("docbridge: summarize", d)
		})()

		prompt, err := SummarizePrompt(bd)
		if err != nil {
			return "", err
		}
		doc, err := b.gen.GenerateText(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("summarize board: %w", err)
		}
		if strings.TrimSpace(doc) == "" {
			return "", fmt.Errorf("summarize board: %w", genai.ErrEmptyResponse)
		}
		return doc, nil
	})
}

// SummarizePrompt builds the summarize prompt for bd.
func SummarizePrompt(bd *board.Board) (string, error) {
	p := genai.BoardPayload{Title: bd.Title, Clusters: Clusters(bd)}
	for _, n := range bd.Nodes {
		p.Nodes = append(p.Nodes, genai.PayloadNode{
			ID:          n.ID,
			Type:        string(n.Type),
			Content:     n.Content,
			IsCompleted: n.IsCompleted,
		})
	}
	for _, e := range bd.LiveEdges() {
		p.Links = append(p.Links, genai.PayloadLink{From: e.FromID, To: e.ToID, Variant: string(e.Variant)})
	}
	body, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode board: %w", err)
	}
	return genai.WrapPayload(summarizeInstructions, string(body)), nil
}

// Clusters groups linked nodes into connected components, ignoring link
// direction. Singletons are left out. Each cluster lists ids in board order
// and clusters are ordered by their first member.
func Clusters(bd *board.Board) [][]string {
	g := simple.NewUndirectedGraph()
	idToNode := make(map[string]int64, len(bd.Nodes))
	order := make(map[string]int, len(bd.Nodes))
	nodeToID := make(map[int64]string, len(bd.Nodes))
	for i, n := range bd.Nodes {
		gn := g.NewNode()
		g.AddNode(gn)
		idToNode[n.ID] = gn.ID()
		nodeToID[gn.ID()] = n.ID
		order[n.ID] = i
	}
	for _, e := range bd.LiveEdges() {
		u, v := idToNode[e.FromID], idToNode[e.ToID]
		if u == v {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(u), g.Node(v)))
	}

	var out [][]string
	for _, comp := range topo.ConnectedComponents(g) {
		if len(comp) < 2 {
			continue
		}
		ids := make([]string, len(comp))
		for i, n := range comp {
			ids[i] = nodeToID[n.ID()]
		}
		sort.Slice(ids, func(i, j int) bool { return order[ids[i]] < order[ids[j]] })
		out = append(out, ids)
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i][0]] < order[out[j][0]] })
	return out
}
