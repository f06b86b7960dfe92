package store

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/debug"
	"github.com/vanderheijden86/casefile/pkg/metrics"
	"github.com/vanderheijden86/casefile/pkg/planner"
)

// Store loads and saves a board through a KV.
type Store struct {
	kv       KV
	fallback board.Dataset
}

// New wraps kv. fallback supplies values for absent or malformed keys; nil
// means the built-in default dataset.
func New(kv KV, fallback board.Dataset) *Store {
	if fallback == nil {
		fallback = board.DefaultDataset{}
	}
	return &Store{kv: kv, fallback: fallback}
}

// Close closes the underlying KV.
func (s *Store) Close() error { return s.kv.Close() }

// LoadTitle returns the persisted title or the fallback's.
func (s *Store) LoadTitle(ctx context.Context) string {
	v, ok, err := s.kv.Get(ctx, KeyTitle)
	if err != nil || !ok {
		debug.LogIf(err != nil, "store: title: %v", err)
		return s.fallback.Title()
	}
	var title string
	if err := json.Unmarshal([]byte(v), &title); err != nil {
		debug.Log("store: malformed title, using default: %v", err)
		return s.fallback.Title()
	}
	return title
}

// LoadNodes returns the persisted node list or the fallback's. A list with
// unknown node types or duplicate ids counts as malformed.
func (s *Store) LoadNodes(ctx context.Context) []board.Node {
	var nodes []board.Node
	if !s.loadJSON(ctx, KeyItems, &nodes) {
		return s.fallback.Nodes()
	}
	if err := (&board.Board{Nodes: nodes}).Validate(); err != nil {
		debug.Log("store: items fail validation, using default: %v", err)
		return s.fallback.Nodes()
	}
	return nodes
}

// LoadEdges returns the persisted edge list or the fallback's.
func (s *Store) LoadEdges(ctx context.Context) []board.Edge {
	var edges []board.Edge
	if !s.loadJSON(ctx, KeyLinks, &edges) {
		return s.fallback.Edges()
	}
	if err := (&board.Board{Edges: edges}).Validate(); err != nil {
		debug.Log("store: links fail validation, using default: %v", err)
		return s.fallback.Edges()
	}
	return edges
}

// LoadDocument returns the persisted document or the fallback's.
func (s *Store) LoadDocument(ctx context.Context) string {
	var doc string
	if !s.loadJSON(ctx, KeyDocument, &doc) {
		return s.fallback.Document()
	}
	return doc
}

// Load assembles a full board. Keys fall back independently, so a corrupt
// edge list does not cost the user their nodes.
func (s *Store) Load(ctx context.Context) *board.Board {
	defer metrics.Timer(metrics.StoreLoad)()
	return &board.Board{
		Title: s.LoadTitle(ctx),
		Nodes: s.LoadNodes(ctx),
		Edges: s.LoadEdges(ctx),
	}
}

func (s *Store) loadJSON(ctx context.Context, key string, dst any) bool {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		debug.Log("store: read %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		debug.Log("store: malformed %s, using default: %v", key, err)
		return false
	}
	return true
}

// SaveTitle persists the title.
func (s *Store) SaveTitle(ctx context.Context, title string) error {
	return s.saveJSON(ctx, KeyTitle, title)
}

// SaveNodes persists the node list.
func (s *Store) SaveNodes(ctx context.Context, nodes []board.Node) error {
	if nodes == nil {
		nodes = []board.Node{}
	}
	return s.saveJSON(ctx, KeyItems, nodes)
}

// SaveEdges persists the edge list.
func (s *Store) SaveEdges(ctx context.Context, edges []board.Edge) error {
	if edges == nil {
		edges = []board.Edge{}
	}
	return s.saveJSON(ctx, KeyLinks, edges)
}

// SaveDocument persists the document text.
func (s *Store) SaveDocument(ctx context.Context, doc string) error {
	return s.saveJSON(ctx, KeyDocument, doc)
}

// SaveChange writes only the collections flagged in c.
func (s *Store) SaveChange(ctx context.Context, b *board.Board, c planner.Change) error {
	defer metrics.Timer(metrics.StoreSave)()
	if c.Has(planner.ChangeTitle) {
		if err := s.SaveTitle(ctx, b.Title); err != nil {
			return err
		}
	}
	if c.Has(planner.ChangeNodes) {
		if err := s.SaveNodes(ctx, b.Nodes); err != nil {
			return err
		}
	}
	if c.Has(planner.ChangeEdges) {
		if err := s.SaveEdges(ctx, b.Edges); err != nil {
			return err
		}
	}
	return nil
}

// Reset deletes every persisted key so the next load starts from the fallback.
func (s *Store) Reset(ctx context.Context) error {
	for _, k := range []string{KeyTitle, KeyItems, KeyLinks, KeyDocument} {
		if err := s.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}

func (s *Store) saveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(data))
}
