package genai

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/casefile/pkg/board"
)

// Offline is the deterministic local provider.
//
// GenerateText expects a board payload (see BoardPayload) and writes it out as
// a tagged document. GenerateStructured expects document text as payload and
// returns every tagged line as an item. Feeding one into the other
// reproduces the tagged node set.
type Offline struct{}

// NewOffline returns the offline provider.
func NewOffline() *Offline { return &Offline{} }

// Provider implements Generator.
func (*Offline) Provider() Provider { return ProviderOffline }

// BoardPayload is the JSON shape the summarize prompt carries.
type BoardPayload struct {
	Title    string        `json:"title"`
	Nodes    []PayloadNode `json:"nodes"`
	Links    []PayloadLink `json:"links"`
	Clusters [][]string    `json:"clusters,omitempty"`
}

// PayloadNode is one node in a BoardPayload.
type PayloadNode struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"isCompleted,omitempty"`
}

// PayloadLink is one link in a BoardPayload.
type PayloadLink struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Variant string `json:"variant"`
}

// ExtractedItem is one record of the structured extraction result.
type ExtractedItem struct {
	Type        string `json:"type"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"isCompleted"`
}

// Extraction is the structured extraction result.
type Extraction struct {
	Items []ExtractedItem `json:"items"`
}

var sections = []struct {
	title string
	typ   board.NodeType
}{
	{"Goals", board.TypeGoal},
	{"Objectives", board.TypeObjective},
	{"Action Items", board.TypeSticky},
	{"Concepts", board.TypeIdeaStrip},
}

// GenerateText implements Generator.
func (*Offline) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, ok := ExtractPayload(prompt)
	if !ok {
		return "", fmt.Errorf("offline: prompt has no payload")
	}
	var p BoardPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return "", fmt.Errorf("offline: decode board payload: %w", err)
	}

	var b strings.Builder
	title := p.Title
	if title == "" {
		title = "Case File"
	}
	fmt.Fprintf(&b, "# %s\n\n## Summary\n\n", title)
	done := 0
	for _, n := range p.Nodes {
		if n.IsCompleted {
			done++
		}
	}
	fmt.Fprintf(&b, "%d items, %d finished, %d links, %d clusters.\n", len(p.Nodes), done, len(p.Links), len(p.Clusters))

	for _, sec := range sections {
		var lines []string
		for _, n := range p.Nodes {
			if board.NodeType(n.Type) != sec.typ {
				continue
			}
			line := "[" + sec.typ.Tag() + "] "
			if n.IsCompleted {
				line += "[" + board.FinishedTag + "] "
			}
			lines = append(lines, line+oneLine(n.Content))
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", sec.title, strings.Join(lines, "\n"))
	}
	return b.String(), nil
}

// GenerateStructured implements Generator. Only the extraction schema is
// supported.
func (*Offline) GenerateStructured(ctx context.Context, prompt string, _ *Schema) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, ok := ExtractPayload(prompt)
	if !ok {
		return nil, fmt.Errorf("offline: prompt has no payload")
	}
	out := Extraction{Items: []ExtractedItem{}}
	for _, line := range strings.Split(body, "\n") {
		if item, ok := scrapeLine(line); ok {
			out.Items = append(out.Items, item)
		}
	}
	return json.Marshal(out)
}

// scrapeLine pulls bracketed tags off a line. The first type tag wins;
// FINISHED anywhere marks completion.
func scrapeLine(line string) (ExtractedItem, bool) {
	var (
		item  ExtractedItem
		rest  strings.Builder
		found bool
	)
	s := line
	for {
		open := strings.IndexByte(s, '[')
		if open < 0 {
			rest.WriteString(s)
			break
		}
		closeIdx := strings.IndexByte(s[open:], ']')
		if closeIdx < 0 {
			rest.WriteString(s)
			break
		}
		tag := s[open+1 : open+closeIdx]
		rest.WriteString(s[:open])
		switch {
		case strings.EqualFold(tag, board.FinishedTag):
			item.IsCompleted = true
		default:
			if t, ok := board.TypeForTag(tag); ok {
				if !found {
					item.Type = string(t)
					found = true
				}
			} else {
				rest.WriteString(s[open : open+closeIdx+1])
			}
		}
		s = s[open+closeIdx+1:]
	}
	item.Content = strings.Join(strings.Fields(strings.TrimLeft(rest.String(), "-*# ")), " ")
	if !found || item.Content == "" {
		return ExtractedItem{}, false
	}
	return item, true
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
