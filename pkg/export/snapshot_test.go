package export

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/testutil"
)

func seedBoard() *board.Board {
	bd := board.FromDataset(board.DefaultDataset{})
	bd.Nodes[4].IsCompleted = true
	return bd
}

func TestSaveSnapshot_SVGAndPNG(t *testing.T) {
	tmp := t.TempDir()
	for _, name := range []string{"board.svg", "board.png"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(tmp, "nested", name)
			if err := SaveSnapshot(seedBoard(), SnapshotOptions{Path: out}); err != nil {
				t.Fatalf("SaveSnapshot error: %v", err)
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("output not created: %v", err)
			}
			if info.Size() == 0 {
				t.Fatal("output file is empty")
			}
		})
	}
}

func TestSaveSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name string
		bd   *board.Board
		opts SnapshotOptions
	}{
		{"empty board", &board.Board{}, SnapshotOptions{Path: "x.svg"}},
		{"bad format", seedBoard(), SnapshotOptions{Path: "x.txt", Format: "txt"}},
		{"bad extension", seedBoard(), SnapshotOptions{Path: "x.pdf"}},
		{"no path", seedBoard(), SnapshotOptions{Format: "svg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := SaveSnapshot(tt.bd, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		in       SnapshotOptions
		wantPath string
		wantFmt  string
	}{
		{SnapshotOptions{Path: "a.SVG"}, "a.SVG", FormatSVG},
		{SnapshotOptions{Path: "a.png"}, "a.png", FormatPNG},
		{SnapshotOptions{Path: "a"}, "a.svg", FormatSVG},
		{SnapshotOptions{Path: "a.out", Format: ".PNG"}, "a.out", FormatPNG},
	}
	for _, tt := range tests {
		got, err := tt.in.ResolveFormat()
		if err != nil {
			t.Fatalf("%+v: %v", tt.in, err)
		}
		if got.Path != tt.wantPath || got.Format != tt.wantFmt {
			t.Errorf("%+v -> path %q format %q", tt.in, got.Path, got.Format)
		}
	}
}

func TestRenderSVGContent(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, seedBoard(), SnapshotOptions{Format: FormatSVG, Theme: ThemeBlue}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Case File: #8841",
		"Mission: Alpha Launch",
		"WIN",
		board.VariantCritical.Color(),
		board.VariantPositive.Color(),
		css(colorBlueBG),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if got := strings.Count(out, "<path"); got != 4 {
		t.Errorf("svg has %d curves, want 4", got)
	}
}

func TestRenderSkipsDanglingLinks(t *testing.T) {
	bd := seedBoard()
	bd.Edges = append(bd.Edges, board.Edge{ID: "x", FromID: "1", ToID: "gone", Variant: board.VariantNeutral})
	var buf bytes.Buffer
	if err := Render(&buf, bd, SnapshotOptions{Format: FormatSVG}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "<path"); got != 4 {
		t.Errorf("svg has %d curves, want 4", got)
	}
}

func TestRenderPNGDimensions(t *testing.T) {
	bd := testutil.NewDefault().Star(6)
	var buf bytes.Buffer
	if err := Render(&buf, bd, SnapshotOptions{Format: FormatPNG}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	l := buildLayout(bd, SnapshotOptions{})
	if b := img.Bounds(); b.Dx() != l.Width || b.Dy() != l.Height {
		t.Errorf("png %dx%d, layout %dx%d", b.Dx(), b.Dy(), l.Width, l.Height)
	}
}

func TestLayoutShiftsIntoView(t *testing.T) {
	bd := &board.Board{Nodes: []board.Node{
		{ID: "a", Type: board.TypeSticky, X: -500, Y: -300},
		{ID: "b", Type: board.TypeGoal, X: 2000, Y: 900},
	}}
	l := buildLayout(bd, SnapshotOptions{})
	for _, n := range l.Nodes {
		if n.Rect.X < padding || n.Rect.Y < padding+headerHeight {
			t.Errorf("node %s at (%v, %v) outside margin", n.ID, n.Rect.X, n.Rect.Y)
		}
		if n.Rect.X+n.Rect.W > float64(l.Width) || n.Rect.Y+n.Rect.H > float64(l.Height) {
			t.Errorf("node %s clipped by %dx%d canvas", n.ID, l.Width, l.Height)
		}
	}
	if l.Title != "Case File" {
		t.Errorf("untitled board title = %q", l.Title)
	}
}

func TestSaveSnapshots(t *testing.T) {
	base := filepath.Join(t.TempDir(), "board.svg")
	paths, err := SaveSnapshots(context.Background(), seedBoard(), base, ThemeStone)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
	if !strings.HasSuffix(paths[1], "board.png") {
		t.Errorf("png path = %s", paths[1])
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer sentence", 8, "a lon..."},
		{"abc", 2, "ab"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
