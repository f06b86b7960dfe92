// Package export renders static board snapshots for printing and sharing.
package export

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/geometry"
	"github.com/vanderheijden86/casefile/pkg/metrics"
)

// Snapshot formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Themes for the board backdrop.
const (
	ThemeStone = "stone"
	ThemeBlue  = "blue"
)

// SnapshotOptions controls snapshot export.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string // Header text; board title when empty
	Theme  string // "stone" (default) or "blue"
}

// ResolveFormat fills Format from the path extension, appending ".svg" to
// extensionless paths.
func (o SnapshotOptions) ResolveFormat() (SnapshotOptions, error) {
	format := strings.ToLower(strings.TrimPrefix(o.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(o.Path)) {
		case ".svg":
			format = FormatSVG
		case ".png":
			format = FormatPNG
		case "":
			format = FormatSVG
			if o.Path != "" {
				o.Path += ".svg"
			}
		default:
			return o, fmt.Errorf("cannot infer format from %q (want .svg or .png)", o.Path)
		}
	}
	if format != FormatSVG && format != FormatPNG {
		return o, fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	o.Format = format
	return o, nil
}

// SaveSnapshot writes bd to opts.Path as SVG or PNG.
func SaveSnapshot(bd *board.Board, opts SnapshotOptions) error {
	if len(bd.Nodes) == 0 {
		return fmt.Errorf("board is empty")
	}
	opts, err := opts.ResolveFormat()
	if err != nil {
		return err
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if err := Render(f, bd, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveSnapshots writes one file per format next to base (base.svg, base.png),
// rendering them concurrently.
func SaveSnapshots(ctx context.Context, bd *board.Board, base string, theme string, formats ...string) ([]string, error) {
	if len(formats) == 0 {
		formats = []string{FormatSVG, FormatPNG}
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	paths := make([]string, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		paths[i] = base + "." + format
		opts := SnapshotOptions{Path: paths[i], Format: format, Theme: theme}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return SaveSnapshot(bd, opts)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Render draws bd to w in opts.Format.
func Render(w io.Writer, bd *board.Board, opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()

	l := buildLayout(bd, opts)
	switch opts.Format {
	case FormatSVG:
		return renderSVG(w, l)
	case FormatPNG:
		return renderPNG(w, l)
	default:
		return fmt.Errorf("unhandled format %q", opts.Format)
	}
}

// --- layout ----------------------------------------------------------------

const (
	padding      = 40.0
	headerHeight = 90.0
	minWidth     = 640
	minHeight    = 480
)

type layoutNode struct {
	board.Node
	Rect geometry.Rect
}

type layoutResult struct {
	Nodes  []layoutNode
	Routes []geometry.Route
	Width  int
	Height int
	Title  string
	Counts string
	Theme  string
}

// buildLayout shifts canvas coordinates so the board's bounding box sits
// below the header with a margin.
func buildLayout(bd *board.Board, opts SnapshotOptions) layoutResult {
	bounds := geometry.Bounds(bd.Nodes)
	dx := padding - bounds.X
	dy := padding + headerHeight - bounds.Y
	shift := func(v geometry.Vec) geometry.Vec { return geometry.Vec{X: v.X + dx, Y: v.Y + dy} }

	nodes := make([]layoutNode, 0, len(bd.Nodes))
	for _, n := range bd.Nodes {
		r := geometry.RectOf(n)
		r.X += dx
		r.Y += dy
		nodes = append(nodes, layoutNode{Node: n, Rect: r})
	}
	routes := geometry.RouteEdges(bd)
	for i := range routes {
		routes[i].From = shift(routes[i].From)
		routes[i].Control = shift(routes[i].Control)
		routes[i].To = shift(routes[i].To)
	}

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = bd.Title
	}
	if strings.TrimSpace(title) == "" {
		title = "Case File"
	}
	done := 0
	for _, n := range bd.Nodes {
		if n.IsCompleted {
			done++
		}
	}

	return layoutResult{
		Nodes:  nodes,
		Routes: routes,
		Width:  max(minWidth, int(math.Ceil(bounds.W+2*padding))),
		Height: max(minHeight, int(math.Ceil(bounds.H+2*padding+headerHeight))),
		Title:  title,
		Counts: fmt.Sprintf("items: %d  finished: %d  links: %d", len(bd.Nodes), done, len(routes)),
		Theme:  opts.Theme,
	}
}

// --- colors ----------------------------------------------------------------

var (
	colorStroke   = color.RGBA{0x29, 0x25, 0x24, 0xff}
	colorText     = color.RGBA{0x1c, 0x19, 0x17, 0xff}
	colorSubtle   = color.RGBA{0x57, 0x53, 0x4e, 0xff}
	colorStamp    = color.RGBA{0xdc, 0x26, 0x26, 0xff}
	colorHeaderBG = color.RGBA{0xf5, 0xf5, 0xf4, 0xff}
	colorStoneBG  = color.RGBA{0xe7, 0xe5, 0xe4, 0xff}
	colorBlueBG   = color.RGBA{0x1e, 0x3a, 0x8a, 0xff}
)

var hintColors = map[string]color.RGBA{
	"yellow": {0xfe, 0xf0, 0x8a, 0xff},
	"pink":   {0xfb, 0xcf, 0xe8, 0xff},
	"blue":   {0xbf, 0xdb, 0xfe, 0xff},
	"green":  {0xbb, 0xf7, 0xd0, 0xff},
	"orange": {0xfe, 0xd7, 0xaa, 0xff},
}

func backdrop(theme string) color.RGBA {
	if theme == ThemeBlue {
		return colorBlueBG
	}
	return colorStoneBG
}

func nodeFill(n board.Node) color.RGBA {
	if c, ok := hintColors[n.Color]; ok {
		return c
	}
	switch n.Type {
	case board.TypeGoal:
		return color.RGBA{0xfd, 0xe6, 0x8a, 0xff}
	case board.TypeIdeaStrip:
		return color.RGBA{0xfa, 0xfa, 0xf9, 0xff}
	case board.TypeImage:
		return color.RGBA{0xd6, 0xd3, 0xd1, 0xff}
	default:
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
}

// variantColor parses the variant's hex stroke color.
func variantColor(v board.LinkVariant) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(v.Color(), "#%02x%02x%02x", &r, &g, &b); err != nil {
		return colorSubtle
	}
	return color.RGBA{r, g, b, 0xff}
}

// nodeLines is the text shown on a node: type label, then content.
func nodeLines(n board.Node) (string, string) {
	return strings.ToUpper(n.Type.Label()), truncate(strings.Join(strings.Fields(n.Content), " "), int(n.Type.Dimensions().W/7))
}

// --- PNG -------------------------------------------------------------------

func renderPNG(w io.Writer, l layoutResult) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(backdrop(l.Theme))
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(l.Width)-32, headerHeight-30, 10)
	dc.Fill()
	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, 32, 36, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(l.Counts, 32, 56, 0, 0.5)

	dc.SetLineWidth(3)
	for _, r := range l.Routes {
		c := variantColor(r.Variant)
		dc.SetColor(c)
		dc.MoveTo(r.From.X, r.From.Y)
		dc.QuadraticTo(r.Control.X, r.Control.Y, r.To.X, r.To.Y)
		dc.Stroke()
	}

	for _, n := range l.Nodes {
		drawNode(dc, n)
	}
	return dc.EncodePNG(w)
}

func drawNode(dc *gg.Context, n layoutNode) {
	r := n.Rect
	dc.SetColor(nodeFill(n.Node))
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 6)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1.2)
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 6)
	dc.Stroke()

	label, content := nodeLines(n.Node)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(label, r.X+10, r.Y+16, 0, 0.5)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(content, r.X+10, r.Y+34, 0, 0.5)

	if n.IsCompleted && n.Type.Completable() {
		dc.SetColor(colorStamp)
		dc.DrawStringAnchored(n.Type.StampLabel(), r.X+r.W-10, r.Y+r.H-14, 1, 0.5)
	}
	if n.IsLocked {
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored("LOCKED", r.X+r.W-10, r.Y+16, 1, 0.5)
	}
}

// --- SVG -------------------------------------------------------------------

func renderSVG(w io.Writer, l layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, fmt.Sprintf("fill:%s", css(backdrop(l.Theme))))
	canvas.Roundrect(16, 16, l.Width-32, int(headerHeight-30), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 40, l.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 60, l.Counts, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	for _, r := range l.Routes {
		canvas.Qbez(int(r.From.X), int(r.From.Y), int(r.Control.X), int(r.Control.Y), int(r.To.X), int(r.To.Y),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:3", r.Variant.Color()))
	}

	for _, n := range l.Nodes {
		x, y := int(n.Rect.X), int(n.Rect.Y)
		canvas.Roundrect(x, y, int(n.Rect.W), int(n.Rect.H), 6, 6,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(nodeFill(n.Node)), css(colorStroke)))
		label, content := nodeLines(n.Node)
		canvas.Text(x+10, y+20, label, fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;font-weight:bold", css(colorSubtle)))
		canvas.Text(x+10, y+38, content, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorText)))
		if n.IsCompleted && n.Type.Completable() {
			canvas.Text(x+int(n.Rect.W)-10, y+int(n.Rect.H)-12, n.Type.StampLabel(),
				fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold;text-anchor:end", css(colorStamp)))
		}
		if n.IsLocked {
			canvas.Text(x+int(n.Rect.W)-10, y+20, "LOCKED",
				fmt.Sprintf("fill:%s;font-size:10px;font-family:monospace;text-anchor:end", css(colorSubtle)))
		}
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
