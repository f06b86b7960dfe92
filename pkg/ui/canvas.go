package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/geometry"
	"github.com/vanderheijden86/casefile/pkg/interact"
	"github.com/vanderheijden86/casefile/pkg/metrics"
	"github.com/vanderheijden86/casefile/pkg/planner"
)

// One terminal cell covers CellW x CellH screen units, so a 160-unit sticky
// is 20 columns by 10 rows at identity zoom.
const (
	CellW = 8.0
	CellH = 16.0
)

// dotSpacing is the canvas distance between background grid dots.
const dotSpacing = 40.0

type cell struct {
	r     rune
	style int
	cont  bool // right half of a wide rune
}

// grid is a styled character buffer rendered once per frame.
type grid struct {
	w, h   int
	cells  []cell
	styles []lipgloss.Style
}

func newGrid(w, h int, base lipgloss.Style) *grid {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	g := &grid{w: w, h: h, cells: make([]cell, w*h), styles: []lipgloss.Style{base}}
	for i := range g.cells {
		g.cells[i] = cell{r: ' '}
	}
	return g
}

func (g *grid) style(s lipgloss.Style) int {
	g.styles = append(g.styles, s)
	return len(g.styles) - 1
}

func (g *grid) in(x, y int) bool { return x >= 0 && y >= 0 && x < g.w && y < g.h }

func (g *grid) set(x, y int, r rune, st int) {
	if !g.in(x, y) {
		return
	}
	i := y*g.w + x
	if g.cells[i].cont && x > 0 {
		g.cells[i-1] = cell{r: ' ', style: g.cells[i-1].style}
	}
	if x+1 < g.w && g.cells[i+1].cont {
		g.cells[i+1] = cell{r: ' ', style: g.cells[i+1].style}
	}
	if runewidth.RuneWidth(r) == 2 {
		if x+1 >= g.w {
			r = ' '
		} else {
			if x+2 < g.w && g.cells[i+2].cont {
				g.cells[i+2] = cell{r: ' ', style: g.cells[i+2].style}
			}
			g.cells[i+1] = cell{style: st, cont: true}
		}
	}
	g.cells[i] = cell{r: r, style: st}
}

// text writes s starting at (x, y) and returns the cells consumed.
func (g *grid) text(x, y int, s string, st int) int {
	start := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		g.set(x, y, r, st)
		x += w
	}
	return x - start
}

func (g *grid) fill(x0, y0, x1, y1 int, r rune, st int) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, g.w-1), min(y1, g.h-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			g.set(x, y, r, st)
		}
	}
}

// row returns the plain text of row y.
func (g *grid) row(y int) string {
	if y < 0 || y >= g.h {
		return ""
	}
	var b strings.Builder
	for _, c := range g.cells[y*g.w : (y+1)*g.w] {
		if !c.cont {
			b.WriteRune(c.r)
		}
	}
	return b.String()
}

func (g *grid) String() string {
	var out strings.Builder
	var run strings.Builder
	for y := 0; y < g.h; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		cur := -1
		flush := func() {
			if run.Len() > 0 {
				out.WriteString(g.styles[cur].Render(run.String()))
				run.Reset()
			}
		}
		for x := 0; x < g.w; x++ {
			c := g.cells[y*g.w+x]
			if c.cont {
				continue
			}
			if c.style != cur {
				flush()
				cur = c.style
			}
			run.WriteRune(c.r)
		}
		flush()
	}
	return out.String()
}

// cellOf maps a canvas point to the grid cell under it.
func cellOf(cam geometry.Camera, p geometry.Vec) (int, int) {
	sp := cam.CanvasToScreen(p)
	return int(math.Floor(sp.X / CellW)), int(math.Floor(sp.Y / CellH))
}

// screenOf returns the screen point at the center of grid cell (x, y).
func screenOf(x, y int) geometry.Vec {
	return geometry.Vec{X: (float64(x) + 0.5) * CellW, Y: (float64(y) + 0.5) * CellH}
}

// boxOf returns the inclusive cell rectangle covered by n.
func boxOf(cam geometry.Camera, n board.Node) (x0, y0, x1, y1 int) {
	r := geometry.RectOf(n)
	x0, y0 = cellOf(cam, geometry.Vec{X: r.X, Y: r.Y})
	x1, y1 = cellOf(cam, geometry.Vec{X: r.X + r.W, Y: r.Y + r.H})
	if x1 > x0 {
		x1--
	}
	if y1 > y0 {
		y1--
	}
	return x0, y0, x1, y1
}

type menuItem struct {
	key   string
	label string
}

// nodeMenu lists the per-node menu entries. Keys match the canvas bindings.
var nodeMenu = []menuItem{
	{"e", "edit"},
	{"x", "complete"},
	{"L", "lock"},
	{"l", "link"},
	{"v", "variant"},
	{"i", "idea"},
	{"t", "task"},
	{"w", "wizard"},
	{"f", "focus"},
	{"d", "delete"},
}

const menuWidth = 14

// menuRect places the open node menu beside its node, clamped to the grid.
func menuRect(s *planner.Session, w, h int) (x, y int, ok bool) {
	st := s.State()
	n, found := s.Board().FindNode(st.OpenMenuID)
	if !found {
		return 0, 0, false
	}
	_, y0, x1, _ := boxOf(st.Camera, *n)
	x, y = x1+2, y0
	if x+menuWidth > w {
		x0, _, _, _ := boxOf(st.Camera, *n)
		x = x0 - menuWidth - 1
	}
	x = max(0, min(x, w-menuWidth))
	y = max(0, min(y, h-len(nodeMenu)))
	return x, y, true
}

// menuItemAt returns the menu key under cell (cx, cy), if any.
func menuItemAt(s *planner.Session, w, h, cx, cy int) (string, bool) {
	x, y, ok := menuRect(s, w, h)
	if !ok || cx < x || cx >= x+menuWidth || cy < y || cy >= y+len(nodeMenu) {
		return "", false
	}
	return nodeMenu[cy-y].key, true
}

// renderCanvas draws the board into a w x h cell block.
func renderCanvas(s *planner.Session, th Theme, w, h int) string {
	defer metrics.Timer(metrics.UIRender)()
	if w <= 0 || h <= 0 {
		return ""
	}
	return drawCanvas(s, th, w, h).String()
}

func drawCanvas(s *planner.Session, th Theme, w, h int) *grid {
	g := newGrid(w, h, th.Backdrop)
	st := s.State()
	cam := st.Camera
	bd := s.Board()

	drawDots(g, cam, g.style(th.Grid))
	drawRoutes(g, s, th)
	drawRubberBand(g, s, th)
	for _, n := range bd.Nodes {
		drawNode(g, th, st, n)
	}
	drawMenu(g, s, th)
	return g
}

func drawDots(g *grid, cam geometry.Camera, st int) {
	step := dotSpacing
	for step*cam.Scale < 3*CellW {
		step *= 2
	}
	tl := cam.ScreenToCanvas(geometry.Vec{})
	br := cam.ScreenToCanvas(geometry.Vec{X: float64(g.w) * CellW, Y: float64(g.h) * CellH})
	for gy := math.Floor(tl.Y/step) * step; gy <= br.Y; gy += step {
		for gx := math.Floor(tl.X/step) * step; gx <= br.X; gx += step {
			x, y := cellOf(cam, geometry.Vec{X: gx, Y: gy})
			g.set(x, y, '·', st)
		}
	}
}

func drawRoutes(g *grid, s *planner.Session, th Theme) {
	st := s.State()
	cam := st.Camera
	bd := s.Board()
	for _, r := range s.Routes() {
		style := th.VariantStyle(r.Variant)
		dot := '•'
		switch {
		case st.Focus.Kind == interact.FocusLink && st.Focus.ID == r.EdgeID:
			dot = '●'
		case st.Focused():
			style = th.Dimmed
		}
		id := g.style(style)

		length := geometry.Distance(r.From, r.Control) + geometry.Distance(r.Control, r.To)
		n := max(8, int(length*cam.Scale/(CellW/2)))
		pts := r.Sample(n)
		for _, p := range pts {
			x, y := cellOf(cam, p)
			g.set(x, y, dot, id)
		}

		// Arrowhead on the last sample outside the target box.
		e, ok := bd.FindEdge(r.EdgeID)
		if !ok {
			continue
		}
		to, ok := bd.FindNode(e.ToID)
		if !ok {
			continue
		}
		rect := geometry.RectOf(*to)
		for i := len(pts) - 1; i > 0; i-- {
			if rect.Contains(pts[i]) {
				continue
			}
			x, y := cellOf(cam, pts[i])
			g.set(x, y, arrowRune(geometry.Vec{X: r.To.X - pts[i].X, Y: r.To.Y - pts[i].Y}), id)
			break
		}
	}
}

// arrowRune picks the arrow closest to direction d.
func arrowRune(d geometry.Vec) rune {
	if math.Abs(d.X)*CellH >= math.Abs(d.Y)*CellW {
		if d.X >= 0 {
			return '▶'
		}
		return '◀'
	}
	if d.Y >= 0 {
		return '▼'
	}
	return '▲'
}

func drawRubberBand(g *grid, s *planner.Session, th Theme) {
	st := s.State()
	if !st.LinkPending() {
		return
	}
	from, ok := s.Board().FindNode(st.LinkFrom)
	if !ok {
		return
	}
	id := g.style(th.VariantStyle(st.LinkVariant))
	a := geometry.CenterOf(*from)
	b := st.Cursor
	n := max(4, int(geometry.Distance(a, b)*st.Camera.Scale/(CellW/2)))
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		x, y := cellOf(st.Camera, geometry.Vec{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
		g.set(x, y, '┄', id)
	}
}

func drawNode(g *grid, th Theme, st interact.State, n board.Node) {
	x0, y0, x1, y1 := boxOf(st.Camera, n)
	if x1 < 0 || y1 < 0 || x0 >= g.w || y0 >= g.h {
		return
	}
	fill := th.NodeStyle(n)
	dimmed := st.Focused() && !(st.Focus.Kind == interact.FocusNode && st.Focus.ID == n.ID)
	if dimmed {
		fill = fill.Faint(true)
	}
	fillID := g.style(fill)

	if x1-x0 < 2 || y1-y0 < 1 {
		g.fill(x0, y0, x1, y1, '■', g.style(fill.UnsetBackground().Background(th.Backdrop.GetBackground())))
		return
	}

	border := lipgloss.RoundedBorder()
	borderColor := lipgloss.TerminalColor(th.Border)
	switch {
	case st.LinkPending() && st.LinkFrom == n.ID:
		borderColor = ThemeFg(st.LinkVariant.Color())
	case st.Focus.Kind == interact.FocusNode && st.Focus.ID == n.ID:
		border = lipgloss.DoubleBorder()
		borderColor = th.Highlight
	case st.SelectedID == n.ID:
		border = lipgloss.ThickBorder()
		borderColor = th.Primary
	}
	if n.IsLocked {
		border = lipgloss.NormalBorder()
	}
	edgeID := g.style(fill.Foreground(borderColor))

	g.fill(x0, y0, x1, y1, ' ', fillID)
	hz := firstRune(border.Top)
	vt := firstRune(border.Left)
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, hz, edgeID)
		g.set(x, y1, firstRune(border.Bottom), edgeID)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, vt, edgeID)
		g.set(x1, y, firstRune(border.Right), edgeID)
	}
	g.set(x0, y0, firstRune(border.TopLeft), edgeID)
	g.set(x1, y0, firstRune(border.TopRight), edgeID)
	g.set(x0, y1, firstRune(border.BottomLeft), edgeID)
	g.set(x1, y1, firstRune(border.BottomRight), edgeID)

	inner := x1 - x0 - 1
	label := strings.ToUpper(n.Type.Label())
	if n.IsLocked {
		label += " LOCKED"
	}
	g.text(x0+1, y0, truncate(label, inner), g.style(fill.Foreground(borderColor).Bold(true)))

	rows := y1 - y0 - 1
	content := n.Content
	if n.Type == board.TypeImage {
		content = "▣ " + content
	}
	if n.BackgroundImageURL != "" && rows > 1 {
		content += "\n▣ " + n.BackgroundImageURL
	}
	stamp := n.IsCompleted && n.Type.Completable()
	textRows := rows
	if stamp && textRows > 1 {
		textRows--
	}
	textStyle := fill
	if stamp {
		textStyle = textStyle.Strikethrough(true)
	}
	textID := g.style(textStyle)
	for i, line := range wrapText(content, inner, textRows) {
		g.text(x0+1, y0+1+i, line, textID)
	}
	if stamp {
		label := "[" + n.Type.StampLabel() + "]"
		lw := runewidth.StringWidth(label)
		if lw > inner {
			label = truncate(label, inner)
			lw = runewidth.StringWidth(label)
		}
		g.text(x1-lw, y1-1, label, g.style(th.Stamp.Background(fill.GetBackground())))
	}
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ' '
}

func drawMenu(g *grid, s *planner.Session, th Theme) {
	x, y, ok := menuRect(s, g.w, g.h)
	if !ok {
		return
	}
	keyID := g.style(th.MenuKey)
	textID := g.style(th.Menu)
	for i, it := range nodeMenu {
		g.fill(x, y+i, x+menuWidth-1, y+i, ' ', textID)
		g.text(x+1, y+i, it.key, keyID)
		g.text(x+3, y+i, it.label, textID)
	}
}
