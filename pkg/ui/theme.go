package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/config"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background instead of a down-converted approximation.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme is the pre-computed style set for one board view.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	Base        lipgloss.Style
	Header      lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	Backdrop    lipgloss.Style
	Grid        lipgloss.Style
	Stamp       lipgloss.Style
	Lock        lipgloss.Style
	Menu        lipgloss.Style
	MenuKey     lipgloss.Style
	Rubber      lipgloss.Style
	Dimmed      lipgloss.Style
	Panel       lipgloss.Style
	PanelActive lipgloss.Style

	nodes    map[string]lipgloss.Style
	variants map[board.LinkVariant]lipgloss.Style
}

// backdrops maps a board theme to its canvas background.
var backdrops = map[string]string{
	config.ThemeStone: "#1c1917",
	config.ThemeBlue:  "#0f172a",
}

// hintColors maps node color hints to fills. Types without a hint fall back
// to typeColors.
var hintColors = map[string]string{
	"yellow": "#fde68a",
	"pink":   "#fbcfe8",
	"blue":   "#bfdbfe",
	"green":  "#bbf7d0",
	"orange": "#fed7aa",
}

var typeColors = map[board.NodeType]string{
	board.TypeSticky:    "#fde68a",
	board.TypeText:      "#f5f5f4",
	board.TypeImage:     "#d6d3d1",
	board.TypeObjective: "#e0e7ff",
	board.TypeIdeaStrip: "#fef3c7",
	board.TypeGoal:      "#fecaca",
}

// DefaultTheme returns the board theme for the named backdrop (stone or blue).
func DefaultTheme(r *lipgloss.Renderer, backdrop string) Theme {
	bg, ok := backdrops[backdrop]
	if !ok {
		bg = backdrops[config.ThemeStone]
	}
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}, // Amber pin
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#A8A29E"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#D6D3D1"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#57534E"},
		Highlight: lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#38BDF8"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#78716C"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F5F5F4"})
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1C1917"}).
		Bold(true)
	t.Status = r.NewStyle().Foreground(t.Subtext)
	t.StatusError = r.NewStyle().Foreground(ThemeFg("#EF4444")).Bold(true)
	t.Backdrop = r.NewStyle().Background(ThemeBg(bg))
	t.Grid = t.Backdrop.Foreground(t.Border)
	t.Stamp = r.NewStyle().Foreground(ThemeFg("#DC2626")).Bold(true)
	t.Lock = r.NewStyle().Foreground(ThemeFg("#78716C")).Bold(true)
	t.Menu = r.NewStyle().Background(ThemeBg("#292524")).Foreground(t.Subtext)
	t.MenuKey = t.Menu.Foreground(t.Primary).Bold(true)
	t.Rubber = t.Backdrop.Foreground(t.Highlight)
	t.Dimmed = t.Backdrop.Foreground(t.Muted).Faint(true)
	t.Panel = r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border)
	t.PanelActive = r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary)

	t.nodes = make(map[string]lipgloss.Style, len(hintColors)+len(typeColors))
	for name, hex := range hintColors {
		t.nodes["hint:"+name] = r.NewStyle().Background(ThemeBg(hex)).Foreground(ThemeFg("#1C1917"))
	}
	for typ, hex := range typeColors {
		t.nodes["type:"+string(typ)] = r.NewStyle().Background(ThemeBg(hex)).Foreground(ThemeFg("#1C1917"))
	}
	t.variants = make(map[board.LinkVariant]lipgloss.Style, 4)
	for _, v := range board.AllVariants() {
		t.variants[v] = t.Backdrop.Foreground(ThemeFg(v.Color()))
	}
	return t
}

// NodeStyle returns the fill style for n, honoring its color hint.
func (t Theme) NodeStyle(n board.Node) lipgloss.Style {
	if s, ok := t.nodes["hint:"+n.Color]; ok && n.Color != "" {
		return s
	}
	if s, ok := t.nodes["type:"+string(n.Type)]; ok {
		return s
	}
	return t.Base
}

// VariantStyle returns the stroke style for a link variant.
func (t Theme) VariantStyle(v board.LinkVariant) lipgloss.Style {
	if s, ok := t.variants[v]; ok {
		return s
	}
	return t.variants[board.VariantNeutral]
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout), config.ThemeStone)
}
