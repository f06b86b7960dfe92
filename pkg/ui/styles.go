package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/casefile/pkg/board"
)

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

var (
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#D6D3D1"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#78716C"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
)

// RenderVariantBadge returns a colored swatch with the variant name.
func RenderVariantBadge(v board.LinkVariant) string {
	swatch := lipgloss.NewStyle().Foreground(ThemeFg(v.Color())).Bold(true).Render("━━")
	return swatch + " " + lipgloss.NewStyle().Foreground(ColorSubtext).Render(string(v))
}

// RenderKeyHint renders "key action" pairs separated by a muted dot.
func RenderKeyHint(pairs ...string) string {
	keyStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, keyStyle.Render(pairs[i])+" "+textStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, textStyle.Render(" · "))
}
