package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle paints one background color under every cell of a bar, spaces
// included. Lipgloss emits a reset after each styled segment, which leaves
// unstyled gaps between segments otherwise.
type BgStyle struct {
	fill  lipgloss.Style
	space string
}

// NewBgStyle returns a helper for the given background color.
func NewBgStyle(color string) BgStyle {
	fill := lipgloss.NewStyle().Background(lipgloss.Color(color))
	return BgStyle{fill: fill, space: fill.Render(" ")}
}

// Render styles each word of text separately and joins the words with
// background spaces, keeping runs of spaces intact.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Background(b.fill.GetBackground())
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

// Space returns a single background space.
func (b BgStyle) Space() string { return b.space }

// Spaces returns n background spaces.
func (b BgStyle) Spaces(n int) string { return strings.Repeat(b.space, max(n, 0)) }

// Sep renders a separator on the background.
func (b BgStyle) Sep(sep string) string { return b.fill.Render(sep) }

// Join joins rendered parts with sep drawn on the background.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.Sep(sep))
}

// FillLine pads content to width with the background color.
func (b BgStyle) FillLine(content string, width int) string {
	return b.fill.Width(width).Render(content)
}
