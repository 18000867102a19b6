package ui

import (
	"fmt"
	"strings"
)

// renderHeader renders the status bar with the current view and pipeline
// state.
func (m Model) renderHeader() string {
	// The bar sits on the Surface color.
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.engine == nil {
		return styles.Header.Width(m.width).MaxHeight(1).Render(bg.Render("fractile", styles.Title))
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(m.buildStatusContent(styles, bg))
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < LayoutCompactWidth
	cur := m.engine.State()
	frame := m.snapshot.Frame

	var parts []string
	parts = append(parts, bg.Render("fractile", styles.Title))

	center := fmt.Sprintf("%s, %s", formatCoord(cur.CenterX, compact), formatCoord(cur.CenterY, compact))
	parts = append(parts, bg.Render(center, styles.Text))

	parts = append(parts,
		bg.Render("L", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d/%d", cur.Zoom, m.engine.MaxLevel()), styles.AccentText),
	)
	if !compact {
		parts = append(parts,
			bg.Render("px", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%.3g", m.engine.PixelSize()), styles.Text),
		)
	}

	parts = append(parts, bg.Render(m.engine.Palette().Name, styles.InfoText))

	parts = append(parts,
		bg.Render("hist", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d/%d", m.engine.Cursor()+1, m.engine.HistoryLen()), styles.Text),
	)

	pendingStyle := styles.MutedText
	if frame.Pending > 0 {
		pendingStyle = styles.WarningText
	}
	parts = append(parts,
		bg.Render("pending", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", frame.Pending), pendingStyle),
	)

	if !compact && frame.Failed > 0 {
		parts = append(parts,
			bg.Render("failed", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", frame.Failed), styles.DangerText),
		)
	}

	if m.engine.MaxZoomed() {
		parts = append(parts, styles.Badge(m.theme.Danger).Render("MAX ZOOM"))
	}

	return bg.Join(parts, "  ")
}

// renderFooter renders the key hints bar.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var segments []string
	if m.overlay == OverlayLogs {
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		source := "Problems"
		if m.logState.problemsOnly {
			source = "All"
		}
		colon := bg.Sep(":")
		segments = append(segments,
			bg.Render("Space", styles.AccentText)+colon+bg.Render(followLabel, styles.MutedText),
			bg.Render("tab", styles.AccentText)+colon+bg.Render(source, styles.MutedText),
			bg.Render("esc", styles.AccentText)+colon+bg.Render("Close", styles.MutedText),
		)
	} else {
		h := m.help
		h.Styles.ShortKey = styles.AccentText
		h.Styles.ShortDesc = styles.MutedText
		h.Styles.ShortSeparator = styles.FaintText
		h.Width = max(m.width-len(m.theme.Name)-6, 0)
		segments = append(segments, h.View(m.keys))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+bg.Sep(":")+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Footer.Width(m.width).MaxHeight(1).Render(strings.Join(segments, bg.Spaces(2)))
}

// formatCoord prints a coordinate with enough digits to tell neighbouring
// pixels apart at deep zoom.
func formatCoord(v float64, compact bool) string {
	if compact {
		return fmt.Sprintf("%.6f", v)
	}
	return fmt.Sprintf("%.12f", v)
}
