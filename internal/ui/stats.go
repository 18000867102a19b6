package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"

	"github.com/five82/fractile/internal/state"
)

// Stats overlay geometry.
const (
	statsPlotHeight = 8
	statsHotTiles   = 5
)

// renderStats renders the pipeline statistics overlay.
func (m Model) renderStats() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	f := snap.Frame
	width := min(LayoutStatsWidth, max(m.width-4, 20))

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Pipeline"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n")

	rows := []struct{ label, value string }{
		{"workers", fmt.Sprintf("%d (%d queued, %d busy)", f.Workers, f.Queued, f.InFlight)},
		{"computed", fmt.Sprintf("%d (%d failed)", f.Computed, f.Failed)},
		{"cache", fmt.Sprintf("%d/%d tiles, %d pending, %d evicted", f.CacheLen, f.Capacity, f.Pending, f.Evicted)},
		{"visible", fmt.Sprintf("%d tiles", f.Visible)},
		{"delivered", fmt.Sprintf("%d total, %d stale", snap.TotalDelivered, snap.TotalStale)},
		{"drain", formatDrain(snap.Drain)},
		{"frame", humanizeDuration(f.FrameTime)},
		{"frames", fmt.Sprintf("%d in %s", snap.Frames, humanizeDuration(time.Since(snap.Started)))},
	}
	for _, r := range rows {
		b.WriteString(styles.MutedText.Width(12).Render(r.label))
		b.WriteString(styles.Text.Render(r.value))
		b.WriteString("\n")
	}

	if len(snap.DeliveredTrail) > 1 {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render("Tiles delivered per frame"))
		b.WriteString("\n")
		b.WriteString(renderTrail(snap.DeliveredTrail, width-4, statsPlotHeight))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Most recomputed tiles"))
	b.WriteString("\n")
	b.WriteString(m.renderHotTiles(snap.HotTiles, styles))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(0, 1).
		Width(width)

	return lipgloss.Place(
		m.width,
		m.bodyRows(),
		lipgloss.Center,
		lipgloss.Center,
		box.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func (m Model) renderHotTiles(hot []state.HotTile, styles Styles) string {
	if len(hot) == 0 {
		return styles.FaintText.Render("none")
	}
	var b strings.Builder
	for i, h := range hot {
		if i == statsHotTiles {
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.Text.Width(20).Render(h.Key))
		b.WriteString(styles.WarningText.Render(fmt.Sprintf("%d", h.Misses)))
	}
	return b.String()
}

// renderTrail plots a series on a braille canvas.
func renderTrail(series []float64, width, height int) string {
	if width < 2 || height < 2 {
		return ""
	}
	c := plot.NewCanvas(width, height)
	c.NumDataPoints = len(series)
	c.ShowAxis = false
	c.LineColors = []plot.Color{plot.Red}
	c.Fill([][]float64{series})
	return c.String()
}

func formatDrain(d state.DurationStats) string {
	if d.N == 0 {
		return "-"
	}
	return fmt.Sprintf("last %s avg %s max %s", humanizeDuration(d.Last), humanizeDuration(d.Avg), humanizeDuration(d.Max))
}
