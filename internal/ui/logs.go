package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fractile/internal/logtail"
)

// logState holds all log overlay state.
type logState struct {
	problemsOnly bool
	follow       bool
	rawLines     []string
	lastRefresh  time.Time
	err          error
	viewport     viewport.Model
}

// Messages

type logLinesMsg struct {
	problemsOnly bool
	lines        []string
	err          error
}

type logTickMsg time.Time

// Commands

func logTickCmd() tea.Cmd {
	return tea.Tick(LogRefreshInterval, func(t time.Time) tea.Msg {
		return logTickMsg(t)
	})
}

// loadLogsCmd rereads the tail of the log file off the UI goroutine.
func (m Model) loadLogsCmd() tea.Cmd {
	path := m.logPath
	problemsOnly := m.logState.problemsOnly
	follow := m.logState.follow
	if path == "" || !follow && !m.logState.lastRefresh.IsZero() {
		return nil
	}
	return func() tea.Msg {
		var (
			lines []string
			err   error
		)
		if problemsOnly {
			lines, err = logtail.Problems(path, LogBufferLimit)
		} else {
			lines, err = logtail.Read(path, LogBufferLimit)
		}
		return logLinesMsg{problemsOnly: problemsOnly, lines: lines, err: err}
	}
}

// handleLogLines stores a log batch unless the source changed meanwhile.
func (m *Model) handleLogLines(msg logLinesMsg) {
	if msg.problemsOnly != m.logState.problemsOnly {
		return
	}
	m.logState.lastRefresh = time.Now()
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.rawLines = msg.lines
	}
	m.updateLogViewport()
}

// updateLogViewport sizes the viewport to the body and refills it.
func (m *Model) updateLogViewport() {
	// Box inner = body rows - title - 2 borders - status line
	w, h := max(m.width-4, 0), max(m.bodyRows()-4, 0)
	if m.logState.viewport.Width != w || m.logState.viewport.Height != h {
		m.logState.viewport = viewport.New(w, h)
	}
	m.logState.viewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Panel))
	m.logState.viewport.SetContent(m.renderLogContent(w))
	if m.logState.follow {
		m.logState.viewport.GotoBottom()
	}
}

// renderLogs renders the log overlay.
func (m Model) renderLogs() string {
	bg := NewBgStyle(m.theme.Panel)
	styles := m.theme.Styles()

	title := "Log"
	if m.logState.problemsOnly {
		title = "Problems"
	}
	box := m.renderBox(title, m.logState.viewport.View(), m.width, max(m.bodyRows()-1, 0))
	return box + "\n" + m.renderLogStatus(styles, bg)
}

// renderLogStatus renders the line under the log box.
func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	if m.logState.err != nil {
		return bg.Render(truncateMiddle(m.logState.err.Error(), m.width), styles.DangerText)
	}
	autoTail := "off"
	if m.logState.follow {
		autoTail = "on"
	}
	parts := []string{
		bg.Render(fmt.Sprintf("%d lines auto-tail %s", len(m.logState.rawLines), autoTail), styles.FaintText),
		bg.Render(truncateMiddle(m.logPath, max(m.width/2, 10)), styles.AccentText),
	}
	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return strings.Join(parts, sep)
}

// renderLogContent renders the colorized log lines.
func (m Model) renderLogContent(width int) string {
	bg := NewBgStyle(m.theme.Panel)
	styles := m.theme.Styles()

	if len(m.logState.rawLines) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	var b strings.Builder
	for i, line := range m.logState.rawLines {
		content := bg.Render(fmt.Sprintf("%4d │ ", i+1), styles.FaintText) +
			bg.Render(line, m.levelStyle(logtail.Level(line), styles))
		b.WriteString(bg.FillLine(content, width))
		if i < len(m.logState.rawLines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// levelStyle returns the style for a log level.
func (m Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "INFO":
		return styles.Text
	case "WARN":
		return styles.WarningText
	case "ERROR":
		return styles.DangerText
	case "DEBUG":
		return styles.MutedText
	default:
		return styles.Text
	}
}

// renderBox draws a title line and content inside a rounded border, height
// rows in total.
func (m Model) renderBox(title, content string, width, height int) string {
	styles := m.theme.Styles()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Background(lipgloss.Color(m.theme.Panel)).
		Width(max(width-2, 0)).
		Height(max(height-3, 0))
	heading := styles.AccentText.Bold(true).Background(lipgloss.Color(m.theme.Panel)).Render(" " + title + " ")
	return lipgloss.JoinVertical(lipgloss.Left, heading, box.Render(content))
}
