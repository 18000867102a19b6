package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Navigation
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Back    key.Binding
	Home    key.Binding

	// Palettes
	NextPalette   key.Binding
	PrevPalette   key.Binding
	SelectPalette key.Binding

	// Overlays
	Stats      key.Binding
	Logs       key.Binding
	LogSource  key.Binding
	LogsFollow key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close overlay"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Pan up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Pan down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Pan left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Pan right"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Zoom out"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "backspace"),
			key.WithHelp("b", "Back"),
		),
		Home: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "Home view"),
		),

		// Palettes
		NextPalette: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Next palette"),
		),
		PrevPalette: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "Previous palette"),
		),
		SelectPalette: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "Select palette"),
		),

		// Overlays
		Stats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Stats"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Log"),
		),
		LogSource: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "All lines/problems"),
		),
		LogsFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Pause log refresh"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Back, k.NextPalette, k.Stats, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Back, k.Home},
		{k.NextPalette, k.PrevPalette, k.SelectPalette},
		{k.Stats, k.Logs, k.LogSource, k.LogsFollow},
		{k.CycleTheme, k.Help, k.Escape, k.Quit},
	}
}
