package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/fractile/internal/engine"
	"github.com/five82/fractile/internal/prefs"
	"github.com/five82/fractile/internal/state"
)

// Overlay is the panel drawn over the fractal, if any.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayStats
	OverlayLogs
)

// Options configures the UI.
type Options struct {
	Context       context.Context
	Engine        *engine.Engine
	Store         *state.Store
	FrameInterval time.Duration
	LogPath       string
	ThemeName     string
	PrefsPath     string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	engine    *engine.Engine
	store     *state.Store
	prefsPath string
	logPath   string
	interval  time.Duration

	// UI state
	theme   Theme
	keys    keyMap
	help    help.Model
	overlay Overlay
	width   int
	height  int
	ready   bool

	// Render state
	fb        *framebuffer
	lastFrame engine.Frame
	snapshot  state.Snapshot

	// Log overlay state
	logState logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	store := opts.Store
	if store == nil && opts.Engine != nil {
		store = opts.Engine.Store()
	}

	return Model{
		engine:    opts.Engine,
		store:     store,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		interval:  interval,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		fb:        newFramebuffer(0, 0),
		logState:  logState{follow: true},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resize()
		if m.overlay == OverlayLogs {
			m.updateLogViewport()
		}
		return m, nil

	case tickMsg:
		return m.handleTick()

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case logTickMsg:
		if m.overlay != OverlayLogs {
			return m, nil
		}
		return m, tea.Batch(m.loadLogsCmd(), logTickCmd())
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderBody() string {
	switch m.overlay {
	case OverlayHelp:
		return m.renderHelp()
	case OverlayStats:
		return m.renderStats()
	case OverlayLogs:
		return m.renderLogs()
	default:
		return m.fb.render()
	}
}

// bodyRows is the number of text rows between header and footer.
func (m Model) bodyRows() int {
	return max(m.height-2, 0)
}

// resize matches the engine viewport to the terminal: one pixel per column
// and two per row.
func (m *Model) resize() {
	w, h := m.width, m.bodyRows()*2
	m.fb = newFramebuffer(w, h)
	m.fb.clear(parseHex(m.theme.Pending))
	if m.engine != nil {
		m.engine.Dispatch(engine.Resize{Width: w, Height: h})
	}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Escape):
		m.overlay = OverlayNone
		return m, nil

	case key.Matches(msg, k.Help):
		m.toggleOverlay(OverlayHelp)
		return m, nil

	case key.Matches(msg, k.Stats):
		m.toggleOverlay(OverlayStats)
		return m, nil

	case key.Matches(msg, k.Logs):
		m.toggleOverlay(OverlayLogs)
		if m.overlay == OverlayLogs {
			return m, tea.Batch(m.loadLogsCmd(), logTickCmd())
		}
		return m, nil

	case key.Matches(msg, k.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil
	}

	if m.overlay == OverlayLogs {
		switch {
		case key.Matches(msg, k.LogSource):
			m.logState.problemsOnly = !m.logState.problemsOnly
			m.logState.lastRefresh = time.Time{}
			return m, m.loadLogsCmd()
		case key.Matches(msg, k.LogsFollow):
			m.logState.follow = !m.logState.follow
			return m, nil
		}
	}

	if m.engine == nil {
		return m, nil
	}
	if cmd, ok := m.commandFor(msg); ok {
		if m.engine.Dispatch(cmd) {
			switch cmd.(type) {
			case engine.SelectPalette, engine.CyclePalette:
				m.savePrefs()
			}
		}
	}
	return m, nil
}

// commandFor maps navigation keys to engine commands.
func (m Model) commandFor(msg tea.KeyMsg) (engine.Command, bool) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		return engine.PanBy{DY: -1}, true
	case key.Matches(msg, k.Down):
		return engine.PanBy{DY: 1}, true
	case key.Matches(msg, k.Left):
		return engine.PanBy{DX: -1}, true
	case key.Matches(msg, k.Right):
		return engine.PanBy{DX: 1}, true
	case key.Matches(msg, k.ZoomIn):
		return engine.ZoomBy{Levels: 1}, true
	case key.Matches(msg, k.ZoomOut):
		return engine.ZoomBy{Levels: -1}, true
	case key.Matches(msg, k.Back):
		return engine.GoBack{}, true
	case key.Matches(msg, k.Home):
		return engine.Home{}, true
	case key.Matches(msg, k.NextPalette):
		return engine.CyclePalette{Delta: 1}, true
	case key.Matches(msg, k.PrevPalette):
		return engine.CyclePalette{Delta: -1}, true
	case key.Matches(msg, k.SelectPalette):
		return engine.SelectPalette{Index: int(msg.String()[0] - '1')}, true
	}
	return nil, false
}

// handleMouse centers on left clicks and zooms about the pointer on wheel
// events. Mouse input is ignored while an overlay is open.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.engine == nil || m.overlay != OverlayNone || msg.Action != tea.MouseActionPress {
		return m, nil
	}
	row := msg.Y - 1 // header
	if row < 0 || row >= m.bodyRows() || msg.X < 0 || msg.X >= m.width {
		return m, nil
	}
	px, py := msg.X, row*2

	switch msg.Button {
	case tea.MouseButtonLeft:
		x, y := m.engine.ScreenToCoord(px, py)
		m.engine.Dispatch(engine.SetCenter{X: x, Y: y})
	case tea.MouseButtonWheelUp:
		m.engine.Dispatch(engine.ZoomAt{X: px, Y: py, Levels: 1})
	case tea.MouseButtonWheelDown:
		m.engine.Dispatch(engine.ZoomAt{X: px, Y: py, Levels: -1})
	}
	return m, nil
}

func (m *Model) toggleOverlay(o Overlay) {
	if m.overlay == o {
		m.overlay = OverlayNone
		return
	}
	m.overlay = o
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name}
	if m.engine != nil {
		p.Palette = m.engine.Palette().Name
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		slog.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

// handleTick runs one engine frame and schedules the next.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.engine != nil {
		m.lastFrame = m.engine.Frame()
		m.fb.compose(m.lastFrame, parseHex(m.theme.Pending))
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	return m, tickCmd(m.interval)
}

// Messages

type tickMsg time.Time

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	if opts.Engine == nil {
		return errors.New("ui requires an engine")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
