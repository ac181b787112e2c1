package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/sessiondeck/internal/logtail"
	"github.com/five82/sessiondeck/internal/state"
)

const activityEntries = 4

// Controller is what the dashboard can ask the application to do.
type Controller interface {
	Refresh()
	Reload()
	NextEnvironment() (string, error)
	SetTheme(name string)
}

// Options configures the UI.
type Options struct {
	Store      *state.Store
	Controller Controller
	Theme      string
	Tick       time.Duration
	LogPath    string // the app's own log file, shown in the activity panel
}

// Model is the root application state for Bubble Tea.
type Model struct {
	store   *state.Store
	ctrl    Controller
	tick    time.Duration
	logPath string
	keys    keyMap
	now     func() time.Time

	theme    Theme
	help     help.Model
	spinner  spinner.Model
	news     viewport.Model
	width    int
	height   int
	ready    bool
	showHelp bool

	snapshot    state.Snapshot
	lastUpdated time.Time
	activity    []logtail.Entry
	flash       string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	return Model{
		store:   opts.Store,
		ctrl:    opts.Controller,
		tick:    tick,
		logPath: opts.LogPath,
		keys:    DefaultKeyMap(),
		now:     time.Now,
		theme:   GetTheme(opts.Theme),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		news:    viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tick), m.spinner.Tick, fetchSnapshotCmd(m.store), readActivityCmd(m.logPath))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resizeNews()
		return m, nil

	case tickMsg:
		return m, tea.Batch(tickCmd(m.tick), fetchSnapshotCmd(m.store), readActivityCmd(m.logPath))

	case activityMsg:
		m.activity = msg
		return m, nil

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = m.now()
		m.news.SetContent(m.renderNews())
		return m, nil

	case envSwitchedMsg:
		if msg.err != nil {
			m.flash = "switch failed: " + msg.err.Error()
		} else {
			m.flash = "environment → " + msg.name
		}
		return m, fetchSnapshotCmd(m.store)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resizeNews()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.ctrl != nil {
			m.ctrl.Refresh()
		}
		m.flash = "refresh requested"
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.ctrl != nil {
			m.ctrl.Reload()
		}
		m.flash = "cache dropped; reloading"
		return m, nil

	case key.Matches(msg, m.keys.SwitchEnv):
		if m.ctrl == nil {
			return m, nil
		}
		m.flash = "switching environment…"
		return m, switchEnvCmd(m.ctrl)

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.flash = "theme → " + m.theme.Name
		if m.ctrl == nil {
			return m, nil
		}
		return m, saveThemeCmd(m.ctrl, m.theme.Name)

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.news, cmd = m.news.Update(msg)
		return m, cmd
	}
	return m, nil
}

// resizeNews gives the news viewport whatever the fixed panels leave over.
func (m *Model) resizeNews() {
	if !m.ready {
		return
	}
	reserved := headerLines + endpointPanelLines + syncPanelLines + activityPanelLines + footerLines + panelChrome
	if m.showHelp {
		reserved += 2
	}
	m.news.Width = max(m.width-panelChrome, 10)
	m.news.Height = max(m.height-reserved, 3)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type activityMsg []logtail.Entry

type envSwitchedMsg struct {
	name string
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readActivityCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Read(path, activityEntries, zerolog.WarnLevel)
		if err != nil {
			return nil
		}
		return activityMsg(entries)
	}
}

func switchEnvCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		name, err := ctrl.NextEnvironment()
		return envSwitchedMsg{name: name, err: err}
	}
}

func saveThemeCmd(ctrl Controller, name string) tea.Cmd {
	return func() tea.Msg {
		ctrl.SetTheme(name)
		return nil
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
