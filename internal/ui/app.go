// Package ui provides the Bubble Tea TUI and card rendering for skald.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/veleda/skald/internal/prefs"
	"github.com/veleda/skald/internal/state"
)

// StoryFilter represents the browse list filter mode.
type StoryFilter int

const (
	FilterAll StoryFilter = iota
	FilterComplete
	FilterInProgress
	FilterCrossovers
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Store       *state.Store
	PageTick    time.Duration
	ThemeName   string
	PrefsPath   string // where theme changes are persisted; empty uses default
	FilterLabel string // summary of the active Atlas query, shown in the header
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	store      *state.Store
	pageTick   time.Duration
	queryLabel string
	prefsPath  string
	keys       keyMap

	// UI state
	theme       Theme
	width       int
	height      int
	ready       bool
	focusedPane int // 0 = list, 1 = detail

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Browse state
	selectedRow int
	selectedID  int64 // remembered across list changes; 0 means no pick yet
	filterMode  StoryFilter

	// Title search
	searchInput textinput.Model
	searching   bool
	searchQuery string

	// Detail pane
	detailViewport viewport.Model

	// Help overlay
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pageTick := opts.PageTick
	if pageTick == 0 {
		pageTick = time.Second
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	searchInput := textinput.New()
	searchInput.Placeholder = "title contains..."
	searchInput.CharLimit = 64
	searchInput.Width = 32

	return Model{
		ctx:         ctx,
		store:       opts.Store,
		pageTick:    pageTick,
		queryLabel:  opts.FilterLabel,
		prefsPath:   prefsPath,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		searchInput: searchInput,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pageTick),
	}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initDetailViewport()
		}
		m.ready = true
		m.updateStoryList()
		m.updateDetailViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.updateStoryList()
		m.updateDetailViewport()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits, even while typing in the search field.
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// Any key closes the help overlay
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name})
		}
		m.updateDetailViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
		// Two panes, so forward and reverse are the same toggle
		m.focusedPane = 1 - m.focusedPane
		return m, nil

	case key.Matches(msg, m.keys.CycleFilter):
		m.cycleFilter()
		m.updateStoryList()
		m.updateDetailViewport()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Escape):
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.searchInput.SetValue("")
			m.updateStoryList()
			m.updateDetailViewport()
		}
		return m, nil
	}

	if m.focusedPane == 1 {
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	return m.handleListKey(msg)
}

// handleSearchKey processes keyboard input while the search field is focused.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.searchQuery = strings.TrimSpace(m.searchInput.Value())
		m.searching = false
		// A new search starts from the first match
		m.selectedRow = 0
		m.selectedID = 0
		m.updateStoryList()
		m.updateDetailViewport()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.searchInput.SetValue(m.searchQuery)
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleListKey processes keyboard input for the story list.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.getVisibleStories())
	if count == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectRow(m.selectedRow + 1)
	case key.Matches(msg, m.keys.Up):
		m.selectRow(m.selectedRow - 1)
	case key.Matches(msg, m.keys.Top):
		m.selectRow(0)
	case key.Matches(msg, m.keys.Bottom):
		m.selectRow(count - 1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectRow(m.selectedRow + m.listPageSize()/2)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectRow(m.selectedRow - m.listPageSize()/2)
	}

	m.updateDetailViewport()
	return m, nil
}

// cycleFilter cycles through browse filter modes.
func (m *Model) cycleFilter() {
	switch m.filterMode {
	case FilterAll:
		m.filterMode = FilterComplete
	case FilterComplete:
		m.filterMode = FilterInProgress
	case FilterInProgress:
		m.filterMode = FilterCrossovers
	default:
		m.filterMode = FilterAll
	}
}

// filterModeLabel returns the display label for the current filter mode.
func (m *Model) filterModeLabel() string {
	switch m.filterMode {
	case FilterComplete:
		return "Complete"
	case FilterInProgress:
		return "In Progress"
	case FilterCrossovers:
		return "Crossovers"
	default:
		return "All"
	}
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	cmds = append(cmds, tickCmd(m.pageTick))

	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + pager status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderBrowse())

	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}

	p := tea.NewProgram(m, progOpts...)
	if _, err := p.Run(); err != nil {
		// Context cancellation is a clean shutdown, not a failure.
		if opts.Context != nil && opts.Context.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
