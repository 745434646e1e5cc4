package tui

import (
	"context"
	"time"

	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/table"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"

	"tasnim.dev/cloudspend/internal/logging"
	"tasnim.dev/cloudspend/internal/spend"
	"tasnim.dev/cloudspend/internal/tui/theme"
)

// Fetcher loads the full record set.
type Fetcher interface {
	Fetch(ctx context.Context) ([]spend.Record, error)
}

// Messages
type recordsMsg struct {
	gen     int
	records []spend.Record
}

type errMsg struct {
	gen int
	err error
}

type autoRefreshMsg struct{ gen int }

type clearStatusMsg struct{}

type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayDetail
	overlaySegment
)

// Options configure the dashboard.
type Options struct {
	Fetcher   Fetcher
	Sources   []string
	Profile   string
	AccountID string
	PageSize  int
	Sort      spend.SortSpec

	AutoRefresh     bool
	RefreshInterval time.Duration

	Logger *logging.Logger
}

// Model holds the TUI state.
type Model struct {
	fetcher   Fetcher
	sources   []string
	profile   string
	accountID string
	log       *logging.Logger

	state   *spend.State
	derived spend.Derived

	loaded   bool
	loading  bool
	err      error
	loadedAt time.Time

	// gen identifies the newest fetch; older completions are dropped.
	gen    int
	cancel context.CancelFunc

	autoRefresh     bool
	refreshInterval time.Duration

	spinner spinner.Model
	table   table.Model
	bar     progress.Model

	editingDate bool
	dateInput   textinput.Model
	dateErr     string

	overlay      overlay
	detail       viewport.Model
	detailRecord spend.Record
	segment      spend.SegmentDetail

	status string
	copyFn func(string) error
	now    func() time.Time

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	t := table.New(
		table.WithColumns(columnsFor(80)),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithWidth(80),
	)
	t.SetStyles(theme.DefaultTableStyles())

	ti := textinput.New()
	ti.Placeholder = "YYYY, YYYY-MM or YYYY-MM-DD"
	ti.CharLimit = 10

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	m := Model{
		fetcher:         opts.Fetcher,
		sources:         opts.Sources,
		profile:         opts.Profile,
		accountID:       opts.AccountID,
		log:             log.WithComponent("tui"),
		state:           spend.NewState(opts.PageSize, opts.Sort),
		loading:         true,
		autoRefresh:     opts.AutoRefresh,
		refreshInterval: opts.RefreshInterval,
		spinner:         theme.NewSpinner(),
		table:           t,
		bar:             progress.New(progress.WithDefaultBlend(), progress.WithoutPercentage()),
		dateInput:       ti,
		detail:          viewport.New(viewport.WithWidth(76), viewport.WithHeight(16)),
		copyFn:          clipboard.WriteAll,
		now:             time.Now,
		width:           80,
		height:          24,
	}
	if m.refreshInterval <= 0 {
		m.refreshInterval = 15 * time.Second
	}
	m.derive()
	return m
}

type startMsg struct{}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return startMsg{} })
}

// startFetch cancels any in-flight fetch and starts a new generation.
func (m *Model) startFetch() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.gen++
	m.loading = true

	gen := m.gen
	fetcher := m.fetcher
	return func() tea.Msg {
		if fetcher == nil {
			return errMsg{gen: gen, err: errNoSource}
		}
		records, err := fetcher.Fetch(ctx)
		if err != nil {
			return errMsg{gen: gen, err: err}
		}
		return recordsMsg{gen: gen, records: records}
	}
}

func (m *Model) refresh() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startFetch())
}

func (m Model) scheduleAutoRefresh() tea.Cmd {
	if !m.autoRefresh {
		return nil
	}
	gen := m.gen
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return autoRefreshMsg{gen: gen}
	})
}

func (m Model) clearStatusAfter() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *Model) setStatus(s string) tea.Cmd {
	m.status = s
	return m.clearStatusAfter()
}

// derive recomputes the view state and refreshes the table rows.
func (m *Model) derive() {
	m.derived = m.state.Derive()
	m.table.SetRows(buildRows(m.derived.Page.Rows))
	if c := m.table.Cursor(); c >= len(m.derived.Page.Rows) {
		m.table.SetCursor(max(len(m.derived.Page.Rows)-1, 0))
	}
}

// selected returns the record under the table cursor.
func (m Model) selected() (spend.Record, bool) {
	rows := m.derived.Page.Rows
	c := m.table.Cursor()
	if c < 0 || c >= len(rows) {
		return spend.Record{}, false
	}
	return rows[c], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.updateKey(msg)

	case startMsg:
		cmd := m.startFetch()
		return m, cmd

	case recordsMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		m.err = nil
		m.loadedAt = m.now()
		m.state.SetRecords(msg.records)
		m.derive()
		m.log.Info("records loaded", "rows", len(msg.records), "gen", msg.gen)
		return m, m.scheduleAutoRefresh()

	case errMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.log.Error("load failed", "error", msg.err, "gen", msg.gen)
		return m, m.scheduleAutoRefresh()

	case autoRefreshMsg:
		if !m.autoRefresh || msg.gen != m.gen || m.loading {
			return m, nil
		}
		cmd := m.refresh()
		return m, cmd

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.editingDate {
		var cmd tea.Cmd
		m.dateInput, cmd = m.dateInput.Update(msg)
		return m, cmd
	}
	if m.overlay == overlayDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	return m, tea.Quit
}

func (m Model) updateKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.editingDate {
		return m.updateDateInput(msg)
	}

	switch m.overlay {
	case overlayHelp:
		switch msg.String() {
		case "?", "esc", "q":
			m.overlay = overlayNone
		}
		return m, nil
	case overlayDetail:
		return m.updateDetail(msg)
	case overlaySegment:
		return m.updateSegment(msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "?":
		m.overlay = overlayHelp
		return m, nil
	case "r":
		m.err = nil
		cmd := m.refresh()
		return m, cmd
	case "a":
		m.autoRefresh = !m.autoRefresh
		label := "Auto-refresh off"
		var cmds []tea.Cmd
		if m.autoRefresh {
			label = "Auto-refresh every " + m.refreshInterval.String()
			if !m.loading {
				cmds = append(cmds, m.scheduleAutoRefresh())
			}
		}
		cmds = append(cmds, m.setStatus(label))
		return m, tea.Batch(cmds...)
	case "c":
		m.cycleFilter(spend.FilterCloud, spend.CloudChoices)
		return m, nil
	case "t":
		m.cycleFilter(spend.FilterTeam, spend.TeamChoicesFor(m.state.Records()))
		return m, nil
	case "e":
		m.cycleFilter(spend.FilterEnv, spend.EnvChoices)
		return m, nil
	case "d":
		m.editingDate = true
		m.dateErr = ""
		m.dateInput.SetValue(m.state.Criteria().Date)
		m.dateInput.Focus()
		return m, textinput.Blink
	case "s":
		m.state.SetSort(m.state.Sort().Next())
		m.derive()
		return m, nil
	case "R":
		m.state.Reset()
		m.dateErr = ""
		m.derive()
		cmd := m.setStatus("Filters reset")
		return m, cmd
	case "n", "right":
		m.state.NextPage()
		m.derive()
		m.log.Debug("page", "number", m.state.PageNumber())
		return m, nil
	case "p", "left":
		m.state.PrevPage()
		m.derive()
		m.log.Debug("page", "number", m.state.PageNumber())
		return m, nil
	case "z":
		m.state.SetPageSize(spend.NextPageSize(m.state.PageSize()))
		m.derive()
		m = m.resize()
		return m, nil
	case "enter":
		if r, ok := m.selected(); ok {
			m.openDetail(r)
		}
		return m, nil
	case "y":
		if r, ok := m.selected(); ok {
			cmd := m.copyRecord(r)
			return m, cmd
		}
		return m, nil
	case "P":
		return m.openSegment(spend.SegmentProvider)
	case "T":
		return m.openSegment(spend.SegmentTeam)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) cycleFilter(key spend.FilterKey, choices []string) {
	next := spend.Cycle(choices, m.state.Criteria().Get(key))
	m.state.SetFilter(key, next)
	m.derive()
	m.log.Debug("filter", "key", key, "value", next)
}

func (m Model) updateDateInput(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editingDate = false
		m.dateInput.Blur()
		return m, nil
	case "enter":
		m.editingDate = false
		m.dateInput.Blur()
		value, err := spend.ParseDateInput(m.dateInput.Value(), m.now().Year())
		if err != nil {
			m.dateErr = err.Error()
			value = ""
		} else {
			m.dateErr = ""
		}
		m.state.SetFilter(spend.FilterDate, value)
		m.derive()
		return m, nil
	}

	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}
