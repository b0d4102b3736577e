// Package tui is the presentation shell: it renders what the engine
// computes and forwards refresh requests. All quota logic lives below
// it, so the view stays a thin read of summaries and stats.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/quotadeck/quotadeck/internal/apikeys"
	"github.com/quotadeck/quotadeck/internal/catalog"
	"github.com/quotadeck/quotadeck/internal/core"
	"github.com/quotadeck/quotadeck/internal/engine"
	"github.com/quotadeck/quotadeck/internal/mgmt"
)

type refreshDoneMsg struct {
	summaries []core.ProviderSummary
	conn      mgmt.ConnState
	err       error
}

type statsMsg engine.Stats

type catalogMsg []catalog.Model

type autoRefreshMsg struct{}

type Model struct {
	orch     *engine.Orchestrator
	client   *mgmt.Client
	resolver *apikeys.Resolver
	log      zerolog.Logger

	summaries  []core.ProviderSummary
	stats      engine.Stats
	models     []catalog.Model
	conn       mgmt.ConnState
	refreshing bool
	err        string

	spinner  spinner.Model
	interval time.Duration
	width    int
	height   int
}

func New(orch *engine.Orchestrator, client *mgmt.Client, resolver *apikeys.Resolver, interval time.Duration, log zerolog.Logger) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		orch:       orch,
		client:     client,
		resolver:   resolver,
		log:        log,
		conn:       client.State(),
		refreshing: true, // Init kicks off the first cycle
		spinner:    sp,
		interval:   interval,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd(), m.autoRefreshTick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.refreshing = true
			return m, m.refreshCmd()
		}
		return m, nil

	case autoRefreshMsg:
		m.refreshing = true
		return m, tea.Batch(m.refreshCmd(), m.autoRefreshTick())

	case refreshDoneMsg:
		m.refreshing = false
		m.conn = msg.conn
		if msg.summaries != nil {
			m.summaries = msg.summaries
		}
		m.err = ""
		if msg.err != nil && !errors.Is(msg.err, engine.ErrNotConnected) {
			m.err = msg.err.Error()
		}
		return m, tea.Batch(m.loadStats(), m.loadCatalog())

	case statsMsg:
		m.stats = engine.Stats(msg)
		return m, nil

	case catalogMsg:
		m.models = msg
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// refreshCmd probes connectivity when needed, then runs one refresh
// cycle off the UI goroutine. The engine's own guard makes overlapping
// requests no-ops.
func (m Model) refreshCmd() tea.Cmd {
	orch, client := m.orch, m.client
	return func() tea.Msg {
		ctx := context.Background()
		if client.State() != mgmt.StateConnected {
			if err := client.Probe(ctx); err != nil {
				return refreshDoneMsg{conn: client.State(), err: err}
			}
		}
		err := orch.RefreshAll(ctx)
		return refreshDoneMsg{summaries: orch.Summaries(), conn: client.State(), err: err}
	}
}

func (m Model) loadStats() tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		return statsMsg(orch.LoadStats(context.Background()))
	}
}

// loadCatalog fetches the model list. Failures degrade to an empty
// catalog; the fetch is skipped entirely while disconnected.
func (m Model) loadCatalog() tea.Cmd {
	client, resolver, log := m.client, m.resolver, m.log
	return func() tea.Msg {
		if client.State() != mgmt.StateConnected {
			return catalogMsg(nil)
		}
		ctx := context.Background()
		key := ""
		if keys := resolver.Keys(ctx); len(keys) > 0 {
			key = keys[0]
		}
		return catalogMsg(catalog.Load(ctx, client.Endpoint(), key, log))
	}
}

func (m Model) autoRefreshTick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return autoRefreshMsg{}
	})
}
