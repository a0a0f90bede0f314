// Command dashboard is a terminal client for the trading backend. It polls
// the backend's HTTP API on a fixed cadence and renders market data, the
// portfolio, trading decisions, news, and technical indicators into a
// full-screen TUI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/coinvest518/alpaca-agent/internal/api"
	"github.com/coinvest518/alpaca-agent/internal/chart"
	"github.com/coinvest518/alpaca-agent/internal/config"
	"github.com/coinvest518/alpaca-agent/internal/refresh"
	"github.com/coinvest518/alpaca-agent/internal/series"
	"github.com/coinvest518/alpaca-agent/internal/session"
	"github.com/coinvest518/alpaca-agent/internal/store"
	"github.com/coinvest518/alpaca-agent/internal/symbols"
	"github.com/coinvest518/alpaca-agent/internal/util"
	"github.com/coinvest518/alpaca-agent/internal/watchlist"
)

const statusDuration = 4 * time.Second

// Messages.
type tickMsg time.Time
type snapshotMsg refresh.Snapshot
type snapshotsClosedMsg struct{}

type controlMsg struct {
	action  string
	message string
	err     error
}

type symbolAddedMsg struct {
	view symbols.View
	err  error
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model.
type model struct {
	client   *api.Client
	sched    *refresh.Scheduler
	registry *symbols.Registry
	sess     *session.State
	chart    *chart.Model
	logger   *slog.Logger

	snapCh <-chan refresh.Snapshot
	snap   refresh.Snapshot

	width, height int
	now           time.Time

	adding bool
	input  textinput.Model

	status   string
	statusAt time.Time
}

func initialModel(client *api.Client, sched *refresh.Scheduler, registry *symbols.Registry, sess *session.State, snapCh <-chan refresh.Snapshot, logger *slog.Logger) model {
	ti := textinput.New()
	ti.Placeholder = "symbol"
	ti.CharLimit = 8
	ti.Width = 12

	return model{
		client:   client,
		sched:    sched,
		registry: registry,
		sess:     sess,
		chart:    chart.New(80, 16),
		logger:   logger,
		snapCh:   snapCh,
		now:      time.Now(),
		input:    ti,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForSnapshot())
}

func (m model) waitForSnapshot() tea.Cmd {
	ch := m.snapCh
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return snapshotsClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// refreshCmd triggers an immediate refresh cycle off the UI goroutine.
func (m model) refreshCmd() tea.Cmd {
	sched := m.sched
	return func() tea.Msg {
		sched.RunNow()
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.adding {
			return m.updateAddInput(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.SetSize(chartWidth(msg.Width), chartHeight(msg.Height))
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		if m.status != "" && m.now.Sub(m.statusAt) > statusDuration {
			m.status = ""
		}
		return m, tickCmd()

	case snapshotMsg:
		m.snap = refresh.Snapshot(msg)
		m.chart.Render(m.snap.Series, m.snap.EMA)
		return m, m.waitForSnapshot()

	case snapshotsClosedMsg:
		return m, nil

	case controlMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			m.logger.Warn("control action failed", "action", msg.action, "error", msg.err)
		} else if msg.message != "" {
			m.status = msg.message
		} else {
			m.status = msg.action + " ok"
		}
		m.statusAt = m.now
		return m, m.refreshCmd()

	case symbolAddedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("add symbol failed: %v", msg.err)
			m.statusAt = m.now
			return m, nil
		}
		m.sess.SetSymbol(msg.view.Current)
		return m, m.refreshCmd()
	}

	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.sched.Stop()
		return m, tea.Quit

	case "tab":
		m.cycleSymbol(1)
		return m, m.refreshCmd()

	case "shift+tab":
		m.cycleSymbol(-1)
		return m, m.refreshCmd()

	case "1", "2", "3", "4":
		selections := map[string]string{"1": "1H", "2": "4H", "3": "1D", "4": "1W"}
		m.sess.SetSelection(selections[msg.String()])
		return m, m.refreshCmd()

	case "a":
		m.adding = true
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "s":
		return m, m.controlCmd("start trading", m.client.StartTrading)

	case "x":
		return m, m.controlCmd("stop trading", m.client.StopTrading)

	case "c":
		return m, m.controlCmd("run cycle", m.client.RunCycle)
	}

	return m, nil
}

func (m model) updateAddInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		return m, nil

	case "enter":
		raw := m.input.Value()
		m.adding = false
		m.input.Blur()

		registry := m.registry
		current := m.sess.Symbol()
		return m, func() tea.Msg {
			view, err := registry.AddManual(context.Background(), raw, current)
			return symbolAddedMsg{view: view, err: err}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) cycleSymbol(dir int) {
	display := m.snap.Symbols.Display
	if len(display) == 0 {
		return
	}

	current := m.sess.Symbol()
	idx := 0
	for i, s := range display {
		if s == current {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(display)) % len(display)
	m.sess.SetSymbol(display[idx])
}

func (m model) controlCmd(action string, call func(context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		message, err := call(ctx)
		return controlMsg{action: action, message: message, err: err}
	}
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.Logging.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "creating log directory: %v\n", err)
			os.Exit(1)
		}
	}
	logWriter := util.NewRotatingWriter(cfg.Logging.File, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
	defer logWriter.Close()
	logger := util.NewLogger(cfg.Logging.Level, logWriter)
	util.SetDefault(logger)
	logger.Info("dashboard starting", "backend", cfg.Backend.BaseURL)

	symbolStore, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		// A broken local database should not keep the dashboard from
		// starting; fall back to an in-memory list.
		logger.Warn("opening symbol store failed, manual symbols will not persist", "error", err)
		symbolStore, err = store.NewSQLiteStore(":memory:")
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening symbol store: %v\n", err)
			os.Exit(1)
		}
	}
	defer symbolStore.Close()

	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), logger)

	// Optional Alpaca watchlist mirror; nil when no API keys are set.
	mirror := watchlist.New(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.Watchlist, logger)

	registry := symbols.NewRegistry(client, symbolStore, mirrorOrNil(mirror), logger)
	sess := session.New()
	fetcher := series.NewFetcher(client, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := refresh.NewScheduler(ctx, client, registry, fetcher, sess, logger)
	_, snapCh := sched.Subscribe(4)

	if err := sched.Start(cfg.Refresh.Interval()); err != nil {
		fmt.Fprintf(os.Stderr, "starting refresh loop: %v\n", err)
		os.Exit(1)
	}
	go sched.RunNow()

	p := tea.NewProgram(
		initialModel(client, sched, registry, sess, snapCh, logger),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// mirrorOrNil converts the typed nil from watchlist.New into a nil
// interface so the registry's nil check works.
func mirrorOrNil(m *watchlist.Mirror) symbols.Mirror {
	if m == nil {
		return nil
	}
	return m
}
