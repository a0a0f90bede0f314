// Package refresh drives the dashboard's polling loop. A cron job runs a
// refresh cycle every interval; user actions trigger extra cycles. Each
// cycle rebuilds the symbol universe, fans out the data fetches
// concurrently, and publishes one immutable snapshot to subscribers. A cycle
// started before a newer one is considered stale and its results are
// dropped.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/coinvest518/alpaca-agent/internal/api"
	"github.com/coinvest518/alpaca-agent/internal/indicator"
	"github.com/coinvest518/alpaca-agent/internal/series"
	"github.com/coinvest518/alpaca-agent/internal/session"
	"github.com/coinvest518/alpaca-agent/internal/symbols"
	"github.com/coinvest518/alpaca-agent/internal/timeframe"
)

const emaPeriod = 20

// Backend is the subset of the API client the scheduler polls.
type Backend interface {
	MarketData(ctx context.Context, symbol string) (map[string]api.Quote, error)
	HistoricalData(ctx context.Context, symbol, granularity string, hours int) ([]api.Bar, error)
	Portfolio(ctx context.Context) (*api.Portfolio, error)
	TradingStatus(ctx context.Context) (*api.TradingStatus, error)
	News(ctx context.Context) (map[string][]api.NewsItem, error)
}

// Snapshot is the settled result of one refresh cycle. Fields are nil when
// the corresponding fetch failed; consumers keep showing their previous
// data.
type Snapshot struct {
	Generation uint64
	Symbols    symbols.View
	Symbol     string
	Selection  string

	Quote     *api.Quote
	Change24h *float64
	Series    series.Series
	EMA       []float64

	Portfolio *api.Portfolio
	Status    *api.TradingStatus
	News      map[string][]api.NewsItem

	Active     bool
	LastUpdate time.Time
}

// Scheduler owns the refresh loop.
type Scheduler struct {
	backend  Backend
	registry *symbols.Registry
	fetcher  *series.Fetcher
	sess     *session.State
	logger   *slog.Logger

	cron *cron.Cron
	ctx  context.Context
	gen  atomic.Uint64
	now  func() time.Time

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan Snapshot
}

// NewScheduler creates a scheduler. ctx bounds every fetch the loop makes.
func NewScheduler(ctx context.Context, backend Backend, registry *symbols.Registry, fetcher *series.Fetcher, sess *session.State, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		backend:  backend,
		registry: registry,
		fetcher:  fetcher,
		sess:     sess,
		logger:   logger,
		cron:     cron.New(),
		ctx:      ctx,
		now:      time.Now,
		subs:     make(map[int]chan Snapshot),
	}
}

// Start registers the periodic cycle and starts the cron loop. It does not
// run an immediate cycle; callers trigger the first one with RunNow.
func (s *Scheduler) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("registering refresh job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("refresh loop started", "interval", interval)
	return nil
}

// Stop halts the cron loop. In-flight cycles finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("refresh loop stopped")
}

// Subscribe creates a snapshot subscription channel.
func (s *Scheduler) Subscribe(bufSize int) (id int, ch <-chan Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id = s.nextSubID
	s.nextSubID++
	c := make(chan Snapshot, bufSize)
	s.subs[id] = c
	return id, c
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Scheduler) Unsubscribe(id int) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
	}
}

// RunNow executes one refresh cycle synchronously. Starting a newer cycle
// while this one is in flight makes this one stale: its snapshot is dropped
// and the session is left untouched.
func (s *Scheduler) RunNow() {
	gen := s.gen.Add(1)

	view := s.registry.Refresh(s.ctx, s.sess.Symbol())
	if s.gen.Load() != gen {
		s.logger.Debug("dropping stale refresh cycle", "generation", gen)
		return
	}
	s.sess.SetSymbol(view.Current)

	symbol := view.Current
	selection := s.sess.Selection()

	snap := Snapshot{
		Generation: gen,
		Symbols:    view,
		Symbol:     symbol,
		Selection:  selection,
	}

	var (
		wg         sync.WaitGroup
		daybars    []api.Bar
		daybarsErr error
	)

	// Market data first, then the chart series: the synthetic last resort
	// anchors on the quote this fetch may have just updated.
	wg.Add(1)
	go func() {
		defer wg.Done()
		if symbol == "" {
			return
		}
		quotes, err := s.backend.MarketData(s.ctx, symbol)
		if err != nil {
			s.logger.Warn("fetching market data failed", "symbol", symbol, "error", err)
		} else {
			// A superseded cycle must not touch the session.
			if s.gen.Load() == gen {
				for sym, q := range quotes {
					s.sess.SetQuote(sym, q.Price)
				}
			}
			if q, ok := quotes[symbol]; ok {
				snap.Quote = &q
			}
		}

		lastQuote, _ := s.sess.Quote(symbol)
		snap.Series = s.fetcher.Fetch(s.ctx, symbol, selection, lastQuote)
		snap.EMA = indicator.EMA(closes(snap.Series.Points), emaPeriod)

		daybars, daybarsErr = s.backend.HistoricalData(s.ctx, symbol, timeframe.Gran1H, 24)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		pf, err := s.backend.Portfolio(s.ctx)
		if err != nil {
			s.logger.Warn("fetching portfolio failed", "error", err)
			return
		}
		snap.Portfolio = pf
	}()

	// Decisions, indicators, and the active flag all ride on trading_status.
	wg.Add(1)
	go func() {
		defer wg.Done()
		status, err := s.backend.TradingStatus(s.ctx)
		if err != nil {
			s.logger.Warn("fetching trading status failed", "error", err)
			return
		}
		snap.Status = status
		snap.Active = status.IsActive
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		news, err := s.backend.News(s.ctx)
		if err != nil {
			s.logger.Warn("fetching news failed", "error", err)
			return
		}
		snap.News = news
	}()

	wg.Wait()

	snap.Change24h = change24h(snap.Quote, daybars, daybarsErr, snap.Portfolio, symbol)

	if s.gen.Load() != gen {
		s.logger.Debug("dropping stale refresh cycle", "generation", gen)
		return
	}

	if snap.Status != nil {
		s.sess.SetActive(snap.Active)
	}
	snap.LastUpdate = s.now()
	s.sess.Stamp(snap.LastUpdate)

	s.publish(snap)
}

func (s *Scheduler) publish(snap Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Slow subscriber, drop snapshot.
		}
	}
}

// change24h derives the 24-hour change percentage from hourly bars, falling
// back to the portfolio position's entry price, else unknown.
func change24h(quote *api.Quote, daybars []api.Bar, barsErr error, pf *api.Portfolio, symbol string) *float64 {
	if quote == nil || quote.Price <= 0 {
		return nil
	}

	if barsErr == nil && len(daybars) > 0 && daybars[0].Close > 0 {
		pct := (quote.Price - daybars[0].Close) / daybars[0].Close * 100
		return &pct
	}

	if pf != nil {
		for _, pos := range pf.Positions {
			if pos.Symbol == symbol && pos.AvgEntryPrice > 0 {
				pct := (quote.Price - pos.AvgEntryPrice) / pos.AvgEntryPrice * 100
				return &pct
			}
		}
	}
	return nil
}

func closes(points []series.Point) []float64 {
	if len(points) == 0 {
		return nil
	}
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}
