// Package daemon provides the long-running read-only ledger status service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/stipend/internal/ledger"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/pipeline"
)

// Source is the store the daemon watches. It is only ever read.
type Source interface {
	ledger.KV
	Revision() (int64, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Source       Source
	DBPath       string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *slog.Logger
	// Now defaults to time.Now. Tests pin it.
	Now func() time.Time
}

// Snapshot is a compact ledger state for status and event payloads.
type Snapshot struct {
	At                 time.Time       `json:"at"`
	Revision           int64           `json:"revision"`
	Onboarded          bool            `json:"onboarded"`
	Name               string          `json:"name,omitempty"`
	MonthlyBudget      decimal.Decimal `json:"monthly_budget"`
	Balance            decimal.Decimal `json:"balance"`
	TotalSpend         decimal.Decimal `json:"total_spend"`
	TotalCredit        decimal.Decimal `json:"total_credit"`
	DailySpend         decimal.Decimal `json:"daily_spend"`
	BudgetPercent      *float64        `json:"budget_percent,omitempty"`
	PersonNet          decimal.Decimal `json:"person_net"`
	Repayment          *float64        `json:"repayment_percent,omitempty"`
	Transactions       int             `json:"transactions"`
	PersonTransactions int             `json:"person_transactions"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	Spend              decimal.Decimal `json:"spend"`
	Credit             decimal.Decimal `json:"credit"`
	Balance            decimal.Decimal `json:"balance"`
	DailySpend         decimal.Decimal `json:"daily_spend"`
	PersonNet          decimal.Decimal `json:"person_net"`
	Transactions       int             `json:"transactions"`
	PersonTransactions int             `json:"person_transactions"`
	Onboarded          bool            `json:"onboarded_changed,omitempty"`
}

func (d Delta) isZero() bool {
	return d.Spend.IsZero() &&
		d.Credit.IsZero() &&
		d.Balance.IsZero() &&
		d.DailySpend.IsZero() &&
		d.PersonNet.IsZero() &&
		d.Transactions == 0 &&
		d.PersonTransactions == 0 &&
		!d.Onboarded
}

// Event is emitted whenever the ledger snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	log     *slog.Logger
	metrics *metrics

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	summary     model.Summary
	nextEventID int64
	events      []Event

	// cached ledger, reloaded only when the store revision moves
	loadedRev int64
	ledger    *ledger.Ledger

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 5 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		log:       log.With("component", "daemon"),
		metrics:   newMetrics(),
		startedAt: cfg.Now(),
		loadedRev: -1,
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/summary", s.handleSummary)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return r
}

// Run serves the HTTP API and polls the store until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("daemon listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce()
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Service) pollOnce() {
	now := s.cfg.Now()
	summary, snap, err := s.load(now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", "err", err)
		return
	}
	s.metrics.observe(snap)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.summary = summary
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "ledger_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug("ledger changed", "event", ev.Type, "revision", snap.Revision)
		s.publishEvent(ev)
	}
}

// load re-reads the ledger when the store revision has moved and summarizes it.
// Daily spend depends on the clock, so the summary is recomputed every poll.
func (s *Service) load(now time.Time) (model.Summary, Snapshot, error) {
	if s.cfg.Source == nil {
		return model.Summary{}, Snapshot{}, errors.New("no store configured")
	}
	rev, err := s.cfg.Source.Revision()
	if err != nil {
		return model.Summary{}, Snapshot{}, fmt.Errorf("reading revision: %w", err)
	}
	if s.ledger == nil || rev != s.loadedRev {
		l, err := ledger.Open(s.cfg.Source, ledger.WithLogger(s.log))
		if err != nil {
			return model.Summary{}, Snapshot{}, err
		}
		s.ledger = l
		s.loadedRev = rev
	}

	p, onboarded := s.ledger.Profile()
	summary := pipeline.Summarize(p, s.ledger.Transactions(), s.ledger.PersonTransactions(), now)
	snap := snapshotFromSummary(summary, now)
	snap.Revision = rev
	snap.Onboarded = onboarded
	snap.Name = p.Name
	return summary, snap, nil
}

func snapshotFromSummary(sum model.Summary, at time.Time) Snapshot {
	return Snapshot{
		At:                 at,
		MonthlyBudget:      sum.MonthlyBudget,
		Balance:            sum.Balance,
		TotalSpend:         sum.TotalSpend,
		TotalCredit:        sum.TotalCredit,
		DailySpend:         sum.DailySpend,
		BudgetPercent:      sum.BudgetPercent,
		PersonNet:          sum.People.Net,
		Repayment:          sum.Repayment,
		Transactions:       sum.TransactionCount,
		PersonTransactions: sum.PersonTransactionCount,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Spend:              curr.TotalSpend.Sub(prev.TotalSpend),
		Credit:             curr.TotalCredit.Sub(prev.TotalCredit),
		Balance:            curr.Balance.Sub(prev.Balance),
		DailySpend:         curr.DailySpend.Sub(prev.DailySpend),
		PersonNet:          curr.PersonNet.Sub(prev.PersonNet),
		Transactions:       curr.Transactions - prev.Transactions,
		PersonTransactions: curr.PersonTransactions - prev.PersonTransactions,
		Onboarded:          curr.Onboarded != prev.Onboarded,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	sum := s.summary
	ok := s.hasSnapshot && s.snapshot.Onboarded
	s.mu.RUnlock()

	if !ok {
		http.Error(w, ledger.ErrNotOnboarded.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, sum)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
