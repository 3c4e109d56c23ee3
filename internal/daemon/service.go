// Package daemon provides the long-running HTTP rate calculation service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/pipeline"
	"github.com/theirongolddev/feeburn/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr          string
	EventsBuffer  int
	PruneSchedule string        // cron spec, empty disables pruning
	PruneAfter    time.Duration // entries older than this are pruned
	Defaults      finance.LoanTerms
	MortgageRate  float64
	Lenders       []finance.Scenario // used by /v1/compare when the request names none
	CacheBackend  string
	Logger        *logrus.Logger
}

// Pruner is implemented by caches that can drop old entries.
type Pruner interface {
	Prune(cutoff time.Time) (int64, error)
}

// Snapshot is a compact counter state for status/event payloads.
type Snapshot struct {
	At           time.Time `json:"at"`
	Requests     int64     `json:"requests"`
	Calculations int64     `json:"calculations"`
	Comparisons  int64     `json:"comparisons"`
	CacheHits    int64     `json:"cache_hits"`
	Errors       int64     `json:"errors"`
}

// Event is emitted for every calculation, comparison and prune.
type Event struct {
	ID          string                `json:"id"`
	Seq         int64                 `json:"seq"`
	Type        string                `json:"type"`
	Timestamp   time.Time             `json:"timestamp"`
	Calculation *pipeline.Calculation `json:"calculation,omitempty"`
	Ranking     *pipeline.Ranking     `json:"ranking,omitempty"`
	Pruned      int64                 `json:"pruned,omitempty"`
	Snapshot    *Snapshot             `json:"snapshot,omitempty"`
}

// Event types.
const (
	EventSnapshot    = "snapshot"
	EventCalculation = "calculation"
	EventComparison  = "comparison"
	EventPrune       = "prune"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time         `json:"started_at"`
	Addr            string            `json:"addr"`
	CacheBackend    string            `json:"cache_backend"`
	PruneSchedule   string            `json:"prune_schedule,omitempty"`
	LastPruneAt     time.Time         `json:"last_prune_at,omitempty"`
	LastPruned      int64             `json:"last_pruned"`
	Defaults        finance.LoanTerms `json:"defaults"`
	MortgageRate    float64           `json:"mortgage_rate"`
	Summary         Snapshot          `json:"summary"`
	LastError       string            `json:"last_error,omitempty"`
	EventCount      int               `json:"event_count"`
	SubscriberCount int               `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	cache store.ResultCache
	log   *logrus.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	counters    Snapshot
	lastPruneAt time.Time
	lastPruned  int64
	lastError   string
	nextSeq     int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config. A nil cache
// gets an in-memory one.
func New(cfg Config, cache store.ResultCache) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8417"
	}
	if cfg.PruneAfter <= 0 {
		cfg.PruneAfter = 30 * 24 * time.Hour
	}
	if cfg.Defaults.Principal == 0 {
		cfg.Defaults = finance.LoanTerms{Principal: 15000, TermYears: 5, WeeklyFee: 2.30, EstablishmentFee: 75}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cache == nil {
		cache = store.NewMemoryCache()
		if cfg.CacheBackend == "" {
			cfg.CacheBackend = pipeline.BackendMemory
		}
	}

	return &Service{
		cfg:       cfg,
		cache:     cache,
		log:       cfg.Logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP router.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/rate", s.handleRateQuery).Methods(http.MethodGet)
	v1.HandleFunc("/rate", s.handleRateBody).Methods(http.MethodPost)
	v1.HandleFunc("/compare", s.handleCompare).Methods(http.MethodPost)
	v1.HandleFunc("/tables", s.handleTables).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	return r
}

// Run serves HTTP and runs scheduled pruning until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var sched *cron.Cron
	if s.cfg.PruneSchedule != "" {
		if _, ok := s.cache.(Pruner); ok {
			sched = cron.New()
			if _, err := sched.AddFunc(s.cfg.PruneSchedule, s.pruneOnce); err != nil {
				return fmt.Errorf("invalid prune schedule %q: %w", s.cfg.PruneSchedule, err)
			}
			sched.Start()
		} else {
			s.log.WithField("backend", s.cfg.CacheBackend).Debug("cache backend expires entries itself, pruning disabled")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.WithFields(logrus.Fields{
		"addr":    s.cfg.Addr,
		"cache":   s.cfg.CacheBackend,
		"pruning": s.cfg.PruneSchedule,
	}).Info("feeburn daemon listening")

	select {
	case <-ctx.Done():
		if sched != nil {
			<-sched.Stop().Done()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if sched != nil {
			sched.Stop()
		}
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) pruneOnce() {
	p, ok := s.cache.(Pruner)
	if !ok {
		return
	}
	now := time.Now()
	n, err := p.Prune(now.Add(-s.cfg.PruneAfter))
	if err != nil {
		s.recordError(fmt.Errorf("pruning cache: %w", err))
		return
	}

	s.mu.Lock()
	s.lastPruneAt = now
	s.lastPruned = n
	s.mu.Unlock()

	s.log.WithField("removed", n).Info("pruned result cache")
	s.emit(Event{Type: EventPrune, Pruned: n})
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.counters.Errors++
	s.mu.Unlock()
	s.log.WithError(err).Warn("request failed")
}

// emit stamps ev with an ID and sequence number and publishes it.
func (s *Service) emit(ev Event) {
	s.mu.Lock()
	s.nextSeq++
	ev.Seq = s.nextSeq
	s.mu.Unlock()

	ev.ID = uuid.NewString()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.publishEvent(ev)
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

	summary := s.counters
	summary.At = time.Now()
	return Status{
		StartedAt:       s.startedAt,
		Addr:            s.cfg.Addr,
		CacheBackend:    s.cfg.CacheBackend,
		PruneSchedule:   s.cfg.PruneSchedule,
		LastPruneAt:     s.lastPruneAt,
		LastPruned:      s.lastPruned,
		Defaults:        s.cfg.Defaults,
		MortgageRate:    s.cfg.MortgageRate,
		Summary:         summary,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
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
