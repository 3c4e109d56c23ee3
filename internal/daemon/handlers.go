package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/pipeline"

	"github.com/sirupsen/logrus"
)

// RateResponse is served at /v1/rate.
type RateResponse struct {
	pipeline.Calculation
	MortgageRate float64         `json:"mortgage_rate"`
	Verdict      finance.Verdict `json:"verdict"`
}

// CompareRequest is the /v1/compare body. With no scenarios the configured
// lenders are compared at Principal (or the default principal).
type CompareRequest struct {
	Scenarios     []finance.Scenario `json:"scenarios"`
	Principal     float64            `json:"principal"`
	MortgageRate  *float64           `json:"mortgage_rate"`
	IncludeOffset *bool              `json:"include_offset"`
}

// CompareResult is one scenario in a /v1/compare response.
type CompareResult struct {
	Outcome *finance.Outcome `json:"outcome,omitempty"`
	Error   string           `json:"error,omitempty"`
	Cached  bool             `json:"cached"`
}

// CompareResponse is served at /v1/compare.
type CompareResponse struct {
	Results []CompareResult  `json:"results"`
	Ranking pipeline.Ranking `json:"ranking"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, finance.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, finance.ErrNumericDegeneracy):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	s.recordError(err)
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// termsFromQuery overlays query parameters on the configured defaults.
func (s *Service) termsFromQuery(r *http.Request) (finance.LoanTerms, float64, error) {
	t := s.cfg.Defaults
	rate := s.cfg.MortgageRate
	q := r.URL.Query()

	floats := []struct {
		name string
		dst  *float64
	}{
		{"principal", &t.Principal},
		{"term", &t.TermYears},
		{"weekly_fee", &t.WeeklyFee},
		{"establishment_fee", &t.EstablishmentFee},
		{"mortgage_rate", &rate},
	}
	for _, f := range floats {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return t, rate, fmt.Errorf("%w: %s=%q is not a number", finance.ErrInvalidInput, f.name, raw)
		}
		*f.dst = v
	}
	if raw := q.Get("periods"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return t, rate, fmt.Errorf("%w: periods=%q is not an integer", finance.ErrInvalidInput, raw)
		}
		if v <= 0 {
			return t, rate, fmt.Errorf("%w: periods must be positive, got %d", finance.ErrInvalidInput, v)
		}
		t.PeriodsPerYear = v
	}
	return t, rate, nil
}

func (s *Service) handleRateQuery(w http.ResponseWriter, r *http.Request) {
	t, rate, err := s.termsFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.serveRate(w, t, rate)
}

func (s *Service) handleRateBody(w http.ResponseWriter, r *http.Request) {
	// Omitted fields keep their configured defaults.
	// An explicit periods_per_year shadows the embedded field so that 0 can
	// be told apart from omitted.
	body := struct {
		finance.LoanTerms
		PeriodsPerYear *int     `json:"periods_per_year"`
		MortgageRate   *float64 `json:"mortgage_rate"`
	}{LoanTerms: s.cfg.Defaults}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: decoding body: %v", finance.ErrInvalidInput, err))
		return
	}
	if body.PeriodsPerYear != nil {
		if *body.PeriodsPerYear <= 0 {
			s.writeError(w, fmt.Errorf("%w: periods_per_year must be positive, got %d", finance.ErrInvalidInput, *body.PeriodsPerYear))
			return
		}
		body.LoanTerms.PeriodsPerYear = *body.PeriodsPerYear
	}
	rate := s.cfg.MortgageRate
	if body.MortgageRate != nil {
		rate = *body.MortgageRate
	}
	s.serveRate(w, body.LoanTerms, rate)
}

func (s *Service) serveRate(w http.ResponseWriter, t finance.LoanTerms, mortgageRate float64) {
	calc, err := pipeline.SolveTerms(t, s.cache)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	s.counters.Calculations++
	if calc.Cached {
		s.counters.CacheHits++
	}
	s.mu.Unlock()

	if !calc.Result.Converged {
		s.log.WithFields(logrus.Fields{
			"principal":  t.Principal,
			"term":       t.TermYears,
			"iterations": calc.Result.Iterations,
		}).Warn("solver did not converge")
	}

	offset := finance.OffsetCost(t.Principal, t.TermYears, mortgageRate)
	resp := RateResponse{
		Calculation:  calc,
		MortgageRate: mortgageRate,
		Verdict:      finance.Compare(calc.Summary.TotalFees, offset),
	}
	s.emit(Event{Type: EventCalculation, Calculation: &calc})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: decoding body: %v", finance.ErrInvalidInput, err))
		return
	}

	scenarios := req.Scenarios
	if len(scenarios) == 0 {
		principal := req.Principal
		if principal == 0 {
			principal = s.cfg.Defaults.Principal
		}
		for _, l := range s.cfg.Lenders {
			l.Principal = principal
			scenarios = append(scenarios, l)
		}
	}
	if len(scenarios) == 0 {
		s.writeError(w, fmt.Errorf("%w: no scenarios to compare", finance.ErrInvalidInput))
		return
	}

	res, err := pipeline.EvaluateWithCache(scenarios, s.cache, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := CompareResponse{Results: make([]CompareResult, len(res.Results))}
	for i, sr := range res.Results {
		if sr.Err != nil {
			resp.Results[i] = CompareResult{Error: sr.Err.Error()}
			continue
		}
		o := sr.Outcome
		resp.Results[i] = CompareResult{Outcome: &o, Cached: sr.Cached}
	}

	outcomes := res.Outcomes()
	var offset *pipeline.OffsetInput
	if req.IncludeOffset == nil || *req.IncludeOffset {
		rate := s.cfg.MortgageRate
		if req.MortgageRate != nil {
			rate = *req.MortgageRate
		}
		offset = pipeline.OffsetFor(outcomes, rate)
	}
	resp.Ranking = pipeline.Rank(outcomes, offset)

	s.mu.Lock()
	s.counters.Comparisons++
	s.counters.CacheHits += int64(res.CacheHits)
	s.mu.Unlock()

	s.emit(Event{Type: EventComparison, Ranking: &resp.Ranking})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleTables(w http.ResponseWriter, r *http.Request) {
	t, _, err := s.termsFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tables, err := pipeline.BuildTables(t, s.cache)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n < len(events) {
			events = events[len(events)-n:]
		}
	}
	writeJSON(w, http.StatusOK, events)
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

	// Send current counters immediately.
	snap := s.snapshotStatus().Summary
	writeSSE(w, Event{Type: EventSnapshot, Timestamp: time.Now(), Snapshot: &snap})
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
	if ev.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.mu.Lock()
		s.counters.Requests++
		s.mu.Unlock()

		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}
