package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	s := New(Config{
		EventsBuffer: 50,
		MortgageRate: 6.0,
		Lenders: []finance.Scenario{
			{Name: "Brighte", TermYears: 5, FeeAmount: 2.30, FeeFrequency: finance.Weekly, EstablishmentFee: 75},
			{Name: "Bank Loan", TermYears: 5, InterestRate: 7.5, FeeFrequency: finance.Monthly, EstablishmentFee: 250},
		},
		Logger: quietLogger(),
	}, store.NewMemoryCache())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, v any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	_, srv := newTestService(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
}

func TestRate_QueryUsesDefaults(t *testing.T) {
	_, srv := newTestService(t)

	var got RateResponse
	code := getJSON(t, srv.URL+"/v1/rate", &got)
	require.Equal(t, http.StatusOK, code)

	assert.True(t, got.Result.Converged)
	assert.InDelta(t, 1.786, got.Result.AnnualizedRatePercent, 0.005)
	assert.Equal(t, 260, got.Summary.TotalPeriods)
	assert.InDelta(t, 673, got.Summary.TotalFees, 1e-9)
	assert.InDelta(t, 2250, got.Verdict.OffsetCost, 1e-9)
	assert.True(t, got.Verdict.FinancingCheaper)
	assert.False(t, got.Cached)

	code = getJSON(t, srv.URL+"/v1/rate", &got)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, got.Cached, "second identical request should hit the cache")
}

func TestRate_QueryOverrides(t *testing.T) {
	_, srv := newTestService(t)

	var got RateResponse
	code := getJSON(t, srv.URL+"/v1/rate?principal=3000&term=3&mortgage_rate=4", &got)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3000.0, got.Terms.Principal)
	assert.InDelta(t, 9.829, got.Result.AnnualizedRatePercent, 0.01)
	assert.Equal(t, 4.0, got.MortgageRate)
}

func TestRate_PostBodyKeepsDefaultsForOmittedFields(t *testing.T) {
	_, srv := newTestService(t)

	var got RateResponse
	code := postJSON(t, srv.URL+"/v1/rate", `{"principal": 1000, "term_years": 0.019230769230769232, "weekly_fee": 5, "establishment_fee": 10}`, &got)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, got.Summary.TotalPeriods)
	assert.InDelta(t, 0.015, got.Result.PeriodicRate, 1e-9)

	code = postJSON(t, srv.URL+"/v1/rate", `{"weekly_fee": 0, "establishment_fee": 0}`, &got)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 15000.0, got.Terms.Principal)
	assert.Less(t, got.Result.AnnualizedRatePercent, 1e-6)
}

func TestRate_ErrorStatuses(t *testing.T) {
	s, srv := newTestService(t)

	var body errorBody
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/v1/rate?principal=abc", &body))
	assert.Contains(t, body.Error, "principal")

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/v1/rate?principal=-5", &body))
	assert.Equal(t, http.StatusBadRequest, postJSON(t, srv.URL+"/v1/rate", `{not json`, &body))

	st := s.snapshotStatus()
	assert.Equal(t, int64(3), st.Summary.Errors)
	assert.NotEmpty(t, st.LastError)
}

func TestRate_RejectsExplicitZeroPeriods(t *testing.T) {
	_, srv := newTestService(t)

	var body errorBody
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/v1/rate?periods=0", &body))
	assert.Contains(t, body.Error, "periods")
	assert.Equal(t, http.StatusBadRequest, postJSON(t, srv.URL+"/v1/rate", `{"periods_per_year": 0}`, &body))
	assert.Contains(t, body.Error, "periods_per_year")

	var got RateResponse
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/v1/rate", `{"periods_per_year": 12}`, &got))
	assert.Equal(t, 60, got.Summary.TotalPeriods)
}

func TestRate_OversizedTermIsBadRequest(t *testing.T) {
	_, srv := newTestService(t)

	var body errorBody
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/v1/rate?term=1e17", &body))
	assert.Equal(t, http.StatusBadRequest, postJSON(t, srv.URL+"/v1/rate", `{"term_years": 1e8}`, &body))
}

func TestCompare_OversizedTermReportsErrorAndKeepsServing(t *testing.T) {
	_, srv := newTestService(t)

	var got CompareResponse
	code := postJSON(t, srv.URL+"/v1/compare",
		`{"scenarios": [{"name": "Forever", "principal": 1000, "term_years": 1e17, "fee_amount": 1, "fee_frequency": "weekly"},
		                {"name": "Brighte", "principal": 15000, "term_years": 5, "fee_amount": 2.3, "fee_frequency": "weekly", "establishment_fee": 75}]}`,
		&got)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, got.Results, 2)
	assert.Contains(t, got.Results[0].Error, "invalid input")
	assert.Nil(t, got.Results[0].Outcome)
	require.NotNil(t, got.Results[1].Outcome)

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", nil))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(finance.ErrInvalidInput))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(finance.ErrNumericDegeneracy))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func TestCompare_ConfiguredLenders(t *testing.T) {
	_, srv := newTestService(t)

	var got CompareResponse
	code := postJSON(t, srv.URL+"/v1/compare", `{"principal": 15000}`, &got)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, got.Results, 2)
	require.Len(t, got.Ranking.Options, 3)

	best, ok := got.Ranking.Best()
	require.True(t, ok)
	assert.Equal(t, "Brighte", best.Name)
	assert.InDelta(t, 8.522, got.Results[1].Outcome.EffectiveAPR, 0.001)
}

func TestCompare_ExplicitScenariosWithoutOffset(t *testing.T) {
	_, srv := newTestService(t)

	body := `{"include_offset": false, "scenarios": [
		{"name": "Green", "principal": 15000, "term_years": 7, "interest_rate": 5.5, "fee_frequency": "monthly"},
		{"name": "Broken", "principal": 0, "term_years": 7}
	]}`
	var got CompareResponse
	code := postJSON(t, srv.URL+"/v1/compare", body, &got)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, got.Results, 2)
	assert.NotNil(t, got.Results[0].Outcome)
	assert.NotEmpty(t, got.Results[1].Error)
	require.Len(t, got.Ranking.Options, 1)
	assert.False(t, got.Ranking.Options[0].IsOffset)
}

func TestTables(t *testing.T) {
	_, srv := newTestService(t)

	var got struct {
		Amounts []finance.AmountRow `json:"amounts"`
		Terms   []finance.TermRow   `json:"terms"`
	}
	code := getJSON(t, srv.URL+"/v1/tables?term=3", &got)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, got.Amounts, len(finance.DefaultAmounts))
	assert.Len(t, got.Terms, len(finance.DefaultTerms))
	assert.InDelta(t, 9.829, got.Amounts[0].Result.AnnualizedRatePercent, 0.01)
}

func TestEvents_RecordCalculations(t *testing.T) {
	_, srv := newTestService(t)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/rate", nil))
	}

	var events []Event
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/events", &events))
	require.Len(t, events, 3)
	assert.Equal(t, EventCalculation, events[0].Type)
	assert.NotEmpty(t, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.Equal(t, int64(3), events[2].Seq)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/events?limit=1", &events))
	require.Len(t, events, 1)
	assert.Equal(t, int64(3), events[0].Seq)
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2, Logger: quietLogger()}, nil)

	s.publishEvent(Event{Seq: 1})
	s.publishEvent(Event{Seq: 2})
	s.publishEvent(Event{Seq: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].Seq != 2 || s.events[1].Seq != 3 {
		t.Fatalf("events ring contains [%d, %d], want [2, 3]", s.events[0].Seq, s.events[1].Seq)
	}
}

func TestPruneOnce(t *testing.T) {
	cache, err := store.Open(t.TempDir() + "/results.db")
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	require.NoError(t, cache.Put("old", store.Entry{Kind: store.KindTerms, CreatedAt: time.Now().Add(-72 * time.Hour)}))
	require.NoError(t, cache.Put("new", store.Entry{Kind: store.KindTerms}))

	s := New(Config{PruneAfter: 24 * time.Hour, Logger: quietLogger()}, cache)
	s.pruneOnce()

	st := s.snapshotStatus()
	assert.Equal(t, int64(1), st.LastPruned)
	assert.False(t, st.LastPruneAt.IsZero())
	require.Equal(t, 1, st.EventCount)
	assert.Equal(t, EventPrune, s.events[0].Type)
}

func TestStream_SendsSnapshotThenEvents(t *testing.T) {
	s, srv := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	first := readSSE(t, reader)
	assert.Equal(t, EventSnapshot, first.Type)

	require.Eventually(t, func() bool {
		return s.snapshotStatus().SubscriberCount == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/rate?principal=5000", nil))
	next := readSSE(t, reader)
	assert.Equal(t, EventCalculation, next.Type)
	require.NotNil(t, next.Calculation)
	assert.Equal(t, 5000.0, next.Calculation.Terms.Principal)
}

func readSSE(t *testing.T, r *bufio.Reader) Event {
	t.Helper()
	var data []byte
	for {
		line, err := r.ReadBytes('\n')
		require.NoError(t, err)
		line = bytes.TrimRight(line, "\n")
		if len(line) == 0 {
			break
		}
		if rest, ok := bytes.CutPrefix(line, []byte("data: ")); ok {
			data = rest
		}
	}
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}
