package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalengine/src/executors"
	"signalengine/src/model"
)

type mockEngine struct {
	summary   model.PortfolioSummary
	active    []model.Position
	closed    []model.Position
	history   []model.ExecutionRecord
	limit     int
	submitted []model.Signal
	submitErr error
}

func (m *mockEngine) Summary() model.PortfolioSummary   { return m.summary }
func (m *mockEngine) ActivePositions() []model.Position { return m.active }
func (m *mockEngine) ClosedPositions() []model.Position { return m.closed }

func (m *mockEngine) History(limit int) []model.ExecutionRecord {
	m.limit = limit
	return m.history
}

func (m *mockEngine) Submit(sig model.Signal) error {
	if m.submitErr != nil {
		return m.submitErr
	}
	m.submitted = append(m.submitted, sig)
	return nil
}

func TestPortfolioHandler(t *testing.T) {
	engine := &mockEngine{summary: model.PortfolioSummary{Balance: 100250, InitialBalance: 100000, ActivePositions: 1}}

	rr := httptest.NewRecorder()
	PortfolioHandler(engine).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 100250.0, body["portfolio_balance"])
	assert.Equal(t, 1.0, body["active_positions"])
}

func TestPositionsHandler(t *testing.T) {
	engine := &mockEngine{
		active: []model.Position{{ID: "open-1", Symbol: "BTCUSDT", Status: model.StatusActive}},
		closed: []model.Position{{ID: "closed-1", Symbol: "ETHUSDT", Status: model.StatusClosed}},
	}
	handler := PositionsHandler(engine)

	cases := []struct {
		query  string
		status int
		id     string
	}{
		{"", http.StatusOK, "open-1"},
		{"?status=open", http.StatusOK, "open-1"},
		{"?status=closed", http.StatusOK, "closed-1"},
		{"?status=pending", http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/positions"+tc.query, nil))
			require.Equal(t, tc.status, rr.Code)
			if tc.id != "" {
				assert.Contains(t, rr.Body.String(), tc.id)
			}
		})
	}
}

func TestHistoryHandler_Limit(t *testing.T) {
	engine := &mockEngine{history: []model.ExecutionRecord{{Sequence: 1, Action: model.HistoryEntry}}}
	handler := HistoryHandler(engine)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, defaultHistoryLimit, engine.limit)
	assert.Contains(t, rr.Body.String(), `"action":"ENTRY"`)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history?limit=5000", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, maxHistoryLimit, engine.limit)

	for _, bad := range []string{"abc", "0", "-3"} {
		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history?limit="+bad, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}

const validSignal = `{
	"symbol": "BTCUSDT",
	"direction": "long",
	"confidence": 0.85,
	"entry_price": 100,
	"stop_loss": 95,
	"take_profit_levels": [110, 120],
	"strength": "strong",
	"timestamp": "2024-03-05T14:00:00Z"
}`

func TestSubmitSignalHandler_Accepted(t *testing.T) {
	engine := &mockEngine{}

	rr := httptest.NewRecorder()
	SubmitSignalHandler(engine).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/signals", strings.NewReader(validSignal)))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rr.Code, rr.Body.String())
	}
	require.Len(t, engine.submitted, 1)
	sig := engine.submitted[0]
	assert.Equal(t, model.DirectionLong, sig.Direction)
	assert.Equal(t, model.StrengthStrong, sig.Strength)
	assert.Equal(t, []float64{110, 120}, sig.TakeProfitLevels)
}

func TestSubmitSignalHandler_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"bad json", `{"symbol":`, nil, http.StatusBadRequest},
		{"unknown field", `{"symbol":"BTCUSDT","leverage":10}`, nil, http.StatusBadRequest},
		{"bad direction", `{"symbol":"BTCUSDT","direction":"sideways"}`, nil, http.StatusBadRequest},
		{"validation", validSignal, fmt.Errorf("%w: stop loss must be positive", model.ErrValidationRejection), http.StatusBadRequest},
		{"queue full", validSignal, executors.ErrQueueFull, http.StatusServiceUnavailable},
		{"other", validSignal, assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := &mockEngine{submitErr: tc.err}
			rr := httptest.NewRecorder()
			SubmitSignalHandler(engine).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/signals", strings.NewReader(tc.body)))
			assert.Equal(t, tc.status, rr.Code)
			assert.Empty(t, engine.submitted)
		})
	}
}
