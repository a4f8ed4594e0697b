package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalengine/src/model"
)

func longSignal(symbol string, confidence float64) model.Signal {
	return model.Signal{
		Symbol:           symbol,
		Direction:        model.DirectionLong,
		Confidence:       confidence,
		EntryPrice:       100,
		StopLoss:         95,
		TakeProfitLevels: []float64{110, 120},
		RiskReward:       2,
		Strength:         model.StrengthStrong,
		Timestamp:        time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC),
	}
}

func openPosition(id, symbol string, qty, price float64) *model.Position {
	return &model.Position{
		ID:           id,
		Symbol:       symbol,
		Status:       model.StatusActive,
		Quantity:     qty,
		CurrentPrice: price,
	}
}

func TestGateRejectsLowConfidence(t *testing.T) {
	gate := NewGate(DefaultConfig(), nil, nil)

	for _, c := range []float64{0, 0.1, 0.35, 0.59, 0.5999} {
		d := gate.Evaluate(longSignal("BTCUSDT", c), nil, 100000)
		assert.False(t, d.Accepted, "confidence %.4f", c)
		assert.Equal(t, RuleConfidence, d.Rule)
		assert.True(t, errors.Is(d.Err, model.ErrValidationRejection))
	}
}

func TestGateRejectsPoorRiskRewardRegardlessOfConfidence(t *testing.T) {
	gate := NewGate(DefaultConfig(), nil, nil)

	sig := longSignal("ETHUSDT", 0.85)
	sig.TakeProfitLevels = []float64{107}
	sig.RiskReward = 0

	require.InDelta(t, 1.4, sig.RewardRatio(), 1e-9)

	d := gate.Evaluate(sig, nil, 100000)
	assert.False(t, d.Accepted)
	assert.Equal(t, RuleRiskReward, d.Rule)
	assert.Contains(t, d.Reason, "1.40")
}

func TestGateRejectsMalformedSignal(t *testing.T) {
	gate := NewGate(DefaultConfig(), nil, nil)

	sig := longSignal("BTCUSDT", 0.9)
	sig.StopLoss = 105

	d := gate.Evaluate(sig, nil, 100000)
	assert.Equal(t, RuleShape, d.Rule)
	assert.True(t, errors.Is(d.Err, model.ErrValidationRejection))
}

func TestGateRejectsTakeProfitOnLosingSide(t *testing.T) {
	gate := NewGate(DefaultConfig(), nil, nil)

	long := longSignal("BTCUSDT", 0.9)
	long.TakeProfitLevels = []float64{98}
	long.RiskReward = 2

	d := gate.Evaluate(long, nil, 100000)
	assert.False(t, d.Accepted)
	assert.Equal(t, RuleShape, d.Rule)
	assert.True(t, errors.Is(d.Err, model.ErrValidationRejection))
	assert.Contains(t, d.Reason, "above entry")

	short := longSignal("BTCUSDT", 0.9)
	short.Direction = model.DirectionShort
	short.StopLoss = 105
	short.TakeProfitLevels = []float64{90, 100}
	short.RiskReward = 2

	d = gate.Evaluate(short, nil, 100000)
	assert.False(t, d.Accepted)
	assert.Equal(t, RuleShape, d.Rule)
	assert.True(t, errors.Is(d.Err, model.ErrValidationRejection))
	assert.Contains(t, d.Reason, "below entry")
}

func TestGateProjectedExposure(t *testing.T) {
	gate := NewGate(DefaultConfig(), nil, nil)

	// conf 0.9: size = min(400, 100) = 100 units, 10_000 notional -> +10%
	sig := longSignal("SOLUSDT", 0.9)

	t.Run("under the limit", func(t *testing.T) {
		active := []*model.Position{openPosition("p1", "BTCUSDT", 300, 100)}
		d := gate.Evaluate(sig, active, 100000)
		require.True(t, d.Accepted, d.Reason)
		assert.InDelta(t, 0.4, d.ProjectedExposure, 1e-9)
	})

	t.Run("crossing the limit", func(t *testing.T) {
		active := []*model.Position{openPosition("p1", "BTCUSDT", 450, 100)}
		d := gate.Evaluate(sig, active, 100000)
		assert.False(t, d.Accepted)
		assert.Equal(t, RuleExposure, d.Rule)
		assert.InDelta(t, 0.55, d.ProjectedExposure, 1e-9)
	})

	t.Run("no balance", func(t *testing.T) {
		d := gate.Evaluate(sig, nil, 0)
		assert.Equal(t, RuleExposure, d.Rule)
	})
}

func TestGateOnePositionPerSymbol(t *testing.T) {
	gate := NewGate(DefaultConfig(), nil, nil)
	sig := longSignal("BTCUSDT", 0.9)

	for _, status := range []model.PositionStatus{model.StatusActive, model.StatusPartialClose} {
		p := openPosition("p1", "BTCUSDT", 10, 100)
		p.Status = status
		d := gate.Evaluate(sig, []*model.Position{p}, 100000)
		assert.Equal(t, RuleSymbol, d.Rule, status.String())
	}

	d := gate.Evaluate(sig, []*model.Position{openPosition("p2", "ETHUSDT", 10, 100)}, 100000)
	assert.True(t, d.Accepted)
}

func TestGateMarketConditionHook(t *testing.T) {
	var seen time.Time
	at := time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)
	market := MarketConditionFunc(func(sig model.Signal, now time.Time) bool {
		seen = now
		return sig.Symbol != "DOGEUSDT"
	})
	gate := NewGate(DefaultConfig(), nil, market).WithClock(func() time.Time { return at })

	d := gate.Evaluate(longSignal("DOGEUSDT", 0.9), nil, 100000)
	assert.Equal(t, RuleMarket, d.Rule)
	assert.Equal(t, at, seen)

	assert.True(t, gate.Evaluate(longSignal("BTCUSDT", 0.9), nil, 100000).Accepted)
}

func TestGateIsPure(t *testing.T) {
	gate := NewGate(DefaultConfig(), nil, nil)
	active := []*model.Position{openPosition("p1", "BTCUSDT", 100, 100)}
	before := *active[0]

	first := gate.Evaluate(longSignal("ETHUSDT", 0.7), active, 100000)
	second := gate.Evaluate(longSignal("ETHUSDT", 0.7), active, 100000)

	assert.Equal(t, first, second)
	assert.Equal(t, before, *active[0])
}
