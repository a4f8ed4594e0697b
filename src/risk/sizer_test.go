package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"signalengine/src/model"
)

func TestSizerSize(t *testing.T) {
	sizer := NewSizer(DefaultConfig())

	tests := []struct {
		name       string
		confidence float64
		entry      float64
		stop       float64
		balance    float64
		want       float64
	}{
		// risk 2000/5=400, conf 10000/100=100 -> 100
		{name: "confidence capped at one", confidence: 0.9, entry: 100, stop: 95, balance: 100000, want: 100},
		// mult 0.9: conf 100*0.9=90 -> 90*0.9
		{name: "confidence below cap", confidence: 0.6, entry: 100, stop: 95, balance: 100000, want: 81},
		// wide stop: risk 2000/50=40 -> 40
		{name: "risk bound wins", confidence: 0.8, entry: 100, stop: 50, balance: 100000, want: 40},
		{name: "below minimum notional", confidence: 0.9, entry: 100, stop: 95, balance: 900, want: 0},
		{name: "zero stop distance", confidence: 0.9, entry: 100, stop: 100, balance: 100000, want: 0},
		{name: "no balance", confidence: 0.9, entry: 100, stop: 95, balance: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := model.Signal{Symbol: "BTCUSDT", Confidence: tt.confidence, EntryPrice: tt.entry, StopLoss: tt.stop}
			got := sizer.Size(sig, tt.balance)
			assert.InDelta(t, tt.want, got, 1e-9)
			if got > 0 {
				assert.GreaterOrEqual(t, got*tt.entry, DefaultConfig().MinNotional)
			}
		})
	}
}

func TestSizerBelowMinimum(t *testing.T) {
	sizer := NewSizer(DefaultConfig())

	assert.False(t, sizer.BelowMinimum(1, 100))
	assert.True(t, sizer.BelowMinimum(1, 99.9))
	assert.False(t, sizer.BelowMinimum(2, 99.9))
}

func TestConfidenceMultiplier(t *testing.T) {
	assert.InDelta(t, 0.9, ConfidenceMultiplier(0.6), 1e-12)
	assert.Equal(t, 1.0, ConfidenceMultiplier(0.7))
	assert.Equal(t, 1.0, ConfidenceMultiplier(1))
}
