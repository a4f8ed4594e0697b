package risk

import (
	"math"

	"signalengine/src/model"
)

// Sizer turns an accepted signal into a quantity.
type Sizer struct {
	cfg Config
}

func NewSizer(cfg Config) *Sizer {
	return &Sizer{cfg: cfg}
}

// ConfidenceMultiplier is min(confidence*1.5, 1).
func ConfidenceMultiplier(confidence float64) float64 {
	return math.Min(confidence*1.5, 1.0)
}

// Size returns the quantity to trade, or 0 when the result would be worth
// less than the minimum notional (the caller reports a sizing rejection).
//
//	risk_based       = balance*risk_per_trade / |entry-stop|
//	confidence_based = balance*max_position_fraction / entry * mult
//	quantity         = min(risk_based, confidence_based) * mult
func (s *Sizer) Size(sig model.Signal, balance float64) float64 {
	stopDistance := sig.StopDistance()
	if balance <= 0 || sig.EntryPrice <= 0 || stopDistance == 0 {
		return 0
	}

	mult := ConfidenceMultiplier(sig.Confidence)
	riskBased := balance * s.cfg.RiskPerTrade / stopDistance
	confidenceBased := balance * s.cfg.MaxPositionFraction / sig.EntryPrice * mult

	qty := math.Min(riskBased, confidenceBased) * mult
	if qty <= 0 || s.BelowMinimum(qty, sig.EntryPrice) {
		return 0
	}
	return qty
}

// BelowMinimum reports whether qty at price is worth less than the minimum
// notional.
func (s *Sizer) BelowMinimum(qty, price float64) bool {
	return qty*price < s.cfg.MinNotional
}
