package tp_sl

import (
	"github.com/shopspring/decimal"

	"signalengine/src/model"
)

// NextTrailingStop applies the trailing stop for one tick.
//
// Long:
// - gate: price rose since the previous tick
// - candidate: price - distance
// - update: SL = max(SL, candidate)
//
// Short:
// - gate: price fell since the previous tick
// - candidate: price + distance
// - update: SL = min(SL, candidate)
//
// The stop never loosens.
func NextTrailingStop(
	dir model.Direction,
	currentSL float64,
	prevPrice float64,
	price float64,
	distance float64,
) (newSL float64, moved bool) {
	if distance <= 0 {
		return currentSL, false
	}

	sl := decimal.NewFromFloat(currentSL)
	prev := decimal.NewFromFloat(prevPrice)
	px := decimal.NewFromFloat(price)
	dist := decimal.NewFromFloat(distance)

	switch dir {
	case model.DirectionLong:
		if !px.GreaterThan(prev) {
			return currentSL, false
		}
		candidate := px.Sub(dist)
		if candidate.GreaterThan(sl) {
			return candidate.InexactFloat64(), true
		}
		return currentSL, false

	case model.DirectionShort:
		if !px.LessThan(prev) {
			return currentSL, false
		}
		candidate := px.Add(dist)
		if candidate.LessThan(sl) {
			return candidate.InexactFloat64(), true
		}
		return currentSL, false

	default:
		return currentSL, false
	}
}

// StopBreached reports whether price has gone through the stop.
func StopBreached(dir model.Direction, price, stop float64) bool {
	switch dir {
	case model.DirectionLong:
		return price <= stop
	case model.DirectionShort:
		return price >= stop
	default:
		return false
	}
}

// TargetReached reports whether price has reached a take-profit target.
func TargetReached(dir model.Direction, price, target float64) bool {
	switch dir {
	case model.DirectionLong:
		return price >= target
	case model.DirectionShort:
		return price <= target
	default:
		return false
	}
}
