package tp_sl

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"signalengine/src/model"
)

// BuildLadder splits qty evenly across the take-profit levels and orders the
// rungs by distance from entry, nearest first. The last rung absorbs the
// rounding remainder so the rung quantities sum to qty.
func BuildLadder(entry float64, levels []float64, qty float64) []model.TakeProfitRung {
	if len(levels) == 0 || qty <= 0 {
		return nil
	}

	sorted := append([]float64(nil), levels...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i]-entry) < math.Abs(sorted[j]-entry)
	})

	total := decimal.NewFromFloat(qty)
	share := total.Div(decimal.NewFromInt(int64(len(sorted))))
	allocated := decimal.Zero

	ladder := make([]model.TakeProfitRung, len(sorted))
	for i, price := range sorted {
		q := share
		if i == len(sorted)-1 {
			q = total.Sub(allocated)
		}
		allocated = allocated.Add(q)
		ladder[i] = model.TakeProfitRung{Price: price, Quantity: q.InexactFloat64()}
	}
	return ladder
}
