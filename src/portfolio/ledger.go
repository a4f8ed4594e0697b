package portfolio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"signalengine/src/model"
	"signalengine/src/repository"
)

// HistoryRecorder persists execution records outside the process.
type HistoryRecorder interface {
	Record(ctx context.Context, rec model.ExecutionRecord) error
}

// Exit describes one close slice handed to ApplyClose. Status is
// StatusPartialClose for a slice, StatusClosed or StatusStoppedOut for the
// final close; a final close always takes the whole remaining quantity.
type Exit struct {
	Quantity  float64
	Price     float64
	Fee       float64
	OrderType model.OrderType
	Reason    string
	Status    model.PositionStatus
	At        time.Time
}

// Ledger is the portfolio book: balance, active and closed positions and
// the append-only execution history.
type Ledger struct {
	mu sync.RWMutex

	initial  decimal.Decimal
	balance  decimal.Decimal
	realized decimal.Decimal
	fees     decimal.Decimal
	exposure float64

	active  *repository.PositionRepository
	closed  []*model.Position
	history []model.ExecutionRecord
	seq     uint64

	recorder HistoryRecorder
	logger   *logrus.Entry
	now      func() time.Time
}

// NewLedger starts a book at initialBalance. recorder may be nil to keep the
// history in memory only.
func NewLedger(initialBalance float64, recorder HistoryRecorder, logger *logrus.Entry) *Ledger {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	initial := decimal.NewFromFloat(initialBalance)
	return &Ledger{
		initial:  initial,
		balance:  initial,
		active:   repository.NewPositionRepository(),
		recorder: recorder,
		logger:   logger.WithField("component", "PortfolioLedger"),
		now:      time.Now,
	}
}

// WithClock overrides the time stamped on history records and summaries.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// WithSequenceStart continues numbering after an already persisted history.
func (l *Ledger) WithSequenceStart(last uint64) *Ledger {
	l.seq = last
	return l
}

// Open books a freshly filled position together with its protective orders.
func (l *Ledger) Open(ctx context.Context, p *model.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.active.Add(p)
	l.fees = l.fees.Add(decimal.NewFromFloat(p.Fees))

	dir := p.Direction()
	l.appendRecord(ctx, model.ExecutionRecord{
		PositionID: p.ID,
		Action:     model.HistoryEntry,
		Symbol:     p.Symbol,
		Side:       dir.EntrySide().String(),
		OrderType:  p.EntryOrderType.String(),
		Quantity:   p.OriginalQuantity,
		Price:      p.EntryPrice,
		Fee:        p.Fees,
		Reason:     fmt.Sprintf("%s signal, confidence %.2f", p.Signal.Strength, p.Signal.Confidence),
		Timestamp:  p.EntryTime,
	})
	l.appendRecord(ctx, model.ExecutionRecord{
		PositionID: p.ID,
		Action:     model.HistoryPlaceStop,
		Symbol:     p.Symbol,
		Side:       p.StopOrder.Side.String(),
		OrderType:  p.StopOrder.Type.String(),
		Quantity:   p.StopOrder.Quantity,
		Price:      p.StopOrder.Price,
		Timestamp:  p.EntryTime,
	})
	for i, rung := range p.Ladder {
		l.appendRecord(ctx, model.ExecutionRecord{
			PositionID: p.ID,
			Action:     model.HistoryPlaceTakeProfit,
			Symbol:     p.Symbol,
			Side:       dir.ExitSide().String(),
			OrderType:  model.OrderTypeLimit.String(),
			Quantity:   rung.Quantity,
			Price:      rung.Price,
			Reason:     fmt.Sprintf("take profit %d", i+1),
			Timestamp:  p.EntryTime,
		})
	}
	l.recomputeExposure()
}

// ApplyClose books a partial or full close against p. Closing a position
// that is already terminal returns model.ErrPositionClosed and changes nothing.
func (l *Ledger) ApplyClose(ctx context.Context, p *model.Position, exit Exit) (model.ExecutionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p.Status.IsTerminal() {
		return model.ExecutionRecord{}, fmt.Errorf("%w: %s is %s", model.ErrPositionClosed, p.ID, p.Status)
	}
	if _, ok := l.active.Get(p.ID); !ok {
		return model.ExecutionRecord{}, fmt.Errorf("%w: %s", model.ErrUnknownPosition, p.ID)
	}
	if !p.Status.CanTransition(exit.Status) {
		return model.ExecutionRecord{}, fmt.Errorf("%w: illegal transition %s -> %s", model.ErrInternal, p.Status, exit.Status)
	}

	full := exit.Status.IsTerminal()
	qty := exit.Quantity
	if full || qty > p.Quantity {
		qty = p.Quantity
	}
	if qty <= 0 {
		return model.ExecutionRecord{}, fmt.Errorf("%w: empty close for %s", model.ErrInternal, p.ID)
	}
	at := exit.At
	if at.IsZero() {
		at = l.now()
	}

	pnl := decimal.NewFromFloat(exit.Price).
		Sub(decimal.NewFromFloat(p.EntryPrice)).
		Mul(decimal.NewFromFloat(qty)).
		Mul(decimal.NewFromFloat(p.Direction().Sign()))

	p.RealizedPnL = decimal.NewFromFloat(p.RealizedPnL).Add(pnl).InexactFloat64()
	p.Fees = decimal.NewFromFloat(p.Fees).Add(decimal.NewFromFloat(exit.Fee)).InexactFloat64()
	p.Status = exit.Status
	p.LastUpdate = at
	if exit.Reason != "" {
		p.ExitReasons = append(p.ExitReasons, exit.Reason)
	}
	l.realized = l.realized.Add(pnl)
	l.fees = l.fees.Add(decimal.NewFromFloat(exit.Fee))

	action := model.HistoryPartialClose
	if full {
		action = model.HistoryClose
		price := exit.Price
		p.ExitPrice = &price
		p.ExitQuantity = qty
		p.Quantity = 0
		p.UnrealizedPnL = 0
		p.ClosedAt = &at

		l.balance = l.balance.Add(decimal.NewFromFloat(p.RealizedPnL))
		l.active.Remove(p.ID)
		l.closed = append(l.closed, p)
	} else {
		p.Quantity = decimal.NewFromFloat(p.Quantity).Sub(decimal.NewFromFloat(qty)).InexactFloat64()
		p.UnrealizedPnL = p.PnL(p.CurrentPrice, p.Quantity)
	}

	rec := l.appendRecord(ctx, model.ExecutionRecord{
		PositionID:  p.ID,
		Action:      action,
		Symbol:      p.Symbol,
		Side:        p.Direction().ExitSide().String(),
		OrderType:   exit.OrderType.String(),
		Quantity:    qty,
		Price:       exit.Price,
		Fee:         exit.Fee,
		RealizedPnL: pnl.InexactFloat64(),
		Reason:      exit.Reason,
		Timestamp:   at,
	})
	l.recomputeExposure()

	l.logger.WithFields(logrus.Fields{
		"symbol":      p.Symbol,
		"position_id": p.ID,
		"action":      string(action),
		"qty":         qty,
		"price":       exit.Price,
		"pnl":         pnl.InexactFloat64(),
		"reason":      exit.Reason,
	}).Info("close applied")

	return rec, nil
}

// appendRecord must be called with l.mu held.
func (l *Ledger) appendRecord(ctx context.Context, rec model.ExecutionRecord) model.ExecutionRecord {
	l.seq++
	rec.Sequence = l.seq
	if rec.Timestamp.IsZero() {
		rec.Timestamp = l.now()
	}
	l.history = append(l.history, rec)

	if l.recorder != nil {
		if err := l.recorder.Record(ctx, rec); err != nil {
			l.logger.WithError(err).WithFields(logrus.Fields{
				"position_id": rec.PositionID,
				"sequence":    rec.Sequence,
			}).Warn("failed to persist execution record")
		}
	}
	return rec
}

// recomputeExposure must be called with l.mu held.
func (l *Ledger) recomputeExposure() {
	l.exposure = exposureRatio(l.active.All(), l.balance.InexactFloat64())
}

func exposureRatio(active []*model.Position, balance float64) float64 {
	if balance <= 0 {
		return 0
	}
	total := 0.0
	for _, p := range active {
		total += p.Notional()
	}
	return total / balance
}

// Refresh recomputes the exposure ratio after positions were marked.
func (l *Ledger) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recomputeExposure()
}

func (l *Ledger) Balance() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance.InexactFloat64()
}

func (l *Ledger) ExposureRatio() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.exposure
}

// Active returns the live positions in arrival order. Callers outside the
// position manager must treat them as read only.
func (l *Ledger) Active() []*model.Position {
	return l.active.All()
}

func (l *Ledger) Get(id string) (*model.Position, bool) {
	return l.active.Get(id)
}

func (l *Ledger) Symbols() []string {
	return l.active.Symbols()
}

// Closed returns copies of closed positions in close order.
func (l *Ledger) Closed() []model.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Position, 0, len(l.closed))
	for _, p := range l.closed {
		out = append(out, p.Clone())
	}
	return out
}

// History returns the last limit records in append order; limit <= 0 means all.
func (l *Ledger) History(limit int) []model.ExecutionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	start := 0
	if limit > 0 && len(l.history) > limit {
		start = len(l.history) - limit
	}
	return append([]model.ExecutionRecord(nil), l.history[start:]...)
}

// Summary projects the book into the dashboard read model.
func (l *Ledger) Summary() model.PortfolioSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	active := l.active.All()
	balance := l.balance.InexactFloat64()

	unrealized := decimal.Zero
	value := 0.0
	snapshots := make([]model.Position, 0, len(active))
	for _, p := range active {
		unrealized = unrealized.Add(decimal.NewFromFloat(p.UnrealizedPnL))
		value += p.Notional()
		snapshots = append(snapshots, p.Clone())
	}

	realized := decimal.Zero
	wins := 0
	for _, p := range l.closed {
		realized = realized.Add(decimal.NewFromFloat(p.RealizedPnL))
		if p.RealizedPnL > 0 {
			wins++
		}
	}

	summary := model.PortfolioSummary{
		Balance:              balance,
		InitialBalance:       l.initial.InexactFloat64(),
		ActivePositions:      len(active),
		ClosedPositions:      len(l.closed),
		TotalUnrealizedPnL:   unrealized.InexactFloat64(),
		TotalRealizedPnL:     realized.InexactFloat64(),
		TotalPnL:             unrealized.Add(realized).InexactFloat64(),
		TotalFees:            l.fees.InexactFloat64(),
		ActivePositionsValue: value,
		ExposureRatio:        exposureRatio(active, balance),
		Positions:            snapshots,
		GeneratedAt:          l.now(),
	}
	if !l.initial.IsZero() {
		summary.PortfolioReturnPct = l.balance.Add(unrealized).Div(l.initial).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	if len(l.closed) > 0 {
		summary.WinRate = float64(wins) / float64(len(l.closed))
	}
	return summary
}
