package position

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"signalengine/src/connectors"
	"signalengine/src/model"
	"signalengine/src/portfolio"
	"signalengine/src/tp_sl"
)

// quantityTolerance is relative to the original quantity.
const quantityTolerance = 1e-9

// Manager owns every Position: it opens them from entry fills and walks
// them through the exit checks on each price tick.
type Manager struct {
	cfg    Config
	exec   connectors.OrderExecutor
	ledger *portfolio.Ledger
	locks  symbolLocks
	logger *logrus.Entry
	now    func() time.Time
	newID  func() string
}

// NewManager builds a manager that sends orders to exec and books fills on
// ledger. A nil logger falls back to the standard logger.
func NewManager(cfg Config, exec connectors.OrderExecutor, ledger *portfolio.Ledger, logger *logrus.Entry) *Manager {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		cfg:    cfg,
		exec:   exec,
		ledger: ledger,
		logger: logger.WithField("component", "PositionManager"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock overrides the time used for entry, tick and exit timestamps.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// EntryOrder picks market or limit entry from the signal confidence.
func (m *Manager) EntryOrder(sig model.Signal, qty float64) connectors.OrderRequest {
	req := connectors.OrderRequest{
		Symbol:   sig.Symbol,
		Side:     sig.Direction.EntrySide(),
		Quantity: qty,
		Type:     model.OrderTypeMarket,
		Price:    sig.EntryPrice,
	}
	if sig.Confidence < m.cfg.EntryMarketConfidence {
		req.Type = model.OrderTypeLimit
		switch sig.Direction {
		case model.DirectionLong:
			req.Price = sig.EntryPrice * (1 - m.cfg.EntryLimitOffset)
		case model.DirectionShort:
			req.Price = sig.EntryPrice * (1 + m.cfg.EntryLimitOffset)
		}
	}
	return req
}

// Enter sends the entry order and opens the position on a fill.
func (m *Manager) Enter(ctx context.Context, sig model.Signal, qty float64) (*model.Position, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity %v", model.ErrSizingRejection, qty)
	}
	fill := m.exec.Execute(ctx, m.EntryOrder(sig, qty))
	if !fill.Filled() {
		m.logger.WithField("symbol", sig.Symbol).WithField("error", fill.Error).Warn("entry order failed")
		return nil, fmt.Errorf("entry order failed: %w", fill.Err())
	}
	return m.Open(ctx, sig, fill)
}

// Open creates the position from an entry fill, records its stop and
// take-profit orders and books it as ACTIVE.
func (m *Manager) Open(ctx context.Context, sig model.Signal, fill connectors.Fill) (*model.Position, error) {
	if !fill.Filled() {
		return nil, fill.Err()
	}
	unlock := m.locks.lock(sig.Symbol)
	defer unlock()

	dir := sig.Direction
	at := fill.FilledAt
	if at.IsZero() {
		at = m.now()
	}
	entryType := fill.OrderType
	if entryType == 0 {
		entryType = model.OrderTypeMarket
	}

	p := &model.Position{
		ID:               m.newID(),
		Symbol:           sig.Symbol,
		Status:           model.StatusPending,
		Signal:           sig.Clone(),
		EntryPrice:       fill.Price,
		EntryOrderType:   entryType,
		CurrentPrice:     fill.Price,
		Quantity:         fill.Quantity,
		OriginalQuantity: fill.Quantity,
		Fees:             fill.Fee,
		StopLoss:         sig.StopLoss,
		TrailingDistance: math.Abs(fill.Price - sig.StopLoss),
		StopOrder: model.RestingOrder{
			ID:       m.newID(),
			Side:     dir.ExitSide(),
			Type:     model.OrderTypeStop,
			Price:    sig.StopLoss,
			Quantity: fill.Quantity,
		},
		Ladder:      tp_sl.BuildLadder(fill.Price, sig.TakeProfitLevels, fill.Quantity),
		EntryTime:   at,
		LastUpdate:  at,
		ExitReasons: []string{},
	}
	for i := range p.Ladder {
		p.Ladder[i].OrderID = m.newID()
	}

	if !p.Status.CanTransition(model.StatusActive) {
		return nil, fmt.Errorf("%w: cannot activate %s", model.ErrInternal, p.ID)
	}
	p.Status = model.StatusActive
	m.ledger.Open(ctx, p)

	m.logger.WithFields(logrus.Fields{
		"symbol":      p.Symbol,
		"position_id": p.ID,
		"entry_price": p.EntryPrice,
		"qty":         p.Quantity,
		"stop":        p.StopLoss,
		"order_type":  entryType.String(),
	}).Info("position opened")

	return p, nil
}

// UpdateAll ticks every open position that has a price, in arrival order.
func (m *Manager) UpdateAll(ctx context.Context, prices map[string]float64) []Event {
	var events []Event
	for _, p := range m.ledger.Active() {
		price, ok := prices[p.Symbol]
		if !ok || price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		events = append(events, m.updatePosition(ctx, p, price)...)
	}
	m.ledger.Refresh()
	return events
}

// Update ticks the open positions of one symbol.
func (m *Manager) Update(ctx context.Context, symbol string, price float64) []Event {
	return m.UpdateAll(ctx, map[string]float64{symbol: price})
}

func (m *Manager) updatePosition(ctx context.Context, p *model.Position, price float64) (events []Event) {
	unlock := m.locks.lock(p.Symbol)
	defer unlock()

	log := m.logger.WithFields(logrus.Fields{"symbol": p.Symbol, "position_id": p.ID})
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: update panicked: %v", model.ErrInternal, r)
			log.WithError(err).Error("position update failed")
			events = append(events, Event{Kind: EventError, PositionID: p.ID, Symbol: p.Symbol, Status: p.Status, Price: price, Err: err})
		}
	}()

	if !p.Status.IsOpen() {
		return nil
	}

	at := m.now()
	prev := p.CurrentPrice
	p.Mark(price, at)
	dir := p.Direction()

	if stop, moved := tp_sl.NextTrailingStop(dir, p.StopLoss, prev, price, p.TrailingDistance); moved {
		log.WithField("old_stop", p.StopLoss).WithField("new_stop", stop).Info("trailing stop updated")
		p.StopLoss = stop
		p.StopOrder.Price = stop
		events = append(events, Event{Kind: EventTrailingStop, PositionID: p.ID, Symbol: p.Symbol, Status: p.Status, Price: stop})
	}

	if tp_sl.StopBreached(dir, price, p.StopLoss) {
		return append(events, m.exit(ctx, p, p.Quantity, p.StopLoss, model.OrderTypeStop, "stop loss triggered", model.StatusStoppedOut, at))
	}

	tolerance := p.OriginalQuantity * quantityTolerance
	for i := range p.Ladder {
		rung := &p.Ladder[i]
		if rung.Consumed || !tp_sl.TargetReached(dir, price, rung.Price) {
			continue
		}
		status := model.StatusPartialClose
		full := rung.Quantity >= p.Quantity-tolerance
		if full {
			status = model.StatusClosed
		}
		ev := m.exit(ctx, p, rung.Quantity, rung.Price, model.OrderTypeLimit, fmt.Sprintf("take profit %d hit", i+1), status, at)
		events = append(events, ev)
		if ev.Kind == EventError {
			return events
		}
		rung.Consumed = true
		if full {
			return events
		}
	}

	// Time and momentum exits close at the tick price.
	if maxHold := m.cfg.MaxHold(p.Signal.Strength); at.Sub(p.EntryTime) > maxHold {
		return append(events, m.exit(ctx, p, p.Quantity, price, model.OrderTypeLimit, "max hold time reached", model.StatusClosed, at))
	}

	if m.momentumFaded(p) {
		return append(events, m.exit(ctx, p, p.Quantity, price, model.OrderTypeLimit, "profit protection", model.StatusClosed, at))
	}

	return events
}

func (m *Manager) momentumFaded(p *model.Position) bool {
	threshold := m.cfg.MomentumMinProfitFraction * p.EntryPrice * p.Quantity
	return p.MaxProfit > threshold && p.UnrealizedPnL < p.MaxProfit*m.cfg.MomentumRetraceRatio
}

// exit sends the closing order and books the fill. A failed order leaves the
// position untouched.
func (m *Manager) exit(ctx context.Context, p *model.Position, qty, price float64, orderType model.OrderType, reason string, status model.PositionStatus, at time.Time) Event {
	log := m.logger.WithFields(logrus.Fields{"symbol": p.Symbol, "position_id": p.ID, "reason": reason})

	fill := m.exec.Execute(ctx, connectors.OrderRequest{
		Symbol:   p.Symbol,
		Side:     p.Direction().ExitSide(),
		Quantity: qty,
		Type:     orderType,
		Price:    price,
	})
	if !fill.Filled() {
		err := fill.Err()
		log.WithError(err).Warn("exit order failed")
		return Event{Kind: EventError, PositionID: p.ID, Symbol: p.Symbol, Status: p.Status, Price: price, Quantity: qty, Reason: reason, Err: err}
	}

	before := p.Quantity
	rec, err := m.ledger.ApplyClose(ctx, p, portfolio.Exit{
		Quantity:  fill.Quantity,
		Price:     fill.Price,
		Fee:       fill.Fee,
		OrderType: orderType,
		Reason:    reason,
		Status:    status,
		At:        at,
	})
	if err != nil {
		log.WithError(err).Error("failed to book exit")
		return Event{Kind: EventError, PositionID: p.ID, Symbol: p.Symbol, Status: p.Status, Price: fill.Price, Quantity: qty, Reason: reason, Err: err}
	}

	kind := EventClose
	if !status.IsTerminal() {
		kind = EventPartialClose
		// watermarks follow the remaining size
		if before > 0 {
			ratio := p.Quantity / before
			p.MaxProfit *= ratio
			p.MaxLoss *= ratio
		}
		p.StopOrder.Quantity = p.Quantity
	}

	return Event{
		Kind:        kind,
		PositionID:  p.ID,
		Symbol:      p.Symbol,
		Status:      p.Status,
		Price:       fill.Price,
		Quantity:    rec.Quantity,
		RealizedPnL: rec.RealizedPnL,
		Reason:      reason,
	}
}
