package executors

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"signalengine/src/connectors"
	"signalengine/src/model"
	"signalengine/src/portfolio"
	"signalengine/src/position"
	"signalengine/src/risk"
)

var ErrQueueFull = errors.New("signal queue full")

// SignalSource yields signals that have not been processed yet.
type SignalSource interface {
	PendingSignals(ctx context.Context) ([]model.Signal, error)
}

// PriceSource returns the latest price per symbol. Missing symbols are skipped.
type PriceSource interface {
	LatestPrices(ctx context.Context, symbols []string) (map[string]float64, error)
}

// Observer receives engine output after the engine lock is released.
type Observer interface {
	OnExecution(ctx context.Context, res model.ExecutionResult)
	OnPositionEvent(ctx context.Context, ev position.Event)
	OnSummary(ctx context.Context, s model.PortfolioSummary)
}

type Options struct {
	Risk           risk.Config
	Position       position.Config
	Market         risk.MarketCondition
	Executor       connectors.OrderExecutor
	Recorder       portfolio.HistoryRecorder
	InitialBalance float64
	SequenceStart  uint64
	QueueSize      int
	Logger         *logrus.Entry
	Now            func() time.Time
}

// UpdateReport is the outcome of one price tick.
type UpdateReport struct {
	Events  []position.Event
	Errors  []error
	Summary model.PortfolioSummary
}

// Engine ties the gate, sizer, position manager and ledger together. All
// mutations happen under one write lock, so accepting and sizing a signal
// never interleaves with a tick.
type Engine struct {
	mu sync.RWMutex

	gate    *risk.Gate
	sizer   *risk.Sizer
	manager *position.Manager
	ledger  *portfolio.Ledger
	queue   chan model.Signal

	obsMu     sync.RWMutex
	observers []Observer

	logger *logrus.Entry
	now    func() time.Time
}

func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	exec := opts.Executor
	if exec == nil {
		exec = connectors.NewSimulator(connectors.DefaultSimulatorConfig(), logger).WithClock(now)
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	sizer := risk.NewSizer(opts.Risk)
	ledger := portfolio.NewLedger(opts.InitialBalance, opts.Recorder, logger).
		WithClock(now).
		WithSequenceStart(opts.SequenceStart)

	return &Engine{
		gate:    risk.NewGate(opts.Risk, sizer, opts.Market).WithClock(now),
		sizer:   sizer,
		manager: position.NewManager(opts.Position, exec, ledger, logger).WithClock(now),
		ledger:  ledger,
		queue:   make(chan model.Signal, queueSize),
		logger:  logger.WithField("component", "Engine"),
		now:     now,
	}
}

func (e *Engine) AddObserver(o Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, o)
}

func (e *Engine) snapshotObservers() []Observer {
	e.obsMu.RLock()
	defer e.obsMu.RUnlock()
	return append([]Observer(nil), e.observers...)
}

// ProcessSignals evaluates, sizes and executes each signal in order and
// returns one result per signal.
func (e *Engine) ProcessSignals(ctx context.Context, signals []model.Signal) []model.ExecutionResult {
	if len(signals) == 0 {
		return nil
	}

	e.mu.Lock()
	results := make([]model.ExecutionResult, 0, len(signals))
	for _, sig := range signals {
		results = append(results, e.processSignal(ctx, sig))
	}
	summary := e.ledger.Summary()
	e.mu.Unlock()

	for _, o := range e.snapshotObservers() {
		for _, res := range results {
			o.OnExecution(ctx, res)
		}
		o.OnSummary(ctx, summary)
	}
	return results
}

func (e *Engine) processSignal(ctx context.Context, sig model.Signal) (res model.ExecutionResult) {
	sig = sig.Clone()
	log := e.logger.WithField("symbol", sig.Symbol)
	res = model.ExecutionResult{Signal: sig, Timestamp: e.now()}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: signal processing panicked: %v", model.ErrInternal, r)
			log.WithError(err).Error("signal processing failed")
			res.Action = model.ActionError
			res.Reason = err.Error()
			res.Err = err
		}
	}()

	balance := e.ledger.Balance()
	decision := e.gate.Evaluate(sig, e.ledger.Active(), balance)
	if !decision.Accepted {
		log.WithField("rule", string(decision.Rule)).Info("signal rejected: " + decision.Reason)
		res.Action = model.ActionRejected
		res.Reason = decision.Reason
		res.Err = decision.Err
		return res
	}

	qty := e.sizer.Size(sig, balance)
	// Limit entries rest below (long) or above (short) the signal price.
	if qty > 0 && e.sizer.BelowMinimum(qty, e.manager.EntryOrder(sig, qty).Price) {
		qty = 0
	}
	if qty <= 0 {
		res.Action = model.ActionRejected
		res.Reason = "position size below minimum notional"
		res.Err = fmt.Errorf("%w: %s", model.ErrSizingRejection, res.Reason)
		log.Info("signal rejected: " + res.Reason)
		return res
	}

	p, err := e.manager.Enter(ctx, sig, qty)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrExecutionFailure):
		res.Action = model.ActionFailed
		res.Reason = err.Error()
		res.Err = err
		return res
	case errors.Is(err, model.ErrSizingRejection):
		res.Action = model.ActionRejected
		res.Reason = err.Error()
		res.Err = err
		return res
	default:
		res.Action = model.ActionError
		res.Reason = err.Error()
		res.Err = err
		return res
	}

	res.Action = model.ActionExecuted
	res.PositionID = p.ID
	res.EntryPrice = p.EntryPrice
	res.Quantity = p.OriginalQuantity
	return res
}

// UpdatePositions applies one price tick to every open position.
func (e *Engine) UpdatePositions(ctx context.Context, prices map[string]float64) UpdateReport {
	e.mu.Lock()
	events := e.manager.UpdateAll(ctx, prices)
	report := UpdateReport{Events: events, Summary: e.ledger.Summary()}
	e.mu.Unlock()

	for _, ev := range events {
		if ev.Err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("%s %s: %w", ev.Symbol, ev.PositionID, ev.Err))
		}
	}

	for _, o := range e.snapshotObservers() {
		for _, ev := range events {
			o.OnPositionEvent(ctx, ev)
		}
		o.OnSummary(ctx, report.Summary)
	}
	return report
}

// Submit queues a signal for the next cycle without blocking.
func (e *Engine) Submit(sig model.Signal) error {
	if err := sig.Validate(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrValidationRejection, err)
	}
	select {
	case e.queue <- sig.Clone():
		return nil
	default:
		return ErrQueueFull
	}
}

// PendingSignals drains the submission queue.
func (e *Engine) PendingSignals(context.Context) ([]model.Signal, error) {
	var out []model.Signal
	for {
		select {
		case sig := <-e.queue:
			out = append(out, sig)
		default:
			return out, nil
		}
	}
}

func (e *Engine) Summary() model.PortfolioSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Summary()
}

func (e *Engine) ActivePositions() []model.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	active := e.ledger.Active()
	out := make([]model.Position, 0, len(active))
	for _, p := range active {
		out = append(out, p.Clone())
	}
	return out
}

func (e *Engine) ClosedPositions() []model.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Closed()
}

func (e *Engine) History(limit int) []model.ExecutionRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.History(limit)
}

// Symbols lists the symbols with open positions.
func (e *Engine) Symbols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Symbols()
}
