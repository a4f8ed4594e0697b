package executors

import (
	"context"
	"encoding/json"
	"time"

	logger "github.com/sirupsen/logrus"

	"signalengine/src/model"
	"signalengine/src/position"
)

const exceptionService = "signalengine"

type exceptionStore interface {
	Create(ctx context.Context, exc *model.Exception) error
}

// ExceptionObserver persists failed and crashed executions and position
// error events.
type ExceptionObserver struct {
	Store exceptionStore
	Now   func() time.Time
}

func (o ExceptionObserver) OnExecution(ctx context.Context, res model.ExecutionResult) {
	switch res.Action {
	case model.ActionFailed:
		o.capture(ctx, "order_simulator", "ProcessSignals", "warn", res.Signal.Symbol, res.PositionID, res.Reason,
			map[string]interface{}{"confidence": res.Signal.Confidence, "entry_price": res.Signal.EntryPrice})
	case model.ActionError:
		o.capture(ctx, "engine", "ProcessSignals", "error", res.Signal.Symbol, res.PositionID, res.Reason, nil)
	}
}

func (o ExceptionObserver) OnPositionEvent(ctx context.Context, ev position.Event) {
	if ev.Kind != position.EventError || ev.Err == nil {
		return
	}
	o.capture(ctx, "position_manager", "UpdatePositions", "error", ev.Symbol, ev.PositionID, ev.Err.Error(),
		map[string]interface{}{"price": ev.Price, "status": ev.Status.String()})
}

func (ExceptionObserver) OnSummary(context.Context, model.PortfolioSummary) {}

// capture records an exception and logs it locally.
func (o ExceptionObserver) capture(
	ctx context.Context,
	module, method, level, symbol, positionID, message string,
	contextData map[string]interface{},
) {
	var ctxJSON string
	if contextData != nil {
		if b, e := json.Marshal(contextData); e == nil {
			ctxJSON = string(b)
		}
	}

	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	exc := &model.Exception{
		Service:    exceptionService,
		Module:     module,
		Method:     method,
		Symbol:     symbol,
		PositionID: positionID,
		Message:    message,
		Level:      level,
		Context:    ctxJSON,
		CreatedAt:  now(),
	}

	if o.Store == nil {
		return
	}
	if err := o.Store.Create(ctx, exc); err != nil {
		logger.WithError(err).WithFields(logger.Fields{
			"module": module,
			"method": method,
		}).Error("Failed to persist exception")
	}
}
