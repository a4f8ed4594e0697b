package executors

import (
	"context"

	"signalengine/src/connectors"
	"signalengine/src/model"
	"signalengine/src/position"
)

// DashboardObserver forwards execution results and closes to the dashboard
// webhook. Summaries are not pushed; the dashboard polls /api/portfolio.
type DashboardObserver struct {
	Notifier *connectors.DashboardNotifier
}

func (d DashboardObserver) OnExecution(ctx context.Context, res model.ExecutionResult) {
	_ = d.Notifier.Notify(ctx, "execution", res)
}

func (d DashboardObserver) OnPositionEvent(ctx context.Context, ev position.Event) {
	if ev.Kind != position.EventClose && ev.Kind != position.EventPartialClose {
		return
	}
	_ = d.Notifier.Notify(ctx, "position_"+string(ev.Kind), ev)
}

func (d DashboardObserver) OnSummary(context.Context, model.PortfolioSummary) {}
