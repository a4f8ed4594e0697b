package monitoring

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"signalengine/src/model"
	"signalengine/src/position"
)

const namespace = "signalengine"

// Metrics exposes engine activity to prometheus. Register it once per registry.
type Metrics struct {
	SignalsTotal        *prometheus.CounterVec
	PositionEventsTotal *prometheus.CounterVec
	ExitsTotal          *prometheus.CounterVec
	CycleDuration       prometheus.Histogram

	Balance         prometheus.Gauge
	ExposureRatio   prometheus.Gauge
	ActivePositions prometheus.Gauge
	UnrealizedPnL   prometheus.Gauge
	RealizedPnL     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SignalsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signals",
			Name:      "processed_total",
			Help:      "Signals processed, by outcome",
		}, []string{"action"}),
		PositionEventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "positions",
			Name:      "events_total",
			Help:      "Position tick events, by kind",
		}, []string{"kind"}),
		ExitsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "positions",
			Name:      "exits_total",
			Help:      "Partial and full closes, by exit reason",
		}, []string{"reason"}),
		CycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycle_duration_seconds",
			Help:      "Time spent in one signal and price cycle",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		Balance: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "balance",
			Help:      "Portfolio balance",
		}),
		ExposureRatio: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "exposure_ratio",
			Help:      "Active market value over balance",
		}),
		ActivePositions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "active_positions",
			Help:      "Open positions",
		}),
		UnrealizedPnL: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "unrealized_pnl",
			Help:      "Unrealized PnL of open positions",
		}),
		RealizedPnL: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "realized_pnl",
			Help:      "Realized PnL of closed positions",
		}),
	}
}

func (m *Metrics) OnExecution(_ context.Context, res model.ExecutionResult) {
	m.SignalsTotal.WithLabelValues(res.Action.String()).Inc()
}

func (m *Metrics) OnPositionEvent(_ context.Context, ev position.Event) {
	m.PositionEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	if ev.Kind == position.EventClose || ev.Kind == position.EventPartialClose {
		m.ExitsTotal.WithLabelValues(reasonLabel(ev.Reason)).Inc()
	}
}

func (m *Metrics) OnSummary(_ context.Context, s model.PortfolioSummary) {
	m.Balance.Set(s.Balance)
	m.ExposureRatio.Set(s.ExposureRatio)
	m.ActivePositions.Set(float64(s.ActivePositions))
	m.UnrealizedPnL.Set(s.TotalUnrealizedPnL)
	m.RealizedPnL.Set(s.TotalRealizedPnL)
}

func (m *Metrics) ObserveCycle(d time.Duration) {
	m.CycleDuration.Observe(d.Seconds())
}

// reasonLabel folds "take profit N hit" into one label to keep cardinality flat.
func reasonLabel(reason string) string {
	if strings.HasPrefix(reason, "take profit") {
		return "take profit"
	}
	if reason == "" {
		return "unknown"
	}
	return reason
}
