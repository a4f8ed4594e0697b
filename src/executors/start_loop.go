package executors

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"signalengine/src/model"
)

// Sources are the collaborators polled on every cycle.
type Sources struct {
	Signals []SignalSource
	Prices  PriceSource
	Symbols []string
}

// CycleReport is what one loop iteration did.
type CycleReport struct {
	Results []model.ExecutionResult
	Update  UpdateReport
	Elapsed time.Duration
}

// CycleObserver is notified with the duration of each cycle.
type CycleObserver interface {
	ObserveCycle(d time.Duration)
}

// StartLoop runs RunCycle every period until ctx is canceled.
func StartLoop(ctx context.Context, engine *Engine, sources Sources, period time.Duration, cycles CycleObserver) error {
	if period <= 0 {
		period = GetConfig().LoopPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	logger.WithField("period", period.String()).Info("engine loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("engine loop stopped")
			return nil

		case <-ticker.C:
			report := engine.RunCycle(ctx, sources)
			if cycles != nil {
				cycles.ObserveCycle(report.Elapsed)
			}
			logger.WithFields(logger.Fields{
				"signals": len(report.Results),
				"events":  len(report.Update.Events),
				"errors":  len(report.Update.Errors),
				"elapsed": report.Elapsed.String(),
			}).Debug("loop tick")
		}
	}
}

// RunCycle drains queued and sourced signals, processes them, then prices
// the open positions and applies the tick.
func (e *Engine) RunCycle(ctx context.Context, sources Sources) CycleReport {
	start := time.Now()

	signals, err := e.PendingSignals(ctx)
	if err != nil {
		logger.WithError(err).Error("failed to drain queued signals")
	}
	for _, src := range sources.Signals {
		batch, err := src.PendingSignals(ctx)
		if err != nil {
			logger.WithError(err).Error("failed to read pending signals")
			continue
		}
		signals = append(signals, batch...)
	}

	report := CycleReport{Results: e.ProcessSignals(ctx, signals)}

	if sources.Prices != nil {
		symbols := mergeSymbols(sources.Symbols, e.Symbols())
		if len(symbols) > 0 {
			prices, err := sources.Prices.LatestPrices(ctx, symbols)
			if err != nil {
				logger.WithError(err).Error("failed to fetch latest prices")
			}
			if len(prices) > 0 {
				report.Update = e.UpdatePositions(ctx, prices)
				for _, err := range report.Update.Errors {
					logger.WithError(err).Warn("position update error")
				}
			}
		}
	}

	report.Elapsed = time.Since(start)
	return report
}

func mergeSymbols(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
