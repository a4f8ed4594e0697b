package simulate

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"signalengine/src/connectors"
	"signalengine/src/executors"
	"signalengine/src/model"
	"signalengine/src/position"
	"signalengine/src/risk"
)

// Report is everything a scenario run produced.
type Report struct {
	Name    string
	Results []model.ExecutionResult
	Events  []position.Event
	Closed  []model.Position
	History []model.ExecutionRecord
	Summary model.PortfolioSummary
}

// Run replays s against a fresh engine on a virtual clock. Risk and
// position settings come from the caller.
func Run(ctx context.Context, s *Scenario, riskCfg risk.Config, posCfg position.Config, log *logrus.Entry) Report {
	now := s.Start
	clock := func() time.Time { return now }

	simCfg := connectors.DefaultSimulatorConfig()
	if s.SlippageBps != nil {
		simCfg.SlippageBps = *s.SlippageBps
	}
	if s.FeeRate != nil {
		simCfg.FeeRate = *s.FeeRate
	}

	engine := executors.NewEngine(executors.Options{
		Risk:           riskCfg,
		Position:       posCfg,
		Executor:       connectors.NewSimulator(simCfg, log).WithClock(clock),
		InitialBalance: s.InitialBalance,
		Logger:         log,
		Now:            clock,
	})

	report := Report{Name: s.Name}
	for _, step := range s.Steps {
		if ctx.Err() != nil {
			break
		}
		now = now.Add(time.Duration(step.Advance))

		report.Results = append(report.Results, engine.ProcessSignals(ctx, step.Signals)...)
		if len(step.Prices) > 0 {
			update := engine.UpdatePositions(ctx, step.Prices)
			report.Events = append(report.Events, update.Events...)
		}
	}

	report.Closed = engine.ClosedPositions()
	report.History = engine.History(0)
	report.Summary = engine.Summary()
	return report
}
