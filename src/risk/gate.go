package risk

import (
	"fmt"
	"time"

	"signalengine/src/model"
)

// MarketCondition is the hook for the market-data collaborator. Returning
// false rejects the signal.
type MarketCondition interface {
	Favorable(sig model.Signal, at time.Time) bool
}

// MarketConditionFunc adapts a plain function to MarketCondition.
type MarketConditionFunc func(sig model.Signal, at time.Time) bool

func (f MarketConditionFunc) Favorable(sig model.Signal, at time.Time) bool { return f(sig, at) }

// AlwaysFavorable is the default market check.
var AlwaysFavorable MarketCondition = MarketConditionFunc(func(model.Signal, time.Time) bool { return true })

// Rule names the gate rule that produced a decision.
type Rule string

const (
	RuleShape      Rule = "shape"
	RuleConfidence Rule = "confidence"
	RuleRiskReward Rule = "risk_reward"
	RuleExposure   Rule = "exposure"
	RuleSymbol     Rule = "symbol"
	RuleMarket     Rule = "market"
)

// Decision is the gate's verdict. Err is nil when Accepted, otherwise it
// wraps model.ErrValidationRejection.
type Decision struct {
	Accepted          bool
	Rule              Rule
	Reason            string
	ProjectedExposure float64
	Err               error
}

func reject(rule Rule, format string, args ...any) Decision {
	reason := fmt.Sprintf(format, args...)
	return Decision{
		Rule:   rule,
		Reason: reason,
		Err:    fmt.Errorf("%w: %s", model.ErrValidationRejection, reason),
	}
}

// Gate accepts or rejects signals against portfolio state. Evaluate has no
// side effects; the first failing rule decides.
type Gate struct {
	cfg    Config
	sizer  *Sizer
	market MarketCondition
	now    func() time.Time
}

func NewGate(cfg Config, sizer *Sizer, market MarketCondition) *Gate {
	if market == nil {
		market = AlwaysFavorable
	}
	if sizer == nil {
		sizer = NewSizer(cfg)
	}
	return &Gate{cfg: cfg, sizer: sizer, market: market, now: time.Now}
}

// WithClock overrides the time passed to the market check.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Evaluate runs, in order: shape, confidence, risk:reward, projected
// exposure, one-position-per-symbol and the market condition.
func (g *Gate) Evaluate(sig model.Signal, active []*model.Position, balance float64) Decision {
	if err := sig.Validate(); err != nil {
		return reject(RuleShape, "malformed signal: %v", err)
	}

	if sig.Confidence < g.cfg.MinConfidence {
		return reject(RuleConfidence, "low confidence %.2f < %.2f", sig.Confidence, g.cfg.MinConfidence)
	}

	if rr := sig.RewardRatio(); rr < g.cfg.MinRiskReward {
		return reject(RuleRiskReward, "poor risk:reward %.2f < %.2f", rr, g.cfg.MinRiskReward)
	}

	if balance <= 0 {
		return reject(RuleExposure, "no balance available")
	}
	exposure := 0.0
	for _, p := range active {
		exposure += p.Notional()
	}
	proposed := g.sizer.Size(sig, balance) * sig.EntryPrice
	projected := (exposure + proposed) / balance
	if projected >= g.cfg.MaxTotalExposure {
		d := reject(RuleExposure, "max exposure reached: projected %.2f%% >= %.2f%%", projected*100, g.cfg.MaxTotalExposure*100)
		d.ProjectedExposure = projected
		return d
	}

	for _, p := range active {
		if p.Symbol == sig.Symbol && p.Status.IsOpen() {
			d := reject(RuleSymbol, "already have %s position %s in %s", p.Status, p.ID, sig.Symbol)
			d.ProjectedExposure = projected
			return d
		}
	}

	if !g.market.Favorable(sig, g.now()) {
		d := reject(RuleMarket, "poor market conditions")
		d.ProjectedExposure = projected
		return d
	}

	return Decision{Accepted: true, ProjectedExposure: projected}
}
