package position

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"signalengine/src/model"
)

type Config struct {
	// Signals at or above this confidence enter with a market order, the rest
	// with a limit order EntryLimitOffset better than the signal entry.
	EntryMarketConfidence float64 `envconfig:"ENTRY_MARKET_CONFIDENCE" default:"0.8"`
	EntryLimitOffset      float64 `envconfig:"ENTRY_LIMIT_OFFSET" default:"0.001"`

	// Momentum protection fires once MaxProfit exceeded
	// MinProfitFraction * entry * open quantity and unrealized PnL then fell
	// below RetraceRatio * MaxProfit.
	MomentumMinProfitFraction float64 `envconfig:"MOMENTUM_MIN_PROFIT_FRACTION" default:"0.05"`
	MomentumRetraceRatio      float64 `envconfig:"MOMENTUM_RETRACE_RATIO" default:"0.7"`

	MaxHoldWeak       time.Duration `envconfig:"MAX_HOLD_WEAK" default:"24h"`
	MaxHoldModerate   time.Duration `envconfig:"MAX_HOLD_MODERATE" default:"72h"`
	MaxHoldStrong     time.Duration `envconfig:"MAX_HOLD_STRONG" default:"168h"`
	MaxHoldVeryStrong time.Duration `envconfig:"MAX_HOLD_VERY_STRONG" default:"336h"`
}

func DefaultConfig() Config {
	return Config{
		EntryMarketConfidence:     0.8,
		EntryLimitOffset:          0.001,
		MomentumMinProfitFraction: 0.05,
		MomentumRetraceRatio:      0.7,
		MaxHoldWeak:               24 * time.Hour,
		MaxHoldModerate:           72 * time.Hour,
		MaxHoldStrong:             168 * time.Hour,
		MaxHoldVeryStrong:         336 * time.Hour,
	}
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// MaxHold is the holding limit for a strength class.
func (c Config) MaxHold(s model.Strength) time.Duration {
	switch s {
	case model.StrengthWeak:
		return c.MaxHoldWeak
	case model.StrengthModerate:
		return c.MaxHoldModerate
	case model.StrengthStrong:
		return c.MaxHoldStrong
	case model.StrengthVeryStrong:
		return c.MaxHoldVeryStrong
	default:
		return c.MaxHoldModerate
	}
}
