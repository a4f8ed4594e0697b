package risk

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	MinConfidence       float64 `envconfig:"RISK_MIN_CONFIDENCE" default:"0.6"`
	MinRiskReward       float64 `envconfig:"RISK_MIN_RISK_REWARD" default:"1.5"`
	MaxTotalExposure    float64 `envconfig:"RISK_MAX_TOTAL_EXPOSURE" default:"0.5"`
	RiskPerTrade        float64 `envconfig:"RISK_PER_TRADE" default:"0.02"`
	MaxPositionFraction float64 `envconfig:"RISK_MAX_POSITION_FRACTION" default:"0.1"`
	MinNotional         float64 `envconfig:"RISK_MIN_NOTIONAL" default:"100"`
	// SessionFilter turns on the New York no-trade window as the market-condition check.
	SessionFilter bool `envconfig:"RISK_SESSION_FILTER" default:"false"`
}

// DefaultConfig mirrors the envconfig defaults.
func DefaultConfig() Config {
	return Config{
		MinConfidence:       0.6,
		MinRiskReward:       1.5,
		MaxTotalExposure:    0.5,
		RiskPerTrade:        0.02,
		MaxPositionFraction: 0.1,
		MinNotional:         100,
	}
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
