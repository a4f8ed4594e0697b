package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	SlippageBps float64       `envconfig:"SIM_SLIPPAGE_BPS" default:"10"`
	FeeRate     float64       `envconfig:"SIM_FEE_RATE" default:"0.001"`
	Latency     time.Duration `envconfig:"SIM_LATENCY" default:"0s"`

	DashboardWebhookURL string        `envconfig:"DASHBOARD_WEBHOOK_URL"`
	DashboardTimeout    time.Duration `envconfig:"DASHBOARD_TIMEOUT" default:"5s"`

	ExchangeQuote string `envconfig:"EXCHANGE_QUOTE" default:"USDT"`
}

// DefaultSimulatorConfig is 10 bps market slippage, 0.1% fee, no latency.
func DefaultSimulatorConfig() Config {
	return Config{SlippageBps: 10, FeeRate: 0.001, ExchangeQuote: "USDT", DashboardTimeout: 5 * time.Second}
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
