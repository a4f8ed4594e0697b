package ohlcvcrypto

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	StartDt  time.Time     `envconfig:"START_DATE" default:"2025-12-18T00:00:00Z"`
	AutoMode bool          `envconfig:"AUTO_MODE" default:"true"`
	Symbols  []string      `envconfig:"SYMBOLS" default:"BTCUSDT,ETHUSDT"`
	Quote    string        `envconfig:"QUOTE" default:"USDT"`
	Limit    int           `envconfig:"LIMIT" default:"1000"`
	Interval time.Duration `envconfig:"OHLCV_INTERVAL" default:"0s"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
