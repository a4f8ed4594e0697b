package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	PriceFeedDB       = "db"
	PriceFeedExchange = "exchange"
	PriceFeedNone     = "none"
)

type Config struct {
	InitialBalance float64       `envconfig:"INITIAL_BALANCE" default:"100000"`
	LoopPeriod     time.Duration `envconfig:"LOOP_PERIOD" default:"30s"`
	QueueSize      int           `envconfig:"SIGNAL_QUEUE_SIZE" default:"256"`
	PriceFeed      string        `envconfig:"PRICE_FEED" default:"db"`
	// Symbols are always priced, even without open positions.
	Symbols []string `envconfig:"SYMBOLS"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
