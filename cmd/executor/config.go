package executor

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	EnableWebsocket bool `envconfig:"ENABLE_WEBSOCKET" default:"true"`
	EnableMetrics   bool `envconfig:"ENABLE_METRICS" default:"true"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
