package database

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	EnableDB bool `envconfig:"ENABLE_DB" default:"true"`
	// postgres://... URLs and key=value DSNs go to postgres; sqlite:, file: and *.db go to sqlite.
	DatabaseURL  string `envconfig:"DATABASE_URL" default:"sqlite:signalengine.db"`
	GormLogLevel int    `envconfig:"GORM_LOG_LEVEL" default:"2"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
