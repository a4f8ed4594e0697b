package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signalengine/src/database/migrations"
	"signalengine/src/externalmodel"
	"signalengine/src/model"
)

// MainDB is the read/write connection shared by the repositories.
var MainDB *gorm.DB

// InitMainDB connects using the env config and migrates the schema. Call once at startup.
func InitMainDB() error {
	db, err := Open(GetConfig())
	if err != nil {
		return err
	}

	if err := Migrate(db); err != nil {
		return err
	}

	MainDB = db
	logrus.Info("[database] MainDB connection established")
	return nil
}

// Migrate creates the engine tables and runs pending data migrations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ExecutionRecord{},
		&model.OHLCVCrypto1m{},
		&model.Exception{},
		&externalmodel.TradingSignal{},
		&migrations.DataMigration{},
	); err != nil {
		return fmt.Errorf("failed to run migrations on MainDB: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run data migrations on MainDB: %w", err)
	}

	logrus.Info("[database] MainDB migrations completed")
	return nil
}
