package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"signalengine/src/database/migrations"
	"signalengine/src/externalmodel"
	"signalengine/src/model"
)

func TestDialector(t *testing.T) {
	cases := []struct {
		dsn  string
		name string
	}{
		{"postgres://u:p@localhost:5432/engine?sslmode=disable", "postgres"},
		{"host=localhost user=u dbname=engine", "postgres"},
		{"sqlite:engine.db", "sqlite"},
		{"file::memory:?cache=shared", "sqlite"},
		{"engine.db", "sqlite"},
	}
	for _, tc := range cases {
		d, err := Dialector(tc.dsn)
		require.NoError(t, err, tc.dsn)
		assert.Equal(t, tc.name, d.Name(), tc.dsn)
	}

	_, err := Dialector("")
	assert.Error(t, err)
	_, err = Dialector("mysql://nope")
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&externalmodel.TradingSignal{}))
	require.NoError(t, db.Create(&externalmodel.TradingSignal{Symbol: "btcusdt", Direction: "long"}).Error)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var row externalmodel.TradingSignal
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, "BTCUSDT", row.Symbol)
	assert.Equal(t, "moderate", row.Strength)

	var applied int64
	require.NoError(t, db.Model(&migrations.DataMigration{}).Count(&applied).Error)
	assert.Equal(t, int64(2), applied)

	assert.True(t, db.Migrator().HasTable(&model.ExecutionRecord{}))
	assert.True(t, db.Migrator().HasTable(&model.OHLCVCrypto1m{}))
	assert.True(t, db.Migrator().HasTable(&model.Exception{}))
}
