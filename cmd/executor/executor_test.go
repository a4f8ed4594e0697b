package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"signalengine/src/connectors"
	"signalengine/src/database"
	"signalengine/src/executors"
	"signalengine/src/repository"
)

func TestNewPriceSource(t *testing.T) {
	src, err := newPriceSource(executors.PriceFeedNone, nil)
	require.NoError(t, err)
	assert.Nil(t, src)

	src, err = newPriceSource(executors.PriceFeedExchange, nil)
	require.NoError(t, err)
	assert.IsType(t, &connectors.ExchangePriceSource{}, src)

	_, err = newPriceSource(executors.PriceFeedDB, nil)
	assert.ErrorContains(t, err, "ENABLE_DB")

	_, err = newPriceSource("carrier-pigeon", nil)
	assert.Error(t, err)

	assert.IsType(t, &repository.OHLCVRepository{}, mustSource(t, executors.PriceFeedDB))
}

func mustSource(t *testing.T, feed string) executors.PriceSource {
	t.Helper()
	db, err := openTestDB()
	require.NoError(t, err)
	src, err := newPriceSource(feed, db)
	require.NoError(t, err)
	return src
}

func TestExecutor_RunStopsOnCancel(t *testing.T) {
	t.Setenv("ENABLE_DB", "false")
	t.Setenv("ENABLE_HTTP", "false")
	t.Setenv("PRICE_FEED", "none")
	t.Setenv("LOOP_PERIOD", "10ms")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, (&Executor{}).Run(ctx))
}

func TestExecutor_RunRejectsBadFeed(t *testing.T) {
	t.Setenv("ENABLE_DB", "false")
	t.Setenv("PRICE_FEED", "db")

	err := (&Executor{}).Run(context.Background())
	assert.ErrorContains(t, err, "requires ENABLE_DB")
}

func openTestDB() (*gorm.DB, error) {
	return database.Open(database.Config{DatabaseURL: "sqlite::memory:", GormLogLevel: 1, MaxOpenConns: 1, MaxIdleConns: 1})
}
