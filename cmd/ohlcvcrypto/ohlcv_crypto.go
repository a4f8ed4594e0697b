package ohlcvcrypto

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"signalengine/src/model"
)

type klineAPI interface {
	GetKlineRecords(currency goex.CurrencyPair, period goex.KlinePeriod, size int, optional ...goex.OptionalParameter) ([]goex.Kline, error)
}

type candleStore interface {
	Upsert(ctx context.Context, candles []model.OHLCVCrypto1m) error
	LatestDatetime(ctx context.Context, symbol string) (*time.Time, error)
}

// OHLCVCrypto collects one-minute candles into the table the engine's db
// price feed reads from.
type OHLCVCrypto struct {
	Log      *logger.Entry
	Store    candleStore
	Config   *Config
	exchange klineAPI
	now      func() time.Time
}

// Start collects once, or every Config.Interval until ctx is canceled.
func (o *OHLCVCrypto) Start(ctx context.Context) error {
	if o.Config == nil {
		o.Config = GetConfig()
	}
	if o.exchange == nil {
		o.exchange = newBinanceInstance()
	}
	if o.now == nil {
		o.now = time.Now
	}

	if err := o.collectAll(ctx); err != nil || o.Config.Interval <= 0 {
		return err
	}

	ticker := time.NewTicker(o.Config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := o.collectAll(ctx); err != nil {
				o.Log.WithError(err).Error("collect failed")
			}
		}
	}
}

func newBinanceInstance() *binance.Binance {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return binance.NewWithConfig(apiConfig)
}

func (o *OHLCVCrypto) collectAll(ctx context.Context) error {
	for _, symbol := range o.Config.Symbols {
		if err := o.aggregateAndSave(ctx, symbol); err != nil {
			return err
		}
	}
	return nil
}

func (o *OHLCVCrypto) aggregateAndSave(ctx context.Context, symbol string) error {
	start := o.Config.StartDt
	if o.Config.AutoMode {
		start = o.determineStartPoint(ctx, symbol)
	}

	klines, err := o.fetchOHLCVSeries(symbol, start, o.now())
	if err != nil {
		o.Log.WithError(err).WithField("symbol", symbol).Error("aggregateAndSave, GetKlineRecords")
		return err
	}

	candles := make([]model.OHLCVCrypto1m, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, toCandle(symbol, k))
	}
	if err := o.Store.Upsert(ctx, candles); err != nil {
		return err
	}

	o.Log.WithFields(logger.Fields{
		"Symbol":  symbol,
		"Candles": len(candles),
		"From":    start.String(),
	}).Info("OHLCV data inserted or updated in database")
	return nil
}

// determineStartPoint resumes one minute before the newest stored candle so
// the last, possibly incomplete, candle is refreshed.
func (o *OHLCVCrypto) determineStartPoint(ctx context.Context, symbol string) time.Time {
	start := o.Config.StartDt.Add(-time.Minute)

	latest, err := o.Store.LatestDatetime(ctx, symbol)
	if err != nil {
		o.Log.WithError(err).WithField("symbol", symbol).
			Error("Failed to query latest datetime, starting from the configured StartDt")
		return start
	}
	if latest == nil {
		o.Log.WithField("symbol", symbol).WithField("StartDt", start.String()).
			Info("no records found, start from the configured StartDt")
		return start
	}
	return latest.Add(-time.Minute)
}

func (o *OHLCVCrypto) fetchOHLCVSeries(symbol string, from, to time.Time) ([]goex.Kline, error) {
	const millis = 1000
	return o.exchange.GetKlineRecords(
		o.pairFor(symbol),
		goex.KLINE_PERIOD_1MIN,
		o.Config.Limit,
		goex.OptionalParameter{}.
			Optional("startTime", from.Unix()*millis).
			Optional("endTime", to.Unix()*millis),
	)
}

func (o *OHLCVCrypto) pairFor(symbol string) goex.CurrencyPair {
	quote := strings.ToUpper(o.Config.Quote)
	base := strings.TrimSuffix(strings.ToUpper(symbol), quote)
	return goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: quote})
}

func toCandle(symbol string, k goex.Kline) model.OHLCVCrypto1m {
	return model.OHLCVCrypto1m{
		Symbol:   symbol,
		Datetime: time.Unix(k.Timestamp, 0).UTC(),
		Open:     decimal.NewFromFloat(k.Open),
		High:     decimal.NewFromFloat(k.High),
		Low:      decimal.NewFromFloat(k.Low),
		Close:    decimal.NewFromFloat(k.Close),
		Volume:   decimal.NewFromFloat(k.Vol),
	}
}
