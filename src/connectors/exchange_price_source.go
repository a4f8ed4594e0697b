package connectors

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	logger "github.com/sirupsen/logrus"
)

type tickerAPI interface {
	GetTicker(currency goex.CurrencyPair) (*goex.Ticker, error)
}

// ExchangePriceSource reads last-trade prices from the Binance public ticker.
type ExchangePriceSource struct {
	api   tickerAPI
	quote string
}

func NewExchangePriceSource(cfg Config) *ExchangePriceSource {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	quote := cfg.ExchangeQuote
	if quote == "" {
		quote = "USDT"
	}
	return &ExchangePriceSource{api: binance.NewWithConfig(apiConfig), quote: quote}
}

// LatestPrices returns a price for every symbol the exchange answered for.
// Symbols that fail are logged and left out; the error is only returned
// when nothing could be priced.
func (e *ExchangePriceSource) LatestPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))
	var lastErr error
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return prices, err
		}
		pair := e.pairFor(symbol)
		ticker, err := e.api.GetTicker(pair)
		if err != nil {
			lastErr = err
			logger.WithError(err).WithField("symbol", symbol).Warn("ticker request failed")
			continue
		}
		if ticker == nil || ticker.Last <= 0 {
			lastErr = fmt.Errorf("no last price for %s", symbol)
			continue
		}
		prices[symbol] = ticker.Last
	}
	if len(prices) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return prices, nil
}

// pairFor accepts BTC/USDT, BTC_USDT, BTC-USDT or BTCUSDT.
func (e *ExchangePriceSource) pairFor(symbol string) goex.CurrencyPair {
	s := strings.ToUpper(symbol)
	for _, sep := range []string{"/", "_", "-"} {
		if base, quote, ok := strings.Cut(s, sep); ok {
			return goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: quote})
		}
	}
	base := strings.TrimSuffix(s, e.quote)
	return goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: e.quote})
}
