package repository

import (
	"context"
	"database/sql"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"signalengine/src/database"
	"signalengine/src/model"
)

// OHLCVRepository prices symbols from the one-minute candle table.
type OHLCVRepository struct {
	db *gorm.DB
}

func NewOHLCVRepository() *OHLCVRepository {
	logger.WithField("component", "OHLCVRepository").
		Info("Creating new OHLCVRepository with MainDB")

	return &OHLCVRepository{db: database.MainDB}
}

func NewOHLCVRepositoryWithDB(db *gorm.DB) *OHLCVRepository {
	return &OHLCVRepository{db: db}
}

// LatestPrices returns the most recent close for every symbol that has candles.
func (s *OHLCVRepository) LatestPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		var rows []model.OHLCVCrypto1m
		err := s.db.WithContext(ctx).
			Where("symbol = ?", symbol).
			Order("datetime DESC").
			Limit(1).
			Find(&rows).Error
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"repo":   "OHLCVRepository",
				"op":     "LatestPrices",
				"symbol": symbol,
			}).WithError(err).Error("Failed to fetch latest candle")
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		prices[symbol] = rows[0].Close.InexactFloat64()
	}
	return prices, nil
}

// FetchRecentOHLCV1m returns up to limit candles at or before the newest,
// in ascending time order.
func (s *OHLCVRepository) FetchRecentOHLCV1m(ctx context.Context, symbol string, limit int) ([]model.OHLCVCrypto1m, error) {
	if limit <= 0 {
		limit = 200
	}

	var rows []model.OHLCVCrypto1m
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("datetime DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// Upsert inserts candles, updating prices of any (symbol, datetime) that
// already exists.
func (s *OHLCVRepository) Upsert(ctx context.Context, candles []model.OHLCVCrypto1m) error {
	if len(candles) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "datetime"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&candles).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "OHLCVRepository",
			"op":    "Upsert",
			"count": len(candles),
		}).WithError(err).Error("Failed to upsert candles")
	}
	return err
}

// LatestDatetime returns the newest candle time stored for symbol, or nil
// when there are none.
func (s *OHLCVRepository) LatestDatetime(ctx context.Context, symbol string) (*time.Time, error) {
	var latest sql.NullTime
	err := s.db.WithContext(ctx).
		Model(&model.OHLCVCrypto1m{}).
		Select("MAX(datetime)").
		Where("symbol = ?", symbol).
		Row().
		Scan(&latest)
	if err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	t := latest.Time.UTC()
	return &t, nil
}
