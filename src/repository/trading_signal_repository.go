package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"signalengine/src/database"
	"signalengine/src/externalmodel"
	"signalengine/src/model"
)

const defaultSignalBatch = 100

// TradingSignalRepository claims signals written by the signal generator.
type TradingSignalRepository struct {
	db    *gorm.DB
	batch int
	now   func() time.Time
}

func NewTradingSignalRepository() *TradingSignalRepository {
	logger.WithField("component", "TradingSignalRepository").
		Info("Creating new TradingSignalRepository with MainDB")

	return &TradingSignalRepository{db: database.MainDB, batch: defaultSignalBatch, now: time.Now}
}

func (r *TradingSignalRepository) WithDB(db *gorm.DB) *TradingSignalRepository {
	logger.WithField("component", "TradingSignalRepository").
		Debug("Creating new TradingSignalRepository with custom DB instance")

	return &TradingSignalRepository{db: db, batch: r.batchSize(), now: r.clock()}
}

func (r *TradingSignalRepository) WithBatch(n int) *TradingSignalRepository {
	r.batch = n
	return r
}

func (r *TradingSignalRepository) batchSize() int {
	if r.batch <= 0 {
		return defaultSignalBatch
	}
	return r.batch
}

func (r *TradingSignalRepository) clock() func() time.Time {
	if r.now == nil {
		return time.Now
	}
	return r.now
}

// PendingSignals claims up to one batch of unprocessed rows, oldest first, and
// stamps processed_at in the same transaction so no row is handed out twice.
// Rows that do not convert are claimed as well and skipped.
func (r *TradingSignalRepository) PendingSignals(ctx context.Context) ([]model.Signal, error) {
	fields := map[string]interface{}{
		"repo": "TradingSignalRepository",
		"op":   "PendingSignals",
	}

	var out []model.Signal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("processed_at IS NULL").Order("id ASC").Limit(r.batchSize())
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		var rows []externalmodel.TradingSignal
		if err := q.Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
			sig, err := row.ToSignal()
			if err != nil {
				logger.WithFields(fields).WithError(err).WithField("id", row.ID).Warn("Skipping malformed trading signal")
				continue
			}
			out = append(out, sig)
		}

		return tx.Model(&externalmodel.TradingSignal{}).
			Where("id IN ?", ids).
			Update("processed_at", r.clock()().UTC()).Error
	})
	if err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to claim pending trading signals")
		return nil, err
	}

	if len(out) > 0 {
		logger.WithFields(fields).WithField("rows_return", len(out)).Info("Pending trading signals claimed")
	}
	return out, nil
}

// Create inserts a signal row. Used by the simulate command to seed a database.
func (r *TradingSignalRepository) Create(ctx context.Context, signal *externalmodel.TradingSignal) error {
	if err := r.db.WithContext(ctx).Create(signal).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "TradingSignalRepository",
			"op":     "Create",
			"symbol": signal.Symbol,
		}).WithError(err).Error("Failed to insert trading signal")
		return err
	}
	return nil
}
