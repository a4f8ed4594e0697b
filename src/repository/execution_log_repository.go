package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signalengine/src/database"
	"signalengine/src/model"
)

// ExecutionLogRepository persists execution history records.
type ExecutionLogRepository struct {
	db *gorm.DB
}

func NewExecutionLogRepository() *ExecutionLogRepository {
	logger.WithField("component", "ExecutionLogRepository").
		Info("Creating new ExecutionLogRepository with MainDB")

	return &ExecutionLogRepository{db: database.MainDB}
}

func (r *ExecutionLogRepository) WithDB(db *gorm.DB) *ExecutionLogRepository {
	return &ExecutionLogRepository{db: db}
}

// Record appends one history record.
func (r *ExecutionLogRepository) Record(ctx context.Context, rec model.ExecutionRecord) error {
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "ExecutionLogRepository",
			"op":          "Record",
			"position_id": rec.PositionID,
			"sequence":    rec.Sequence,
		}).WithError(err).Error("Failed to insert execution record")
		return err
	}
	return nil
}

// LastSequence is the highest persisted sequence number, zero on an empty table.
func (r *ExecutionLogRepository) LastSequence(ctx context.Context) (uint64, error) {
	var last uint64
	err := r.db.WithContext(ctx).
		Model(&model.ExecutionRecord{}).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return last, nil
}

func (r *ExecutionLogRepository) FindByPosition(ctx context.Context, positionID string) ([]model.ExecutionRecord, error) {
	var rows []model.ExecutionRecord
	err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("sequence ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ExecutionLogRepository) FindLatest(ctx context.Context, limit int) ([]model.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []model.ExecutionRecord
	err := r.db.WithContext(ctx).
		Order("sequence DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
