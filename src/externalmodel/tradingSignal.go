package externalmodel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"signalengine/src/model"
)

// TradingSignal is a row written by the signal generator. The engine claims
// rows by stamping ProcessedAt.
type TradingSignal struct {
	ID               uint       `gorm:"primaryKey;column:id" json:"id"`
	Symbol           string     `gorm:"column:symbol;size:50;not null" json:"symbol"`
	Direction        string     `gorm:"column:direction;size:10;not null" json:"direction"`
	Confidence       float64    `gorm:"column:confidence" json:"confidence"`
	EntryPrice       float64    `gorm:"column:entry_price" json:"entry_price"`
	StopLoss         float64    `gorm:"column:stop_loss" json:"stop_loss"`
	TakeProfitLevels string     `gorm:"column:take_profit_levels;size:255" json:"take_profit_levels"` // comma separated
	RiskReward       float64    `gorm:"column:risk_reward" json:"risk_reward"`
	Strength         string     `gorm:"column:strength;size:20" json:"strength"`
	Reasoning        string     `gorm:"column:reasoning;type:text" json:"reasoning"`
	SignalTime       time.Time  `gorm:"column:signal_time" json:"signal_time"`
	ProcessedAt      *time.Time `gorm:"column:processed_at;index" json:"processed_at,omitempty"`
}

// TableName Ensures that GORM uses the exact table name from the database.
func (TradingSignal) TableName() string {
	return "trade_signals"
}

// ToSignal converts the row into the engine's immutable Signal.
func (t TradingSignal) ToSignal() (model.Signal, error) {
	dir, err := model.ParseDirection(t.Direction)
	if err != nil {
		return model.Signal{}, fmt.Errorf("signal %d: %w", t.ID, err)
	}

	strength := model.StrengthModerate
	if t.Strength != "" {
		strength, err = model.ParseStrength(t.Strength)
		if err != nil {
			return model.Signal{}, fmt.Errorf("signal %d: %w", t.ID, err)
		}
	}

	var levels []float64
	for _, raw := range strings.Split(t.TakeProfitLevels, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.Signal{}, fmt.Errorf("signal %d: bad take-profit level %q: %w", t.ID, raw, err)
		}
		levels = append(levels, v)
	}

	return model.Signal{
		Symbol:           strings.ToUpper(strings.TrimSpace(t.Symbol)),
		Direction:        dir,
		Confidence:       t.Confidence,
		EntryPrice:       t.EntryPrice,
		StopLoss:         t.StopLoss,
		TakeProfitLevels: levels,
		RiskReward:       t.RiskReward,
		Strength:         strength,
		Reasoning:        t.Reasoning,
		Timestamp:        t.SignalTime,
	}, nil
}
