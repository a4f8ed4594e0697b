package model

import "time"

// ExecutionRecord is one append-only entry of the execution history.
type ExecutionRecord struct {
	ID          uint          `gorm:"primaryKey" json:"-"`
	Sequence    uint64        `gorm:"not null;uniqueIndex" json:"sequence"`
	PositionID  string        `gorm:"size:64;index" json:"position_id"`
	Action      HistoryAction `gorm:"size:32;not null" json:"action"`
	Symbol      string        `gorm:"size:50;index" json:"symbol"`
	Side        string        `gorm:"size:10" json:"side"`
	OrderType   string        `gorm:"size:20" json:"order_type"`
	Quantity    float64       `json:"quantity"`
	Price       float64       `json:"price"`
	Fee         float64       `json:"fee"`
	RealizedPnL float64       `json:"realized_pnl"`
	Reason      string        `gorm:"size:255" json:"reason"`
	Timestamp   time.Time     `gorm:"index" json:"timestamp"`
}

func (ExecutionRecord) TableName() string {
	return "execution_records"
}

// ExecutionResult is what the engine reports for each incoming signal.
type ExecutionResult struct {
	Signal     Signal          `json:"signal"`
	Action     ExecutionAction `json:"action"`
	Reason     string          `json:"reason,omitempty"`
	PositionID string          `json:"position_id,omitempty"`
	EntryPrice float64         `json:"entry_price,omitempty"`
	Quantity   float64         `json:"quantity,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	// Err carries the taxonomy error (ErrValidationRejection, ...).
	Err error `json:"-"`
}

// PortfolioSummary is the read-only projection handed to the dashboard.
type PortfolioSummary struct {
	Balance              float64    `json:"portfolio_balance"`
	InitialBalance       float64    `json:"initial_balance"`
	ActivePositions      int        `json:"active_positions"`
	ClosedPositions      int        `json:"closed_positions"`
	TotalUnrealizedPnL   float64    `json:"total_unrealized_pnl"`
	TotalRealizedPnL     float64    `json:"total_realized_pnl"`
	TotalPnL             float64    `json:"total_pnl"`
	TotalFees            float64    `json:"total_fees"`
	PortfolioReturnPct   float64    `json:"portfolio_return"`
	ActivePositionsValue float64    `json:"active_positions_value"`
	ExposureRatio        float64    `json:"exposure_ratio"`
	WinRate              float64    `json:"win_rate"`
	Positions            []Position `json:"positions"`
	GeneratedAt          time.Time  `json:"generated_at"`
}
