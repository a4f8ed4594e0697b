package model

import (
	"fmt"
	"math"
	"time"
)

// Signal is an immutable trading idea produced by the signal generator.
// The engine only ever reads it; positions keep their own copy (see Clone).
type Signal struct {
	Symbol           string    `json:"symbol"`
	Direction        Direction `json:"direction"`
	Confidence       float64   `json:"confidence"`
	EntryPrice       float64   `json:"entry_price"`
	StopLoss         float64   `json:"stop_loss"`
	TakeProfitLevels []float64 `json:"take_profit_levels"`
	RiskReward       float64   `json:"risk_reward_ratio"`
	Strength         Strength  `json:"strength"`
	Reasoning        string    `json:"reasoning"`
	Timestamp        time.Time `json:"timestamp"`
}

// Clone returns a deep copy so the take-profit slice is never aliased.
func (s Signal) Clone() Signal {
	out := s
	if s.TakeProfitLevels != nil {
		out.TakeProfitLevels = append([]float64(nil), s.TakeProfitLevels...)
	}
	return out
}

// StopDistance is |entry - stop|.
func (s Signal) StopDistance() float64 {
	return math.Abs(s.EntryPrice - s.StopLoss)
}

// RewardRatio returns the declared risk:reward, deriving it from the first
// take-profit level when the producer left it empty.
func (s Signal) RewardRatio() float64 {
	if s.RiskReward > 0 {
		return s.RiskReward
	}
	risk := s.StopDistance()
	if risk == 0 || len(s.TakeProfitLevels) == 0 {
		return 0
	}
	return math.Abs(s.TakeProfitLevels[0]-s.EntryPrice) / risk
}

// Validate checks the structural shape of a signal. It says nothing about
// whether the signal is worth trading; that is the risk gate's job.
func (s Signal) Validate() error {
	switch {
	case s.Symbol == "":
		return fmt.Errorf("symbol is required")
	case !s.Direction.Valid():
		return fmt.Errorf("invalid direction %d", int(s.Direction))
	case s.Confidence < 0 || s.Confidence > 1 || math.IsNaN(s.Confidence):
		return fmt.Errorf("confidence %.4f outside [0,1]", s.Confidence)
	case s.EntryPrice <= 0:
		return fmt.Errorf("entry price must be positive")
	case s.StopLoss <= 0:
		return fmt.Errorf("stop loss must be positive")
	case len(s.TakeProfitLevels) == 0:
		return fmt.Errorf("at least one take-profit level is required")
	}

	if s.Direction == DirectionLong && s.StopLoss >= s.EntryPrice {
		return fmt.Errorf("long stop %.4f must be below entry %.4f", s.StopLoss, s.EntryPrice)
	}
	if s.Direction == DirectionShort && s.StopLoss <= s.EntryPrice {
		return fmt.Errorf("short stop %.4f must be above entry %.4f", s.StopLoss, s.EntryPrice)
	}
	for i, tp := range s.TakeProfitLevels {
		if tp <= 0 {
			return fmt.Errorf("take-profit level %d must be positive", i+1)
		}
		if s.Direction == DirectionLong && tp <= s.EntryPrice {
			return fmt.Errorf("long take-profit level %d (%.4f) must be above entry %.4f", i+1, tp, s.EntryPrice)
		}
		if s.Direction == DirectionShort && tp >= s.EntryPrice {
			return fmt.Errorf("short take-profit level %d (%.4f) must be below entry %.4f", i+1, tp, s.EntryPrice)
		}
	}
	return nil
}
