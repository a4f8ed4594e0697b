package model

import "time"

// TakeProfitRung is one stage of the take-profit ladder. Quantities of all
// rungs add up to the original entry quantity.
type TakeProfitRung struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Consumed bool    `json:"consumed"`
	OrderID  string  `json:"order_id,omitempty"`
}

// RestingOrder is a protective order recorded against a position.
type RestingOrder struct {
	ID       string    `json:"id"`
	Side     Side      `json:"side"`
	Type     OrderType `json:"type"`
	Price    float64   `json:"price"`
	Quantity float64   `json:"quantity"`
}

// Position is owned by the position manager. Nothing else mutates it.
type Position struct {
	ID     string         `json:"id"`
	Symbol string         `json:"symbol"`
	Status PositionStatus `json:"status"`
	Signal Signal         `json:"signal"`

	EntryPrice     float64   `json:"entry_price"`
	EntryOrderType OrderType `json:"entry_order_type"`
	CurrentPrice   float64   `json:"current_price"`
	// Quantity is what is still open. OriginalQuantity is the entry fill.
	Quantity         float64 `json:"quantity"`
	OriginalQuantity float64 `json:"original_quantity"`
	// ExitQuantity is the size of the final full close, zero while open.
	ExitQuantity float64  `json:"exit_quantity"`
	ExitPrice    *float64 `json:"exit_price,omitempty"`

	UnrealizedPnL float64 `json:"unrealized_pnl"`
	RealizedPnL   float64 `json:"realized_pnl"`
	Fees          float64 `json:"fees"`

	StopLoss         float64          `json:"stop_loss"`
	TrailingDistance float64          `json:"trailing_distance"`
	StopOrder        RestingOrder     `json:"stop_order"`
	Ladder           []TakeProfitRung `json:"take_profit_ladder"`

	EntryTime   time.Time  `json:"entry_time"`
	LastUpdate  time.Time  `json:"last_update"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	ExitReasons []string   `json:"exit_reasons"`

	MaxProfit float64 `json:"max_profit"`
	MaxLoss   float64 `json:"max_loss"`
}

func (p *Position) Direction() Direction { return p.Signal.Direction }

// PnL is the profit of closing qty at price.
func (p *Position) PnL(price, qty float64) float64 {
	return (price - p.EntryPrice) * qty * p.Direction().Sign()
}

// Notional is the market value of the open quantity.
func (p *Position) Notional() float64 {
	return p.Quantity * p.CurrentPrice
}

// LadderConsumed sums the quantity of rungs already executed.
func (p *Position) LadderConsumed() float64 {
	total := 0.0
	for _, r := range p.Ladder {
		if r.Consumed {
			total += r.Quantity
		}
	}
	return total
}

// Mark moves the position to a new price and refreshes PnL watermarks.
func (p *Position) Mark(price float64, at time.Time) {
	p.CurrentPrice = price
	p.LastUpdate = at
	p.UnrealizedPnL = p.PnL(price, p.Quantity)
	if p.UnrealizedPnL > p.MaxProfit {
		p.MaxProfit = p.UnrealizedPnL
	}
	if p.UnrealizedPnL < p.MaxLoss {
		p.MaxLoss = p.UnrealizedPnL
	}
}

// Clone returns an independent copy for read models.
func (p *Position) Clone() Position {
	out := *p
	out.Signal = p.Signal.Clone()
	out.Ladder = append([]TakeProfitRung(nil), p.Ladder...)
	out.ExitReasons = append([]string(nil), p.ExitReasons...)
	if p.ExitPrice != nil {
		v := *p.ExitPrice
		out.ExitPrice = &v
	}
	if p.ClosedAt != nil {
		v := *p.ClosedAt
		out.ClosedAt = &v
	}
	return out
}
