package position

import "signalengine/src/model"

type EventKind string

const (
	EventTrailingStop EventKind = "TRAILING_STOP"
	EventPartialClose EventKind = "PARTIAL_CLOSE"
	EventClose        EventKind = "CLOSE"
	EventError        EventKind = "ERROR"
)

// Event is one observable outcome of a tick update.
type Event struct {
	Kind        EventKind            `json:"kind"`
	PositionID  string               `json:"position_id"`
	Symbol      string               `json:"symbol"`
	Status      model.PositionStatus `json:"status"`
	Price       float64              `json:"price"`
	Quantity    float64              `json:"quantity"`
	RealizedPnL float64              `json:"realized_pnl"`
	Reason      string               `json:"reason,omitempty"`
	Err         error                `json:"-"`
}
