package model

import (
	"fmt"
	"strings"
)

// Direction is the side of the market a signal wants to be on.
type Direction int

const (
	DirectionLong Direction = iota + 1
	DirectionShort
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "long"
	case DirectionShort:
		return "short"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Sign is +1 for long and -1 for short, so (exit-entry)*qty*Sign is the PnL.
func (d Direction) Sign() float64 {
	if d == DirectionShort {
		return -1
	}
	return 1
}

// EntrySide is the order side that opens a position in this direction.
func (d Direction) EntrySide() Side {
	if d == DirectionShort {
		return SideSell
	}
	return SideBuy
}

// ExitSide mirrors EntrySide.
func (d Direction) ExitSide() Side {
	if d == DirectionShort {
		return SideBuy
	}
	return SideSell
}

func (d Direction) Valid() bool { return d == DirectionLong || d == DirectionShort }

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDirection accepts long/short and the buy/sell aliases used by signal feeds.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy", "entry_long":
		return DirectionLong, nil
	case "short", "sell", "entry_short":
		return DirectionShort, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Strength classifies how strong the signal generator judged a signal.
type Strength int

const (
	StrengthWeak Strength = iota + 1
	StrengthModerate
	StrengthStrong
	StrengthVeryStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "weak"
	case StrengthModerate:
		return "moderate"
	case StrengthStrong:
		return "strong"
	case StrengthVeryStrong:
		return "very_strong"
	default:
		return fmt.Sprintf("strength(%d)", int(s))
	}
}

func (s Strength) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Strength) UnmarshalText(b []byte) error {
	v, err := ParseStrength(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseStrength(s string) (Strength, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "weak":
		return StrengthWeak, nil
	case "moderate":
		return StrengthModerate, nil
	case "strong":
		return StrengthStrong, nil
	case "very_strong", "verystrong":
		return StrengthVeryStrong, nil
	default:
		return 0, fmt.Errorf("unknown strength %q", s)
	}
}

type Side int

const (
	SideBuy Side = iota + 1
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type OrderType int

const (
	OrderTypeMarket OrderType = iota + 1
	OrderTypeLimit
	OrderTypeStop
	OrderTypeStopLimit
	OrderTypeTrailingStop
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "MARKET"
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStop:
		return "STOP"
	case OrderTypeStopLimit:
		return "STOP_LIMIT"
	case OrderTypeTrailingStop:
		return "TRAILING_STOP"
	default:
		return fmt.Sprintf("order_type(%d)", int(t))
	}
}

func (t OrderType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// PositionStatus is the lifecycle state of a Position.
//
//	PENDING -> ACTIVE -> PARTIAL_CLOSE -> {CLOSED | STOPPED_OUT}
//
// ACTIVE may also go straight to a terminal state.
type PositionStatus int

const (
	StatusPending PositionStatus = iota + 1
	StatusActive
	StatusPartialClose
	StatusClosed
	StatusStoppedOut
)

func (s PositionStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusActive:
		return "ACTIVE"
	case StatusPartialClose:
		return "PARTIAL_CLOSE"
	case StatusClosed:
		return "CLOSED"
	case StatusStoppedOut:
		return "STOPPED_OUT"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s PositionStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// IsOpen reports whether the position still receives tick updates.
func (s PositionStatus) IsOpen() bool {
	return s == StatusActive || s == StatusPartialClose
}

func (s PositionStatus) IsTerminal() bool {
	return s == StatusClosed || s == StatusStoppedOut
}

// CanTransition enforces monotonic progress. PARTIAL_CLOSE -> PARTIAL_CLOSE is
// allowed because every additional rung keeps the position in that state.
func (s PositionStatus) CanTransition(to PositionStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusActive
	case StatusActive:
		return to == StatusPartialClose || to == StatusClosed || to == StatusStoppedOut
	case StatusPartialClose:
		return to == StatusPartialClose || to == StatusClosed || to == StatusStoppedOut
	case StatusClosed, StatusStoppedOut:
		return false
	default:
		return false
	}
}

// ExecutionAction is the outcome reported for every processed signal.
type ExecutionAction int

const (
	ActionExecuted ExecutionAction = iota + 1
	ActionRejected
	ActionFailed
	ActionError
)

func (a ExecutionAction) String() string {
	switch a {
	case ActionExecuted:
		return "EXECUTED"
	case ActionRejected:
		return "REJECTED"
	case ActionFailed:
		return "FAILED"
	case ActionError:
		return "ERROR"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

func (a ExecutionAction) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// HistoryAction labels an execution-history record.
type HistoryAction string

const (
	HistoryEntry           HistoryAction = "ENTRY"
	HistoryPlaceStop       HistoryAction = "PLACE_STOP"
	HistoryPlaceTakeProfit HistoryAction = "PLACE_TAKE_PROFIT"
	HistoryPartialClose    HistoryAction = "PARTIAL_CLOSE"
	HistoryClose           HistoryAction = "CLOSE"
)
