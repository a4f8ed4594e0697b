package connectors

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"signalengine/src/model"
)

type FillStatus int

const (
	FillFilled FillStatus = iota + 1
	FillFailed
)

func (s FillStatus) String() string {
	switch s {
	case FillFilled:
		return "FILLED"
	case FillFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("fill_status(%d)", int(s))
	}
}

func (s FillStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// OrderRequest is an abstract order sent to the venue.
type OrderRequest struct {
	Symbol   string
	Side     model.Side
	Quantity float64
	Type     model.OrderType
	Price    float64
}

// Fill is the venue's answer. A failed fill has Status FillFailed and a
// description in Error; the other fields are zero.
type Fill struct {
	OrderID   string          `json:"order_id"`
	Status    FillStatus      `json:"status"`
	OrderType model.OrderType `json:"order_type"`
	Price     float64         `json:"fill_price"`
	Quantity  float64         `json:"fill_quantity"`
	Fee       float64         `json:"fee"`
	FilledAt  time.Time       `json:"fill_time"`
	Error     string          `json:"error,omitempty"`
}

func (f Fill) Filled() bool { return f.Status == FillFilled }

// Err wraps a failure description in model.ErrExecutionFailure.
func (f Fill) Err() error {
	if f.Filled() {
		return nil
	}
	return fmt.Errorf("%w: %s", model.ErrExecutionFailure, f.Error)
}

// OrderExecutor turns order requests into fills. Implementations never panic
// and never return an error value: failures come back as FillFailed.
type OrderExecutor interface {
	Execute(ctx context.Context, req OrderRequest) Fill
}

// Simulator is a deterministic OrderExecutor. Market orders slip a fixed
// number of basis points against the trader; every other type fills exactly
// at the requested price.
type Simulator struct {
	cfg    Config
	logger *logrus.Entry
	now    func() time.Time
	newID  func() string
	fault  func(OrderRequest) error
}

func NewSimulator(cfg Config, logger *logrus.Entry) *Simulator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Simulator{
		cfg:    cfg,
		logger: logger.WithField("component", "OrderSimulator"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *Simulator) WithClock(now func() time.Time) *Simulator {
	s.now = now
	return s
}

// WithFault installs a hook that can fail individual orders.
func (s *Simulator) WithFault(fault func(OrderRequest) error) *Simulator {
	s.fault = fault
	return s
}

func (s *Simulator) Execute(ctx context.Context, req OrderRequest) (fill Fill) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("symbol", req.Symbol).Errorf("order simulation panicked: %v", r)
			fill = failed(fmt.Sprintf("simulator panic: %v", r))
		}
	}()

	if err := validate(req); err != nil {
		return failed(err.Error())
	}

	if s.cfg.Latency > 0 {
		timer := time.NewTimer(s.cfg.Latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return failed(fmt.Sprintf("order canceled: %v", ctx.Err()))
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return failed(fmt.Sprintf("order canceled: %v", err))
	}

	if s.fault != nil {
		if err := s.fault(req); err != nil {
			return failed(err.Error())
		}
	}

	var slippage float64
	switch req.Type {
	case model.OrderTypeMarket:
		slippage = s.cfg.SlippageBps / 10000
	case model.OrderTypeLimit, model.OrderTypeStop, model.OrderTypeStopLimit, model.OrderTypeTrailingStop:
		slippage = 0
	default:
		return failed(fmt.Sprintf("unsupported order type %s", req.Type))
	}

	var price float64
	switch req.Side {
	case model.SideBuy:
		price = req.Price * (1 + slippage)
	case model.SideSell:
		price = req.Price * (1 - slippage)
	default:
		return failed(fmt.Sprintf("unsupported side %s", req.Side))
	}

	fill = Fill{
		OrderID:   s.newID(),
		Status:    FillFilled,
		OrderType: req.Type,
		Price:     price,
		Quantity:  req.Quantity,
		Fee:       price * req.Quantity * s.cfg.FeeRate,
		FilledAt:  s.now(),
	}

	s.logger.WithFields(logrus.Fields{
		"symbol":     req.Symbol,
		"side":       req.Side.String(),
		"order_type": req.Type.String(),
		"qty":        req.Quantity,
		"price":      req.Price,
		"fill_price": fill.Price,
	}).Debug("order filled")

	return fill
}

func validate(req OrderRequest) error {
	switch {
	case req.Symbol == "":
		return fmt.Errorf("symbol is required")
	case req.Quantity <= 0 || math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0):
		return fmt.Errorf("invalid quantity %v", req.Quantity)
	case req.Price <= 0 || math.IsNaN(req.Price) || math.IsInf(req.Price, 0):
		return fmt.Errorf("invalid price %v", req.Price)
	}
	return nil
}

func failed(reason string) Fill {
	return Fill{Status: FillFailed, Error: reason}
}
