package executors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalengine/src/model"
	"signalengine/src/position"
)

type memoryExceptions struct {
	rows []model.Exception
	err  error
}

func (m *memoryExceptions) Create(_ context.Context, exc *model.Exception) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, *exc)
	return nil
}

func TestExceptionObserver(t *testing.T) {
	store := &memoryExceptions{}
	obs := ExceptionObserver{Store: store, Now: func() time.Time { return testStart }}
	ctx := context.Background()

	obs.OnExecution(ctx, model.ExecutionResult{Action: model.ActionExecuted, Signal: signal("A", 0.9, 110)})
	obs.OnExecution(ctx, model.ExecutionResult{Action: model.ActionRejected, Signal: signal("A", 0.1, 110)})
	obs.OnExecution(ctx, model.ExecutionResult{Action: model.ActionFailed, Signal: signal("B", 0.9, 110), Reason: "venue offline"})
	obs.OnExecution(ctx, model.ExecutionResult{Action: model.ActionError, Signal: signal("C", 0.9, 110), Reason: "panicked"})
	obs.OnPositionEvent(ctx, position.Event{Kind: position.EventClose, Symbol: "D"})
	obs.OnPositionEvent(ctx, position.Event{Kind: position.EventError, Symbol: "E", PositionID: "p-1", Price: 42, Err: errors.New("boom")})

	require.Len(t, store.rows, 3)
	assert.Equal(t, "order_simulator", store.rows[0].Module)
	assert.Equal(t, "warn", store.rows[0].Level)
	assert.Contains(t, store.rows[0].Context, `"entry_price":100`)
	assert.Equal(t, "engine", store.rows[1].Module)
	assert.Equal(t, "position_manager", store.rows[2].Module)
	assert.Equal(t, "p-1", store.rows[2].PositionID)
	assert.Equal(t, "boom", store.rows[2].Message)
	assert.Equal(t, testStart, store.rows[2].CreatedAt)

	failing := ExceptionObserver{Store: &memoryExceptions{err: assert.AnError}}
	assert.NotPanics(t, func() {
		failing.OnPositionEvent(ctx, position.Event{Kind: position.EventError, Err: errors.New("boom")})
	})
}
