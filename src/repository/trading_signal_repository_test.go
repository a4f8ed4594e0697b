package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"signalengine/src/model"
)

var signalColumns = []string{"id", "symbol", "direction", "confidence", "entry_price", "stop_loss", "take_profit_levels", "risk_reward", "strength", "reasoning", "signal_time", "processed_at"}

func TestTradingSignalRepository_PendingSignals(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&TradingSignalRepository{}).WithDB(db).WithBatch(10)
	signalTime := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(signalColumns).
		AddRow(1, "btcusdt", "long", 0.8, 100.0, 95.0, "107,110", 0.0, "strong", "breakout", signalTime, nil).
		AddRow(2, "ETHUSDT", "sideways", 0.9, 10.0, 9.0, "12", 0.0, "", "", signalTime, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trade_signals" WHERE processed_at IS NULL ORDER BY id ASC LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "trade_signals" SET "processed_at"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	signals, err := repo.PendingSignals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error claiming signals: %v", err)
	}
	if len(signals) != 1 {
		t.Fatalf("expected 1 valid signal, got %d", len(signals))
	}

	sig := signals[0]
	if sig.Symbol != "BTCUSDT" || sig.Direction != model.DirectionLong || sig.Strength != model.StrengthStrong {
		t.Fatalf("unexpected signal: %+v", sig)
	}
	if len(sig.TakeProfitLevels) != 2 || sig.TakeProfitLevels[1] != 110 {
		t.Fatalf("unexpected take-profit levels: %v", sig.TakeProfitLevels)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTradingSignalRepository_PendingSignalsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&TradingSignalRepository{}).WithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trade_signals" WHERE processed_at IS NULL ORDER BY id ASC LIMIT $1`)).
		WithArgs(defaultSignalBatch).
		WillReturnRows(sqlmock.NewRows(signalColumns))
	mock.ExpectCommit()

	signals, err := repo.PendingSignals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(signals) != 0 {
		t.Fatalf("expected no signals, got %d", len(signals))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
