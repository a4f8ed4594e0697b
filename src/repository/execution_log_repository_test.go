package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"signalengine/src/model"
)

func TestExecutionLogRepository_Record(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&ExecutionLogRepository{}).WithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "execution_records"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Record(context.Background(), model.ExecutionRecord{
		Sequence:   1,
		PositionID: "p-1",
		Action:     model.HistoryEntry,
		Symbol:     "BTCUSDT",
		Side:       "BUY",
		OrderType:  "MARKET",
		Quantity:   1,
		Price:      100.1,
		Timestamp:  time.Now(),
	})
	if err != nil {
		t.Fatalf("expected record to succeed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExecutionLogRepository_LastSequence(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&ExecutionLogRepository{}).WithDB(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(sequence), 0) FROM "execution_records"`)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(7))

	last, err := repo.LastSequence(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last != 7 {
		t.Fatalf("expected last sequence 7, got %d", last)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExecutionLogRepository_FindByPosition(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&ExecutionLogRepository{}).WithDB(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "execution_records" WHERE position_id = $1 ORDER BY sequence ASC`)).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sequence", "position_id", "action"}).
			AddRow(1, 1, "p-1", "ENTRY").
			AddRow(2, 2, "p-1", "PLACE_STOP"))

	rows, err := repo.FindByPosition(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[1].Action != model.HistoryPlaceStop {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
