package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"signalengine/src/model"
)

func TestExceptionRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExceptionRepositoryWithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "exceptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	exc := &model.Exception{
		Service:   "signalengine",
		Module:    "position_manager",
		Method:    "UpdatePositions",
		Symbol:    "BTCUSDT",
		Message:   "boom",
		Level:     "error",
		CreatedAt: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(context.Background(), exc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exc.ID != 7 {
		t.Fatalf("expected id 7, got %d", exc.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExceptionRepository_FindRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExceptionRepositoryWithDB(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "exceptions" ORDER BY created_at DESC LIMIT $1`)).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "service", "message"}).AddRow(1, "signalengine", "boom"))

	rows, err := repo.FindRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Message != "boom" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
