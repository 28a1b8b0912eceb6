package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"signage/internal/interfaces"
)

func fkViolation(constraint string) *pq.Error {
	return &pq.Error{Code: "23503", Constraint: constraint}
}

func TestRecordHeartbeatTouchesLivenessColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec("UPDATE screens").
		WithArgs("screen-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewScreenRepository(db)
	if err := repo.RecordHeartbeat(context.Background(), "screen-1", at); err != nil {
		t.Fatalf("RecordHeartbeat: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordHeartbeatUnknownScreen(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec("UPDATE screens").
		WithArgs("ghost", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewScreenRepository(db)
	err = repo.RecordHeartbeat(context.Background(), "ghost", at)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestDeleteBlockedByApprovals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	pqErr := fkViolation("approvals_screen_id_fkey")
	mock.ExpectExec("DELETE FROM screens").
		WithArgs("screen-1").
		WillReturnError(pqErr)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("screen-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	repo := NewScreenRepository(db)
	err = repo.Delete(context.Background(), "screen-1")

	var blocked *interfaces.DeletionBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected DeletionBlockedError, got %v", err)
	}
	if blocked.References["approvals"] != 3 {
		t.Fatalf("expected 3 referencing approvals, got %v", blocked.References)
	}
}
