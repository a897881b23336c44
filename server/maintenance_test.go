package server

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPurgeExpiredAuthCountsBothTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE expires_at").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if got := purgeExpiredAuth(db); got != 5 {
		t.Errorf("purged = %d, want 5", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPurgeExpiredAuthSurvivesErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WillReturnError(errors.New("connection lost"))
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE expires_at").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if got := purgeExpiredAuth(db); got != 1 {
		t.Errorf("purged = %d, want 1", got)
	}
}
