package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/deskhive/deskhive/internal/models"
)

func newSQLSessionRepo(t *testing.T) (*SessionSQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	t.Setenv("TEST_DB_DRIVER", "sqlite3")

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionRepository(db), mock
}

func TestSessionSQLRepository_Create(t *testing.T) {
	repo, mock := newSQLSessionRepo(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &models.Session{
		Token:      "tok-1",
		UserID:     7,
		ExpiresAt:  now.Add(models.SessionTTL),
		CreatedAt:  now,
		RemoteAddr: "203.0.113.9",
		UserAgent:  "curl/8.0",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions (token, user_id, expires_at, created_at, remote_addr, user_agent)")).
		WithArgs("tok-1", 7, s.ExpiresAt, s.CreatedAt, "203.0.113.9", "curl/8.0").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSessionSQLRepository_CreateDuplicateToken(t *testing.T) {
	repo, mock := newSQLSessionRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WillReturnError(errors.New("UNIQUE constraint failed: sessions.token"))

	err := repo.Create(context.Background(), &models.Session{Token: "tok-1", ExpiresAt: time.Now(), CreatedAt: time.Now()})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestSessionSQLRepository_GetByToken(t *testing.T) {
	repo, mock := newSQLSessionRepo(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"token", "user_id", "expires_at", "created_at", "remote_addr", "user_agent"}).
		AddRow("tok-1", 7, now.Add(models.SessionTTL), now, "203.0.113.9", "curl/8.0")

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE token = ?")).
		WithArgs("tok-1").
		WillReturnRows(rows)

	got, err := repo.GetByToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.UserID != 7 || got.Token != "tok-1" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestSessionSQLRepository_GetByTokenNotFound(t *testing.T) {
	repo, mock := newSQLSessionRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE token = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at", "created_at", "remote_addr", "user_agent"}))

	_, err := repo.GetByToken(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionSQLRepository_DeleteMissingToken(t *testing.T) {
	repo, mock := newSQLSessionRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE token = ?")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionSQLRepository_DeleteExpiredReturnsCount(t *testing.T) {
	repo, mock := newSQLSessionRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE expires_at <= ?")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
