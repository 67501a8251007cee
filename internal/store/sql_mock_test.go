package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/credence/internal/model"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewSQLStore(sqlx.NewDb(db, "postgres")), mock
}

func TestSQLStore_PostgresPlaceholders(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM analyses WHERE id = \$1 AND user_id = \$2`).
		WithArgs("a1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), "u1", "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetDatabaseFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM analyses WHERE id = \$1`).
		WillReturnError(sql.ErrConnDone)

	_, err := s.Get(context.Background(), "u1", "a1")
	require.Error(t, err)
	var nf *model.NotFoundError
	assert.False(t, errors.As(err, &nf), "connection errors must not look like not-found")
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestSQLStore_ListCountFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM analyses`).
		WillReturnError(sql.ErrConnDone)

	_, err := s.List(context.Background(), model.HistoryQuery{UserID: "u1"})
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestSQLStore_CorruptDetails(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "url", "title", "content", "credibility_score", "explanation",
		"summary", "final_verdict", "method", "quotes_synthetic", "details", "created_at",
	}).AddRow("a1", "u1", "u", "t", "c", 50, "e", "s", "f", "rules", false, "{not json", baseTime)
	mock.ExpectQuery(`SELECT (.+) FROM analyses`).WillReturnRows(rows)

	_, err := s.Get(context.Background(), "u1", "a1")
	assert.Error(t, err)
}

func TestSQLStore_DeleteAllFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM analyses WHERE user_id = \$1`).
		WillReturnError(errors.New("disk full"))

	_, err := s.DeleteAll(context.Background(), "u1")
	assert.Error(t, err)
}
