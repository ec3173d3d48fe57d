package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/job-portal-manager/internal/apperr"
	"github.com/iliyamo/job-portal-manager/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var fixed = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestMySQL_CreateUserDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`(?s)^INSERT INTO users \(name, email, password, created_at\) VALUES \(\?,\?,\?,\?\)$`).
		WithArgs("Alice", "a@x.com", "hash", fixed).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com' for key 'uq_users_email'"})

	_, err := NewUserRepo(db).Create(context.Background(), "Alice", "a@x.com", "hash", fixed)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestMySQL_CreateUserDBError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	_, err := NewUserRepo(db).Create(context.Background(), "Alice", "a@x.com", "hash", fixed)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "db down")
}

func TestMySQL_CreatePortal(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`^INSERT INTO portals \(category, link, user_id, created_at\) VALUES \(\?, \?, \?, \?\)$`).
		WithArgs("QA", "indeed.com", uint64(3), fixed).
		WillReturnResult(sqlmock.NewResult(42, 1))

	r := NewPortalRepo(db).WithClock(func() time.Time { return fixed })
	id, err := r.Create(context.Background(), 3, "QA", "indeed.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestMySQL_UpdatePortalStampsAndScopes(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`^UPDATE portals SET link = \?, updated_at = \? WHERE id = \? AND user_id = \?$`).
		WithArgs("indeed.com/remote", fixed, uint64(9), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewPortalRepo(db).WithClock(func() time.Time { return fixed })
	link := "indeed.com/remote"
	require.NoError(t, r.Update(context.Background(), 3, 9, model.PortalPatch{Link: &link}))
}

func TestMySQL_UpdatePortalNoMatch(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`^UPDATE portals SET category = \?, link = \?, updated_at = \? WHERE id = \? AND user_id = \?$`).
		WithArgs("Dev", "x.com", fixed, uint64(9), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewPortalRepo(db).WithClock(func() time.Time { return fixed })
	cat, link := "Dev", "x.com"
	err := r.Update(context.Background(), 4, 9, model.PortalPatch{Category: &cat, Link: &link})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMySQL_DeletePortalNoMatch(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`^DELETE FROM portals WHERE id = \? AND user_id = \?$`).
		WithArgs(uint64(9), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPortalRepo(db).Delete(context.Background(), 4, 9)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMySQL_GetPortalScoped(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"id", "category", "link", "user_id", "created_at", "updated_at"}).
		AddRow(uint64(9), "QA", "indeed.com", uint64(3), fixed, nil)
	mock.ExpectQuery(`(?s)SELECT id, category, link, user_id, created_at, updated_at FROM portals WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(9), uint64(3)).
		WillReturnRows(rows)

	p, err := NewPortalRepo(db).Get(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.Equal(t, "indeed.com", p.Link)
	assert.Equal(t, fixed, p.CreatedAt)
	assert.Nil(t, p.UpdatedAt)
}
