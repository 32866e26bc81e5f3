package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cestmoi1337/ScorePlayer/internal/server/config"
	"github.com/cestmoi1337/ScorePlayer/internal/server/repository"
	serr "github.com/cestmoi1337/ScorePlayer/internal/shared/errors"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// настоящая sqlite с применёнными миграциями
func newSQLiteRepo(t *testing.T) *repository.UsersRepository {
	cfg := config.Default().DB
	cfg.DSN = filepath.Join(t.TempDir(), "database.db")

	db, err := config.OpenDB(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := repository.NewUsersRepository(db, "sqlite")
	require.NoError(t, err)
	return repo
}

func TestNewUsersRepository_UnknownDriver(t *testing.T) {
	db, _ := newMockDB(t)

	_, err := repository.NewUsersRepository(db, "mysql")
	require.Error(t, err)
}

func TestUsersRepository_Create_OK(t *testing.T) {
	db, mock := newMockDB(t)
	repo, err := repository.NewUsersRepository(db, "sqlite")
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("a@x.com", "digest").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.Create(context.Background(), "a@x.com", "digest")
	require.NoError(t, err)
	require.Equal(t, int64(7), id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepository_Create_PostgresPlaceholders(t *testing.T) {
	db, mock := newMockDB(t)
	repo, err := repository.NewUsersRepository(db, "postgres")
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO users \(email, password_hash\) VALUES \(\$1, \$2\)`).
		WithArgs("a@x.com", "digest").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err = repo.Create(context.Background(), "a@x.com", "digest")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepository_Create_PostgresUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo, err := repository.NewUsersRepository(db, "postgres")
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), "a@x.com", "digest")
	require.ErrorIs(t, err, serr.ErrAlreadyExists)
}

func TestUsersRepository_Create_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo, err := repository.NewUsersRepository(db, "sqlite")
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(sql.ErrConnDone)

	id, err := repo.Create(context.Background(), "a@x.com", "digest")
	require.ErrorIs(t, err, serr.ErrInternal)
	require.NotErrorIs(t, err, serr.ErrAlreadyExists)
	require.Zero(t, id)
}

func TestUsersRepository_GetByEmail_OK(t *testing.T) {
	db, mock := newMockDB(t)
	repo, err := repository.NewUsersRepository(db, "sqlite")
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at FROM users`).
		WithArgs("a@x.com").
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
				AddRow(int64(3), "a@x.com", "digest", now),
		)

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, int64(3), u.ID)
	require.Equal(t, "a@x.com", u.Email)
	require.Equal(t, "digest", u.PasswordHash)
	require.True(t, now.Equal(u.CreatedAt))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepository_GetByEmail_StringTimestamp(t *testing.T) {
	db, mock := newMockDB(t)
	repo, err := repository.NewUsersRepository(db, "sqlite")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at FROM users`).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
				AddRow(int64(1), "a@x.com", "digest", "2025-01-02 03:04:05"),
		)

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), u.CreatedAt)
}

func TestUsersRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo, err := repository.NewUsersRepository(db, "sqlite")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at FROM users`).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, serr.ErrNotFound)
}

func TestUsersRepository_GetByEmail_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo, err := repository.NewUsersRepository(db, "sqlite")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at FROM users`).
		WillReturnError(sql.ErrConnDone)

	_, err = repo.GetByEmail(context.Background(), "a@x.com")
	require.ErrorIs(t, err, serr.ErrInternal)
}

func TestUsersRepository_Ping(t *testing.T) {
	db, mock := newMockDB(t)
	repo, err := repository.NewUsersRepository(db, "sqlite")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow(1))
	require.NoError(t, repo.Ping(context.Background()))

	mock.ExpectQuery(`SELECT 1`).WillReturnError(sql.ErrConnDone)
	require.ErrorIs(t, repo.Ping(context.Background()), serr.ErrInternal)
}

// Сквозной сценарий на настоящей sqlite: ids растут, дубликат email отклоняется
func TestUsersRepository_SQLite_CreateAndDuplicate(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	id1, err := repo.Create(ctx, "a@x.com", "digest-a")
	require.NoError(t, err)
	id2, err := repo.Create(ctx, "b@x.com", "digest-b")
	require.NoError(t, err)
	require.Greater(t, id2, id1)

	_, err = repo.Create(ctx, "a@x.com", "other")
	require.ErrorIs(t, err, serr.ErrAlreadyExists)

	u, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, id1, u.ID)
	require.Equal(t, "digest-a", u.PasswordHash)
	require.False(t, u.CreatedAt.IsZero())

	// поиск по точному совпадению
	_, err = repo.GetByEmail(ctx, "A@X.COM")
	require.ErrorIs(t, err, serr.ErrNotFound)

	require.NoError(t, repo.Ping(ctx))
}
