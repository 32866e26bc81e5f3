// Package repository содержит хранилища сервера:
//   - UsersRepository — таблица users (sqlite или postgres);
//   - FilesRepository — каталог загруженных файлов.
//
// Все SQL-запросы параметризованы: пользовательский ввод никогда
// не склеивается со строкой запроса.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/cestmoi1337/ScorePlayer/internal/server/models"
	serr "github.com/cestmoi1337/ScorePlayer/internal/shared/errors"
)

// pgUniqueViolation — код ошибки PostgreSQL unique_violation.
const pgUniqueViolation = "23505"

// queries — тексты запросов под конкретный диалект плейсхолдеров.
type queries struct {
	insertUser string
	selectUser string
	ping       string
}

var dialects = map[string]queries{
	"sqlite": {
		insertUser: `INSERT INTO users (email, password_hash) VALUES (?, ?) RETURNING id`,
		selectUser: `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		ping:       `SELECT 1`,
	},
	"postgres": {
		insertUser: `INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`,
		selectUser: `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		ping:       `SELECT 1`,
	},
}

type UsersRepository struct {
	db *sql.DB
	q  queries
}

// NewUsersRepository создаёт репозиторий пользователей для драйвера sqlite|postgres.
func NewUsersRepository(db *sql.DB, driver string) (*UsersRepository, error) {
	q, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	return &UsersRepository{db: db, q: q}, nil
}

// Create добавляет пользователя и возвращает его id.
//
// Нарушение уникальности email — serr.ErrAlreadyExists,
// любая другая ошибка хранилища — serr.ErrInternal.
func (r *UsersRepository) Create(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64

	err := r.db.QueryRowContext(ctx, r.q.insertUser, email, passwordHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, serr.ErrAlreadyExists
		}
		return 0, fmt.Errorf("%w: insert user: %w", serr.ErrInternal, err)
	}

	return id, nil
}

// GetByEmail ищет пользователя по точному совпадению email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var (
		u         models.User
		createdAt dbTime
	)

	err := r.db.QueryRowContext(ctx, r.q.selectUser, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, serr.ErrNotFound
		}
		return models.User{}, fmt.Errorf("%w: select user: %w", serr.ErrInternal, err)
	}

	u.CreatedAt = createdAt.Time
	return u, nil
}

// Ping проверяет, что база отвечает (для /healthz).
func (r *UsersRepository) Ping(ctx context.Context) error {
	var x int
	if err := r.db.QueryRowContext(ctx, r.q.ping).Scan(&x); err != nil {
		return fmt.Errorf("%w: ping: %w", serr.ErrInternal, err)
	}
	return nil
}

// isUniqueViolation распознаёт нарушение UNIQUE у обоих драйверов.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// без расширенных кодов остаётся только текст
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

// dbTime сканирует время из DATETIME (sqlite отдаёт строку или time.Time)
// и TIMESTAMPTZ (postgres).
type dbTime struct {
	time.Time
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported time format %q", s)
}
