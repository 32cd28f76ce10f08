package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"user-accounts/internal/domain"
	"user-accounts/internal/repository"
)

const (
	createUsersTablePostgres = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	username TEXT NOT NULL,
	password VARCHAR(100) NOT NULL,
	isadmin BOOLEAN NOT NULL DEFAULT FALSE
);
`
	createUsersTableSQLite = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	password VARCHAR(100) NOT NULL,
	isadmin BOOLEAN NOT NULL DEFAULT FALSE
);
`
	userColumns = `id, username, password, isadmin`
)

// UserRepository stores users in postgres or sqlite. Queries are written with
// '?' placeholders and rebound for the underlying driver.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	ddl := createUsersTablePostgres
	if r.db.DriverName() == "sqlite" {
		ddl = createUsersTableSQLite
	}
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	row := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO users (username, password, isadmin)
VALUES (?, ?, ?)
RETURNING id, isadmin`),
		user.Username,
		user.PasswordHash,
		user.IsAdmin,
	)
	if err := row.Scan(&user.ID, &user.IsAdmin); err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return user.ID, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `
SELECT `+userColumns+`
FROM users
WHERE username = ?
ORDER BY id
LIMIT 1`,
		username,
	)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = ?`,
		id,
	)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	return r.getOne(ctx, `
UPDATE users
SET username = COALESCE(?, username),
	password = COALESCE(?, password)
WHERE id = ?
RETURNING `+userColumns,
		update.Username,
		update.PasswordHash,
		id,
	)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `
DELETE FROM users
WHERE id = ?
RETURNING `+userColumns,
		id,
	)
}

func (r *UserRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) (*domain.User, error) {
	return r.getOne(ctx, `
UPDATE users
SET isadmin = ?
WHERE id = ?
RETURNING `+userColumns,
		isAdmin,
		id,
	)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.db.GetContext(ctx, &user, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
