package repository

import (
	"context"
	"errors"

	"user-accounts/internal/domain"
)

// ErrNotFound is returned when no user row matches the lookup.
var ErrNotFound = errors.New("user not found")

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Ping(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id int64) (*domain.User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) (*domain.User, error)
}
