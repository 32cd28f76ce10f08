package service

import (
	"context"
	"errors"
	"fmt"

	"user-accounts/internal/auth"
	"user-accounts/internal/domain"
	"user-accounts/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when the target account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrMissingFields is returned when a required input is empty.
	ErrMissingFields = errors.New("username and password are required")
	// ErrNothingToUpdate is returned by Update when neither field is supplied.
	ErrNothingToUpdate = errors.New("username or password is required")
)

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	// RegisterAdmin creates an account that holds the admin flag from the
	// moment it is inserted.
	RegisterAdmin(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Update changes the non-empty fields. The returned record still carries
	// the stored password hash.
	Update(ctx context.Context, id int64, username, password string) (*domain.User, error)
	Delete(ctx context.Context, id int64) (*domain.User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) (*domain.User, error)
	Ping(ctx context.Context) error
}

type userService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
}

func NewUserService(users repository.UserRepository, hasher *auth.Hasher) UserService {
	return &userService{
		users:  users,
		hasher: hasher,
	}
}

func (s *userService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.register(ctx, username, password, false)
}

func (s *userService) RegisterAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	return s.register(ctx, username, password, true)
}

func (s *userService) register(ctx context.Context, username, password string, isAdmin bool) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, id int64, username, password string) (*domain.User, error) {
	var update domain.UserUpdate
	if username != "" {
		update.Username = &username
	}
	if password != "" {
		hash, err := s.hasher.HashPassword(password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}
	if update.Empty() {
		return nil, ErrNothingToUpdate
	}

	user, err := s.users.Update(ctx, id, update)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) SetAdmin(ctx context.Context, id int64, isAdmin bool) (*domain.User, error) {
	user, err := s.users.SetAdmin(ctx, id, isAdmin)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) Ping(ctx context.Context) error {
	if err := s.users.Ping(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
}
