package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// UserService handles registration and credential authentication
type UserService struct {
	repository UserRepository
	hasher     PasswordHasher
}

// UserServiceOption is a function that configures a UserService
type UserServiceOption func(*UserService)

// WithPasswordHasher sets the password hasher used for registration and login
func WithPasswordHasher(hasher PasswordHasher) UserServiceOption {
	return func(s *UserService) {
		s.hasher = hasher
	}
}

// NewUserService creates a new user service with the given repository
func NewUserService(repository UserRepository, options ...UserServiceOption) *UserService {
	s := &UserService{
		repository: repository,
		hasher:     PlaintextHasher{},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Register creates a new user account. The username must not already exist;
// on conflict the store is left unchanged.
func (s *UserService) Register(ctx context.Context, name, username, password string) (User, error) {
	if _, err := s.repository.FindUserByUsername(ctx, username); err == nil {
		slog.Warn("registration rejected, username taken", "username", username)
		return User{}, ErrUsernameAlreadyExists{Username: username}
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u := User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  username,
		Password:  stored,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repository.CreateUser(ctx, u)
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "username", username, "userID", created.ID)
	return created, nil
}

// Authenticate checks a username/password pair against the store.
// A missing user and a wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.repository.FindUserByUsername(ctx, username)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if !s.hasher.Verify(u.Password, password) {
		slog.Warn("authentication failed", "username", username)
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

// GetUser retrieves a user by id
func (s *UserService) GetUser(ctx context.Context, id string) (User, error) {
	return s.repository.GetUserByID(ctx, id)
}
