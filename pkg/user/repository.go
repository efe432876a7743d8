package user

import (
	"context"
	"time"
)

// User is a registered account. Users are created on registration and are
// immutable afterwards; there is no delete operation.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRepository defines the interface for user storage operations
type UserRepository interface {
	// CreateUser persists a new user. It fails with ErrUsernameAlreadyExists
	// if the username is taken.
	CreateUser(ctx context.Context, u User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	FindUserByUsername(ctx context.Context, username string) (User, error)
	FindUsers(ctx context.Context) ([]User, error)
}
