package user

import (
	"context"
	"sync"
)

// InMemUserRepository implements UserRepository with an in-memory map.
// Intended for tests and demo runs without persistence.
type InMemUserRepository struct {
	users map[string]*User // Key: user ID
	mutex sync.RWMutex
}

// NewInMemUserRepository creates a new in-memory user repository
func NewInMemUserRepository() *InMemUserRepository {
	return &InMemUserRepository{
		users: make(map[string]*User),
	}
}

// CreateUser stores a new user
func (r *InMemUserRepository) CreateUser(ctx context.Context, u User) (User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return User{}, ErrUsernameAlreadyExists{Username: u.Username}
		}
	}

	userCopy := u
	r.users[u.ID] = &userCopy
	return u, nil
}

// GetUserByID retrieves a user by id
func (r *InMemUserRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	u, exists := r.users[id]
	if !exists {
		return User{}, ErrUserNotFound
	}
	return *u, nil
}

// FindUserByUsername retrieves a user by username
func (r *InMemUserRepository) FindUserByUsername(ctx context.Context, username string) (User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return User{}, ErrUserNotFound
}

// FindUsers retrieves all users
func (r *InMemUserRepository) FindUsers(ctx context.Context) ([]User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}
