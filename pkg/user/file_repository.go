package user

import (
	"context"

	"github.com/tendant/device-trust-demo/pkg/store"
)

// FileUserRepository implements UserRepository on top of the shared JSON
// document store. Lookups are linear scans over the users array.
type FileUserRepository struct {
	store *store.Store
}

// NewFileUserRepository creates a new file-based user repository
func NewFileUserRepository(s *store.Store) *FileUserRepository {
	return &FileUserRepository{store: s}
}

// CreateUser appends a new user record and persists the document
func (r *FileUserRepository) CreateUser(ctx context.Context, u User) (User, error) {
	err := r.store.Update(func(doc *store.Document) error {
		for _, rec := range doc.Users {
			if rec.Username == u.Username {
				return ErrUsernameAlreadyExists{Username: u.Username}
			}
		}
		doc.Users = append(doc.Users, toUserRecord(u))
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// GetUserByID retrieves a user by its system-generated id
func (r *FileUserRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	var found *User
	r.store.View(func(doc *store.Document) {
		for _, rec := range doc.Users {
			if rec.ID == id {
				u := fromUserRecord(rec)
				found = &u
				return
			}
		}
	})
	if found == nil {
		return User{}, ErrUserNotFound
	}
	return *found, nil
}

// FindUserByUsername retrieves a user by its unique login id
func (r *FileUserRepository) FindUserByUsername(ctx context.Context, username string) (User, error) {
	var found *User
	r.store.View(func(doc *store.Document) {
		for _, rec := range doc.Users {
			if rec.Username == username {
				u := fromUserRecord(rec)
				found = &u
				return
			}
		}
	})
	if found == nil {
		return User{}, ErrUserNotFound
	}
	return *found, nil
}

// FindUsers retrieves all users
func (r *FileUserRepository) FindUsers(ctx context.Context) ([]User, error) {
	var users []User
	r.store.View(func(doc *store.Document) {
		for _, rec := range doc.Users {
			users = append(users, fromUserRecord(rec))
		}
	})
	return users, nil
}

func toUserRecord(u User) store.UserRecord {
	return store.UserRecord{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
	}
}

func fromUserRecord(rec store.UserRecord) User {
	return User{
		ID:        rec.ID,
		Name:      rec.Name,
		Username:  rec.Username,
		Password:  rec.Password,
		CreatedAt: rec.CreatedAt,
	}
}
