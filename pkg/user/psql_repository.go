package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx connection behavior the repository needs.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db DBTX
}

// NewPostgresUserRepository creates a new PostgreSQL-backed user repository
func NewPostgresUserRepository(db DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser inserts a new user row
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u User) (User, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, name, username, password, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Username, u.Password, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrUsernameAlreadyExists{Username: u.Username}
		}
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUserByID retrieves a user by id
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, username, password, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindUserByUsername retrieves a user by username
func (r *PostgresUserRepository) FindUserByUsername(ctx context.Context, username string) (User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, username, password, created_at FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// FindUsers retrieves all users
func (r *PostgresUserRepository) FindUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, username, password, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Password, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Password, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}
