package user

import (
	"fmt"

	"github.com/tendant/device-trust-demo/pkg/store"
)

// RepositoryConfig contains configuration for creating a user repository
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories
	DB DBTX
	// Store is required for file-based repositories
	Store *store.Store
}

// NewUserRepository creates a new user repository based on the persistence type
func NewUserRepository(persistenceType string, config RepositoryConfig) (UserRepository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, fmt.Errorf("db required for postgres repository")
		}
		return NewPostgresUserRepository(config.DB), nil
	case "file":
		if config.Store == nil {
			return nil, fmt.Errorf("store required for file repository")
		}
		return NewFileUserRepository(config.Store), nil
	case "inmem", "memory":
		return NewInMemUserRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, file, inmem)", persistenceType)
	}
}
