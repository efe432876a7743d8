package device

import (
	"fmt"

	"github.com/tendant/device-trust-demo/pkg/store"
)

// RepositoryConfig contains configuration for creating a device repository
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories
	DB DBTX
	// Store is required for file-based repositories
	Store *store.Store
}

// NewDeviceRepository creates a new device repository based on the persistence type
func NewDeviceRepository(persistenceType string, config RepositoryConfig) (DeviceRepository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, fmt.Errorf("db required for postgres repository")
		}
		return NewPostgresDeviceRepository(config.DB), nil
	case "file":
		if config.Store == nil {
			return nil, fmt.Errorf("store required for file repository")
		}
		return NewFileDeviceRepository(config.Store), nil
	case "inmem", "memory":
		return NewInMemDeviceRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, file, inmem)", persistenceType)
	}
}
