package device

import (
	"context"
	"time"
)

// Device is a browser/device a user has confirmed with a passcode.
// FingerprintID comes from the client-side fingerprinting script.
type Device struct {
	ID            string    `json:"id"`
	FingerprintID string    `json:"fingerprint_id"`
	OwnerUserID   string    `json:"owner_user_id"`
	LastUsedAt    time.Time `json:"last_used_at"`
	RegisteredAt  time.Time `json:"registered_at"`
}

// DeviceRepository defines the interface for trusted device operations
type DeviceRepository interface {
	// CreateDevice stores a new trusted device. A device with the same
	// owner and fingerprint must not already exist.
	CreateDevice(ctx context.Context, d Device) (Device, error)

	// GetDeviceByID retrieves a device by id
	GetDeviceByID(ctx context.Context, id string) (Device, error)

	// FindDeviceByOwnerAndFingerprint retrieves the device registered by
	// ownerUserID with the given fingerprint
	FindDeviceByOwnerAndFingerprint(ctx context.Context, ownerUserID, fingerprintID string) (Device, error)

	// FindDevicesByOwner retrieves all devices registered by ownerUserID
	FindDevicesByOwner(ctx context.Context, ownerUserID string) ([]Device, error)

	// UpdateDeviceLastUsed sets the device's last used timestamp
	UpdateDeviceLastUsed(ctx context.Context, id string, lastUsedAt time.Time) error

	// RemoveDevice deletes a device
	RemoveDevice(ctx context.Context, id string) error

	// FindDevices retrieves all devices
	FindDevices(ctx context.Context) ([]Device, error)
}
