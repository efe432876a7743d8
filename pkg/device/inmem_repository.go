package device

import (
	"context"
	"sync"
	"time"
)

// InMemDeviceRepository implements DeviceRepository with an in-memory map.
// Intended for tests and demo runs without persistence.
type InMemDeviceRepository struct {
	devices map[string]*Device // Key: device ID
	mutex   sync.RWMutex
}

// NewInMemDeviceRepository creates a new in-memory device repository
func NewInMemDeviceRepository() *InMemDeviceRepository {
	return &InMemDeviceRepository{
		devices: make(map[string]*Device),
	}
}

// CreateDevice stores a new trusted device
func (r *InMemDeviceRepository) CreateDevice(ctx context.Context, d Device) (Device, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, existing := range r.devices {
		if existing.OwnerUserID == d.OwnerUserID && existing.FingerprintID == d.FingerprintID {
			return Device{}, ErrDeviceAlreadyTrusted{
				OwnerUserID:   d.OwnerUserID,
				FingerprintID: d.FingerprintID,
			}
		}
	}

	deviceCopy := d
	r.devices[d.ID] = &deviceCopy
	return d, nil
}

// GetDeviceByID retrieves a device by id
func (r *InMemDeviceRepository) GetDeviceByID(ctx context.Context, id string) (Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	d, exists := r.devices[id]
	if !exists {
		return Device{}, ErrDeviceNotFound
	}
	return *d, nil
}

// FindDeviceByOwnerAndFingerprint retrieves a device by owner and fingerprint
func (r *InMemDeviceRepository) FindDeviceByOwnerAndFingerprint(ctx context.Context, ownerUserID, fingerprintID string) (Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, d := range r.devices {
		if d.OwnerUserID == ownerUserID && d.FingerprintID == fingerprintID {
			return *d, nil
		}
	}
	return Device{}, ErrDeviceNotFound
}

// FindDevicesByOwner retrieves all devices registered by a user
func (r *InMemDeviceRepository) FindDevicesByOwner(ctx context.Context, ownerUserID string) ([]Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var devices []Device
	for _, d := range r.devices {
		if d.OwnerUserID == ownerUserID {
			devices = append(devices, *d)
		}
	}
	return devices, nil
}

// UpdateDeviceLastUsed sets the device's last used timestamp
func (r *InMemDeviceRepository) UpdateDeviceLastUsed(ctx context.Context, id string, lastUsedAt time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	d, exists := r.devices[id]
	if !exists {
		return ErrDeviceNotFound
	}
	d.LastUsedAt = lastUsedAt
	return nil
}

// RemoveDevice deletes a device
func (r *InMemDeviceRepository) RemoveDevice(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.devices[id]; !exists {
		return ErrDeviceNotFound
	}
	delete(r.devices, id)
	return nil
}

// FindDevices retrieves all devices
func (r *InMemDeviceRepository) FindDevices(ctx context.Context) ([]Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	devices := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, *d)
	}
	return devices, nil
}
