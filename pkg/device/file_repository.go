package device

import (
	"context"
	"time"

	"github.com/tendant/device-trust-demo/pkg/store"
)

// FileDeviceRepository implements DeviceRepository on the shared document
// store
type FileDeviceRepository struct {
	store *store.Store
}

// NewFileDeviceRepository creates a new file-backed device repository
func NewFileDeviceRepository(s *store.Store) *FileDeviceRepository {
	return &FileDeviceRepository{store: s}
}

// CreateDevice stores a new trusted device
func (r *FileDeviceRepository) CreateDevice(ctx context.Context, d Device) (Device, error) {
	err := r.store.Update(func(doc *store.Document) error {
		for _, existing := range doc.Devices {
			if existing.OwnerUserID == d.OwnerUserID && existing.FingerprintID == d.FingerprintID {
				return ErrDeviceAlreadyTrusted{
					OwnerUserID:   d.OwnerUserID,
					FingerprintID: d.FingerprintID,
				}
			}
		}
		doc.Devices = append(doc.Devices, toDeviceRecord(d))
		return nil
	})
	if err != nil {
		return Device{}, err
	}
	return d, nil
}

// GetDeviceByID retrieves a device by id
func (r *FileDeviceRepository) GetDeviceByID(ctx context.Context, id string) (Device, error) {
	var found *Device
	r.store.View(func(doc *store.Document) {
		for _, rec := range doc.Devices {
			if rec.ID == id {
				d := fromDeviceRecord(rec)
				found = &d
				return
			}
		}
	})
	if found == nil {
		return Device{}, ErrDeviceNotFound
	}
	return *found, nil
}

// FindDeviceByOwnerAndFingerprint retrieves a device by owner and fingerprint
func (r *FileDeviceRepository) FindDeviceByOwnerAndFingerprint(ctx context.Context, ownerUserID, fingerprintID string) (Device, error) {
	var found *Device
	r.store.View(func(doc *store.Document) {
		for _, rec := range doc.Devices {
			if rec.OwnerUserID == ownerUserID && rec.FingerprintID == fingerprintID {
				d := fromDeviceRecord(rec)
				found = &d
				return
			}
		}
	})
	if found == nil {
		return Device{}, ErrDeviceNotFound
	}
	return *found, nil
}

// FindDevicesByOwner retrieves all devices registered by a user
func (r *FileDeviceRepository) FindDevicesByOwner(ctx context.Context, ownerUserID string) ([]Device, error) {
	var devices []Device
	r.store.View(func(doc *store.Document) {
		for _, rec := range doc.Devices {
			if rec.OwnerUserID == ownerUserID {
				devices = append(devices, fromDeviceRecord(rec))
			}
		}
	})
	return devices, nil
}

// UpdateDeviceLastUsed sets the device's last used timestamp
func (r *FileDeviceRepository) UpdateDeviceLastUsed(ctx context.Context, id string, lastUsedAt time.Time) error {
	return r.store.Update(func(doc *store.Document) error {
		for i := range doc.Devices {
			if doc.Devices[i].ID == id {
				doc.Devices[i].LastUsedAt = lastUsedAt
				return nil
			}
		}
		return ErrDeviceNotFound
	})
}

// RemoveDevice deletes a device
func (r *FileDeviceRepository) RemoveDevice(ctx context.Context, id string) error {
	return r.store.Update(func(doc *store.Document) error {
		for i := range doc.Devices {
			if doc.Devices[i].ID == id {
				doc.Devices = append(doc.Devices[:i], doc.Devices[i+1:]...)
				return nil
			}
		}
		return ErrDeviceNotFound
	})
}

// FindDevices retrieves all devices
func (r *FileDeviceRepository) FindDevices(ctx context.Context) ([]Device, error) {
	var devices []Device
	r.store.View(func(doc *store.Document) {
		devices = make([]Device, 0, len(doc.Devices))
		for _, rec := range doc.Devices {
			devices = append(devices, fromDeviceRecord(rec))
		}
	})
	return devices, nil
}

func toDeviceRecord(d Device) store.DeviceRecord {
	return store.DeviceRecord{
		ID:            d.ID,
		FingerprintID: d.FingerprintID,
		OwnerUserID:   d.OwnerUserID,
		LastUsedAt:    d.LastUsedAt,
		RegisteredAt:  d.RegisteredAt,
	}
}

func fromDeviceRecord(rec store.DeviceRecord) Device {
	return Device{
		ID:            rec.ID,
		FingerprintID: rec.FingerprintID,
		OwnerUserID:   rec.OwnerUserID,
		LastUsedAt:    rec.LastUsedAt,
		RegisteredAt:  rec.RegisteredAt,
	}
}
