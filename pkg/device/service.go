package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DeviceService manages the set of devices a user trusts
type DeviceService struct {
	repository DeviceRepository
}

// NewDeviceService creates a new device service with the given repository
func NewDeviceService(repository DeviceRepository) *DeviceService {
	return &DeviceService{repository: repository}
}

// IsTrusted reports whether the user has already registered a device with
// this fingerprint, returning the device if so.
func (s *DeviceService) IsTrusted(ctx context.Context, ownerUserID, fingerprintID string) (Device, bool, error) {
	d, err := s.repository.FindDeviceByOwnerAndFingerprint(ctx, ownerUserID, fingerprintID)
	if errors.Is(err, ErrDeviceNotFound) {
		return Device{}, false, nil
	}
	if err != nil {
		return Device{}, false, fmt.Errorf("failed to look up device: %w", err)
	}
	return d, true, nil
}

// TrustDevice registers the fingerprint as a trusted device for the user.
// If the pair is already registered the existing device is returned instead
// of creating a duplicate.
func (s *DeviceService) TrustDevice(ctx context.Context, ownerUserID, fingerprintID string) (Device, error) {
	now := time.Now().UTC()
	d := Device{
		ID:            uuid.New().String(),
		FingerprintID: fingerprintID,
		OwnerUserID:   ownerUserID,
		LastUsedAt:    now,
		RegisteredAt:  now,
	}

	created, err := s.repository.CreateDevice(ctx, d)
	if err != nil {
		var dupErr ErrDeviceAlreadyTrusted
		if errors.As(err, &dupErr) {
			// Another request won the race; reuse its registration
			existing, findErr := s.repository.FindDeviceByOwnerAndFingerprint(ctx, ownerUserID, fingerprintID)
			if findErr != nil {
				return Device{}, fmt.Errorf("failed to load existing device: %w", findErr)
			}
			return existing, nil
		}
		return Device{}, fmt.Errorf("failed to trust device: %w", err)
	}

	slog.Info("device trusted", "userID", ownerUserID, "deviceID", created.ID)
	return created, nil
}

// TouchLastUsed marks the device as used now
func (s *DeviceService) TouchLastUsed(ctx context.Context, deviceID string) error {
	return s.repository.UpdateDeviceLastUsed(ctx, deviceID, time.Now().UTC())
}

// GetDevice retrieves a device by id
func (s *DeviceService) GetDevice(ctx context.Context, id string) (Device, error) {
	return s.repository.GetDeviceByID(ctx, id)
}

// ListDevices retrieves the devices a user has trusted
func (s *DeviceService) ListDevices(ctx context.Context, ownerUserID string) ([]Device, error) {
	return s.repository.FindDevicesByOwner(ctx, ownerUserID)
}

// ForgetDevice removes a trusted device
func (s *DeviceService) ForgetDevice(ctx context.Context, id string) error {
	return s.repository.RemoveDevice(ctx, id)
}
