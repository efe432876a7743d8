package device

import (
	"errors"
	"fmt"
)

// ErrDeviceNotFound is returned when a device does not exist
var ErrDeviceNotFound = errors.New("device not found")

// ErrDeviceAlreadyTrusted is returned when a user already has a device
// registered with the same fingerprint
type ErrDeviceAlreadyTrusted struct {
	OwnerUserID   string
	FingerprintID string
}

func (e ErrDeviceAlreadyTrusted) Error() string {
	return fmt.Sprintf("device with fingerprint %s already trusted for user %s", e.FingerprintID, e.OwnerUserID)
}
