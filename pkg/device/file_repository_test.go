package device

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/device-trust-demo/pkg/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	dataDir := filepath.Join(os.TempDir(), "device-repo-test-"+uuid.New().String())
	s, err := store.Open(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.RemoveAll(dataDir)
	})
	return s
}

func newTestDevice(owner, fingerprint string) Device {
	now := time.Now().UTC()
	return Device{
		ID:            uuid.New().String(),
		FingerprintID: fingerprint,
		OwnerUserID:   owner,
		LastUsedAt:    now,
		RegisteredAt:  now,
	}
}

func TestFileDeviceRepository_CreateAndFind(t *testing.T) {
	repo := NewFileDeviceRepository(setupTestStore(t))
	ctx := context.Background()

	d := newTestDevice("user-1", "fp-1")
	_, err := repo.CreateDevice(ctx, d)
	require.NoError(t, err)

	found, err := repo.FindDeviceByOwnerAndFingerprint(ctx, "user-1", "fp-1")
	require.NoError(t, err)
	assert.Equal(t, d.ID, found.ID)

	_, err = repo.FindDeviceByOwnerAndFingerprint(ctx, "user-1", "fp-2")
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = repo.FindDeviceByOwnerAndFingerprint(ctx, "user-2", "fp-1")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestFileDeviceRepository_DuplicatePairRejected(t *testing.T) {
	repo := NewFileDeviceRepository(setupTestStore(t))
	ctx := context.Background()

	_, err := repo.CreateDevice(ctx, newTestDevice("user-1", "fp-1"))
	require.NoError(t, err)

	_, err = repo.CreateDevice(ctx, newTestDevice("user-1", "fp-1"))
	var dupErr ErrDeviceAlreadyTrusted
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "user-1", dupErr.OwnerUserID)

	devices, err := repo.FindDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestFileDeviceRepository_UpdateAndRemove(t *testing.T) {
	repo := NewFileDeviceRepository(setupTestStore(t))
	ctx := context.Background()

	d := newTestDevice("user-1", "fp-1")
	_, err := repo.CreateDevice(ctx, d)
	require.NoError(t, err)

	later := d.LastUsedAt.Add(time.Hour)
	require.NoError(t, repo.UpdateDeviceLastUsed(ctx, d.ID, later))

	updated, err := repo.GetDeviceByID(ctx, d.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, later, updated.LastUsedAt, time.Second)

	require.NoError(t, repo.RemoveDevice(ctx, d.ID))
	_, err = repo.GetDeviceByID(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	assert.ErrorIs(t, repo.RemoveDevice(ctx, d.ID), ErrDeviceNotFound)
}
