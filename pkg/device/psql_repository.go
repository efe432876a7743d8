package device

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// PostgresDeviceRepository implements DeviceRepository using PostgreSQL
type PostgresDeviceRepository struct {
	db DBTX
}

// NewPostgresDeviceRepository creates a new PostgreSQL-backed device repository
func NewPostgresDeviceRepository(db DBTX) *PostgresDeviceRepository {
	return &PostgresDeviceRepository{db: db}
}

// CreateDevice inserts a new device row. The unique constraint on
// (owner_user_id, fingerprint_id) enforces one registration per pair.
func (r *PostgresDeviceRepository) CreateDevice(ctx context.Context, d Device) (Device, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO devices (id, fingerprint_id, owner_user_id, last_used_at, registered_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.FingerprintID, d.OwnerUserID, d.LastUsedAt, d.RegisteredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Device{}, ErrDeviceAlreadyTrusted{
				OwnerUserID:   d.OwnerUserID,
				FingerprintID: d.FingerprintID,
			}
		}
		return Device{}, fmt.Errorf("failed to create device: %w", err)
	}
	return d, nil
}

// GetDeviceByID retrieves a device by id
func (r *PostgresDeviceRepository) GetDeviceByID(ctx context.Context, id string) (Device, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, fingerprint_id, owner_user_id, last_used_at, registered_at
		 FROM devices WHERE id = $1`, id)
	return scanDevice(row)
}

// FindDeviceByOwnerAndFingerprint retrieves a device by owner and fingerprint
func (r *PostgresDeviceRepository) FindDeviceByOwnerAndFingerprint(ctx context.Context, ownerUserID, fingerprintID string) (Device, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, fingerprint_id, owner_user_id, last_used_at, registered_at
		 FROM devices WHERE owner_user_id = $1 AND fingerprint_id = $2`,
		ownerUserID, fingerprintID)
	return scanDevice(row)
}

// FindDevicesByOwner retrieves all devices registered by a user
func (r *PostgresDeviceRepository) FindDevicesByOwner(ctx context.Context, ownerUserID string) ([]Device, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, fingerprint_id, owner_user_id, last_used_at, registered_at
		 FROM devices WHERE owner_user_id = $1 ORDER BY registered_at`,
		ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find devices: %w", err)
	}
	defer rows.Close()
	return collectDevices(rows)
}

// UpdateDeviceLastUsed sets the device's last used timestamp
func (r *PostgresDeviceRepository) UpdateDeviceLastUsed(ctx context.Context, id string, lastUsedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE devices SET last_used_at = $2 WHERE id = $1`, id, lastUsedAt)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// RemoveDevice deletes a device
func (r *PostgresDeviceRepository) RemoveDevice(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// FindDevices retrieves all devices
func (r *PostgresDeviceRepository) FindDevices(ctx context.Context) ([]Device, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, fingerprint_id, owner_user_id, last_used_at, registered_at
		 FROM devices ORDER BY registered_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to find devices: %w", err)
	}
	defer rows.Close()
	return collectDevices(rows)
}

func collectDevices(rows pgx.Rows) ([]Device, error) {
	var devices []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.FingerprintID, &d.OwnerUserID, &d.LastUsedAt, &d.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func scanDevice(row pgx.Row) (Device, error) {
	var d Device
	err := row.Scan(&d.ID, &d.FingerprintID, &d.OwnerUserID, &d.LastUsedAt, &d.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Device{}, ErrDeviceNotFound
	}
	if err != nil {
		return Device{}, fmt.Errorf("failed to scan device: %w", err)
	}
	return d, nil
}
