package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"fibertrace/internal/domain/sync"
	"fibertrace/internal/model"
)

// SyncRepository implements sync.Repository on PostgreSQL.
type SyncRepository struct {
	storage *Storage
	log     *slog.Logger
}

func NewSyncRepository(storage *Storage, log *slog.Logger) *SyncRepository {
	return &SyncRepository{
		storage: storage,
		log:     log,
	}
}

const recordColumns = "collection, id, created_at, updated_at, last_updated_by, synced, deleted, payload"

func (r *SyncRepository) LoadCollection(ctx context.Context, c model.Collection) ([]model.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM records
		WHERE collection = $1
		ORDER BY id
	`, recordColumns)

	rows, err := r.storage.Pool().Query(ctx, query, c)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", c, err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (r *SyncRepository) ChangedSince(ctx context.Context, c model.Collection, since time.Time) ([]model.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM records
		WHERE collection = $1 AND updated_at > $2
		ORDER BY updated_at
	`, recordColumns)

	rows, err := r.storage.Pool().Query(ctx, query, c, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load changes for %s: %w", c, err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (r *SyncRepository) UpsertRecords(ctx context.Context, records []model.Record) error {
	tx, err := r.storage.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO records (collection, id, created_at, updated_at, last_updated_by, synced, deleted, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (collection, id) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			last_updated_by = EXCLUDED.last_updated_by,
			synced = EXCLUDED.synced,
			deleted = EXCLUDED.deleted,
			payload = EXCLUDED.payload
	`

	for _, rec := range records {
		_, err := tx.Exec(ctx, query,
			rec.Collection, rec.ID, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(),
			rec.LastUpdatedBy, rec.Synced, rec.Deleted, []byte(rec.Payload))
		if err != nil {
			return fmt.Errorf("failed to upsert record %s/%s: %w", rec.Collection, rec.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *SyncRepository) TouchDevice(ctx context.Context, deviceID, technician string, pushed int, now time.Time) error {
	query := `
		INSERT INTO sync_devices (device_id, technician, first_seen, last_seen, total_pushed)
		VALUES ($1, $2, $3, $3, $4)
		ON CONFLICT (device_id) DO UPDATE SET
			technician = EXCLUDED.technician,
			last_seen = EXCLUDED.last_seen,
			total_pushed = sync_devices.total_pushed + EXCLUDED.total_pushed
	`

	_, err := r.storage.Pool().Exec(ctx, query, deviceID, technician, now.UTC(), pushed)
	if err != nil {
		return fmt.Errorf("failed to touch device %s: %w", deviceID, err)
	}
	return nil
}

func (r *SyncRepository) ListDevices(ctx context.Context) ([]sync.Device, error) {
	query := `
		SELECT device_id, technician, first_seen, last_seen, total_pushed
		FROM sync_devices
		ORDER BY last_seen DESC
	`

	rows, err := r.storage.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []sync.Device
	for rows.Next() {
		var d sync.Device
		if err := rows.Scan(&d.DeviceID, &d.Technician, &d.FirstSeen, &d.LastSeen, &d.TotalPushed); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}

	return devices, rows.Err()
}

func collectRecords(rows pgx.Rows) ([]model.Record, error) {
	var records []model.Record
	for rows.Next() {
		var rec model.Record
		var payload []byte
		if err := rows.Scan(&rec.Collection, &rec.ID, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.LastUpdatedBy, &rec.Synced, &rec.Deleted, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Payload = payload
		records = append(records, rec)
	}
	return records, rows.Err()
}
