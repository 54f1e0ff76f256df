package sync

import (
	"context"
	"time"

	"fibertrace/internal/model"
)

// Repository is the server-side store the sync service works against.
type Repository interface {
	// LoadCollection returns every record of a collection, tombstones
	// included.
	LoadCollection(ctx context.Context, c model.Collection) ([]model.Record, error)

	// ChangedSince returns records updated strictly after the watermark.
	// A zero watermark returns the full collection.
	ChangedSince(ctx context.Context, c model.Collection, since time.Time) ([]model.Record, error)

	// UpsertRecords stores a batch atomically.
	UpsertRecords(ctx context.Context, records []model.Record) error

	// TouchDevice registers a device sighting for the fleet overview.
	TouchDevice(ctx context.Context, deviceID, technician string, pushed int, now time.Time) error

	// ListDevices returns every device that has ever synced.
	ListDevices(ctx context.Context) ([]Device, error)
}
