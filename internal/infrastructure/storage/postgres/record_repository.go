package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"fibertrace/internal/model"
)

// ErrRecordNotFound is returned when a record id is unknown.
var ErrRecordNotFound = errors.New("record not found")

// RecordRepository backs the read-only record endpoints for dashboards
// and back-office tooling.
type RecordRepository struct {
	storage *Storage
	log     *slog.Logger
}

func NewRecordRepository(storage *Storage, log *slog.Logger) *RecordRepository {
	return &RecordRepository{
		storage: storage,
		log:     log,
	}
}

// List returns the live records of a collection; tombstones are only
// included on request.
func (r *RecordRepository) List(ctx context.Context, c model.Collection, includeDeleted bool) ([]model.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM records
		WHERE collection = $1
	`, recordColumns)
	if !includeDeleted {
		query += " AND deleted = FALSE"
	}
	query += " ORDER BY id"

	rows, err := r.storage.Pool().Query(ctx, query, c)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c, err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (r *RecordRepository) Get(ctx context.Context, c model.Collection, id string) (model.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM records
		WHERE collection = $1 AND id = $2
	`, recordColumns)

	rows, err := r.storage.Pool().Query(ctx, query, c, id)
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to get %s/%s: %w", c, id, err)
	}
	defer rows.Close()

	rec, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (model.Record, error) {
		var out model.Record
		var payload []byte
		err := row.Scan(&out.Collection, &out.ID, &out.CreatedAt, &out.UpdatedAt,
			&out.LastUpdatedBy, &out.Synced, &out.Deleted, &payload)
		out.Payload = payload
		return out, err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Record{}, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, c, id)
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to get %s/%s: %w", c, id, err)
	}
	return rec, nil
}

// Count returns live record counts per collection for the overview
// endpoint.
func (r *RecordRepository) Count(ctx context.Context) (map[model.Collection]int, error) {
	rows, err := r.storage.Pool().Query(ctx, `
		SELECT collection, COUNT(*) FROM records
		WHERE deleted = FALSE
		GROUP BY collection
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Collection]int)
	for rows.Next() {
		var c model.Collection
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[c] = n
	}

	return counts, rows.Err()
}
