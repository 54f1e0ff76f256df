package client

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fibertrace/internal/model"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			last_updated_by TEXT NOT NULL DEFAULT '',
			synced BOOLEAN NOT NULL DEFAULT 0,
			deleted BOOLEAN NOT NULL DEFAULT 0,
			payload BLOB NOT NULL,
			PRIMARY KEY (collection, id)
		);

		CREATE INDEX IF NOT EXISTS idx_records_synced ON records(collection, synced);
		CREATE INDEX IF NOT EXISTS idx_records_updated ON records(updated_at);

		CREATE TABLE IF NOT EXISTS sync_meta (
			collection TEXT PRIMARY KEY,
			last_sync DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS job_timer (
			slot INTEGER PRIMARY KEY CHECK (slot = 1),
			job_id TEXT NOT NULL,
			is_running BOOLEAN NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			paused_at DATETIME
		);
	`)

	return err
}

func (s *SQLiteStorage) Load(c model.Collection) ([]model.Record, error) {
	rows, err := s.db.Query(`
		SELECT collection, id, created_at, updated_at, last_updated_by, synced, deleted, payload
		FROM records
		WHERE collection = ?
		ORDER BY id
	`, c)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *SQLiteStorage) Get(c model.Collection, id string) (model.Record, error) {
	row := s.db.QueryRow(`
		SELECT collection, id, created_at, updated_at, last_updated_by, synced, deleted, payload
		FROM records
		WHERE collection = ? AND id = ?
	`, c, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return model.Record{}, fmt.Errorf("%w: %s/%s", ErrNotFound, c, id)
	}
	if err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

func (s *SQLiteStorage) Upsert(rec model.Record) error {
	_, err := s.db.Exec(`
		INSERT INTO records (collection, id, created_at, updated_at, last_updated_by, synced, deleted, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			last_updated_by = excluded.last_updated_by,
			synced = excluded.synced,
			deleted = excluded.deleted,
			payload = excluded.payload
	`, rec.Collection, rec.ID, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano), rec.LastUpdatedBy,
		rec.Synced, rec.Deleted, []byte(rec.Payload))
	if err != nil {
		return fmt.Errorf("failed to save record %s/%s: %w", rec.Collection, rec.ID, err)
	}

	return nil
}

// SaveAll replaces the collection in a single transaction so a pull
// merge is either fully applied or not at all.
func (s *SQLiteStorage) SaveAll(c model.Collection, recs []model.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records WHERE collection = ?", c); err != nil {
		return fmt.Errorf("failed to clear collection %s: %w", c, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (collection, id, created_at, updated_at, last_updated_by, synced, deleted, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		_, err := stmt.Exec(rec.Collection, rec.ID,
			rec.CreatedAt.UTC().Format(time.RFC3339Nano),
			rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
			rec.LastUpdatedBy, rec.Synced, rec.Deleted, []byte(rec.Payload))
		if err != nil {
			return fmt.Errorf("failed to insert record %s/%s: %w", rec.Collection, rec.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStorage) Purge(c model.Collection, id string) error {
	_, err := s.db.Exec("DELETE FROM records WHERE collection = ? AND id = ?", c, id)
	if err != nil {
		return fmt.Errorf("failed to purge record %s/%s: %w", c, id, err)
	}

	return nil
}

func (s *SQLiteStorage) UnsyncedCount(c model.Collection) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM records WHERE collection = ? AND synced = 0", c,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsynced records: %w", err)
	}

	return count, nil
}

func (s *SQLiteStorage) LastSyncTime(c model.Collection) (time.Time, error) {
	var raw string
	err := s.db.QueryRow("SELECT last_sync FROM sync_meta WHERE collection = ?", c).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read sync metadata: %w", err)
	}

	t, err := parseTime(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("sync metadata for %s: %w", c, err)
	}
	return t, nil
}

func (s *SQLiteStorage) SetLastSyncTime(c model.Collection, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_meta (collection, last_sync) VALUES (?, ?)
		ON CONFLICT (collection) DO UPDATE SET last_sync = excluded.last_sync
	`, c, t.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write sync metadata: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) LoadTimer() (TimerState, error) {
	var ts TimerState
	var startedAt string
	var pausedAt sql.NullString

	err := s.db.QueryRow(`
		SELECT job_id, is_running, elapsed_seconds, started_at, paused_at
		FROM job_timer WHERE slot = 1
	`).Scan(&ts.JobID, &ts.IsRunning, &ts.ElapsedSeconds, &startedAt, &pausedAt)
	if err == sql.ErrNoRows {
		return TimerState{}, ErrNotFound
	}
	if err != nil {
		return TimerState{}, fmt.Errorf("failed to load timer state: %w", err)
	}

	if ts.StartedAt, err = parseTime(startedAt); err != nil {
		return TimerState{}, fmt.Errorf("timer state: %w", err)
	}
	if pausedAt.Valid {
		if ts.PausedAt, err = parseTime(pausedAt.String); err != nil {
			return TimerState{}, fmt.Errorf("timer state: %w", err)
		}
	}

	return ts, nil
}

func (s *SQLiteStorage) SaveTimer(ts TimerState) error {
	var pausedAt interface{}
	if !ts.PausedAt.IsZero() {
		pausedAt = ts.PausedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := s.db.Exec(`
		INSERT INTO job_timer (slot, job_id, is_running, elapsed_seconds, started_at, paused_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			job_id = excluded.job_id,
			is_running = excluded.is_running,
			elapsed_seconds = excluded.elapsed_seconds,
			started_at = excluded.started_at,
			paused_at = excluded.paused_at
	`, ts.JobID, ts.IsRunning, ts.ElapsedSeconds,
		ts.StartedAt.UTC().Format(time.RFC3339Nano), pausedAt)
	if err != nil {
		return fmt.Errorf("failed to save timer state: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) ClearTimer() error {
	_, err := s.db.Exec("DELETE FROM job_timer WHERE slot = 1")
	if err != nil {
		return fmt.Errorf("failed to clear timer state: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (model.Record, error) {
	var rec model.Record
	var createdAt, updatedAt string
	var payload []byte

	err := row.Scan(&rec.Collection, &rec.ID, &createdAt, &updatedAt,
		&rec.LastUpdatedBy, &rec.Synced, &rec.Deleted, &payload)
	if err != nil {
		return model.Record{}, err
	}

	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Record{}, fmt.Errorf("record %s/%s: %w", rec.Collection, rec.ID, err)
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Record{}, fmt.Errorf("record %s/%s: %w", rec.Collection, rec.ID, err)
	}
	rec.Payload = payload

	return rec, nil
}

// parseTime accepts our RFC3339 writes plus sqlite's own DATETIME
// rendering. A timestamp that parses as neither is corrupt and must
// not degrade to the zero time, which would lose to any merge.
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02 15:04:05.999999999-07:00", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt timestamp %q: %w", raw, err)
	}
	return t, nil
}
