package client

import (
	"errors"
	"time"

	"fibertrace/internal/model"
)

var (
	// ErrNotFound is returned when a record or timer state is absent.
	ErrNotFound = errors.New("record not found")
)

// Storage is the local offline store. One row per record; tombstones
// stay in place until the server has seen them. SaveAll replaces a
// whole collection atomically, which is how pull merges land. Purge
// drops a row outright and exists for the sync engine to discard rows
// the server renamed; deleting a record is done by upserting its
// tombstone.
type Storage interface {
	Load(c model.Collection) ([]model.Record, error)
	Get(c model.Collection, id string) (model.Record, error)
	Upsert(rec model.Record) error
	SaveAll(c model.Collection, recs []model.Record) error
	Purge(c model.Collection, id string) error
	UnsyncedCount(c model.Collection) (int, error)

	LastSyncTime(c model.Collection) (time.Time, error)
	SetLastSyncTime(c model.Collection, t time.Time) error

	LoadTimer() (TimerState, error)
	SaveTimer(ts TimerState) error
	ClearTimer() error

	Close() error
}
