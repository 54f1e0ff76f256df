package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Collection identifies one locally persisted set of syncable records.
type Collection string

const (
	CollectionJobs       Collection = "jobs"
	CollectionNodes      Collection = "nodes"
	CollectionRoutes     Collection = "routes"
	CollectionClosures   Collection = "closures"
	CollectionSpliceMaps Collection = "splicemaps"
	CollectionInventory  Collection = "inventory"
)

// Collections returns every known collection in a stable order.
func Collections() []Collection {
	return []Collection{
		CollectionJobs,
		CollectionNodes,
		CollectionRoutes,
		CollectionClosures,
		CollectionSpliceMaps,
		CollectionInventory,
	}
}

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	switch c {
	case CollectionJobs, CollectionNodes, CollectionRoutes,
		CollectionClosures, CollectionSpliceMaps, CollectionInventory:
		return true
	}
	return false
}

// RemoteSyncActor attributes overwrites applied from a pulled server version.
const RemoteSyncActor = "remote-sync"

// HistoryLimit bounds the per-record change history; older entries are
// dropped from the front when the limit is exceeded.
const HistoryLimit = 50

// TempIDPrefix marks locally generated identifiers that have not been
// confirmed by the server and may be reassigned during sync.
const TempIDPrefix = "local-"

// ChangeEntry is one append-only audit record of a field mutation.
type ChangeEntry struct {
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ChangedBy string    `json:"changed_by"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

// Syncable is the audit and synchronization envelope embedded in every
// domain entity. Synced flips to false on any local mutation and back to
// true only once the server has confirmed an identical or newer version.
type Syncable struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	LastUpdatedBy string        `json:"last_updated_by"`
	Synced        bool          `json:"synced"`
	Deleted       bool          `json:"deleted"`
	ChangeHistory []ChangeEntry `json:"change_history,omitempty"`
}

// NewSyncable builds a fresh envelope for a locally created record.
func NewSyncable(id, actor string, now time.Time) Syncable {
	return Syncable{
		ID:            id,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastUpdatedBy: actor,
		Synced:        false,
	}
}

// ApplyChange stamps a mutation on the envelope. A history entry is
// appended only when the value actually changed; the touch itself is
// always recorded via UpdatedAt, LastUpdatedBy and the dirty flag,
// because calling ApplyChange is evidence of a touch that must be
// reconciled.
func (s *Syncable) ApplyChange(field, oldValue, newValue, actor, reason string, now time.Time) {
	if oldValue != newValue {
		s.appendHistory(ChangeEntry{
			Field:     field,
			OldValue:  oldValue,
			NewValue:  newValue,
			ChangedBy: actor,
			Timestamp: now,
			Reason:    reason,
		})
	}
	s.touch(actor, now)
}

// MarkDeleted turns the record into a tombstone. Tombstones keep their
// row so the deletion propagates during sync instead of resurrecting on
// the next pull.
func (s *Syncable) MarkDeleted(actor, reason string, now time.Time) {
	if s.Deleted {
		s.touch(actor, now)
		return
	}
	s.ApplyChange("deleted", "false", "true", actor, reason, now)
	s.Deleted = true
}

// MarkRemoteOverwrite records that this version replaced the local copy
// during a pull merge. The record arrives authoritative, so it is synced.
func (s *Syncable) MarkRemoteOverwrite(now time.Time) {
	s.appendHistory(ChangeEntry{
		Field:     "record",
		ChangedBy: RemoteSyncActor,
		Timestamp: now,
		Reason:    "overwritten by remote sync",
	})
	s.Synced = true
}

// NoteRekey records that the sync engine rewrote references after the
// server reassigned identifiers. The record becomes dirty again and is
// pushed on the next cycle.
func (s *Syncable) NoteRekey(replacements []string, now time.Time) {
	for _, repl := range replacements {
		s.appendHistory(ChangeEntry{
			Field:     "references",
			NewValue:  repl,
			ChangedBy: RemoteSyncActor,
			Timestamp: now,
			Reason:    "id reassigned during sync",
		})
	}
	s.touch(RemoteSyncActor, now)
}

func (s *Syncable) touch(actor string, now time.Time) {
	// UpdatedAt never goes backwards even with a skewed clock.
	if now.After(s.UpdatedAt) {
		s.UpdatedAt = now
	}
	s.LastUpdatedBy = actor
	s.Synced = false
}

func (s *Syncable) appendHistory(e ChangeEntry) {
	s.ChangeHistory = append(s.ChangeHistory, e)
	if n := len(s.ChangeHistory); n > HistoryLimit {
		trimmed := make([]ChangeEntry, HistoryLimit)
		copy(trimmed, s.ChangeHistory[n-HistoryLimit:])
		s.ChangeHistory = trimmed
	}
}

// Entity is implemented by every domain record type. The set is closed:
// the codec in internal/domain/entity is the single place a new
// collection has to be registered, and the sync engine handles each
// case exhaustively.
type Entity interface {
	// Env exposes the embedded envelope for mutation.
	Env() *Syncable

	// Collection names the collection the entity is stored in.
	Collection() Collection

	// CodePrefix is the allocator prefix for this entity's domain code,
	// e.g. "JOB" or "FAT".
	CodePrefix() string

	// Rekey rewrites references to reassigned identifiers and returns
	// the applied replacements as "old->new" strings.
	Rekey(ids map[string]string) []string

	// Validate checks the domain fields, returning a *ValidationError
	// describing the first offending field.
	Validate() error
}

// Record is the storage and wire envelope: queryable mirror columns
// plus the full entity payload. The payload is the source of truth; the
// mirror columns exist so stores can filter without decoding.
type Record struct {
	Collection    Collection      `json:"collection"`
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	LastUpdatedBy string          `json:"last_updated_by"`
	Synced        bool            `json:"synced"`
	Deleted       bool            `json:"deleted"`
	Payload       json.RawMessage `json:"payload"`
}

// NewRecord wraps an entity for persistence or transport.
func NewRecord(e Entity) (Record, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s payload: %w", e.Collection(), err)
	}
	env := e.Env()
	return Record{
		Collection:    e.Collection(),
		ID:            env.ID,
		CreatedAt:     env.CreatedAt,
		UpdatedAt:     env.UpdatedAt,
		LastUpdatedBy: env.LastUpdatedBy,
		Synced:        env.Synced,
		Deleted:       env.Deleted,
		Payload:       payload,
	}, nil
}

// RekeyList replaces identifiers found in ids, returning the applied
// "old->new" replacements. Shared by the entity Rekey implementations.
func RekeyList(refs []string, ids map[string]string) []string {
	var applied []string
	for i, ref := range refs {
		if next, ok := ids[ref]; ok {
			refs[i] = next
			applied = append(applied, ref+"->"+next)
		}
	}
	return applied
}

// RekeyRef replaces a single reference in place.
func RekeyRef(ref *string, ids map[string]string) (string, bool) {
	if next, ok := ids[*ref]; ok {
		old := *ref
		*ref = next
		return old + "->" + next, true
	}
	return "", false
}
