package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fibertrace/internal/domain/entity"
	syncdto "fibertrace/internal/domain/sync"
	"fibertrace/internal/model"
	"fibertrace/internal/utils/clock"
)

// SyncState is the per-collection state machine. A collection is
// Syncing for the duration of one push/pull cycle and lands back in
// Idle on success or Error on failure.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncRunning SyncState = "syncing"
	SyncError   SyncState = "error"
)

// ErrSyncInProgress is returned when a cycle is requested for a
// collection that is already syncing.
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncAPI is the server transport the engine drives.
type SyncAPI interface {
	HealthCheck(ctx context.Context) error
	PushRecords(ctx context.Context, req syncdto.PushRequest) (*syncdto.PushResponse, error)
	PullChanges(ctx context.Context, c model.Collection, since time.Time) (*syncdto.ChangesResponse, error)
}

// SyncResult summarizes one completed cycle for a collection.
type SyncResult struct {
	Collection model.Collection         `json:"collection"`
	Pushed     int                      `json:"pushed"`
	Pulled     int                      `json:"pulled"`
	Conflicts  int                      `json:"conflicts"`
	Rekeyed    int                      `json:"rekeyed"`
	Rejected   []syncdto.RejectedRecord `json:"rejected,omitempty"`
}

// CollectionStatus is the sync view of one collection.
type CollectionStatus struct {
	Collection model.Collection `json:"collection"`
	State      SyncState        `json:"state"`
	Unsynced   int              `json:"unsynced"`
	LastSync   time.Time        `json:"last_sync"`
	LastError  string           `json:"last_error,omitempty"`
}

// Engine runs the push-then-pull cycle against the server. All local
// mutations keep working while offline; the engine only ever touches
// local state after the server has answered.
type Engine struct {
	storage    Storage
	api        SyncAPI
	clk        clock.Clock
	log        *slog.Logger
	deviceID   string
	technician string

	mu         sync.Mutex
	states     map[model.Collection]SyncState
	lastErrors map[model.Collection]string
}

func NewEngine(storage Storage, api SyncAPI, clk clock.Clock, log *slog.Logger, deviceID, technician string) *Engine {
	states := make(map[model.Collection]SyncState)
	for _, c := range model.Collections() {
		states[c] = SyncIdle
	}
	return &Engine{
		storage:    storage,
		api:        api,
		clk:        clk,
		log:        log,
		deviceID:   deviceID,
		technician: technician,
		states:     states,
		lastErrors: make(map[model.Collection]string),
	}
}

// SyncNow runs one full cycle for a collection: push unsynced records,
// re-key references the server reassigned, then pull and merge remote
// changes. On any failure local state is left as it was.
func (e *Engine) SyncNow(ctx context.Context, c model.Collection) (SyncResult, error) {
	if !c.Valid() {
		return SyncResult{}, fmt.Errorf("unknown collection %q", c)
	}
	if err := e.begin(c); err != nil {
		return SyncResult{}, err
	}

	result, err := e.run(ctx, c)
	e.finish(c, err)
	return result, err
}

// SyncAll cycles every collection in order. The first failure stops
// the run; collections already synced stay synced.
func (e *Engine) SyncAll(ctx context.Context) ([]SyncResult, error) {
	var results []SyncResult
	for _, c := range model.Collections() {
		result, err := e.SyncNow(ctx, c)
		if err != nil {
			return results, fmt.Errorf("sync %s: %w", c, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Status reports the sync view of one collection.
func (e *Engine) Status(c model.Collection) (CollectionStatus, error) {
	unsynced, err := e.storage.UnsyncedCount(c)
	if err != nil {
		return CollectionStatus{}, err
	}
	lastSync, err := e.storage.LastSyncTime(c)
	if err != nil {
		return CollectionStatus{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return CollectionStatus{
		Collection: c,
		State:      e.states[c],
		Unsynced:   unsynced,
		LastSync:   lastSync,
		LastError:  e.lastErrors[c],
	}, nil
}

// AutoSync runs SyncAll whenever the oracle reports a transition to
// online, and on a fixed interval while online. It blocks until the
// context is cancelled.
func (e *Engine) AutoSync(ctx context.Context, oracle *Oracle, interval time.Duration) {
	wake := make(chan struct{}, 1)
	oracle.OnChange(func(online bool) {
		if online {
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-wake:
		case <-ticker.C:
			if !oracle.Online() {
				continue
			}
		}

		if _, err := e.SyncAll(ctx); err != nil {
			e.log.Warn("auto sync failed", "error", err)
		}
	}
}

func (e *Engine) begin(c model.Collection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.states[c] == SyncRunning {
		return fmt.Errorf("%w: %s", ErrSyncInProgress, c)
	}
	e.states[c] = SyncRunning
	return nil
}

func (e *Engine) finish(c model.Collection, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.states[c] = SyncError
		e.lastErrors[c] = err.Error()
		return
	}
	e.states[c] = SyncIdle
	delete(e.lastErrors, c)
}

func (e *Engine) run(ctx context.Context, c model.Collection) (SyncResult, error) {
	result := SyncResult{Collection: c}

	if err := e.api.HealthCheck(ctx); err != nil {
		return result, fmt.Errorf("pre-sync check: %w", err)
	}

	local, err := e.storage.Load(c)
	if err != nil {
		return result, err
	}

	var unsynced []model.Record
	for _, rec := range local {
		if !rec.Synced {
			unsynced = append(unsynced, rec)
		}
	}

	serverTime := e.clk.Now()

	if len(unsynced) > 0 {
		resp, err := e.api.PushRecords(ctx, syncdto.PushRequest{
			DeviceID:   e.deviceID,
			Technician: e.technician,
			Collection: string(c),
			Records:    unsynced,
		})
		if err != nil {
			return result, fmt.Errorf("push: %w", err)
		}

		if err := e.applyPushResponse(c, resp, &result); err != nil {
			return result, err
		}
		serverTime = resp.ServerTime
	}

	lastSync, err := e.storage.LastSyncTime(c)
	if err != nil {
		return result, err
	}

	changes, err := e.api.PullChanges(ctx, c, lastSync)
	if err != nil {
		return result, fmt.Errorf("pull: %w", err)
	}

	local, err = e.storage.Load(c)
	if err != nil {
		return result, err
	}

	merged, pulled := mergePull(local, changes.Records, e.clk.Now())
	if err := e.storage.SaveAll(c, merged); err != nil {
		return result, fmt.Errorf("apply pull: %w", err)
	}
	result.Pulled = pulled

	if !changes.ServerTime.IsZero() {
		serverTime = changes.ServerTime
	}
	// The watermark comes from server time so clock skew between field
	// devices cannot hide changes from the next delta pull.
	if err := e.storage.SetLastSyncTime(c, serverTime); err != nil {
		return result, err
	}

	e.log.Info("sync cycle complete",
		"collection", c,
		"pushed", result.Pushed,
		"pulled", result.Pulled,
		"conflicts", result.Conflicts,
		"rekeyed", result.Rekeyed,
	)

	return result, nil
}

// applyPushResponse lands the server's verdicts: accepted records are
// stored as the authoritative copy, reassigned ids replace the old
// rows, and cross-references everywhere are rewritten.
func (e *Engine) applyPushResponse(c model.Collection, resp *syncdto.PushResponse, result *SyncResult) error {
	for _, acc := range resp.Accepted {
		if acc.Conflict {
			result.Conflicts++
		} else {
			result.Pushed++
		}

		if acc.LocalID != "" && acc.LocalID != acc.Record.ID {
			if err := e.storage.Purge(c, acc.LocalID); err != nil {
				return err
			}
		}

		rec := acc.Record
		rec.Synced = true
		if acc.Conflict {
			// The server kept its newer copy; adopting it replaces a
			// local edit and must show in the change history, same as
			// an overwrite on the pull path.
			rec = adoptRemote(acc.Record, e.clk.Now(), true)
		}
		if err := e.storage.Upsert(rec); err != nil {
			return err
		}
	}

	result.Rejected = append(result.Rejected, resp.Rejected...)
	for _, rej := range resp.Rejected {
		e.log.Warn("record rejected by server", "collection", c, "id", rej.ID, "reason", rej.Reason)
	}

	if len(resp.IDChanges) > 0 {
		rekeyed, err := e.rekeyReferences(resp.IDChanges)
		if err != nil {
			return err
		}
		result.Rekeyed = rekeyed
	}

	return nil
}

// rekeyReferences rewrites references to reassigned identifiers across
// every collection. Touched records go dirty again and are uploaded on
// the following cycle.
func (e *Engine) rekeyReferences(ids map[string]string) (int, error) {
	now := e.clk.Now()
	rekeyed := 0

	for _, c := range model.Collections() {
		records, err := e.storage.Load(c)
		if err != nil {
			return rekeyed, err
		}

		for _, rec := range records {
			ent, err := entity.Decode(rec)
			if err != nil {
				return rekeyed, err
			}

			applied := ent.Rekey(ids)
			if len(applied) == 0 {
				continue
			}
			ent.Env().NoteRekey(applied, now)

			next, err := entity.Encode(ent)
			if err != nil {
				return rekeyed, err
			}
			if err := e.storage.Upsert(next); err != nil {
				return rekeyed, err
			}
			rekeyed++
		}
	}

	return rekeyed, nil
}

// mergePull folds pulled server records into the local snapshot using
// last-writer-wins on UpdatedAt. Local unsynced records strictly newer
// than the server copy survive; everything else adopts the server
// version, with the overwrite attributed in the record's history.
// Returns the merged snapshot and how many records changed.
func mergePull(local, remote []model.Record, now time.Time) ([]model.Record, int) {
	byID := make(map[string]int, len(local))
	merged := make([]model.Record, len(local))
	copy(merged, local)
	for i, rec := range merged {
		byID[rec.ID] = i
	}

	pulled := 0
	for _, srv := range remote {
		i, exists := byID[srv.ID]
		if !exists {
			adopted := adoptRemote(srv, now, false)
			merged = append(merged, adopted)
			byID[srv.ID] = len(merged) - 1
			pulled++
			continue
		}

		loc := merged[i]
		if !loc.Synced && loc.UpdatedAt.After(srv.UpdatedAt) {
			// Local copy is newer and still unsent; it wins and goes up
			// on the next push.
			continue
		}
		if loc.Synced && !srv.UpdatedAt.After(loc.UpdatedAt) {
			// Already have this version.
			continue
		}

		merged[i] = adoptRemote(srv, now, true)
		pulled++
	}

	return merged, pulled
}

// adoptRemote takes a server record as the local copy. When it
// replaces a differing local version the overwrite is stamped into the
// change history under the remote-sync actor.
func adoptRemote(srv model.Record, now time.Time, overwrite bool) model.Record {
	srv.Synced = true
	if !overwrite {
		return srv
	}

	ent, err := entity.Decode(srv)
	if err != nil {
		return srv
	}
	ent.Env().MarkRemoteOverwrite(now)
	next, err := entity.Encode(ent)
	if err != nil {
		return srv
	}
	next.Synced = true
	return next
}
