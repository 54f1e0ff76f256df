package client

import (
	"fmt"

	"fibertrace/internal/domain/entity"
	"fibertrace/internal/domain/identifier"
	"fibertrace/internal/model"
)

// Shared plumbing for the per-collection managers: identifier
// allocation from visible state, entity persistence and tombstoning.

// nextID derives the next domain code for a prefix from every
// identifier already present, tombstones included, so freed numbers
// are never reissued.
func (a *App) nextID(c model.Collection, prefix string) (string, error) {
	ids, err := a.existingIDs(c)
	if err != nil {
		return "", err
	}
	return identifier.NextID(prefix, identifier.DefaultWidth, ids), nil
}

func (a *App) existingIDs(c model.Collection) ([]string, error) {
	records, err := a.storage.Load(c)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return ids, nil
}

// put encodes and persists an entity.
func (a *App) put(e model.Entity) error {
	rec, err := entity.Encode(e)
	if err != nil {
		return err
	}
	return a.storage.Upsert(rec)
}

// getEntity loads and decodes one record, tombstoned or not.
func (a *App) getEntity(c model.Collection, id string) (model.Entity, error) {
	rec, err := a.storage.Get(c, id)
	if err != nil {
		return nil, err
	}
	return entity.Decode(rec)
}

// listEntities loads and decodes a collection. Tombstones are skipped
// unless includeDeleted is set.
func (a *App) listEntities(c model.Collection, includeDeleted bool) ([]model.Entity, error) {
	records, err := a.storage.Load(c)
	if err != nil {
		return nil, err
	}
	out := make([]model.Entity, 0, len(records))
	for _, rec := range records {
		if rec.Deleted && !includeDeleted {
			continue
		}
		ent, err := entity.Decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, ent)
	}
	return out, nil
}

// removeEntity tombstones a record. The row stays in place so the
// deletion reaches the server on the next sync.
func (a *App) removeEntity(c model.Collection, id, reason string) error {
	ent, err := a.getEntity(c, id)
	if err != nil {
		return err
	}
	if ent.Env().Deleted {
		return fmt.Errorf("%s %s is already deleted", c, id)
	}
	ent.Env().MarkDeleted(a.Actor(), reason, a.clk.Now())
	return a.put(ent)
}
