package client

import (
	"fmt"

	"fibertrace/internal/domain/splicemap"
	"fibertrace/internal/model"
)

// SpliceMapManager is the CLI-facing API over the splicemaps collection.
type SpliceMapManager struct {
	app *App
}

func (a *App) SpliceMaps() *SpliceMapManager { return &SpliceMapManager{app: a} }

func (m *SpliceMapManager) Create(p splicemap.CreateParams) (splicemap.SpliceMap, error) {
	id, err := m.app.nextID(model.CollectionSpliceMaps, splicemap.CodePrefix)
	if err != nil {
		return splicemap.SpliceMap{}, err
	}
	sm, err := splicemap.New(id, p, m.app.Actor(), m.app.clk.Now())
	if err != nil {
		return splicemap.SpliceMap{}, err
	}
	if err := m.app.put(&sm); err != nil {
		return splicemap.SpliceMap{}, err
	}
	return sm, nil
}

func (m *SpliceMapManager) Get(id string) (splicemap.SpliceMap, error) {
	ent, err := m.app.getEntity(model.CollectionSpliceMaps, id)
	if err != nil {
		return splicemap.SpliceMap{}, err
	}
	sm, ok := ent.(*splicemap.SpliceMap)
	if !ok {
		return splicemap.SpliceMap{}, fmt.Errorf("record %s is not a splice map", id)
	}
	return *sm, nil
}

func (m *SpliceMapManager) List(includeDeleted bool) ([]splicemap.SpliceMap, error) {
	ents, err := m.app.listEntities(model.CollectionSpliceMaps, includeDeleted)
	if err != nil {
		return nil, err
	}
	maps := make([]splicemap.SpliceMap, 0, len(ents))
	for _, ent := range ents {
		maps = append(maps, *ent.(*splicemap.SpliceMap))
	}
	return maps, nil
}

func (m *SpliceMapManager) AddMapping(id string, fiberA, fiberB int, lossDB float64) (splicemap.SpliceMap, error) {
	sm, err := m.Get(id)
	if err != nil {
		return splicemap.SpliceMap{}, err
	}
	out, err := splicemap.AddMapping(sm, fiberA, fiberB, lossDB, m.app.Actor(), m.app.clk.Now())
	if err != nil {
		return sm, err
	}
	if err := m.app.put(&out); err != nil {
		return sm, err
	}
	return out, nil
}

// Summary buckets one map's mappings by classification.
func (m *SpliceMapManager) Summary(id string) (map[splicemap.Classification]int, error) {
	sm, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return splicemap.Summary(sm), nil
}

func (m *SpliceMapManager) Remove(id, reason string) error {
	return m.app.removeEntity(model.CollectionSpliceMaps, id, reason)
}
