package client

import (
	"fmt"

	"fibertrace/internal/domain/closure"
	"fibertrace/internal/model"
)

// ClosureManager is the CLI-facing API over the closures collection.
type ClosureManager struct {
	app *App
}

func (a *App) Closures() *ClosureManager { return &ClosureManager{app: a} }

func (m *ClosureManager) Create(p closure.CreateParams) (closure.Closure, error) {
	id, err := m.app.nextID(model.CollectionClosures, closure.CodePrefix)
	if err != nil {
		return closure.Closure{}, err
	}
	c, err := closure.New(id, p, m.app.Actor(), m.app.clk.Now())
	if err != nil {
		return closure.Closure{}, err
	}
	if err := m.app.put(&c); err != nil {
		return closure.Closure{}, err
	}
	return c, nil
}

func (m *ClosureManager) Get(id string) (closure.Closure, error) {
	ent, err := m.app.getEntity(model.CollectionClosures, id)
	if err != nil {
		return closure.Closure{}, err
	}
	c, ok := ent.(*closure.Closure)
	if !ok {
		return closure.Closure{}, fmt.Errorf("record %s is not a closure", id)
	}
	return *c, nil
}

func (m *ClosureManager) List(includeDeleted bool) ([]closure.Closure, error) {
	ents, err := m.app.listEntities(model.CollectionClosures, includeDeleted)
	if err != nil {
		return nil, err
	}
	closures := make([]closure.Closure, 0, len(ents))
	for _, ent := range ents {
		closures = append(closures, *ent.(*closure.Closure))
	}
	return closures, nil
}

func (m *ClosureManager) AddSplice(id string, s closure.Splice) (closure.Closure, error) {
	c, err := m.Get(id)
	if err != nil {
		return closure.Closure{}, err
	}
	out, err := closure.AddSplice(c, s, m.app.Actor(), m.app.clk.Now())
	if err != nil {
		return c, err
	}
	if err := m.app.put(&out); err != nil {
		return c, err
	}
	return out, nil
}

func (m *ClosureManager) Remove(id, reason string) error {
	return m.app.removeEntity(model.CollectionClosures, id, reason)
}

func (m *ClosureManager) Stats() (closure.Stats, error) {
	closures, err := m.List(true)
	if err != nil {
		return closure.Stats{}, err
	}
	return closure.ComputeStats(closures, closure.DefaultHighLossDB), nil
}
