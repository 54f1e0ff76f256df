package client

import (
	"fmt"

	"fibertrace/internal/domain/route"
	"fibertrace/internal/model"
)

// RouteManager is the CLI-facing API over the routes collection.
type RouteManager struct {
	app *App
}

func (a *App) Routes() *RouteManager { return &RouteManager{app: a} }

func (m *RouteManager) Create(p route.CreateParams) (route.Route, error) {
	id, err := m.app.nextID(model.CollectionRoutes, route.CodePrefix)
	if err != nil {
		return route.Route{}, err
	}
	r, err := route.New(id, p, m.app.Actor(), m.app.clk.Now())
	if err != nil {
		return route.Route{}, err
	}
	if err := m.app.put(&r); err != nil {
		return route.Route{}, err
	}
	return r, nil
}

func (m *RouteManager) Get(id string) (route.Route, error) {
	ent, err := m.app.getEntity(model.CollectionRoutes, id)
	if err != nil {
		return route.Route{}, err
	}
	r, ok := ent.(*route.Route)
	if !ok {
		return route.Route{}, fmt.Errorf("record %s is not a route", id)
	}
	return *r, nil
}

func (m *RouteManager) List(includeDeleted bool) ([]route.Route, error) {
	ents, err := m.app.listEntities(model.CollectionRoutes, includeDeleted)
	if err != nil {
		return nil, err
	}
	routes := make([]route.Route, 0, len(ents))
	for _, ent := range ents {
		routes = append(routes, *ent.(*route.Route))
	}
	return routes, nil
}

func (m *RouteManager) AddSegment(id string, distanceMeters float64, description string) (route.Route, error) {
	return m.mutate(id, func(r route.Route) (route.Route, error) {
		return route.AddSegment(r, distanceMeters, description, m.app.Actor(), m.app.clk.Now())
	})
}

func (m *RouteManager) SetInventory(id string, inv route.Inventory) (route.Route, error) {
	return m.mutate(id, func(r route.Route) (route.Route, error) {
		return route.SetInventory(r, inv, m.app.Actor(), m.app.clk.Now())
	})
}

// Materials projects the materials estimate for one route.
func (m *RouteManager) Materials(id string) (route.Materials, error) {
	r, err := m.Get(id)
	if err != nil {
		return route.Materials{}, err
	}
	return route.ProjectMaterials(r), nil
}

func (m *RouteManager) Remove(id, reason string) error {
	return m.app.removeEntity(model.CollectionRoutes, id, reason)
}

func (m *RouteManager) mutate(id string, fn func(route.Route) (route.Route, error)) (route.Route, error) {
	r, err := m.Get(id)
	if err != nil {
		return route.Route{}, err
	}
	out, err := fn(r)
	if err != nil {
		return r, err
	}
	if err := m.app.put(&out); err != nil {
		return r, err
	}
	return out, nil
}
