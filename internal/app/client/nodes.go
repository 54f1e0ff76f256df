package client

import (
	"fmt"

	"fibertrace/internal/domain/node"
	"fibertrace/internal/model"
)

// NodeManager is the CLI-facing API over the nodes collection.
type NodeManager struct {
	app *App
}

func (a *App) Nodes() *NodeManager { return &NodeManager{app: a} }

func (m *NodeManager) Create(p node.CreateParams) (node.Node, error) {
	if !node.ValidType(p.Type) {
		return node.Node{}, model.Invalidf("type", "unknown node type %q", p.Type)
	}
	id, err := m.app.nextID(model.CollectionNodes, node.PrefixFor(p.Type))
	if err != nil {
		return node.Node{}, err
	}
	n, err := node.New(id, p, m.app.Actor(), m.app.clk.Now())
	if err != nil {
		return node.Node{}, err
	}
	if err := m.app.put(&n); err != nil {
		return node.Node{}, err
	}
	return n, nil
}

func (m *NodeManager) Get(id string) (node.Node, error) {
	ent, err := m.app.getEntity(model.CollectionNodes, id)
	if err != nil {
		return node.Node{}, err
	}
	n, ok := ent.(*node.Node)
	if !ok {
		return node.Node{}, fmt.Errorf("record %s is not a node", id)
	}
	return *n, nil
}

func (m *NodeManager) List(includeDeleted bool) ([]node.Node, error) {
	ents, err := m.app.listEntities(model.CollectionNodes, includeDeleted)
	if err != nil {
		return nil, err
	}
	nodes := make([]node.Node, 0, len(ents))
	for _, ent := range ents {
		nodes = append(nodes, *ent.(*node.Node))
	}
	return nodes, nil
}

func (m *NodeManager) SetCondition(id string, c node.Condition, reason string) (node.Node, error) {
	return m.mutate(id, func(n node.Node) (node.Node, error) {
		return node.SetCondition(n, c, m.app.Actor(), reason, m.app.clk.Now())
	})
}

func (m *NodeManager) SetPowerRating(id string, dbm float64) (node.Node, error) {
	return m.mutate(id, func(n node.Node) (node.Node, error) {
		return node.SetPowerRating(n, dbm, m.app.Actor(), m.app.clk.Now())
	})
}

func (m *NodeManager) Remove(id, reason string) error {
	return m.app.removeEntity(model.CollectionNodes, id, reason)
}

func (m *NodeManager) Stats() (node.Stats, error) {
	nodes, err := m.List(true)
	if err != nil {
		return node.Stats{}, err
	}
	return node.ComputeStats(nodes), nil
}

func (m *NodeManager) mutate(id string, fn func(node.Node) (node.Node, error)) (node.Node, error) {
	n, err := m.Get(id)
	if err != nil {
		return node.Node{}, err
	}
	out, err := fn(n)
	if err != nil {
		return n, err
	}
	if err := m.app.put(&out); err != nil {
		return n, err
	}
	return out, nil
}
