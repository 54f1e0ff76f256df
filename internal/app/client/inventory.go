package client

import (
	"fmt"

	"fibertrace/internal/domain/inventory"
	"fibertrace/internal/model"
)

// InventoryManager is the CLI-facing API over the inventory collection.
type InventoryManager struct {
	app *App
}

func (a *App) Inventory() *InventoryManager { return &InventoryManager{app: a} }

func (m *InventoryManager) Create(p inventory.CreateParams) (inventory.Item, error) {
	id, err := m.app.nextID(model.CollectionInventory, inventory.CodePrefix)
	if err != nil {
		return inventory.Item{}, err
	}
	i, err := inventory.New(id, p, m.app.Actor(), m.app.clk.Now())
	if err != nil {
		return inventory.Item{}, err
	}
	if err := m.app.put(&i); err != nil {
		return inventory.Item{}, err
	}
	return i, nil
}

func (m *InventoryManager) Get(id string) (inventory.Item, error) {
	ent, err := m.app.getEntity(model.CollectionInventory, id)
	if err != nil {
		return inventory.Item{}, err
	}
	i, ok := ent.(*inventory.Item)
	if !ok {
		return inventory.Item{}, fmt.Errorf("record %s is not an inventory item", id)
	}
	return *i, nil
}

func (m *InventoryManager) List(includeDeleted bool) ([]inventory.Item, error) {
	ents, err := m.app.listEntities(model.CollectionInventory, includeDeleted)
	if err != nil {
		return nil, err
	}
	items := make([]inventory.Item, 0, len(ents))
	for _, ent := range ents {
		items = append(items, *ent.(*inventory.Item))
	}
	return items, nil
}

func (m *InventoryManager) AdjustStock(id string, delta float64, reason string) (inventory.Item, error) {
	i, err := m.Get(id)
	if err != nil {
		return inventory.Item{}, err
	}
	out, err := inventory.AdjustStock(i, delta, m.app.Actor(), reason, m.app.clk.Now())
	if err != nil {
		return i, err
	}
	if err := m.app.put(&out); err != nil {
		return i, err
	}
	return out, nil
}

// LowStock lists items at or below their reorder point.
func (m *InventoryManager) LowStock() ([]inventory.Item, error) {
	items, err := m.List(false)
	if err != nil {
		return nil, err
	}
	return inventory.LowStockItems(items), nil
}

func (m *InventoryManager) Remove(id, reason string) error {
	return m.app.removeEntity(model.CollectionInventory, id, reason)
}
