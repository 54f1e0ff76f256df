package inventory

import (
	"fibertrace/internal/model"
)

// CodePrefix for allocator-issued inventory item identifiers.
const CodePrefix = "INV"

// Item is a stocked consumable: cable drums, closures, connectors,
// fast connectors and the like.
type Item struct {
	model.Syncable
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	CurrentStock float64 `json:"current_stock"`
	MinimumStock float64 `json:"minimum_stock"`
	MaximumStock float64 `json:"maximum_stock,omitempty"`
	Supplier     string  `json:"supplier,omitempty"`
	Location     string  `json:"location,omitempty"`
}

func (i *Item) Env() *model.Syncable { return &i.Syncable }

func (i *Item) Collection() model.Collection { return model.CollectionInventory }

func (i *Item) CodePrefix() string { return CodePrefix }

func (i *Item) Rekey(map[string]string) []string { return nil }

func (i *Item) Validate() error {
	if i.Name == "" {
		return model.Invalid("name", "must not be empty")
	}
	if i.Unit == "" {
		return model.Invalid("unit", "must not be empty")
	}
	if i.CurrentStock < 0 || i.MinimumStock < 0 {
		return model.Invalid("current_stock", "stock levels must not be negative")
	}
	if i.MaximumStock > 0 && i.MaximumStock < i.MinimumStock {
		return model.Invalid("maximum_stock", "must not be below minimum_stock")
	}
	return nil
}

// LowStock reports whether the item needs reordering.
func (i *Item) LowStock() bool {
	return i.CurrentStock <= i.MinimumStock
}
