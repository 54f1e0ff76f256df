package inventory

import (
	"fmt"
	"time"

	"fibertrace/internal/model"
)

type CreateParams struct {
	Name         string
	Unit         string
	CurrentStock float64
	MinimumStock float64
	MaximumStock float64
	Supplier     string
	Location     string
}

func New(id string, p CreateParams, actor string, now time.Time) (Item, error) {
	i := Item{
		Syncable:     model.NewSyncable(id, actor, now),
		Name:         p.Name,
		Unit:         p.Unit,
		CurrentStock: p.CurrentStock,
		MinimumStock: p.MinimumStock,
		MaximumStock: p.MaximumStock,
		Supplier:     p.Supplier,
		Location:     p.Location,
	}
	if err := i.Validate(); err != nil {
		return Item{}, err
	}
	return i, nil
}

// AdjustStock applies a signed delta to the current stock. Consumption
// below zero is rejected with the record unchanged.
func AdjustStock(i Item, delta float64, actor, reason string, now time.Time) (Item, error) {
	next := i.CurrentStock + delta
	if next < 0 {
		return i, model.Invalidf("current_stock",
			"adjustment of %+.1f would drop stock below zero (current %.1f)", delta, i.CurrentStock)
	}
	out := clone(i)
	out.Env().ApplyChange("current_stock",
		fmt.Sprintf("%.1f", out.CurrentStock), fmt.Sprintf("%.1f", next), actor, reason, now)
	out.CurrentStock = next
	return out, nil
}

// LowStockItems filters items at or below their minimum.
func LowStockItems(items []Item) []Item {
	var out []Item
	for _, i := range items {
		if i.Deleted {
			continue
		}
		if i.LowStock() {
			out = append(out, i)
		}
	}
	return out
}

func clone(i Item) Item {
	out := i
	out.ChangeHistory = append([]model.ChangeEntry(nil), i.ChangeHistory...)
	return out
}
