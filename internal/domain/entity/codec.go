// Package entity is the codec between storage/wire records and the
// closed set of domain entity types. Adding a collection means adding a
// case here; everything downstream (sync merge, re-keying, tombstoning)
// works through the model.Entity interface.
package entity

import (
	"encoding/json"
	"fmt"

	"fibertrace/internal/domain/closure"
	"fibertrace/internal/domain/inventory"
	"fibertrace/internal/domain/job"
	"fibertrace/internal/domain/node"
	"fibertrace/internal/domain/route"
	"fibertrace/internal/domain/splicemap"
	"fibertrace/internal/model"
)

// Decode unmarshals a record's payload into its concrete entity type.
func Decode(rec model.Record) (model.Entity, error) {
	e, err := blank(rec.Collection)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rec.Payload, e); err != nil {
		return nil, fmt.Errorf("decode %s record %s: %w", rec.Collection, rec.ID, err)
	}
	return e, nil
}

// Encode wraps an entity back into a record.
func Encode(e model.Entity) (model.Record, error) {
	return model.NewRecord(e)
}

func blank(c model.Collection) (model.Entity, error) {
	switch c {
	case model.CollectionJobs:
		return &job.Job{}, nil
	case model.CollectionNodes:
		return &node.Node{}, nil
	case model.CollectionRoutes:
		return &route.Route{}, nil
	case model.CollectionClosures:
		return &closure.Closure{}, nil
	case model.CollectionSpliceMaps:
		return &splicemap.SpliceMap{}, nil
	case model.CollectionInventory:
		return &inventory.Item{}, nil
	default:
		return nil, fmt.Errorf("unknown collection %q", c)
	}
}
