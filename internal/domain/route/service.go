package route

import (
	"fmt"
	"math"
	"time"

	"fibertrace/internal/model"
)

type CreateParams struct {
	Name        string
	Type        Type
	StartNodeID string
	EndNodeID   string
	Segments    []Segment
	Inventory   Inventory
}

func New(id string, p CreateParams, actor string, now time.Time) (Route, error) {
	r := Route{
		Syncable:    model.NewSyncable(id, actor, now),
		Name:        p.Name,
		Type:        p.Type,
		StartNodeID: p.StartNodeID,
		EndNodeID:   p.EndNodeID,
		Segments:    normalizeSegments(p.Segments),
		Inventory:   p.Inventory,
	}
	if err := r.Validate(); err != nil {
		return Route{}, err
	}
	return r, nil
}

// TotalDistance is the sum of segment distances in meters.
func TotalDistance(r Route) float64 {
	var total float64
	for _, s := range r.Segments {
		total += s.DistanceMeters
	}
	return total
}

// AddSegment appends a span at the end of the route.
func AddSegment(r Route, distanceMeters float64, description, actor string, now time.Time) (Route, error) {
	if distanceMeters < 0 {
		return r, model.Invalid("distance_meters", "must not be negative")
	}
	out := clone(r)
	seg := Segment{
		Sequence:       len(out.Segments) + 1,
		DistanceMeters: distanceMeters,
		Description:    description,
	}
	out.Segments = append(out.Segments, seg)
	out.Env().ApplyChange("segments",
		fmt.Sprintf("%d", len(r.Segments)), fmt.Sprintf("%d", len(out.Segments)),
		actor, fmt.Sprintf("added %.0fm segment", distanceMeters), now)
	return out, nil
}

// SetInventory replaces the cable bookkeeping fields; every changed
// field is a tracked change.
func SetInventory(r Route, inv Inventory, actor string, now time.Time) (Route, error) {
	if inv.TotalLengthMeters < 0 {
		return r, model.Invalid("inventory.total_length_meters", "must not be negative")
	}
	if inv.SpliceCount < 0 {
		return r, model.Invalid("inventory.splice_count", "must not be negative")
	}
	out := clone(r)
	env := out.Env()
	env.ApplyChange("inventory.cable_type", out.Inventory.CableType, inv.CableType, actor, "", now)
	env.ApplyChange("inventory.cable_size", out.Inventory.CableSize, inv.CableSize, actor, "", now)
	env.ApplyChange("inventory.total_length_meters",
		meters(out.Inventory.TotalLengthMeters), meters(inv.TotalLengthMeters), actor, "", now)
	env.ApplyChange("inventory.reserve_meters",
		meters(out.Inventory.ReserveMeters), meters(inv.ReserveMeters), actor, "", now)
	env.ApplyChange("inventory.splice_count",
		fmt.Sprintf("%d", out.Inventory.SpliceCount), fmt.Sprintf("%d", inv.SpliceCount), actor, "", now)
	out.Inventory = inv
	return out, nil
}

// Materials is the projection used for planning: what the route will
// consume given its current segments and cable inventory.
type Materials struct {
	TotalDistanceMeters float64 `json:"total_distance_meters"`
	SpliceCount         int     `json:"splice_count"`
	ClosureCount        int     `json:"closure_count"`
	ReserveMeters       float64 `json:"reserve_meters"`
}

// ProjectMaterials derives the materials estimate. Splices are one per
// segment joint plus both terminations; closures are one per five
// segments, rounded up; reserve is whatever cable length remains after
// covering the route distance.
func ProjectMaterials(r Route) Materials {
	segs := len(r.Segments)
	total := TotalDistance(r)
	m := Materials{
		TotalDistanceMeters: total,
		ReserveMeters:       r.Inventory.TotalLengthMeters - total,
	}
	if segs > 0 {
		m.SpliceCount = segs + 1
		m.ClosureCount = int(math.Ceil(float64(segs) / float64(SegmentsPerClosure)))
	}
	return m
}

func normalizeSegments(segs []Segment) []Segment {
	out := append([]Segment(nil), segs...)
	for i := range out {
		out[i].Sequence = i + 1
	}
	return out
}

func clone(r Route) Route {
	out := r
	out.ChangeHistory = append([]model.ChangeEntry(nil), r.ChangeHistory...)
	out.Segments = append([]Segment(nil), r.Segments...)
	return out
}

func meters(v float64) string { return fmt.Sprintf("%.1f", v) }
