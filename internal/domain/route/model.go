package route

import (
	"fibertrace/internal/model"
)

// Type classifies a cable route by its place in the network.
type Type string

const (
	TypeBackbone     Type = "backbone"
	TypeDistribution Type = "distribution"
	TypeAccess       Type = "access"
	TypeDrop         Type = "drop"
)

// CodePrefix for allocator-issued route identifiers.
const CodePrefix = "RT"

// SegmentsPerClosure drives the closure-count projection: one closure
// is planned for every five segments.
const SegmentsPerClosure = 5

// Segment is one ordered span of the route. Segments are owned by the
// route and serialized inline; they are deleted with it.
type Segment struct {
	Sequence       int     `json:"sequence"`
	DistanceMeters float64 `json:"distance_meters"`
	Description    string  `json:"description,omitempty"`
}

// Inventory is the cable bookkeeping sub-record of a route.
type Inventory struct {
	CableType         string  `json:"cable_type,omitempty"`
	CableSize         string  `json:"cable_size,omitempty"`
	TotalLengthMeters float64 `json:"total_length_meters"`
	ReserveMeters     float64 `json:"reserve_meters"`
	SpliceCount       int     `json:"splice_count"`
}

// Route is a cable run between two nodes, composed of ordered segments.
// The endpoints are references by ID: a node may terminate more than
// one route.
type Route struct {
	model.Syncable
	Name        string    `json:"name"`
	Type        Type      `json:"type"`
	StartNodeID string    `json:"start_node_id,omitempty"`
	EndNodeID   string    `json:"end_node_id,omitempty"`
	Segments    []Segment `json:"segments,omitempty"`
	Inventory   Inventory `json:"inventory"`
}

func (r *Route) Env() *model.Syncable { return &r.Syncable }

func (r *Route) Collection() model.Collection { return model.CollectionRoutes }

func (r *Route) CodePrefix() string { return CodePrefix }

func (r *Route) Rekey(ids map[string]string) []string {
	var applied []string
	if repl, ok := model.RekeyRef(&r.StartNodeID, ids); ok {
		applied = append(applied, repl)
	}
	if repl, ok := model.RekeyRef(&r.EndNodeID, ids); ok {
		applied = append(applied, repl)
	}
	return applied
}

func (r *Route) Validate() error {
	if r.Name == "" {
		return model.Invalid("name", "must not be empty")
	}
	if !validType(r.Type) {
		return model.Invalidf("type", "unknown route type %q", r.Type)
	}
	for _, s := range r.Segments {
		if s.DistanceMeters < 0 {
			return model.Invalidf("segments", "segment %d has negative distance", s.Sequence)
		}
	}
	if r.Inventory.TotalLengthMeters < 0 {
		return model.Invalid("inventory.total_length_meters", "must not be negative")
	}
	return nil
}

func validType(t Type) bool {
	switch t {
	case TypeBackbone, TypeDistribution, TypeAccess, TypeDrop:
		return true
	}
	return false
}
