package node

import (
	"fibertrace/internal/model"
)

// Type is the physical kind of network element.
type Type string

const (
	TypeOLT      Type = "olt"
	TypeSplitter Type = "splitter"
	TypeFAT      Type = "fat"
	TypeATB      Type = "atb"
	TypeClosure  Type = "closure"
)

// Condition is the observed health of a node.
type Condition string

const (
	ConditionNew      Condition = "new"
	ConditionGood     Condition = "good"
	ConditionDegraded Condition = "degraded"
	ConditionFaulty   Condition = "faulty"
)

// Node is a network element the technician records in the field. Type
// is a discriminant field, not an inheritance relationship.
type Node struct {
	model.Syncable
	Name           string    `json:"name"`
	Type           Type      `json:"type"`
	Condition      Condition `json:"condition"`
	PowerRatingDBm float64   `json:"power_rating_dbm,omitempty"`
	Latitude       float64   `json:"latitude,omitempty"`
	Longitude      float64   `json:"longitude,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

func (n *Node) Env() *model.Syncable { return &n.Syncable }

func (n *Node) Collection() model.Collection { return model.CollectionNodes }

// CodePrefix depends on the node type: FAT-003, OLT-001 and so on.
func (n *Node) CodePrefix() string {
	return PrefixFor(n.Type)
}

// PrefixFor maps a node type to its allocator prefix.
func PrefixFor(t Type) string {
	switch t {
	case TypeOLT:
		return "OLT"
	case TypeSplitter:
		return "SPL"
	case TypeFAT:
		return "FAT"
	case TypeATB:
		return "ATB"
	case TypeClosure:
		return "CLS"
	}
	return "NODE"
}

// Nodes reference nothing, so there is never anything to rekey.
func (n *Node) Rekey(map[string]string) []string { return nil }

func (n *Node) Validate() error {
	if n.Name == "" {
		return model.Invalid("name", "must not be empty")
	}
	if !ValidType(n.Type) {
		return model.Invalidf("type", "unknown node type %q", n.Type)
	}
	if !ValidCondition(n.Condition) {
		return model.Invalidf("condition", "unknown condition %q", n.Condition)
	}
	return nil
}

func ValidType(t Type) bool {
	switch t {
	case TypeOLT, TypeSplitter, TypeFAT, TypeATB, TypeClosure:
		return true
	}
	return false
}

func ValidCondition(c Condition) bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionDegraded, ConditionFaulty:
		return true
	}
	return false
}
