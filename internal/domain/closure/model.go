package closure

import (
	"fibertrace/internal/model"
)

// CodePrefix for allocator-issued closure identifiers.
const CodePrefix = "CL"

// DefaultHighLossDB is the closure-level alarm threshold: a closure
// whose average splice loss exceeds it is flagged in the stats.
const DefaultHighLossDB = 0.15

// Splice is one fusion splice inside a closure, owned by it and
// serialized inline.
type Splice struct {
	TrayPosition int     `json:"tray_position"`
	LossDB       float64 `json:"loss_db"`
	Notes        string  `json:"notes,omitempty"`
}

// Closure is a splice enclosure in the plant. It may sit at a recorded
// node (reference by ID, not ownership).
type Closure struct {
	model.Syncable
	Name     string   `json:"name"`
	NodeID   string   `json:"node_id,omitempty"`
	Location string   `json:"location,omitempty"`
	Splices  []Splice `json:"splices,omitempty"`
}

func (c *Closure) Env() *model.Syncable { return &c.Syncable }

func (c *Closure) Collection() model.Collection { return model.CollectionClosures }

func (c *Closure) CodePrefix() string { return CodePrefix }

func (c *Closure) Rekey(ids map[string]string) []string {
	if repl, ok := model.RekeyRef(&c.NodeID, ids); ok {
		return []string{repl}
	}
	return nil
}

func (c *Closure) Validate() error {
	if c.Name == "" {
		return model.Invalid("name", "must not be empty")
	}
	for i, s := range c.Splices {
		if s.LossDB < 0 {
			return model.Invalidf("splices", "splice %d has negative loss", i+1)
		}
	}
	return nil
}
