// Package splicemap models fiber-to-fiber mappings between two cable
// ends, classified by measured splice loss.
package splicemap

import (
	"fibertrace/internal/model"
)

// CodePrefix for allocator-issued splice map identifiers.
const CodePrefix = "SM"

// Classification buckets a splice by its loss reading.
type Classification string

const (
	ClassGood     Classification = "good"
	ClassHighLoss Classification = "high_loss"
	ClassFault    Classification = "fault"
)

// Loss thresholds in dB. Readings below GoodLossDB classify Good, up to
// and including HighLossDB classify HighLoss, above it Fault.
const (
	GoodLossDB = 0.10
	HighLossDB = 0.20
)

// Classify maps a loss reading to its bucket.
func Classify(lossDB float64) Classification {
	switch {
	case lossDB < GoodLossDB:
		return ClassGood
	case lossDB <= HighLossDB:
		return ClassHighLoss
	default:
		return ClassFault
	}
}

// Mapping joins one fiber of cable A to one fiber of cable B.
type Mapping struct {
	FiberA         int            `json:"fiber_a"`
	FiberB         int            `json:"fiber_b"`
	LossDB         float64        `json:"loss_db"`
	Classification Classification `json:"classification"`
}

// SpliceMap documents how the fibers of two cable ends are joined,
// usually inside a closure (reference by ID).
type SpliceMap struct {
	model.Syncable
	Name      string    `json:"name"`
	ClosureID string    `json:"closure_id,omitempty"`
	CableA    string    `json:"cable_a"`
	CableB    string    `json:"cable_b"`
	Mappings  []Mapping `json:"mappings,omitempty"`
}

func (m *SpliceMap) Env() *model.Syncable { return &m.Syncable }

func (m *SpliceMap) Collection() model.Collection { return model.CollectionSpliceMaps }

func (m *SpliceMap) CodePrefix() string { return CodePrefix }

func (m *SpliceMap) Rekey(ids map[string]string) []string {
	if repl, ok := model.RekeyRef(&m.ClosureID, ids); ok {
		return []string{repl}
	}
	return nil
}

func (m *SpliceMap) Validate() error {
	if m.Name == "" {
		return model.Invalid("name", "must not be empty")
	}
	if m.CableA == "" || m.CableB == "" {
		return model.Invalid("cable_a", "both cable ends must be named")
	}
	for i, mp := range m.Mappings {
		if mp.FiberA <= 0 || mp.FiberB <= 0 {
			return model.Invalidf("mappings", "mapping %d has non-positive fiber number", i+1)
		}
		if mp.LossDB < 0 {
			return model.Invalidf("mappings", "mapping %d has negative loss", i+1)
		}
	}
	return nil
}
