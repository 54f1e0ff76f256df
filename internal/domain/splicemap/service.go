package splicemap

import (
	"fmt"
	"time"

	"fibertrace/internal/model"
)

type CreateParams struct {
	Name      string
	ClosureID string
	CableA    string
	CableB    string
}

func New(id string, p CreateParams, actor string, now time.Time) (SpliceMap, error) {
	m := SpliceMap{
		Syncable:  model.NewSyncable(id, actor, now),
		Name:      p.Name,
		ClosureID: p.ClosureID,
		CableA:    p.CableA,
		CableB:    p.CableB,
	}
	if err := m.Validate(); err != nil {
		return SpliceMap{}, err
	}
	return m, nil
}

// AddMapping joins fiberA to fiberB with the measured loss; the
// classification is derived, never caller-supplied.
func AddMapping(m SpliceMap, fiberA, fiberB int, lossDB float64, actor string, now time.Time) (SpliceMap, error) {
	if fiberA <= 0 || fiberB <= 0 {
		return m, model.Invalid("fiber", "fiber numbers start at 1")
	}
	if lossDB < 0 {
		return m, model.Invalid("loss_db", "must not be negative")
	}
	for _, mp := range m.Mappings {
		if mp.FiberA == fiberA {
			return m, model.Invalidf("fiber_a", "fiber %d of %s is already mapped", fiberA, m.CableA)
		}
		if mp.FiberB == fiberB {
			return m, model.Invalidf("fiber_b", "fiber %d of %s is already mapped", fiberB, m.CableB)
		}
	}

	out := clone(m)
	mp := Mapping{
		FiberA:         fiberA,
		FiberB:         fiberB,
		LossDB:         lossDB,
		Classification: Classify(lossDB),
	}
	out.Mappings = append(out.Mappings, mp)
	out.Env().ApplyChange("mappings",
		fmt.Sprintf("%d", len(m.Mappings)), fmt.Sprintf("%d", len(out.Mappings)),
		actor, fmt.Sprintf("%d->%d at %.3f dB (%s)", fiberA, fiberB, lossDB, mp.Classification), now)
	return out, nil
}

// Summary counts mappings per classification.
func Summary(m SpliceMap) map[Classification]int {
	out := make(map[Classification]int, 3)
	for _, mp := range m.Mappings {
		out[mp.Classification]++
	}
	return out
}

func clone(m SpliceMap) SpliceMap {
	out := m
	out.ChangeHistory = append([]model.ChangeEntry(nil), m.ChangeHistory...)
	out.Mappings = append([]Mapping(nil), m.Mappings...)
	return out
}
