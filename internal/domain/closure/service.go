package closure

import (
	"fmt"
	"time"

	"fibertrace/internal/model"
)

type CreateParams struct {
	Name     string
	NodeID   string
	Location string
	Splices  []Splice
}

func New(id string, p CreateParams, actor string, now time.Time) (Closure, error) {
	c := Closure{
		Syncable: model.NewSyncable(id, actor, now),
		Name:     p.Name,
		NodeID:   p.NodeID,
		Location: p.Location,
		Splices:  append([]Splice(nil), p.Splices...),
	}
	if err := c.Validate(); err != nil {
		return Closure{}, err
	}
	return c, nil
}

// AddSplice records a completed fusion splice with its measured loss.
func AddSplice(c Closure, s Splice, actor string, now time.Time) (Closure, error) {
	if s.LossDB < 0 {
		return c, model.Invalid("loss_db", "must not be negative")
	}
	out := clone(c)
	if s.TrayPosition == 0 {
		s.TrayPosition = len(out.Splices) + 1
	}
	out.Splices = append(out.Splices, s)
	out.Env().ApplyChange("splices",
		fmt.Sprintf("%d", len(c.Splices)), fmt.Sprintf("%d", len(out.Splices)),
		actor, fmt.Sprintf("splice at tray %d, %.3f dB", s.TrayPosition, s.LossDB), now)
	return out, nil
}

// AverageLoss over all splices in the closure, 0 when empty.
func AverageLoss(c Closure) float64 {
	if len(c.Splices) == 0 {
		return 0
	}
	var sum float64
	for _, s := range c.Splices {
		sum += s.LossDB
	}
	return sum / float64(len(c.Splices))
}

// Stats aggregates a closure collection for reporting.
type Stats struct {
	Total         int     `json:"total"`
	SpliceCount   int     `json:"splice_count"`
	AverageLossDB float64 `json:"average_loss_db"`
	HighLossCount int     `json:"high_loss_count"`
}

// ComputeStats averages loss across every splice and counts closures
// whose own average exceeds highLossDB.
func ComputeStats(closures []Closure, highLossDB float64) Stats {
	var st Stats
	var lossSum float64
	for _, c := range closures {
		if c.Deleted {
			continue
		}
		st.Total++
		st.SpliceCount += len(c.Splices)
		for _, s := range c.Splices {
			lossSum += s.LossDB
		}
		if len(c.Splices) > 0 && AverageLoss(c) > highLossDB {
			st.HighLossCount++
		}
	}
	if st.SpliceCount > 0 {
		st.AverageLossDB = lossSum / float64(st.SpliceCount)
	}
	return st
}

func clone(c Closure) Closure {
	out := c
	out.ChangeHistory = append([]model.ChangeEntry(nil), c.ChangeHistory...)
	out.Splices = append([]Splice(nil), c.Splices...)
	return out
}
