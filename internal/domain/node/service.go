package node

import (
	"fmt"
	"time"

	"fibertrace/internal/model"
)

type CreateParams struct {
	Name           string
	Type           Type
	Condition      Condition
	PowerRatingDBm float64
	Latitude       float64
	Longitude      float64
	Notes          string
}

// New builds a node record; a zero Condition defaults to new.
func New(id string, p CreateParams, actor string, now time.Time) (Node, error) {
	if p.Condition == "" {
		p.Condition = ConditionNew
	}
	n := Node{
		Syncable:       model.NewSyncable(id, actor, now),
		Name:           p.Name,
		Type:           p.Type,
		Condition:      p.Condition,
		PowerRatingDBm: p.PowerRatingDBm,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Notes:          p.Notes,
	}
	if err := n.Validate(); err != nil {
		return Node{}, err
	}
	return n, nil
}

// SetCondition records an observed condition change.
func SetCondition(n Node, c Condition, actor, reason string, now time.Time) (Node, error) {
	if !ValidCondition(c) {
		return n, model.Invalidf("condition", "unknown condition %q", c)
	}
	out := clone(n)
	out.Env().ApplyChange("condition", string(out.Condition), string(c), actor, reason, now)
	out.Condition = c
	return out, nil
}

// SetPowerRating updates the measured power rating in dBm.
func SetPowerRating(n Node, dbm float64, actor string, now time.Time) (Node, error) {
	out := clone(n)
	out.Env().ApplyChange("power_rating_dbm",
		fmt.Sprintf("%.2f", out.PowerRatingDBm), fmt.Sprintf("%.2f", dbm), actor, "", now)
	out.PowerRatingDBm = dbm
	return out, nil
}

// Stats are the dashboard aggregates over a node collection.
type Stats struct {
	Total       int               `json:"total"`
	ByType      map[Type]int      `json:"by_type"`
	ByCondition map[Condition]int `json:"by_condition"`
	Unsynced    int               `json:"unsynced"`
}

func ComputeStats(nodes []Node) Stats {
	st := Stats{
		ByType:      make(map[Type]int),
		ByCondition: make(map[Condition]int),
	}
	for _, n := range nodes {
		if n.Deleted {
			continue
		}
		st.Total++
		st.ByType[n.Type]++
		st.ByCondition[n.Condition]++
		if !n.Synced {
			st.Unsynced++
		}
	}
	return st
}

func clone(n Node) Node {
	out := n
	out.ChangeHistory = append([]model.ChangeEntry(nil), n.ChangeHistory...)
	return out
}
