package job

import (
	"fibertrace/internal/model"
)

// Status is the job lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on_hold"
)

// CodePrefix for allocator-issued job identifiers.
const CodePrefix = "JOB"

// Job is a unit of field work: an install, repair or survey assigned to
// a technician, optionally associated with the nodes and routes it
// touches. The associations are references by ID, not ownership.
type Job struct {
	model.Syncable
	Name                     string   `json:"name"`
	Description              string   `json:"description,omitempty"`
	Status                   Status   `json:"status"`
	EstimatedDurationSeconds int64    `json:"estimated_duration_seconds"`
	ActualDurationSeconds    int64    `json:"actual_duration_seconds,omitempty"`
	EstimatedCost            float64  `json:"estimated_cost,omitempty"`
	ActualCost               float64  `json:"actual_cost,omitempty"`
	CompletedBy              string   `json:"completed_by,omitempty"`
	NodeIDs                  []string `json:"node_ids,omitempty"`
	RouteIDs                 []string `json:"route_ids,omitempty"`
}

func (j *Job) Env() *model.Syncable { return &j.Syncable }

func (j *Job) Collection() model.Collection { return model.CollectionJobs }

func (j *Job) CodePrefix() string { return CodePrefix }

func (j *Job) Rekey(ids map[string]string) []string {
	applied := model.RekeyList(j.NodeIDs, ids)
	applied = append(applied, model.RekeyList(j.RouteIDs, ids)...)
	return applied
}

func (j *Job) Validate() error {
	if j.Name == "" {
		return model.Invalid("name", "must not be empty")
	}
	if j.EstimatedDurationSeconds < 0 {
		return model.Invalid("estimated_duration_seconds", "must not be negative")
	}
	if !validStatus(j.Status) {
		return model.Invalidf("status", "unknown status %q", j.Status)
	}
	return nil
}

func validStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}
