package job

import (
	"fmt"
	"strings"
	"time"

	"fibertrace/internal/model"
)

// CreateParams carries the caller-supplied fields of a new job.
type CreateParams struct {
	Name                     string
	Description              string
	EstimatedDurationSeconds int64
	EstimatedCost            float64
	NodeIDs                  []string
	RouteIDs                 []string
}

// New builds a Pending job with a fresh envelope. The identifier comes
// from the allocator; the caller persists the result.
func New(id string, p CreateParams, actor string, now time.Time) (Job, error) {
	j := Job{
		Syncable:                 model.NewSyncable(id, actor, now),
		Name:                     p.Name,
		Description:              p.Description,
		Status:                   StatusPending,
		EstimatedDurationSeconds: p.EstimatedDurationSeconds,
		EstimatedCost:            p.EstimatedCost,
		NodeIDs:                  p.NodeIDs,
		RouteIDs:                 p.RouteIDs,
	}
	if err := j.Validate(); err != nil {
		return Job{}, err
	}
	return j, nil
}

// Start moves a Pending job to In Progress.
func Start(j Job, actor string, now time.Time) (Job, error) {
	if j.Status != StatusPending {
		return j, model.Invalidf("status", "cannot start a %s job", j.Status)
	}
	return transition(j, StatusInProgress, actor, "work started", now), nil
}

// Hold pauses an In Progress job; it can be resumed later.
func Hold(j Job, actor, reason string, now time.Time) (Job, error) {
	if j.Status != StatusInProgress {
		return j, model.Invalidf("status", "cannot put a %s job on hold", j.Status)
	}
	return transition(j, StatusOnHold, actor, reason, now), nil
}

// Resume moves an On Hold job back to In Progress.
func Resume(j Job, actor string, now time.Time) (Job, error) {
	if j.Status != StatusOnHold {
		return j, model.Invalidf("status", "cannot resume a %s job", j.Status)
	}
	return transition(j, StatusInProgress, actor, "work resumed", now), nil
}

// Complete finishes an In Progress job. Completed is terminal; the
// actual duration, cost and signing actor are mandatory.
func Complete(j Job, durationSeconds int64, actualCost float64, actor string, now time.Time) (Job, error) {
	if j.Status != StatusInProgress {
		return j, model.Invalidf("status", "cannot complete a %s job, must be %s", j.Status, StatusInProgress)
	}
	if durationSeconds <= 0 {
		return j, model.Invalid("duration_seconds", "must be positive")
	}
	if actualCost < 0 {
		return j, model.Invalid("actual_cost", "must not be negative")
	}
	if actor == "" {
		return j, model.Invalid("actor", "completion requires a signing actor")
	}

	out := cloneHistory(j)
	out.Env().ApplyChange("actual_duration_seconds",
		formatInt(out.ActualDurationSeconds), formatInt(durationSeconds), actor, "", now)
	out.ActualDurationSeconds = durationSeconds
	out.Env().ApplyChange("actual_cost",
		formatFloat(out.ActualCost), formatFloat(actualCost), actor, "", now)
	out.ActualCost = actualCost
	out.CompletedBy = actor
	out = transition(out, StatusCompleted, actor, "job completed", now)
	return out, nil
}

// Update applies a partial edit. Nil fields are left untouched; every
// real change lands in the change history.
type UpdateParams struct {
	Name                     *string
	Description              *string
	EstimatedDurationSeconds *int64
	EstimatedCost            *float64
	NodeIDs                  *[]string
	RouteIDs                 *[]string
}

func Update(j Job, p UpdateParams, actor string, now time.Time) (Job, error) {
	out := cloneHistory(j)
	env := out.Env()
	if p.Name != nil {
		if *p.Name == "" {
			return j, model.Invalid("name", "must not be empty")
		}
		env.ApplyChange("name", out.Name, *p.Name, actor, "", now)
		out.Name = *p.Name
	}
	if p.Description != nil {
		env.ApplyChange("description", out.Description, *p.Description, actor, "", now)
		out.Description = *p.Description
	}
	if p.EstimatedDurationSeconds != nil {
		if *p.EstimatedDurationSeconds < 0 {
			return j, model.Invalid("estimated_duration_seconds", "must not be negative")
		}
		env.ApplyChange("estimated_duration_seconds",
			formatInt(out.EstimatedDurationSeconds), formatInt(*p.EstimatedDurationSeconds), actor, "", now)
		out.EstimatedDurationSeconds = *p.EstimatedDurationSeconds
	}
	if p.EstimatedCost != nil {
		env.ApplyChange("estimated_cost",
			formatFloat(out.EstimatedCost), formatFloat(*p.EstimatedCost), actor, "", now)
		out.EstimatedCost = *p.EstimatedCost
	}
	if p.NodeIDs != nil {
		env.ApplyChange("node_ids", joinIDs(out.NodeIDs), joinIDs(*p.NodeIDs), actor, "", now)
		out.NodeIDs = *p.NodeIDs
	}
	if p.RouteIDs != nil {
		env.ApplyChange("route_ids", joinIDs(out.RouteIDs), joinIDs(*p.RouteIDs), actor, "", now)
		out.RouteIDs = *p.RouteIDs
	}
	return out, nil
}

// FormatDuration renders seconds as HH:MM:SS for reports.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// CountByStatus aggregates jobs for the dashboard counters.
func CountByStatus(jobs []Job) map[Status]int {
	out := make(map[Status]int, 4)
	for _, j := range jobs {
		if j.Deleted {
			continue
		}
		out[j.Status]++
	}
	return out
}

func transition(j Job, next Status, actor, reason string, now time.Time) Job {
	out := cloneHistory(j)
	out.Env().ApplyChange("status", string(out.Status), string(next), actor, reason, now)
	out.Status = next
	return out
}

// cloneHistory copies the job so mutations never alias the caller's
// history slice.
func cloneHistory(j Job) Job {
	out := j
	out.ChangeHistory = append([]model.ChangeEntry(nil), j.ChangeHistory...)
	out.NodeIDs = append([]string(nil), j.NodeIDs...)
	out.RouteIDs = append([]string(nil), j.RouteIDs...)
	return out
}

func formatInt(v int64) string { return fmt.Sprintf("%d", v) }

func formatFloat(v float64) string { return fmt.Sprintf("%.2f", v) }

func joinIDs(ids []string) string { return strings.Join(ids, ",") }
