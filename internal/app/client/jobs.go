package client

import (
	"fmt"

	"fibertrace/internal/domain/job"
	"fibertrace/internal/model"
)

// JobManager is the CLI-facing API over the jobs collection.
type JobManager struct {
	app *App
}

func (a *App) Jobs() *JobManager { return &JobManager{app: a} }

func (m *JobManager) Create(p job.CreateParams) (job.Job, error) {
	id, err := m.app.nextID(model.CollectionJobs, job.CodePrefix)
	if err != nil {
		return job.Job{}, err
	}
	j, err := job.New(id, p, m.app.Actor(), m.app.clk.Now())
	if err != nil {
		return job.Job{}, err
	}
	if err := m.app.put(&j); err != nil {
		return job.Job{}, err
	}
	return j, nil
}

func (m *JobManager) Get(id string) (job.Job, error) {
	ent, err := m.app.getEntity(model.CollectionJobs, id)
	if err != nil {
		return job.Job{}, err
	}
	j, ok := ent.(*job.Job)
	if !ok {
		return job.Job{}, fmt.Errorf("record %s is not a job", id)
	}
	return *j, nil
}

func (m *JobManager) List(includeDeleted bool) ([]job.Job, error) {
	ents, err := m.app.listEntities(model.CollectionJobs, includeDeleted)
	if err != nil {
		return nil, err
	}
	jobs := make([]job.Job, 0, len(ents))
	for _, ent := range ents {
		jobs = append(jobs, *ent.(*job.Job))
	}
	return jobs, nil
}

func (m *JobManager) Start(id string) (job.Job, error) {
	return m.mutate(id, func(j job.Job) (job.Job, error) {
		return job.Start(j, m.app.Actor(), m.app.clk.Now())
	})
}

func (m *JobManager) Hold(id, reason string) (job.Job, error) {
	return m.mutate(id, func(j job.Job) (job.Job, error) {
		return job.Hold(j, m.app.Actor(), reason, m.app.clk.Now())
	})
}

func (m *JobManager) Resume(id string) (job.Job, error) {
	return m.mutate(id, func(j job.Job) (job.Job, error) {
		return job.Resume(j, m.app.Actor(), m.app.clk.Now())
	})
}

func (m *JobManager) Complete(id string, durationSeconds int64, actualCost float64) (job.Job, error) {
	return m.mutate(id, func(j job.Job) (job.Job, error) {
		return job.Complete(j, durationSeconds, actualCost, m.app.Actor(), m.app.clk.Now())
	})
}

// CompleteFromTimer finishes the job using the active timer's elapsed
// time, then clears the timer.
func (m *JobManager) CompleteFromTimer(id string, actualCost float64) (job.Job, error) {
	ts, err := m.app.timer.Current()
	if err != nil {
		return job.Job{}, err
	}
	if ts.JobID != id {
		return job.Job{}, fmt.Errorf("active timer belongs to job %s, not %s", ts.JobID, id)
	}

	elapsed, err := m.app.timer.Stop()
	if err != nil {
		return job.Job{}, err
	}
	return m.Complete(id, elapsed, actualCost)
}

func (m *JobManager) Update(id string, p job.UpdateParams) (job.Job, error) {
	return m.mutate(id, func(j job.Job) (job.Job, error) {
		return job.Update(j, p, m.app.Actor(), m.app.clk.Now())
	})
}

func (m *JobManager) Remove(id, reason string) error {
	return m.app.removeEntity(model.CollectionJobs, id, reason)
}

// Stats counts live jobs per lifecycle state.
func (m *JobManager) Stats() (map[job.Status]int, error) {
	jobs, err := m.List(true)
	if err != nil {
		return nil, err
	}
	return job.CountByStatus(jobs), nil
}

func (m *JobManager) mutate(id string, fn func(job.Job) (job.Job, error)) (job.Job, error) {
	j, err := m.Get(id)
	if err != nil {
		return job.Job{}, err
	}
	out, err := fn(j)
	if err != nil {
		return j, err
	}
	if err := m.app.put(&out); err != nil {
		return j, err
	}
	return out, nil
}
