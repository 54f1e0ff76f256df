package client

import (
	"errors"
	"fmt"
	"time"

	"fibertrace/internal/utils/clock"
)

// TimerState is the persisted stopwatch for the job being worked on.
// Only one timer exists at a time; it survives process restarts so a
// technician can close the laptop mid-splice.
type TimerState struct {
	JobID          string    `json:"job_id"`
	IsRunning      bool      `json:"is_running"`
	ElapsedSeconds int64     `json:"elapsed_seconds"`
	StartedAt      time.Time `json:"started_at"`
	PausedAt       time.Time `json:"paused_at,omitempty"`
}

var (
	ErrTimerRunning  = errors.New("a timer is already running")
	ErrTimerNotFound = errors.New("no timer is active")
)

// Timer drives the persisted stopwatch.
type Timer struct {
	storage Storage
	clk     clock.Clock
}

func NewTimer(storage Storage, clk clock.Clock) *Timer {
	return &Timer{storage: storage, clk: clk}
}

// Start begins timing a job. Fails if a timer for another job is
// active; restarting the same job's paused timer resumes it instead.
func (t *Timer) Start(jobID string) (TimerState, error) {
	current, err := t.storage.LoadTimer()
	if err == nil {
		if current.JobID == jobID {
			return t.Resume()
		}
		return TimerState{}, fmt.Errorf("%w: job %s", ErrTimerRunning, current.JobID)
	}
	if !errors.Is(err, ErrNotFound) {
		return TimerState{}, err
	}

	ts := TimerState{
		JobID:     jobID,
		IsRunning: true,
		StartedAt: t.clk.Now(),
	}
	if err := t.storage.SaveTimer(ts); err != nil {
		return TimerState{}, err
	}
	return ts, nil
}

// Pause freezes the timer, banking the elapsed time so far.
func (t *Timer) Pause() (TimerState, error) {
	ts, err := t.load()
	if err != nil {
		return TimerState{}, err
	}
	if !ts.IsRunning {
		return ts, nil
	}

	now := t.clk.Now()
	ts.ElapsedSeconds += int64(now.Sub(ts.StartedAt).Seconds())
	ts.IsRunning = false
	ts.PausedAt = now

	if err := t.storage.SaveTimer(ts); err != nil {
		return TimerState{}, err
	}
	return ts, nil
}

// Resume restarts a paused timer.
func (t *Timer) Resume() (TimerState, error) {
	ts, err := t.load()
	if err != nil {
		return TimerState{}, err
	}
	if ts.IsRunning {
		return ts, nil
	}

	ts.IsRunning = true
	ts.StartedAt = t.clk.Now()
	ts.PausedAt = time.Time{}

	if err := t.storage.SaveTimer(ts); err != nil {
		return TimerState{}, err
	}
	return ts, nil
}

// Elapsed returns the total tracked seconds, including the running
// span if the timer is live.
func (t *Timer) Elapsed() (int64, error) {
	ts, err := t.load()
	if err != nil {
		return 0, err
	}
	return t.elapsed(ts), nil
}

// Current returns the active timer state, if any.
func (t *Timer) Current() (TimerState, error) {
	return t.load()
}

// Stop ends the timer and returns the final elapsed seconds, usually
// fed straight into job completion.
func (t *Timer) Stop() (int64, error) {
	ts, err := t.load()
	if err != nil {
		return 0, err
	}

	total := t.elapsed(ts)
	if err := t.storage.ClearTimer(); err != nil {
		return 0, err
	}
	return total, nil
}

func (t *Timer) load() (TimerState, error) {
	ts, err := t.storage.LoadTimer()
	if errors.Is(err, ErrNotFound) {
		return TimerState{}, ErrTimerNotFound
	}
	return ts, err
}

func (t *Timer) elapsed(ts TimerState) int64 {
	total := ts.ElapsedSeconds
	if ts.IsRunning {
		total += int64(t.clk.Now().Sub(ts.StartedAt).Seconds())
	}
	return total
}
