package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fibertrace/internal/model"
)

func at(sec int) time.Time {
	return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second)
}

func pending(t *testing.T) Job {
	t.Helper()
	j, err := New("JOB-001", CreateParams{
		Name:                     "Fiber Install",
		EstimatedDurationSeconds: 7200,
		EstimatedCost:            150,
	}, "tech-1", at(0))
	require.NoError(t, err)
	return j
}

func TestNew_Validation(t *testing.T) {
	_, err := New("JOB-001", CreateParams{Name: ""}, "tech-1", at(0))
	require.Error(t, err)
	ve, ok := model.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "name", ve.Field)

	_, err = New("JOB-001", CreateParams{Name: "x", EstimatedDurationSeconds: -1}, "tech-1", at(0))
	assert.Error(t, err)
}

func TestLifecycle_HappyPath(t *testing.T) {
	j := pending(t)
	assert.Equal(t, StatusPending, j.Status)
	assert.False(t, j.Synced)

	j2, err := Start(j, "tech-1", at(10))
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, j2.Status)

	j3, err := Complete(j2, 3661, 175.50, "tech-1", at(3700))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, j3.Status)
	assert.Equal(t, int64(3661), j3.ActualDurationSeconds)
	assert.Equal(t, 175.50, j3.ActualCost)
	assert.Equal(t, "tech-1", j3.CompletedBy)
	assert.Equal(t, "01:01:01", FormatDuration(j3.ActualDurationSeconds))
}

func TestHoldResume(t *testing.T) {
	j, _ := Start(pending(t), "tech-1", at(10))

	held, err := Hold(j, "tech-1", "waiting for parts", at(20))
	require.NoError(t, err)
	assert.Equal(t, StatusOnHold, held.Status)
	last := held.ChangeHistory[len(held.ChangeHistory)-1]
	assert.Equal(t, "waiting for parts", last.Reason)

	resumed, err := Resume(held, "tech-1", at(30))
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, resumed.Status)
}

func TestInvalidTransitions_LeaveRecordUnchanged(t *testing.T) {
	j := pending(t)

	// Complete before start.
	out, err := Complete(j, 100, 10, "tech-1", at(5))
	require.Error(t, err)
	assert.Equal(t, j, out, "record must be returned unchanged on error")

	// Hold a pending job.
	out, err = Hold(j, "tech-1", "", at(5))
	require.Error(t, err)
	assert.Equal(t, j, out)

	// Completed is terminal.
	started, _ := Start(j, "tech-1", at(10))
	done, err := Complete(started, 60, 5, "tech-1", at(70))
	require.NoError(t, err)
	_, err = Start(done, "tech-1", at(80))
	assert.Error(t, err)
	_, err = Resume(done, "tech-1", at(80))
	assert.Error(t, err)
}

func TestComplete_RequiresDurationCostActor(t *testing.T) {
	started, _ := Start(pending(t), "tech-1", at(10))

	_, err := Complete(started, 0, 10, "tech-1", at(20))
	assert.Error(t, err)
	_, err = Complete(started, 100, -1, "tech-1", at(20))
	assert.Error(t, err)
	_, err = Complete(started, 100, 10, "", at(20))
	assert.Error(t, err)
}

func TestUpdate_TracksChanges(t *testing.T) {
	j := pending(t)
	name := "Fiber Install - Block C"
	nodes := []string{"FAT-001", "OLT-002"}

	out, err := Update(j, UpdateParams{Name: &name, NodeIDs: &nodes}, "tech-2", at(40))
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
	assert.Equal(t, nodes, out.NodeIDs)
	assert.Equal(t, "tech-2", out.LastUpdatedBy)
	assert.False(t, out.Synced)
	assert.Greater(t, len(out.ChangeHistory), len(j.ChangeHistory))

	// Original untouched (pure transform).
	assert.Equal(t, "Fiber Install", j.Name)
}

func TestRekey(t *testing.T) {
	j := pending(t)
	j.NodeIDs = []string{"local-abc", "FAT-002"}
	j.RouteIDs = []string{"RT-001"}

	applied := j.Rekey(map[string]string{"local-abc": "FAT-009", "RT-001": "RT-003"})
	assert.ElementsMatch(t, []string{"local-abc->FAT-009", "RT-001->RT-003"}, applied)
	assert.Equal(t, []string{"FAT-009", "FAT-002"}, j.NodeIDs)
	assert.Equal(t, []string{"RT-003"}, j.RouteIDs)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDuration(0))
	assert.Equal(t, "01:01:01", FormatDuration(3661))
	assert.Equal(t, "02:00:00", FormatDuration(7200))
	assert.Equal(t, "27:46:40", FormatDuration(100000))
}

func TestCountByStatus_SkipsTombstones(t *testing.T) {
	a := pending(t)
	b, _ := Start(pending(t), "tech-1", at(5))
	c := pending(t)
	c.MarkDeleted("tech-1", "", at(6))

	counts := CountByStatus([]Job{a, b, c})
	assert.Equal(t, 1, counts[StatusPending])
	assert.Equal(t, 1, counts[StatusInProgress])
	assert.Equal(t, 2, counts[StatusPending]+counts[StatusInProgress])
}
