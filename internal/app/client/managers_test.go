package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fibertrace/internal/app/client/config"
	"fibertrace/internal/domain/job"
	"fibertrace/internal/domain/node"
	"fibertrace/internal/domain/route"
	"fibertrace/internal/utils/clock"
)

func newTestApp(t *testing.T) (*App, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	storage := NewMemoryStorage()
	app := &App{
		config:  &config.Config{Technician: "tech-1", DeviceID: "dev-a"},
		log:     testLog,
		storage: storage,
		clk:     clk,
	}
	app.timer = NewTimer(storage, clk)
	return app, clk
}

func TestJobManager_SequentialIDs(t *testing.T) {
	app, _ := newTestApp(t)

	j1, err := app.Jobs().Create(job.CreateParams{Name: "first"})
	require.NoError(t, err)
	j2, err := app.Jobs().Create(job.CreateParams{Name: "second"})
	require.NoError(t, err)

	assert.Equal(t, "JOB-001", j1.ID)
	assert.Equal(t, "JOB-002", j2.ID)
}

func TestJobManager_DeletedIDNotReissued(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := app.Jobs().Create(job.CreateParams{Name: "first"})
	require.NoError(t, err)
	j2, err := app.Jobs().Create(job.CreateParams{Name: "second"})
	require.NoError(t, err)
	require.NoError(t, app.Jobs().Remove(j2.ID, "created by mistake"))

	j3, err := app.Jobs().Create(job.CreateParams{Name: "third"})
	require.NoError(t, err)
	assert.Equal(t, "JOB-003", j3.ID)

	// The tombstone is hidden from normal listing but still stored.
	live, err := app.Jobs().List(false)
	require.NoError(t, err)
	assert.Len(t, live, 2)
	all, err := app.Jobs().List(true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNodeManager_PrefixPerType(t *testing.T) {
	app, _ := newTestApp(t)

	olt, err := app.Nodes().Create(node.CreateParams{Name: "central OLT", Type: node.TypeOLT})
	require.NoError(t, err)
	fat, err := app.Nodes().Create(node.CreateParams{Name: "corner FAT", Type: node.TypeFAT})
	require.NoError(t, err)
	fat2, err := app.Nodes().Create(node.CreateParams{Name: "next FAT", Type: node.TypeFAT})
	require.NoError(t, err)

	assert.Equal(t, "OLT-001", olt.ID)
	assert.Equal(t, "FAT-001", fat.ID)
	assert.Equal(t, "FAT-002", fat2.ID)
	assert.Equal(t, node.ConditionNew, fat.Condition)
}

func TestJobManager_CompleteFromTimer(t *testing.T) {
	app, clk := newTestApp(t)

	j, err := app.Jobs().Create(job.CreateParams{Name: "splice FAT-001"})
	require.NoError(t, err)
	_, err = app.Jobs().Start(j.ID)
	require.NoError(t, err)

	_, err = app.Timer().Start(j.ID)
	require.NoError(t, err)
	clk.Advance(time.Hour + time.Minute + time.Second)

	done, err := app.Jobs().CompleteFromTimer(j.ID, 120.50)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, done.Status)
	assert.Equal(t, int64(3661), done.ActualDurationSeconds)
	assert.Equal(t, "01:01:01", job.FormatDuration(done.ActualDurationSeconds))

	_, err = app.Timer().Current()
	assert.ErrorIs(t, err, ErrTimerNotFound)
}

func TestJobManager_CompleteFromTimerWrongJob(t *testing.T) {
	app, _ := newTestApp(t)

	j, err := app.Jobs().Create(job.CreateParams{Name: "first"})
	require.NoError(t, err)
	_, err = app.Jobs().Start(j.ID)
	require.NoError(t, err)
	_, err = app.Timer().Start("JOB-999")
	require.NoError(t, err)

	_, err = app.Jobs().CompleteFromTimer(j.ID, 0)
	assert.Error(t, err)
}

func TestRouteManager_Materials(t *testing.T) {
	app, _ := newTestApp(t)

	r, err := app.Routes().Create(route.CreateParams{
		Name: "feeder east",
		Type: route.TypeDistribution,
		Segments: []route.Segment{
			{DistanceMeters: 120},
			{DistanceMeters: 80},
			{DistanceMeters: 300},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "RT-001", r.ID)

	_, err = app.Routes().SetInventory(r.ID, route.Inventory{
		CableType:         "ADSS",
		CableSize:         "48F",
		TotalLengthMeters: 600,
	})
	require.NoError(t, err)

	m, err := app.Routes().Materials(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, m.TotalDistanceMeters)
	assert.Equal(t, 4, m.SpliceCount)
	assert.Equal(t, 1, m.ClosureCount)
	assert.Equal(t, 100.0, m.ReserveMeters)
}

func TestRemove_AlreadyDeleted(t *testing.T) {
	app, _ := newTestApp(t)

	j, err := app.Jobs().Create(job.CreateParams{Name: "first"})
	require.NoError(t, err)
	require.NoError(t, app.Jobs().Remove(j.ID, ""))
	assert.Error(t, app.Jobs().Remove(j.ID, ""))
}
