package client

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fibertrace/internal/domain/entity"
	"fibertrace/internal/domain/job"
	syncdto "fibertrace/internal/domain/sync"
	"fibertrace/internal/model"
	"fibertrace/internal/utils/clock"
)

var testLog = slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

type fakeAPI struct {
	healthErr error
	pushes    []syncdto.PushRequest
	pushFn    func(req syncdto.PushRequest) (*syncdto.PushResponse, error)
	pullFn    func(c model.Collection, since time.Time) (*syncdto.ChangesResponse, error)
}

func (f *fakeAPI) HealthCheck(ctx context.Context) error { return f.healthErr }

func (f *fakeAPI) PushRecords(ctx context.Context, req syncdto.PushRequest) (*syncdto.PushResponse, error) {
	f.pushes = append(f.pushes, req)
	if f.pushFn != nil {
		return f.pushFn(req)
	}
	return acceptAll(req), nil
}

func (f *fakeAPI) PullChanges(ctx context.Context, c model.Collection, since time.Time) (*syncdto.ChangesResponse, error) {
	if f.pullFn != nil {
		return f.pullFn(c, since)
	}
	return &syncdto.ChangesResponse{Collection: string(c), ServerTime: time.Now()}, nil
}

// acceptAll echoes every record back as accepted and synced, the way
// the server answers when nothing collides.
func acceptAll(req syncdto.PushRequest) *syncdto.PushResponse {
	resp := &syncdto.PushResponse{ServerTime: time.Now()}
	for _, rec := range req.Records {
		rec.Synced = true
		resp.Accepted = append(resp.Accepted, syncdto.PushedRecord{LocalID: rec.ID, Record: rec})
	}
	return resp
}

func mkJob(t *testing.T, id, actor string, now time.Time, nodeIDs ...string) model.Record {
	t.Helper()
	j, err := job.New(id, job.CreateParams{Name: "job " + id, NodeIDs: nodeIDs}, actor, now)
	require.NoError(t, err)
	rec, err := entity.Encode(&j)
	require.NoError(t, err)
	return rec
}

func newTestEngine(api SyncAPI, clk clock.Clock) (*Engine, *MemoryStorage) {
	storage := NewMemoryStorage()
	return NewEngine(storage, api, clk, testLog, "device-a", "tech-1"), storage
}

func TestSyncNow_PushesUnsyncedAndSetsWatermark(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	serverTime := t0.Add(time.Minute)
	api := &fakeAPI{
		pushFn: func(req syncdto.PushRequest) (*syncdto.PushResponse, error) {
			resp := acceptAll(req)
			resp.ServerTime = serverTime
			return resp, nil
		},
		pullFn: func(c model.Collection, since time.Time) (*syncdto.ChangesResponse, error) {
			return &syncdto.ChangesResponse{ServerTime: serverTime}, nil
		},
	}
	engine, storage := newTestEngine(api, clock.NewManual(t0))

	require.NoError(t, storage.Upsert(mkJob(t, "JOB-001", "tech-1", t0)))

	result, err := engine.SyncNow(context.Background(), model.CollectionJobs)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushed)

	rec, err := storage.Get(model.CollectionJobs, "JOB-001")
	require.NoError(t, err)
	assert.True(t, rec.Synced)

	// Watermark is server time, not device time.
	last, err := storage.LastSyncTime(model.CollectionJobs)
	require.NoError(t, err)
	assert.Equal(t, serverTime, last)

	status, err := engine.Status(model.CollectionJobs)
	require.NoError(t, err)
	assert.Equal(t, SyncIdle, status.State)
	assert.Equal(t, 0, status.Unsynced)
}

func TestSyncNow_Idempotent(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	api := &fakeAPI{}
	engine, storage := newTestEngine(api, clock.NewManual(t0))

	require.NoError(t, storage.Upsert(mkJob(t, "JOB-001", "tech-1", t0)))

	_, err := engine.SyncNow(context.Background(), model.CollectionJobs)
	require.NoError(t, err)
	require.Len(t, api.pushes, 1)

	// Nothing changed locally, so the second cycle pushes nothing.
	result, err := engine.SyncNow(context.Background(), model.CollectionJobs)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Pushed)
	assert.Len(t, api.pushes, 1)
}

func TestSyncNow_OfflineLeavesLocalStateUntouched(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	api := &fakeAPI{healthErr: ErrTransport}
	engine, storage := newTestEngine(api, clock.NewManual(t0))

	require.NoError(t, storage.Upsert(mkJob(t, "JOB-001", "tech-1", t0)))

	_, err := engine.SyncNow(context.Background(), model.CollectionJobs)
	require.Error(t, err)

	rec, err := storage.Get(model.CollectionJobs, "JOB-001")
	require.NoError(t, err)
	assert.False(t, rec.Synced)

	status, err := engine.Status(model.CollectionJobs)
	require.NoError(t, err)
	assert.Equal(t, SyncError, status.State)
	assert.NotEmpty(t, status.LastError)

	// A later successful cycle clears the error state.
	api.healthErr = nil
	_, err = engine.SyncNow(context.Background(), model.CollectionJobs)
	require.NoError(t, err)
	status, err = engine.Status(model.CollectionJobs)
	require.NoError(t, err)
	assert.Equal(t, SyncIdle, status.State)
	assert.Empty(t, status.LastError)
}

func TestSyncNow_GuardsConcurrentCycle(t *testing.T) {
	engine, _ := newTestEngine(&fakeAPI{}, clock.System{})
	require.NoError(t, engine.begin(model.CollectionJobs))

	_, err := engine.SyncNow(context.Background(), model.CollectionJobs)
	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestSyncNow_RekeysReferencesAfterReassignment(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		pushFn: func(req syncdto.PushRequest) (*syncdto.PushResponse, error) {
			resp := &syncdto.PushResponse{
				ServerTime: t0.Add(time.Minute),
				IDChanges:  map[string]string{"FAT-001": "FAT-007"},
			}
			for _, rec := range req.Records {
				local := rec.ID
				if rec.ID == "FAT-001" {
					rec.ID = "FAT-007"
				}
				rec.Synced = true
				resp.Accepted = append(resp.Accepted, syncdto.PushedRecord{LocalID: local, Record: rec})
			}
			return resp, nil
		},
	}
	engine, storage := newTestEngine(api, clock.NewManual(t0))

	// A job referencing the node that the server will renumber.
	require.NoError(t, storage.Upsert(mkJob(t, "JOB-001", "tech-1", t0, "FAT-001")))

	nodeRec := mkJob(t, "FAT-001", "tech-1", t0)
	nodeRec.Collection = model.CollectionNodes
	nodeRec.Payload = []byte(`{"id":"FAT-001","name":"fat 1","type":"fat","condition":"new","created_at":"2025-06-01T08:00:00Z","updated_at":"2025-06-01T08:00:00Z","last_updated_by":"tech-1","synced":false,"deleted":false}`)
	require.NoError(t, storage.Upsert(nodeRec))

	result, err := engine.SyncNow(context.Background(), model.CollectionNodes)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rekeyed)

	// The old node row is gone, replaced by the server-assigned id.
	_, err = storage.Get(model.CollectionNodes, "FAT-001")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = storage.Get(model.CollectionNodes, "FAT-007")
	require.NoError(t, err)

	// The referencing job is rewritten and dirty again.
	rec, err := storage.Get(model.CollectionJobs, "JOB-001")
	require.NoError(t, err)
	assert.False(t, rec.Synced)

	ent, err := entity.Decode(rec)
	require.NoError(t, err)
	j := ent.(*job.Job)
	assert.Equal(t, []string{"FAT-007"}, j.NodeIDs)
	last := j.ChangeHistory[len(j.ChangeHistory)-1]
	assert.Equal(t, model.RemoteSyncActor, last.ChangedBy)
	assert.Contains(t, last.NewValue, "FAT-001->FAT-007")
}

func TestSyncNow_ConflictAdoptsServerCopyWithAudit(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// The server already holds a newer version of the job, so the push
	// comes back as a conflict carrying that copy.
	server := mkJob(t, "JOB-001", "tech-2", t0)
	serverEnt, err := entity.Decode(server)
	require.NoError(t, err)
	sj := serverEnt.(*job.Job)
	started, err := job.Start(*sj, "tech-2", t0.Add(time.Hour))
	require.NoError(t, err)
	server, err = entity.Encode(&started)
	require.NoError(t, err)
	server.Synced = true

	api := &fakeAPI{
		pushFn: func(req syncdto.PushRequest) (*syncdto.PushResponse, error) {
			return &syncdto.PushResponse{
				Accepted:   []syncdto.PushedRecord{{LocalID: "JOB-001", Record: server, Conflict: true}},
				ServerTime: t0.Add(2 * time.Hour),
			}, nil
		},
	}
	engine, storage := newTestEngine(api, clock.NewManual(t0.Add(90*time.Minute)))

	require.NoError(t, storage.Upsert(mkJob(t, "JOB-001", "tech-1", t0)))

	result, err := engine.SyncNow(context.Background(), model.CollectionJobs)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Conflicts)
	assert.Equal(t, 0, result.Pushed)

	rec, err := storage.Get(model.CollectionJobs, "JOB-001")
	require.NoError(t, err)
	assert.True(t, rec.Synced)

	// Losing the local edit is recorded, same as on the pull path.
	ent, err := entity.Decode(rec)
	require.NoError(t, err)
	got := ent.(*job.Job)
	assert.Equal(t, job.StatusInProgress, got.Status)
	require.NotEmpty(t, got.ChangeHistory)
	last := got.ChangeHistory[len(got.ChangeHistory)-1]
	assert.Equal(t, model.RemoteSyncActor, last.ChangedBy)
}

func TestMergePull_RemoteNewerWinsWithAttribution(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	local := mkJob(t, "JOB-001", "tech-1", t0)
	local.Synced = true

	// Another device completed the job later.
	remote := mkJob(t, "JOB-001", "tech-2", t0)
	remoteJob, err := entity.Decode(remote)
	require.NoError(t, err)
	rj := remoteJob.(*job.Job)
	started, err := job.Start(*rj, "tech-2", t0.Add(time.Hour))
	require.NoError(t, err)
	remote, err = entity.Encode(&started)
	require.NoError(t, err)

	merged, pulled := mergePull([]model.Record{local}, []model.Record{remote}, t0.Add(2*time.Hour))
	require.Len(t, merged, 1)
	assert.Equal(t, 1, pulled)
	assert.True(t, merged[0].Synced)

	ent, err := entity.Decode(merged[0])
	require.NoError(t, err)
	got := ent.(*job.Job)
	assert.Equal(t, job.StatusInProgress, got.Status)
	last := got.ChangeHistory[len(got.ChangeHistory)-1]
	assert.Equal(t, model.RemoteSyncActor, last.ChangedBy)
}

func TestMergePull_LocalUnsyncedNewerSurvives(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	remote := mkJob(t, "JOB-001", "tech-2", t0)
	remote.Synced = true

	local := mkJob(t, "JOB-001", "tech-1", t0)
	local.UpdatedAt = t0.Add(time.Hour)

	merged, pulled := mergePull([]model.Record{local}, []model.Record{remote}, t0.Add(2*time.Hour))
	require.Len(t, merged, 1)
	assert.Equal(t, 0, pulled)
	assert.False(t, merged[0].Synced)
	assert.Equal(t, "tech-1", merged[0].LastUpdatedBy)
}

func TestMergePull_TombstoneSurvivesStalePull(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// The server still has the live version from before the delete.
	remote := mkJob(t, "JOB-001", "tech-2", t0)
	remote.Synced = true

	localEnt, err := entity.Decode(mkJob(t, "JOB-001", "tech-1", t0))
	require.NoError(t, err)
	localEnt.Env().MarkDeleted("tech-1", "duplicate entry", t0.Add(time.Hour))
	local, err := entity.Encode(localEnt)
	require.NoError(t, err)

	merged, pulled := mergePull([]model.Record{local}, []model.Record{remote}, t0.Add(2*time.Hour))
	require.Len(t, merged, 1)
	assert.Equal(t, 0, pulled)
	assert.True(t, merged[0].Deleted, "stale server copy must not resurrect a tombstone")
}

func TestMergePull_NewRemoteRecordAdopted(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	remote := mkJob(t, "JOB-002", "tech-2", t0)
	remote.Synced = true

	merged, pulled := mergePull(nil, []model.Record{remote}, t0.Add(time.Hour))
	require.Len(t, merged, 1)
	assert.Equal(t, 1, pulled)
	assert.True(t, merged[0].Synced)

	// Adopted as-is: no synthetic overwrite entry for a record the
	// device never had.
	ent, err := entity.Decode(merged[0])
	require.NoError(t, err)
	for _, e := range ent.Env().ChangeHistory {
		assert.NotEqual(t, model.RemoteSyncActor, e.ChangedBy)
	}
}

func TestSyncAll_StopsOnFirstFailure(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	calls := 0
	api := &fakeAPI{
		pullFn: func(c model.Collection, since time.Time) (*syncdto.ChangesResponse, error) {
			calls++
			if c == model.CollectionRoutes {
				return nil, errors.New("boom")
			}
			return &syncdto.ChangesResponse{ServerTime: t0}, nil
		},
	}
	engine, _ := newTestEngine(api, clock.NewManual(t0))

	results, err := engine.SyncAll(context.Background())
	require.Error(t, err)
	assert.Len(t, results, 2) // jobs and nodes synced before routes failed
	assert.Equal(t, 3, calls)
}
