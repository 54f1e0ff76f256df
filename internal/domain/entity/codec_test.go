package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fibertrace/internal/domain/job"
	"fibertrace/internal/model"
)

func TestRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	j, err := job.New("JOB-001", job.CreateParams{
		Name:                     "Fiber Install",
		EstimatedDurationSeconds: 7200,
		NodeIDs:                  []string{"FAT-001"},
	}, "tech-1", now)
	require.NoError(t, err)

	rec, err := Encode(&j)
	require.NoError(t, err)
	assert.Equal(t, model.CollectionJobs, rec.Collection)
	assert.Equal(t, "JOB-001", rec.ID)
	assert.False(t, rec.Synced)

	decoded, err := Decode(rec)
	require.NoError(t, err)
	back, ok := decoded.(*job.Job)
	require.True(t, ok)
	assert.Equal(t, j.Name, back.Name)
	assert.Equal(t, j.NodeIDs, back.NodeIDs)
	assert.Equal(t, j.UpdatedAt.UTC(), back.UpdatedAt.UTC())
}

func TestDecode_EveryCollection(t *testing.T) {
	for _, c := range model.Collections() {
		rec := model.Record{Collection: c, ID: "X-001", Payload: []byte(`{}`)}
		e, err := Decode(rec)
		require.NoError(t, err, string(c))
		assert.Equal(t, c, e.Collection())
	}
}

func TestDecode_UnknownCollection(t *testing.T) {
	_, err := Decode(model.Record{Collection: "secrets", Payload: []byte(`{}`)})
	assert.Error(t, err)
}
