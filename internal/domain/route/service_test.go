package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func segments(distances ...float64) []Segment {
	out := make([]Segment, len(distances))
	for i, d := range distances {
		out[i] = Segment{DistanceMeters: d}
	}
	return out
}

func TestTotalDistance(t *testing.T) {
	r, err := New("RT-001", CreateParams{
		Name:     "Feeder A",
		Type:     TypeDistribution,
		Segments: segments(120, 80, 300),
	}, "tech-1", t0)
	require.NoError(t, err)

	assert.Equal(t, 500.0, TotalDistance(r))
	// Sequences are normalized on create.
	assert.Equal(t, 1, r.Segments[0].Sequence)
	assert.Equal(t, 3, r.Segments[2].Sequence)
}

func TestProjectMaterials(t *testing.T) {
	r, _ := New("RT-001", CreateParams{
		Name:      "Feeder A",
		Type:      TypeDistribution,
		Segments:  segments(120, 80, 300),
		Inventory: Inventory{TotalLengthMeters: 600},
	}, "tech-1", t0)

	m := ProjectMaterials(r)
	assert.Equal(t, 500.0, m.TotalDistanceMeters)
	assert.Equal(t, 100.0, m.ReserveMeters)
	assert.Equal(t, 4, m.SpliceCount)
	assert.Equal(t, 1, m.ClosureCount)
}

func TestProjectMaterials_ClosureRounding(t *testing.T) {
	r, _ := New("RT-002", CreateParams{
		Name:     "Backbone",
		Type:     TypeBackbone,
		Segments: segments(1, 1, 1, 1, 1, 1), // 6 segments -> ceil(6/5) = 2
	}, "tech-1", t0)
	assert.Equal(t, 2, ProjectMaterials(r).ClosureCount)

	empty, _ := New("RT-003", CreateParams{Name: "Empty", Type: TypeDrop}, "tech-1", t0)
	m := ProjectMaterials(empty)
	assert.Equal(t, 0, m.ClosureCount)
	assert.Equal(t, 0, m.SpliceCount)
}

func TestSetInventory_TracksEachChangedField(t *testing.T) {
	r, _ := New("RT-001", CreateParams{Name: "Feeder A", Type: TypeAccess}, "tech-1", t0)

	out, err := SetInventory(r, Inventory{
		CableType:         "ADSS",
		CableSize:         "48F",
		TotalLengthMeters: 600,
	}, "tech-1", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "ADSS", out.Inventory.CableType)
	assert.False(t, out.Synced)

	fields := map[string]bool{}
	for _, e := range out.ChangeHistory {
		fields[e.Field] = true
	}
	assert.True(t, fields["inventory.cable_type"])
	assert.True(t, fields["inventory.cable_size"])
	assert.True(t, fields["inventory.total_length_meters"])
	// Unchanged fields record no entry.
	assert.False(t, fields["inventory.splice_count"])

	// Invalid inventory leaves the record unchanged.
	same, err := SetInventory(r, Inventory{TotalLengthMeters: -1}, "tech-1", t0)
	require.Error(t, err)
	assert.Equal(t, r, same)
}

func TestAddSegment(t *testing.T) {
	r, _ := New("RT-001", CreateParams{Name: "Feeder A", Type: TypeAccess}, "tech-1", t0)

	out, err := AddSegment(r, 250, "road crossing", "tech-1", t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, out.Segments, 1)
	assert.Equal(t, 1, out.Segments[0].Sequence)
	assert.Equal(t, 250.0, out.Segments[0].DistanceMeters)
	assert.Empty(t, r.Segments, "original is untouched")

	_, err = AddSegment(r, -5, "", "tech-1", t0)
	assert.Error(t, err)
}

func TestRekey_Endpoints(t *testing.T) {
	r, _ := New("RT-001", CreateParams{
		Name:        "Feeder A",
		Type:        TypeAccess,
		StartNodeID: "local-123",
		EndNodeID:   "FAT-002",
	}, "tech-1", t0)

	applied := r.Rekey(map[string]string{"local-123": "OLT-001"})
	assert.Equal(t, []string{"local-123->OLT-001"}, applied)
	assert.Equal(t, "OLT-001", r.StartNodeID)
	assert.Equal(t, "FAT-002", r.EndNodeID)
}
