package closure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func TestAddSplice(t *testing.T) {
	c, err := New("CL-001", CreateParams{Name: "Closure 12", NodeID: "CLS-003"}, "tech-1", t0)
	require.NoError(t, err)

	out, err := AddSplice(c, Splice{LossDB: 0.08}, "tech-1", t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, out.Splices, 1)
	assert.Equal(t, 1, out.Splices[0].TrayPosition)
	assert.Empty(t, c.Splices, "original untouched")

	out2, err := AddSplice(out, Splice{TrayPosition: 7, LossDB: 0.12}, "tech-1", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 7, out2.Splices[1].TrayPosition)

	same, err := AddSplice(c, Splice{LossDB: -0.01}, "tech-1", t0)
	require.Error(t, err)
	assert.Equal(t, c, same)
}

func TestAverageLoss(t *testing.T) {
	c, _ := New("CL-001", CreateParams{Name: "Closure 12"}, "tech-1", t0)
	assert.Equal(t, 0.0, AverageLoss(c))

	c, _ = AddSplice(c, Splice{LossDB: 0.10}, "tech-1", t0)
	c, _ = AddSplice(c, Splice{LossDB: 0.20}, "tech-1", t0)
	assert.InDelta(t, 0.15, AverageLoss(c), 1e-9)
}

func TestComputeStats(t *testing.T) {
	good, _ := New("CL-001", CreateParams{Name: "a", Splices: []Splice{{LossDB: 0.05}, {LossDB: 0.07}}}, "tech-1", t0)
	bad, _ := New("CL-002", CreateParams{Name: "b", Splices: []Splice{{LossDB: 0.30}}}, "tech-1", t0)
	empty, _ := New("CL-003", CreateParams{Name: "c"}, "tech-1", t0)
	gone, _ := New("CL-004", CreateParams{Name: "d", Splices: []Splice{{LossDB: 0.9}}}, "tech-1", t0)
	gone.MarkDeleted("tech-1", "", t0.Add(time.Minute))

	st := ComputeStats([]Closure{good, bad, empty, gone}, DefaultHighLossDB)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 3, st.SpliceCount)
	assert.InDelta(t, (0.05+0.07+0.30)/3, st.AverageLossDB, 1e-9)
	assert.Equal(t, 1, st.HighLossCount, "only the closure averaging above threshold counts")
}
