package splicemap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	tests := []struct {
		loss float64
		want Classification
	}{
		{0.05, ClassGood},
		{0.0, ClassGood},
		{0.09999, ClassGood},
		{0.10, ClassHighLoss},
		{0.15, ClassHighLoss},
		{0.20, ClassHighLoss},
		{0.25, ClassFault},
		{1.5, ClassFault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.loss), "loss %.3f", tt.loss)
	}
}

func TestAddMapping(t *testing.T) {
	m, err := New("SM-001", CreateParams{
		Name:   "Closure 12 east",
		CableA: "48F-A",
		CableB: "48F-B",
	}, "tech-1", t0)
	require.NoError(t, err)

	out, err := AddMapping(m, 1, 1, 0.15, "tech-1", t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, out.Mappings, 1)
	assert.Equal(t, ClassHighLoss, out.Mappings[0].Classification)
	assert.False(t, out.Synced)
	assert.Empty(t, m.Mappings, "original untouched")

	// Fibers cannot be double-mapped.
	_, err = AddMapping(out, 1, 2, 0.05, "tech-1", t0)
	assert.Error(t, err)
	_, err = AddMapping(out, 2, 1, 0.05, "tech-1", t0)
	assert.Error(t, err)

	_, err = AddMapping(out, 0, 2, 0.05, "tech-1", t0)
	assert.Error(t, err)
	_, err = AddMapping(out, 2, 2, -0.01, "tech-1", t0)
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	m, _ := New("SM-001", CreateParams{Name: "s", CableA: "a", CableB: "b"}, "tech-1", t0)
	m, _ = AddMapping(m, 1, 1, 0.05, "tech-1", t0)
	m, _ = AddMapping(m, 2, 2, 0.15, "tech-1", t0)
	m, _ = AddMapping(m, 3, 3, 0.25, "tech-1", t0)
	m, _ = AddMapping(m, 4, 4, 0.02, "tech-1", t0)

	sum := Summary(m)
	assert.Equal(t, 2, sum[ClassGood])
	assert.Equal(t, 1, sum[ClassHighLoss])
	assert.Equal(t, 1, sum[ClassFault])
}

func TestNew_Validation(t *testing.T) {
	_, err := New("SM-001", CreateParams{Name: "", CableA: "a", CableB: "b"}, "tech-1", t0)
	assert.Error(t, err)
	_, err = New("SM-001", CreateParams{Name: "s", CableA: "", CableB: "b"}, "tech-1", t0)
	assert.Error(t, err)
}
