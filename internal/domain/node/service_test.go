package node

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func TestNew_DefaultsAndValidation(t *testing.T) {
	n, err := New("FAT-001", CreateParams{Name: "FAT Block A", Type: TypeFAT}, "tech-1", t0)
	require.NoError(t, err)
	assert.Equal(t, ConditionNew, n.Condition)
	assert.Equal(t, "FAT", n.CodePrefix())

	_, err = New("X-001", CreateParams{Name: "x", Type: "router"}, "tech-1", t0)
	assert.Error(t, err)

	_, err = New("OLT-001", CreateParams{Name: "x", Type: TypeOLT, Condition: "broken"}, "tech-1", t0)
	assert.Error(t, err)
}

func TestSetCondition(t *testing.T) {
	n, _ := New("OLT-001", CreateParams{Name: "Central OLT", Type: TypeOLT, Condition: ConditionGood}, "tech-1", t0)

	out, err := SetCondition(n, ConditionDegraded, "tech-2", "water ingress", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, ConditionDegraded, out.Condition)
	last := out.ChangeHistory[len(out.ChangeHistory)-1]
	assert.Equal(t, "condition", last.Field)
	assert.Equal(t, "good", last.OldValue)
	assert.Equal(t, "degraded", last.NewValue)
	assert.Equal(t, "water ingress", last.Reason)

	// Invalid target leaves the record unchanged.
	same, err := SetCondition(n, "rusty", "tech-2", "", t0)
	require.Error(t, err)
	assert.Equal(t, n, same)
}

func TestPrefixFor(t *testing.T) {
	assert.Equal(t, "OLT", PrefixFor(TypeOLT))
	assert.Equal(t, "SPL", PrefixFor(TypeSplitter))
	assert.Equal(t, "ATB", PrefixFor(TypeATB))
	assert.Equal(t, "CLS", PrefixFor(TypeClosure))
}

func TestComputeStats(t *testing.T) {
	a, _ := New("FAT-001", CreateParams{Name: "a", Type: TypeFAT}, "tech-1", t0)
	b, _ := New("FAT-002", CreateParams{Name: "b", Type: TypeFAT, Condition: ConditionFaulty}, "tech-1", t0)
	c, _ := New("OLT-001", CreateParams{Name: "c", Type: TypeOLT}, "tech-1", t0)
	c.Synced = true
	d, _ := New("ATB-001", CreateParams{Name: "d", Type: TypeATB}, "tech-1", t0)
	d.MarkDeleted("tech-1", "", t0.Add(time.Minute))

	st := ComputeStats([]Node{a, b, c, d})
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.ByType[TypeFAT])
	assert.Equal(t, 1, st.ByType[TypeOLT])
	assert.Equal(t, 1, st.ByCondition[ConditionFaulty])
	assert.Equal(t, 2, st.Unsynced)
}
