package optnetsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemandUnprovisionedAndIsProvisioned(t *testing.T) {
	d, err := NewDemand(0, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 100.0, d.Unprovisioned())
	assert.False(t, d.IsProvisioned())

	require.NoError(t, d.AddAllocated(60))
	assert.Equal(t, 40.0, d.Unprovisioned())
	assert.False(t, d.IsProvisioned())

	require.NoError(t, d.AddAllocated(40))
	assert.Equal(t, 0.0, d.Unprovisioned())
	assert.True(t, d.IsProvisioned())
}

func TestZeroRequiredDemandIsTriviallyProvisioned(t *testing.T) {
	d, err := NewDemand(0, 1, 0)
	require.NoError(t, err)
	assert.True(t, d.IsProvisioned())
}

func TestDemandSubtractAllocatedRejectsNegativeResult(t *testing.T) {
	d, err := NewDemand(0, 1, 100)
	require.NoError(t, err)
	require.NoError(t, d.AddAllocated(10))
	err = d.SubtractAllocated(20)
	require.Error(t, err)
	assert.True(t, Is(err, Conflict))
}

func TestNewDemandRejectsNullPair(t *testing.T) {
	_, err := NewDemand(2, 2, 10)
	require.Error(t, err)
	assert.True(t, Is(err, InvalidArgument))
}

func TestDemandMatrixForEachSkipsDiagonal(t *testing.T) {
	m := NewDemandMatrix(3)
	require.NoError(t, m.Set(0, 1, 10))
	require.NoError(t, m.Set(1, 2, 20))

	var visited int
	m.ForEach(func(d *Demand) {
		visited++
		assert.NotEqual(t, d.Src, d.Dst)
	})
	assert.Equal(t, 6, visited) // 3x3 minus the 3 diagonal cells
}

func TestDemandMatrixUnderProvisioningRatio(t *testing.T) {
	m := NewDemandMatrix(2)
	require.NoError(t, m.Set(0, 1, 100))
	require.NoError(t, m.Set(1, 0, 100))
	cell, err := m.At(0, 1)
	require.NoError(t, err)
	require.NoError(t, cell.AddAllocated(50))

	assert.InDelta(t, 0.75, m.UnderProvisioningRatio(), 1e-9)
}

func TestDemandMatrixCloneIsIndependent(t *testing.T) {
	m := NewDemandMatrix(2)
	require.NoError(t, m.Set(0, 1, 100))
	clone := m.clone()

	cell, err := m.At(0, 1)
	require.NoError(t, err)
	require.NoError(t, cell.AddAllocated(30))

	cloneCell, err := clone.At(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cloneCell.Allocated())
}
