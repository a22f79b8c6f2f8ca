package optnetsim

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiberDefaults(t *testing.T) {
	f := NewFiber()
	assert.Equal(t, SSMF, f.Type())
	assert.Equal(t, 1, f.NumberOfCores())
	n, err := f.NumberOfSlots(0, BandC, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultSlots, n)
	assert.False(t, f.IsActive())
}

func TestFiberDetectType(t *testing.T) {
	t.Run("single core single mode is SSMF", func(t *testing.T) {
		f, err := NewFiberMatrix(map[Band][][]int{BandC: {{10}}})
		require.NoError(t, err)
		assert.Equal(t, SSMF, f.Type())
	})
	t.Run("single core multi mode is FMF", func(t *testing.T) {
		f, err := NewFiberMatrix(map[Band][][]int{BandC: {{10, 10, 10}}})
		require.NoError(t, err)
		assert.Equal(t, FMF, f.Type())
	})
	t.Run("multi core single mode is MCF", func(t *testing.T) {
		f, err := NewFiberMatrix(map[Band][][]int{BandC: {{10}, {10}}})
		require.NoError(t, err)
		assert.Equal(t, MCF, f.Type())
	})
	t.Run("multi core multi mode is FMMCF", func(t *testing.T) {
		f, err := NewFiberMatrix(map[Band][][]int{BandC: {{10, 10}, {10, 10}}})
		require.NoError(t, err)
		assert.Equal(t, FMMCF, f.Type())
	})
}

func TestFiberSlotOccupancy(t *testing.T) {
	f := NewFiber()
	require.NoError(t, f.SetSlot(0, BandC, 0, 5, 42))
	owner, err := f.GetSlot(0, BandC, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 42, owner)
	assert.True(t, f.IsActive())

	require.NoError(t, f.SetSlot(0, BandC, 0, 5, FreeSlot))
	assert.False(t, f.IsActive())
}

func TestFiberSetDedicatedToP2PFailsWhenActive(t *testing.T) {
	f := NewFiber()
	require.NoError(t, f.SetSlot(0, BandC, 0, 0, 1))
	err := f.SetDedicatedToP2P(true)
	require.Error(t, err)
	assert.True(t, Is(err, Conflict))
}

// TestFiberClearWarnsOnActiveFiber exercises the spec-mandated warning path:
// clearing a fiber that still carries slot assignments must emit a stderr
// warning and still clear.
func TestFiberClearWarnsOnActiveFiber(t *testing.T) {
	f := NewFiber()
	require.NoError(t, f.SetSlot(0, BandC, 0, 5, 42))
	require.True(t, f.IsActive())

	r, w, err := os.Pipe()
	require.NoError(t, err)
	origStderr := os.Stderr
	os.Stderr = w
	f.Clear()
	os.Stderr = origStderr
	require.NoError(t, w.Close())

	buf := make([]byte, 256)
	n, _ := r.Read(buf)
	assert.Contains(t, string(buf[:n]), "warning")
	assert.False(t, f.IsActive())
}

func TestFiberClearSilentWhenNotActive(t *testing.T) {
	f := NewFiber()
	require.False(t, f.IsActive())

	r, w, err := os.Pipe()
	require.NoError(t, err)
	origStderr := os.Stderr
	os.Stderr = w
	f.Clear()
	os.Stderr = origStderr
	require.NoError(t, w.Close())

	buf := make([]byte, 256)
	n, _ := r.Read(buf)
	assert.Empty(t, string(buf[:n]))
}

func TestFiberUsagePercentage(t *testing.T) {
	f, err := NewFiberSlots(10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.UsagePercentage())
	for i := 0; i < 5; i++ {
		require.NoError(t, f.SetSlot(0, BandC, 0, i, 1))
	}
	assert.InDelta(t, 0.5, f.UsagePercentage(), 1e-9)
}
