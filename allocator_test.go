package optnetsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstFitSlotsFindsFirstContiguousRun(t *testing.T) {
	fiber, err := NewFiberSlots(16)
	require.NoError(t, err)
	require.NoError(t, fiber.SetSlot(0, BandC, 0, 2, 7)) // occupy slot 2

	from, to, ok := FirstFitSlots(fiber, 0, BandC, 0, 2)
	require.True(t, ok)
	// slots 0-1 are free and contiguous before the occupied slot 2.
	assert.Equal(t, 0, from)
	assert.Equal(t, 2, to)
}

func TestFirstFitSlotsSkipsPastOccupiedRun(t *testing.T) {
	fiber, err := NewFiberSlots(8)
	require.NoError(t, err)
	for pos := 0; pos < 4; pos++ {
		require.NoError(t, fiber.SetSlot(0, BandC, 0, pos, 1))
	}

	from, to, ok := FirstFitSlots(fiber, 0, BandC, 0, 4)
	require.True(t, ok)
	assert.Equal(t, 4, from)
	assert.Equal(t, 8, to)
}

func TestFirstFitSlotsReturnsFalseWhenNoRunFits(t *testing.T) {
	fiber, err := NewFiberSlots(4)
	require.NoError(t, err)
	require.NoError(t, fiber.SetSlot(0, BandC, 0, 1, 1))

	_, _, ok := FirstFitSlots(fiber, 0, BandC, 0, 3)
	assert.False(t, ok)
}

func TestFirstFitRouteRequiresSameLaneOnEveryHop(t *testing.T) {
	net := NewNetwork("")
	require.NoError(t, net.AddNode(NewNode(0)))
	require.NoError(t, net.AddNode(NewNode(1)))
	require.NoError(t, net.AddNode(NewNode(2)))

	f0, err := NewFiberSlots(8)
	require.NoError(t, err)
	l0, err := NewLinkWithFiber(10, f0)
	require.NoError(t, err)
	require.NoError(t, l0.SetID(0))
	require.NoError(t, net.AddLink(l0))
	require.NoError(t, net.Connect(0, 0, 1))

	f1, err := NewFiberSlots(8)
	require.NoError(t, err)
	// occupy slots 0-3 on the second hop only, forcing the route-wide search
	// to skip past them even though they are free on the first hop.
	for pos := 0; pos < 4; pos++ {
		require.NoError(t, f1.SetSlot(0, BandC, 0, pos, 1))
	}
	l1, err := NewLinkWithFiber(10, f1)
	require.NoError(t, err)
	require.NoError(t, l1.SetID(1))
	require.NoError(t, net.AddLink(l1))
	require.NoError(t, net.Connect(1, 1, 2))

	hops, ok := FirstFitRoute(net, Route{0, 1}, BandC, 4)
	require.True(t, ok)
	require.Len(t, hops, 2)
	assert.Equal(t, 4, hops[0].First)
	assert.Equal(t, 7, hops[0].Last)
	assert.Equal(t, 4, hops[1].First)
	assert.Equal(t, 7, hops[1].Last)
}

func TestFirstFitRouteFailsWhenNoLaneFitsEveryHop(t *testing.T) {
	net := NewNetwork("")
	require.NoError(t, net.AddNode(NewNode(0)))
	require.NoError(t, net.AddNode(NewNode(1)))

	f0, err := NewFiberSlots(4)
	require.NoError(t, err)
	require.NoError(t, f0.SetSlot(0, BandC, 0, 0, 1))
	require.NoError(t, f0.SetSlot(0, BandC, 0, 1, 1))
	require.NoError(t, f0.SetSlot(0, BandC, 0, 2, 1))
	require.NoError(t, f0.SetSlot(0, BandC, 0, 3, 1))
	l0, err := NewLinkWithFiber(10, f0)
	require.NoError(t, err)
	require.NoError(t, l0.SetID(0))
	require.NoError(t, net.AddLink(l0))
	require.NoError(t, net.Connect(0, 0, 1))

	_, ok := FirstFitRoute(net, Route{0}, BandC, 1)
	assert.False(t, ok)
}
