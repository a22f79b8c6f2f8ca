package optnetsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoNodeLink(t *testing.T, length float64, slots int) (*Network, LinkID) {
	t.Helper()
	net := NewNetwork("")
	require.NoError(t, net.AddNode(NewNode(0)))
	require.NoError(t, net.AddNode(NewNode(1)))

	fwd, err := NewFiberSlots(slots)
	require.NoError(t, err)
	link, err := NewLinkWithFiber(length, fwd)
	require.NoError(t, err)
	require.NoError(t, link.SetID(0))
	require.NoError(t, net.AddLink(link))
	require.NoError(t, net.Connect(0, 0, 1))

	rev, err := NewFiberSlots(slots)
	require.NoError(t, err)
	revLink, err := NewLinkWithFiber(length, rev)
	require.NoError(t, err)
	require.NoError(t, revLink.SetID(1))
	require.NoError(t, net.AddLink(revLink))
	require.NoError(t, net.Connect(1, 1, 0))

	return net, link.ID()
}

func TestNetworkDefaultName(t *testing.T) {
	net := NewNetwork("")
	assert.Equal(t, "Unnamed Network", net.Name())
}

func TestNetworkAddNodeRequiresDenseIDs(t *testing.T) {
	net := NewNetwork("")
	err := net.AddNode(NewNode(1))
	require.Error(t, err)
	assert.True(t, Is(err, InvalidArgument))

	require.NoError(t, net.AddNode(NewNode(0)))
	require.NoError(t, net.AddNode(NewNode(1)))
	assert.Equal(t, 2, net.NumberOfNodes())
}

func TestNetworkValidateBidirectionalRejectsOneWay(t *testing.T) {
	net := NewNetwork("")
	require.NoError(t, net.AddNode(NewNode(0)))
	require.NoError(t, net.AddNode(NewNode(1)))

	link, err := NewLinkWithFiber(10, NewFiber())
	require.NoError(t, err)
	require.NoError(t, link.SetID(0))
	require.NoError(t, net.AddLink(link))
	require.NoError(t, net.Connect(0, 0, 1))

	err = net.ValidateBidirectional()
	require.Error(t, err)
	assert.True(t, Is(err, InvalidTopology))
}

func TestNetworkValidateBidirectionalAcceptsPairedLinks(t *testing.T) {
	net, _ := twoNodeLink(t, 100, 320)
	assert.NoError(t, net.ValidateBidirectional())
}

func TestUseSlotsAndUnuseSlotsRoundTrip(t *testing.T) {
	net, linkID := twoNodeLink(t, 100, 16)
	require.NoError(t, net.UseSlots(linkID, 0, 0, BandC, 0, 2, 6, 7))
	for pos := 2; pos < 6; pos++ {
		owner, err := net.IsSlotUsed(linkID, 0, 0, BandC, 0, pos)
		require.NoError(t, err)
		assert.Equal(t, 7, owner)
	}
	owner, err := net.IsSlotUsed(linkID, 0, 0, BandC, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, FreeSlot, owner)
	owner, err = net.IsSlotUsed(linkID, 0, 0, BandC, 0, 6)
	require.NoError(t, err)
	assert.Equal(t, FreeSlot, owner)

	require.NoError(t, net.UnuseSlots(linkID, 0, 0, BandC, 0, 2, 6))
	for pos := 2; pos < 6; pos++ {
		owner, err := net.IsSlotUsed(linkID, 0, 0, BandC, 0, pos)
		require.NoError(t, err)
		assert.Equal(t, FreeSlot, owner)
	}
}

func TestUseSlotsRejectsInvalidRange(t *testing.T) {
	net, linkID := twoNodeLink(t, 100, 16)
	err := net.UseSlots(linkID, 0, 0, BandC, 0, 5, 5, 1)
	require.Error(t, err)
	assert.True(t, Is(err, InvalidArgument))
}

func TestNetworkCloneIsStructurallyIndependent(t *testing.T) {
	net, linkID := twoNodeLink(t, 100, 16)
	clone := net.Clone()

	require.NoError(t, net.UseSlots(linkID, 0, 0, BandC, 0, 0, 4, 9))
	owner, err := clone.IsSlotUsed(linkID, 0, 0, BandC, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, FreeSlot, owner, "mutating the live network must not affect a prior clone")

	liveOwner, err := net.IsSlotUsed(linkID, 0, 0, BandC, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 9, liveOwner)
}

func TestIsConnectedReturnsLinkIDs(t *testing.T) {
	net, linkID := twoNodeLink(t, 100, 16)
	ids := net.IsConnected(0, 1)
	require.Len(t, ids, 1)
	assert.Equal(t, linkID, ids[0])
	assert.Empty(t, net.IsConnected(1, 1))
}
