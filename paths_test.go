package optnetsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDiamond builds the §8 scenario-6 4-node diamond: 0->1->3 costs 10,
// 0->2->3 costs 12, with the reverse links present too so the network
// passes ValidateBidirectional.
func buildDiamond(t *testing.T) (*Network, map[[2]int]LinkID) {
	t.Helper()
	net := NewNetwork("diamond")
	for i := 0; i < 4; i++ {
		require.NoError(t, net.AddNode(NewNode(i)))
	}

	ids := map[[2]int]LinkID{}
	addLink := func(src, dst int, length float64) {
		link, err := NewLinkWithFiber(length, NewFiber())
		require.NoError(t, err)
		require.NoError(t, link.SetID(LinkID(net.NumberOfLinks())))
		require.NoError(t, net.AddLink(link))
		require.NoError(t, net.Connect(src, link.ID(), dst))
		ids[[2]int{src, dst}] = link.ID()
	}

	addLink(0, 1, 5)
	addLink(1, 0, 5)
	addLink(1, 3, 5)
	addLink(3, 1, 5)
	addLink(0, 2, 6)
	addLink(2, 0, 6)
	addLink(2, 3, 6)
	addLink(3, 2, 6)

	return net, ids
}

func TestYenKShortestDiamond(t *testing.T) {
	net, ids := buildDiamond(t)
	require.NoError(t, net.SetPaths(2))

	routes, err := net.GetPaths(0, 3)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.Equal(t, Route{ids[[2]int{0, 1}], ids[[2]int{1, 3}]}, routes[0])
	assert.Equal(t, Route{ids[[2]int{0, 2}], ids[[2]int{2, 3}]}, routes[1])
}

func TestPathsAreOrderedNonDecreasing(t *testing.T) {
	net, _ := buildDiamond(t)
	require.NoError(t, net.SetPaths(2))

	routes, err := net.GetPaths(0, 3)
	require.NoError(t, err)
	for i := 0; i+1 < len(routes); i++ {
		assert.LessOrEqual(t, net.routeLength(routes[i]), net.routeLength(routes[i+1]))
	}
}

func TestSetPathsRejectsNonPositiveK(t *testing.T) {
	net, _ := buildDiamond(t)
	err := net.SetPaths(0)
	require.Error(t, err)
	assert.True(t, Is(err, InvalidArgument))
}

func TestClearPathsThenRecomputeMatchesFreshComputation(t *testing.T) {
	net, _ := buildDiamond(t)
	require.NoError(t, net.SetPaths(2))
	before, err := net.GetPaths(0, 3)
	require.NoError(t, err)

	net.ClearPaths()
	require.NoError(t, net.SetPaths(2))
	after, err := net.GetPaths(0, 3)
	require.NoError(t, err)

	require.Equal(t, len(before), len(after))
	for i := range before {
		assert.True(t, before[i].Equal(after[i]))
	}
}

func TestSetPathsRecordsOutDegree(t *testing.T) {
	net, _ := buildDiamond(t)
	require.NoError(t, net.SetPaths(1))
	node, err := net.NodeByID(0)
	require.NoError(t, err)
	assert.Equal(t, 2, node.Degree())
}

func TestSetPathsSameSourceDestIsEmpty(t *testing.T) {
	net, _ := buildDiamond(t)
	require.NoError(t, net.SetPaths(2))
	routes, err := net.GetPaths(1, 1)
	require.NoError(t, err)
	assert.Empty(t, routes)
}
